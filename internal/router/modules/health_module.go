package modules

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-task-tracker/internal/domain/repository"
)

// HealthModule reports whether the store answers.
// Public: GET /api/health
type HealthModule struct {
	Store  repository.Pinger
	Logger logrus.FieldLogger
}

func NewHealthModule(store repository.Pinger, logger logrus.FieldLogger) *HealthModule {
	return &HealthModule{Store: store, Logger: logger}
}

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", m.health)
}

func (m *HealthModule) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := m.Store.Ping(ctx); err != nil {
		m.Logger.WithError(err).Warn("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
