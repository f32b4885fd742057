package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-task-tracker/internal/interface/http"
	"github.com/oksasatya/go-ddd-task-tracker/internal/interface/middleware"
)

// UserModule exposes the caller's own account.
// Protected: GET /api/auth/me
type UserModule struct {
	Handler  *handlers.UserHandler
	Identity middleware.IdentitySource
}

func NewUserModule(h *handlers.UserHandler, src middleware.IdentitySource) *UserModule {
	return &UserModule{Handler: h, Identity: src}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.GET("/auth/me", middleware.Auth(m.Identity), m.Handler.Me)
}
