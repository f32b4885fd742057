package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-task-tracker/internal/interface/http"
)

// AuthModule wires the public credential endpoints.
// Public: POST /api/auth/register, POST /api/auth/login
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	auth.POST("/register", m.Handler.Register)
	auth.POST("/login", m.Handler.Login)
}
