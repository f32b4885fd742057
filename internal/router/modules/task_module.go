package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-task-tracker/internal/interface/http"
	"github.com/oksasatya/go-ddd-task-tracker/internal/interface/middleware"
)

// TaskModule wires task CRUD. Every route requires a bearer token.
// Protected: POST/GET /api/tasks/, PUT/DELETE /api/tasks/:id
type TaskModule struct {
	Handler  *handlers.TaskHandler
	Identity middleware.IdentitySource
}

func NewTaskModule(h *handlers.TaskHandler, src middleware.IdentitySource) *TaskModule {
	return &TaskModule{Handler: h, Identity: src}
}

func (m *TaskModule) Register(rg *gin.RouterGroup) {
	tasks := rg.Group("/tasks")
	tasks.Use(middleware.Auth(m.Identity))
	{
		tasks.POST("/", m.Handler.Create)
		tasks.GET("/", m.Handler.List)
		tasks.PUT("/:id", m.Handler.Update)
		tasks.DELETE("/:id", m.Handler.Delete)
	}
}
