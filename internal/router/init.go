package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-task-tracker/internal/container"
	handlers "github.com/oksasatya/go-ddd-task-tracker/internal/interface/http"
	"github.com/oksasatya/go-ddd-task-tracker/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-task-tracker/internal/router/modules"
	"github.com/oksasatya/go-ddd-task-tracker/pkg/validation"
)

// New builds the HTTP engine with global middleware and every module.
func New(c *container.Container) *gin.Engine {
	validation.Init()

	r := gin.New()
	r.Use(middleware.Recovery(c.Logger))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	r.Use(cors.New(corsConfig(c)))
	if c.Config.HTTPLogEnabled || c.Config.Env == "development" {
		r.Use(middleware.RequestLogger(c.Logger))
	}

	reg := NewRegistry(r)
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}

// InitModules registers every application module with the registry.
func InitModules(r *Registry, c *container.Container) {
	r.Add(
		modules.NewHealthModule(c.Store, c.Logger),
		modules.NewAuthModule(handlers.NewAuthHandler(c.Sessions)),
		modules.NewUserModule(handlers.NewUserHandler(), c.Resolver),
		modules.NewTaskModule(handlers.NewTaskHandler(c.Tasks), c.Resolver),
	)
}

func corsConfig(c *container.Container) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if c.Config.AllowAllOrigins() {
		// echo the caller's origin so credentialed requests still work
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = c.Config.CORSOrigins()
	}
	return cfg
}
