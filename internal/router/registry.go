package router

import "github.com/gin-gonic/gin"

// Module mounts its routes on the /api group.
type Module interface {
	Register(rg *gin.RouterGroup)
}

// Registry collects modules and mounts them under /api.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api")}
}

// Use adds middleware applied to every /api route.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mods ...Module) {
	r.modules = append(r.modules, mods...)
}

// RegisterAll mounts middleware first, then each module in the order added.
func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
