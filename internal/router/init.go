package router

import (
	"github.com/oksasatya/go-auth-service/internal/container"
	handlers "github.com/oksasatya/go-auth-service/internal/interface/http"
	"github.com/oksasatya/go-auth-service/internal/router/modules"
)

// InitModules builds every feature module from the container and registers it.
// Call once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	h := handlers.NewAuthHandler(c.Auth, c.Logger)
	r.Add(modules.NewAuthModule(h, c.Auth, c.Redis))

	if c.Config != nil && c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}
}
