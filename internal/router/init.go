package router

import (
	"github.com/openlibro/librogate/internal/application"
	"github.com/openlibro/librogate/internal/container"
	handlers "github.com/openlibro/librogate/internal/interface/http"
	"github.com/openlibro/librogate/internal/router/modules"
)

// InitModules initializes all application modules and registers them with
// the router registry. Called once during startup.
func InitModules(r *Registry) {
	gw := container.GetGateway()
	sessions := container.GetSessions()
	logger := container.GetLogger()
	cfg := container.GetConfig()

	detail := application.NewBookDetail(gw, sessions, logger)
	bookHandler := handlers.NewBookHandler(detail, gw, sessions, logger)

	profiles := application.NewProfileRegistry(gw, sessions, logger)
	profileHandler := handlers.NewProfileHandler(profiles, logger, cfg.CookieDomain, cfg.CookieSecure)

	r.Add(modules.NewBookModule(bookHandler, container.GetJWT()))
	r.Add(modules.NewProfileModule(profileHandler, container.GetJWT()))
}
