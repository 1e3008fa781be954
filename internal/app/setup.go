// Package app contains the application setup for the checklist service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/checklist/internal/cache"
	"github.com/abgdnv/checklist/internal/config"
	"github.com/abgdnv/checklist/internal/controller"
	"github.com/abgdnv/checklist/internal/notice"
	"github.com/abgdnv/checklist/internal/store"
	"github.com/abgdnv/checklist/internal/transport/rest"
	"github.com/abgdnv/checklist/pkg/server"
	"github.com/go-chi/chi/v5"
)

type Dependencies struct {
	Controller *controller.Controller
	Notices    *notice.Feed
	Logger     *slog.Logger
}

// SetupDependencies wires the remote store, the cache and the controller.
// The product list is not fetched here; call Controller.Load.
func SetupDependencies(cfg *config.Config, clipboard controller.Clipboard, logger *slog.Logger) *Dependencies {
	notices := notice.NewFeed(0, logger)
	remote := store.NewRemoteStore(cfg.Remote, logger)
	ctrl := controller.New(remote, cache.New(), clipboard, notices, logger, cfg.Controller)

	return &Dependencies{
		Controller: ctrl,
		Notices:    notices,
		Logger:     logger,
	}
}

// SetupHttpHandler initializes the routes and middleware of the checklist API.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the checklist application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	checklistHandler := rest.NewHandler(deps.Controller, deps.Notices, deps.Logger)
	checklistHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the checklist application.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)
	return server.NewHTTPServer(server.HTTPConfigFrom(cfg.HTTPServer), mux)
}
