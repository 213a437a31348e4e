// Package ui exposes the validation engine as a JSON HTTP API.
package ui

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"goexpect/app"
	"goexpect/ports"
)

// App represents the API application
type App struct {
	router    *chi.Mux
	service   *app.ValidationService
	resolver  ports.SourceResolver
	suggester ports.RuleSuggester
	recorder  ports.RunRecorder
}

// Config holds API application configuration
type Config struct {
	Port string
}

// NewApp creates a new API application
func NewApp(service *app.ValidationService, resolver ports.SourceResolver, suggester ports.RuleSuggester, recorder ports.RunRecorder) *App {
	a := &App{
		router:    chi.NewRouter(),
		service:   service,
		resolver:  resolver,
		suggester: suggester,
		recorder:  recorder,
	}

	a.setupMiddleware()
	a.setupRoutes()

	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Timeout(120 * time.Second))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/health", a.handleHealth)

	a.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/validate", a.handleValidate)
		r.Post("/datasets/preview", a.handlePreview)
		r.Post("/suggest_expectations", a.handleSuggest)
		r.Get("/runs", a.handleListRuns)
		r.Get("/runs/{id}", a.handleGetRun)
		r.Get("/runs/{id}/report", a.handleRunReport)
	})
}

// Router exposes the configured handler for serving and tests.
func (a *App) Router() http.Handler {
	return a.router
}

// Start starts the HTTP server
func (a *App) Start(config Config) error {
	addr := ":" + config.Port
	log.Printf("[API] listening on %s", addr)
	return http.ListenAndServe(addr, a.router)
}
