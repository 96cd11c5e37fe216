// Package httpapi serves the storybook library over HTTP for the web
// front end.
//
// Every JSON endpoint answers with the ApiResponse envelope. Library
// errors map to statuses by kind: not found 404, invalid input or
// unsupported format 400, unavailable capability 501, anything else 500.
// Reviews stream as server-sent events.
package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/HendryAvila/storybook/internal/agent"
	"github.com/HendryAvila/storybook/internal/library"
)

// Config holds the HTTP API's dependencies.
type Config struct {
	Library     *library.Library
	Runner      agent.Runner // nil disables review streaming
	Agent       agent.Options
	CORSOrigins []string
	Version     string
	Logger      zerolog.Logger
	Debug       bool
}

// Router is the HTTP router.
type Router struct {
	engine *gin.Engine
	cfg    Config
	logger zerolog.Logger
}

// New creates the router with middleware and routes installed.
func New(cfg Config) (*Router, error) {
	if cfg.Library == nil {
		return nil, fmt.Errorf("http api needs a library")
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine: gin.New(),
		cfg:    cfg,
		logger: cfg.Logger.With().Str("component", "http").Logger(),
	}
	r.setupMiddleware()
	r.setupRoutes()
	return r, nil
}

// Engine returns the gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.engine.ServeHTTP(w, req)
}

func (r *Router) setupMiddleware() {
	r.engine.Use(Recovery(r.logger))
	r.engine.Use(RequestID())
	r.engine.Use(CORS(CORSConfig{AllowedOrigins: r.cfg.CORSOrigins}))
	r.engine.Use(AccessLog(r.logger))
}

func (r *Router) setupRoutes() {
	h := &handlers{
		lib:     r.cfg.Library,
		runner:  r.cfg.Runner,
		opts:    r.cfg.Agent,
		version: r.cfg.Version,
		logger:  r.logger,
	}

	r.engine.GET("/health", h.health)
	r.engine.GET("/api/genres", h.genres)

	projects := r.engine.Group("/api/projects")
	{
		projects.GET("", h.listProjects)
		projects.POST("", h.createProject)
		projects.GET("/:id", h.getProject)
		projects.PUT("/:id/metadata", h.updateMetadata)
		projects.DELETE("/:id", h.deleteProject)

		projects.GET("/:id/manuscript", h.getManuscript)
		projects.PUT("/:id/manuscript", h.saveManuscript)

		projects.GET("/:id/characters", h.listCharacters)
		projects.POST("/:id/characters", h.addCharacter)
		projects.DELETE("/:id/characters/:name", h.removeCharacter)

		projects.GET("/:id/plot-events", h.listPlotEvents)
		projects.POST("/:id/plot-events", h.addPlotEvent)
		projects.DELETE("/:id/plot-events/:eventId", h.removePlotEvent)

		projects.POST("/:id/export", h.exportProject)

		projects.GET("/:id/reviews", h.listReviews)
		projects.POST("/:id/review", h.streamReview)
	}
}
