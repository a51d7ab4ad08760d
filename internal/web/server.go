package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/coursewizard/internal/auth"
	"github.com/example/coursewizard/internal/endpoint"
	"github.com/example/coursewizard/internal/observability"
)

// Server is the HTTP JSON API of the wizard.
type Server struct {
	addr     string
	handlers *Handlers
	engine   *gin.Engine
	tokens   *auth.Tokens
	metrics  http.Handler
	http     *http.Server
}

// Option configures the Server.
type Option func(*Server)

// WithTokens enables bearer token authentication on the API routes.
func WithTokens(tokens *auth.Tokens) Option {
	return func(s *Server) { s.tokens = tokens }
}

// WithMetrics serves metrics at /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// NewServer creates a new web server
func NewServer(addr string, endpoints endpoint.Endpoints, opts ...Option) *Server {
	s := &Server{
		addr:     addr,
		handlers: NewHandlers(endpoints),
	}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.ReleaseMode)
	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), requestLogger())
	s.setupRoutes()

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics))
	}

	api := s.engine.Group("/api", corsMiddleware(), authMiddleware(s.tokens))
	{
		wizard := api.Group("/wizard")
		wizard.POST("/advance", s.handlers.Advance)
		wizard.GET("/steps", s.handlers.Steps)
		wizard.GET("/drafts/:id", s.handlers.GetDraft)

		privacy := api.Group("/privacy")
		privacy.GET("/drafts", s.handlers.ExportUserData)
		privacy.DELETE("/drafts", s.handlers.DeleteUserData)
		privacy.DELETE("/scopes/:scope", s.handlers.DeleteScope)
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.addr)
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops a server started with Start.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler() http.Handler {
	return s.engine
}
