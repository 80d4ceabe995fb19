// Package http exposes the claim services over a JSON API.
// It only translates requests into service calls.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/garyjia/claimflow/internal/application/export"
	"github.com/garyjia/claimflow/internal/application/query"
	"github.com/garyjia/claimflow/internal/application/service"
	"github.com/garyjia/claimflow/internal/application/view"
	"github.com/garyjia/claimflow/internal/auth"
	"github.com/garyjia/claimflow/internal/domain/entity"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
	// ShutdownTimeout bounds how long Stop waits for in-flight requests
	ShutdownTimeout time.Duration
	// DefaultLocale is used for labels when the request names none
	DefaultLocale string
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		DefaultLocale:   "en",
	}
}

// Dependencies are the services the API serves
type Dependencies struct {
	Claims        service.ClaimService
	Notifications service.NotificationService
	Directory     service.DirectoryService
	Catalog       *view.Catalog
	Query         *query.Engine
	Exporters     *export.Registry
	Tokens        *auth.TokenService
	// Probe, when set, is consulted by GET /health
	Probe func(context.Context) error
}

// Server serves the claim API over gin
type Server struct {
	config     ServerConfig
	deps       Dependencies
	logger     Logger
	router     *gin.Engine
	httpServer *http.Server
}

// NewServer creates a new HTTP server
func NewServer(config ServerConfig, deps Dependencies, logger Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		config: config,
		router: gin.New(),
		deps:   deps,
		logger: logger,
	}
	if s.config.ShutdownTimeout <= 0 {
		s.config.ShutdownTimeout = 10 * time.Second
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:         s.Address(),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(requestID())
	s.router.Use(s.loggingMiddleware())

	if len(s.config.CORSOrigins) > 0 {
		s.router.Use(cors.New(cors.Config{
			AllowOrigins:     s.config.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowHeaders:     []string{"Authorization", "Content-Type", "Accept-Language", requestIDHeader},
			ExposeHeaders:    []string{requestIDHeader, "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(requestIDKey),
		)
	}
}

func (s *Server) setupRoutes() {
	h := NewHandlers(s.deps, s.config.DefaultLocale, s.logger)

	s.router.GET("/health", h.HealthCheck)

	api := s.router.Group("/api/v1", authenticate(s.deps.Tokens))
	{
		api.GET("/claims", h.ListClaims)
		api.POST("/claims", h.CreateClaim)
		api.GET("/claims/export", h.ExportClaims)
		api.POST("/claims/status", h.UpdateStatus)
		api.GET("/claims/:id", h.GetClaim)
		api.PUT("/claims/:id", h.UpdateClaim)
		api.GET("/claims/:id/history", h.ClaimHistory)

		api.GET("/views", h.ListViews)
		api.GET("/views/:name", h.GetView)

		api.GET("/projects", h.ListProjects)

		api.GET("/notifications", h.ListNotifications)
		api.POST("/notifications/read", h.MarkNotificationsRead)

		admin := api.Group("/admin", requireRoles(entity.RoleAdministrator))
		{
			admin.GET("/staff", h.ListStaff)
			admin.POST("/staff", h.CreateStaff)
			admin.GET("/projects", h.ListProjects)
			admin.POST("/projects", h.CreateProject)
		}
	}
}

// Start binds the listen address and serves until ctx is cancelled or the
// listener fails. A bind error is returned before anything is served.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	s.logger.Info("HTTP API listening", "address", ln.Addr().String())

	served := make(chan error, 1)
	go func() { served <- s.httpServer.Serve(ln) }()

	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		s.logger.Error("HTTP API stopped unexpectedly", "error", err)
		return err
	}
}

// Stop drains in-flight requests within the shutdown timeout. It is safe to
// call more than once and before Start.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP API shutdown incomplete", "error", err)
		return err
	}
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address is the configured host:port
func (s *Server) Address() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}
