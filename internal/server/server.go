// Package server exposes the agent's local health endpoint.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"onestop-realtime/internal/channel"
	"onestop-realtime/internal/session"
	"onestop-realtime/pkg/log"
)

// Server represents the local HTTP server
type Server struct {
	config Config
	server *http.Server
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Mode    string
	Logger  log.Logger
	Session session.Store
	Manager *channel.Manager
}

// New creates a new Server instance
func New(cfg Config) *Server {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	setupRoutes(router, cfg.Session, cfg.Manager)

	server := &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	return &Server{
		config: cfg,
		server: server,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.config.Logger.Infof(context.Background(), "Starting health server on %s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.config.Logger.Info(ctx, "Shutting down health server...")
	return s.server.Shutdown(ctx)
}

// setupRoutes sets up HTTP routes
func setupRoutes(router *gin.Engine, sess session.Store, manager *channel.Manager) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "onestop-agent",
		})
	})

	router.GET("/status", func(c *gin.Context) {
		statusHandler(c, sess, manager)
	})
}
