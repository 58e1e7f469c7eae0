package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"onestop-realtime/config"
	"onestop-realtime/internal/channel"
	"onestop-realtime/internal/events"
	"onestop-realtime/internal/server"
	"onestop-realtime/internal/session"
	"onestop-realtime/pkg/jwt"
	"onestop-realtime/pkg/log"
	"onestop-realtime/pkg/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config:", err)
		return
	}

	// Initialize logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx := context.Background()
	logger.Info(ctx, "Starting OneStop realtime agent...")

	// Initialize credential storage, falling back to in-memory when no
	// system keyring is available (headless CI boxes)
	credStore, err := storage.NewKeyring(storage.KeyringConfig{
		ServiceName: cfg.Session.ServiceName,
		FileDir:     cfg.Session.FileDir,
		FilePass:    cfg.Session.FilePass,
	})
	if err != nil {
		logger.Warnf(ctx, "Keyring unavailable, using in-memory credential storage: %v", err)
		credStore = storage.NewMemory()
	}

	// Initialize identity client against the REST backend
	identityClient := session.NewIdentityClient(session.ClientConfig{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.API.Timeout,
		Retries:    cfg.API.IdentityRetries,
		RetryDelay: cfg.API.IdentityRetryDelay,
		Logger:     logger,
	})

	// Initialize session store
	sess := session.New(session.Config{
		Storage:  credStore,
		Client:   identityClient,
		Logger:   logger,
		TokenKey: cfg.Session.TokenKey,
	})

	// Initialize event bus and log every rebroadcast kind
	bus := events.NewBus()
	for _, kind := range []string{
		events.KindNotification,
		events.KindMessage,
		events.KindMessageUpdate,
		events.KindTyping,
	} {
		kind := kind
		bus.Subscribe(kind, func(payload any) {
			logger.Infof(ctx, "Event %s: %s", kind, payload)
		})
	}
	bus.Subscribe(events.KindChannelStatus, func(payload any) {
		logger.Infof(ctx, "Channel status changed: %v", payload)
	})

	// Bind the live channel manager to the session store. Must happen
	// before Init so the restored credential opens a connection.
	manager := channel.NewManager(channel.ManagerConfig{
		Session: sess,
		Bus:     bus,
		Logger:  logger,
		Socket: channel.SocketOptions{
			URL:               cfg.Socket.URL,
			ConnectTimeout:    cfg.Socket.ConnectTimeout,
			ReconnectDelay:    cfg.Socket.ReconnectDelay,
			ReconnectDelayMax: cfg.Socket.ReconnectDelayMax,
			ReconnectAttempts: cfg.Socket.ReconnectAttempts,
			PingInterval:      cfg.Socket.PingInterval,
			PongWait:          cfg.Socket.PongWait,
			WriteWait:         cfg.Socket.WriteWait,
			MaxMessageSize:    cfg.Socket.MaxMessageSize,
		},
	})

	// Restore any persisted session
	if err := sess.Init(ctx); err != nil {
		logger.Errorf(ctx, "Failed to restore session: %v", err)
	}
	if token := sess.Credential(); token != "" {
		if claims, err := jwt.Inspect(token); err == nil && claims.IsExpired(time.Now()) {
			logger.Warn(ctx, "Persisted credential is expired, the backend will reject it")
		}
		logger.Infof(ctx, "Session restored for user %s (%s)", sess.Identity().ID, sess.Identity().Role)
	} else {
		logger.Info(ctx, "No persisted session, waiting for login")
	}

	// Setup local health server
	srv := server.New(server.Config{
		Host:    cfg.Server.Host,
		Port:    cfg.Server.Port,
		Mode:    cfg.Server.Mode,
		Logger:  logger,
		Session: sess,
		Manager: manager,
	})

	// Start server in a goroutine
	go func() {
		if err := srv.Start(); err != nil {
			logger.Errorf(ctx, "Server error: %v", err)
		}
	}()

	logger.Infof(ctx, "Health endpoint listening on %s:%d", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "Shutting down gracefully...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown components in order
	manager.Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(ctx, "Error shutting down server: %v", err)
	}

	logger.Info(ctx, "Agent shutdown complete")
}
