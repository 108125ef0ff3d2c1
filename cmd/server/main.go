package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beaconsafety/beacon-server/internal/config"
	"github.com/beaconsafety/beacon-server/internal/database"
	"github.com/beaconsafety/beacon-server/internal/docstore"
	"github.com/beaconsafety/beacon-server/internal/handlers"
	"github.com/beaconsafety/beacon-server/internal/logging"
	"github.com/beaconsafety/beacon-server/internal/middleware"
	"github.com/beaconsafety/beacon-server/internal/push"
	"github.com/beaconsafety/beacon-server/internal/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	logger := logging.New()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.Server.Debug {
		logger.SetLevel(logging.LevelDebug)
		logging.SetDefaultLevel(logging.LevelDebug)
	}

	logger.Info("Starting Beacon server...")

	// Connect to Redis. Sessions live here regardless of store driver.
	logger.Info("Connecting to Redis", map[string]interface{}{
		"addr": cfg.Redis.Addr(),
	})
	redisDB, err := database.NewRedisDB(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisDB.Close() }()
	logger.Info("Connected to Redis")

	healthChecks := map[string]handlers.HealthChecker{
		"redis": redisDB,
	}

	var store docstore.Store
	switch cfg.Store.Driver {
	case "postgres":
		logger.Info("Connecting to PostgreSQL", map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
		})
		db, err := database.NewPostgresDB(cfg.Database)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer db.Close()
		logger.Info("Connected to PostgreSQL")

		logger.Info("Running database migrations...")
		migrator, err := database.NewMigrator(cfg.Database.DSN(), "migrations")
		if err != nil {
			return fmt.Errorf("creating migrator: %w", err)
		}
		if err := migrator.Up(); err != nil {
			_ = migrator.Close()
			return fmt.Errorf("running migrations: %w", err)
		}
		_ = migrator.Close()
		logger.Info("Migrations completed")

		store = docstore.NewPostgresStore(db.Pool, redisDB.Client)
		healthChecks["postgres"] = db
	case "memory":
		logger.Info("Using in-memory document store")
		store = docstore.NewMemoryStore()
	}

	// Choose the push sender
	var sender services.Sender
	switch cfg.Push.Provider {
	case "fcm":
		fcm, err := push.NewFCMSender(context.Background(), cfg.Push.ProjectID, cfg.Push.CredentialsPath, store)
		if err != nil {
			return fmt.Errorf("configuring fcm: %w", err)
		}
		sender = fcm
		logger.Info("Push notifications via FCM", map[string]interface{}{
			"project": cfg.Push.ProjectID,
		})
	default:
		sender = push.NewConsoleSender()
		logger.Info("Push notifications logged to console")
	}

	// Initialize services
	identity := handlers.ContextIdentity{}

	profileService := services.NewProfileService(store)
	authService := services.NewAuthService(store, redisDB.Client, profileService)
	notificationService := services.NewNotificationService(store, sender)
	friendshipService := services.NewFriendshipService(store, profileService)
	chatService := services.NewChatService(store, identity, profileService, notificationService)
	friendRequestService := services.NewFriendRequestService(store, identity, profileService, friendshipService, chatService, notificationService)
	reportService := services.NewReportService(store, identity, profileService, friendshipService, notificationService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(healthChecks)
	authHandler := handlers.NewAuthHandler(authService, cfg.Server.Secure)
	profileHandler := handlers.NewProfileHandler(profileService)
	friendHandler := handlers.NewFriendHandler(friendRequestService, friendshipService)
	chatHandler := handlers.NewChatHandler(chatService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	reportHandler := handlers.NewReportHandler(reportService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)
	requestLogger := middleware.NewRequestLogger(logger)
	requireAuth := authMiddleware.RequireAuth

	// Set up router
	mux := http.NewServeMux()

	// Health endpoints (no auth)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /live", healthHandler.Live)

	// Auth endpoints
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.Handle("GET /api/auth/me", requireAuth(http.HandlerFunc(authHandler.Me)))

	// Profile endpoints
	mux.Handle("GET /api/profiles/search", requireAuth(http.HandlerFunc(profileHandler.Search)))
	mux.Handle("GET /api/profiles/{id}", requireAuth(http.HandlerFunc(profileHandler.Get)))
	mux.Handle("PUT /api/profiles/me", requireAuth(http.HandlerFunc(profileHandler.Update)))

	// Friend endpoints
	mux.Handle("GET /api/friends", requireAuth(http.HandlerFunc(friendHandler.List)))
	mux.Handle("PUT /api/friends/{id}/nickname", requireAuth(http.HandlerFunc(friendHandler.UpdateNickname)))
	mux.Handle("GET /api/friends/requests", requireAuth(http.HandlerFunc(friendHandler.ListRequests)))
	mux.Handle("POST /api/friends/requests", requireAuth(http.HandlerFunc(friendHandler.SendRequest)))
	mux.Handle("PUT /api/friends/requests/{id}/accept", requireAuth(http.HandlerFunc(friendHandler.AcceptRequest)))
	mux.Handle("PUT /api/friends/requests/{id}/reject", requireAuth(http.HandlerFunc(friendHandler.RejectRequest)))

	// Chat endpoints
	mux.Handle("GET /api/chats", requireAuth(http.HandlerFunc(chatHandler.List)))
	mux.Handle("POST /api/chats", requireAuth(http.HandlerFunc(chatHandler.CreateGroup)))
	mux.Handle("GET /api/chats/{id}", requireAuth(http.HandlerFunc(chatHandler.Get)))
	mux.Handle("PUT /api/chats/{id}/name", requireAuth(http.HandlerFunc(chatHandler.Rename)))
	mux.Handle("POST /api/chats/{id}/admins", requireAuth(http.HandlerFunc(chatHandler.AddAdmin)))
	mux.Handle("DELETE /api/chats/{id}/admins/{userId}", requireAuth(http.HandlerFunc(chatHandler.RemoveAdmin)))
	mux.Handle("POST /api/chats/{id}/participants", requireAuth(http.HandlerFunc(chatHandler.AddParticipants)))
	mux.Handle("GET /api/chats/{id}/messages", requireAuth(http.HandlerFunc(chatHandler.ListMessages)))
	mux.Handle("POST /api/chats/{id}/messages", requireAuth(http.HandlerFunc(chatHandler.PostMessage)))
	mux.Handle("PUT /api/chats/{id}/read", requireAuth(http.HandlerFunc(chatHandler.MarkRead)))

	// Notification endpoints
	mux.Handle("GET /api/notifications", requireAuth(http.HandlerFunc(notificationHandler.List)))
	mux.Handle("GET /api/notifications/unread", requireAuth(http.HandlerFunc(notificationHandler.UnreadCount)))
	mux.Handle("PUT /api/notifications/read", requireAuth(http.HandlerFunc(notificationHandler.MarkAllRead)))
	mux.Handle("PUT /api/notifications/{id}/read", requireAuth(http.HandlerFunc(notificationHandler.MarkRead)))
	mux.Handle("POST /api/devices", requireAuth(http.HandlerFunc(notificationHandler.RegisterDevice)))

	// Report endpoints
	mux.Handle("POST /api/reports", requireAuth(http.HandlerFunc(reportHandler.Create)))
	mux.Handle("GET /api/reports/{id}", requireAuth(http.HandlerFunc(reportHandler.Get)))
	mux.Handle("GET /api/reports/{id}/comments", requireAuth(http.HandlerFunc(reportHandler.ListComments)))
	mux.Handle("POST /api/reports/{id}/comments", requireAuth(http.HandlerFunc(reportHandler.AddComment)))

	// Build middleware chain (order matters: outermost first)
	var handler http.Handler = mux
	handler = authMiddleware.Authenticate(handler)
	handler = requestLogger.Apply(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", map[string]interface{}{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Server listening", map[string]interface{}{
		"addr": addr,
	})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}
