package main

import (
	"context"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	httpapi "github.com/docvault/docvault/internal/api/http"
	"github.com/docvault/docvault/internal/application/audit"
	"github.com/docvault/docvault/internal/application/auth"
	"github.com/docvault/docvault/internal/application/comment"
	"github.com/docvault/docvault/internal/application/document"
	"github.com/docvault/docvault/internal/application/editlock"
	"github.com/docvault/docvault/internal/application/notification"
	"github.com/docvault/docvault/internal/application/user"
	"github.com/docvault/docvault/internal/application/version"
	"github.com/docvault/docvault/internal/application/view"
	"github.com/docvault/docvault/internal/config"
	"github.com/docvault/docvault/internal/infrastructure/metrics"
	"github.com/docvault/docvault/internal/infrastructure/postgres"
	"github.com/docvault/docvault/internal/infrastructure/sse"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	// repositories
	userRepo := postgres.NewUserRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	documentRepo := postgres.NewDocumentRepository(pool)
	versionRepo := postgres.NewVersionRepository(pool)
	lockRepo := postgres.NewEditLockRepository(pool)
	viewRepo := postgres.NewViewRepository(pool)
	commentRepo := postgres.NewCommentRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)

	// infrastructure
	sseHub := sse.NewHub()
	go sseHub.Start(ctx)
	defer sseHub.Stop()
	m := metrics.NewMetrics()

	// services
	auditSvc := audit.NewService(auditRepo, logger, loadHexKey(cfg.AuditSignKey))
	notificationSvc := notification.NewService(notificationRepo, sseHub, logger)
	userSvc := user.NewService(userRepo, auditSvc, cfg.BcryptCost, logger)
	authSvc := auth.NewService(userRepo, sessionRepo, auditSvc, cfg.SessionTTL, logger)
	documentSvc := document.NewService(documentRepo, auditSvc, logger)
	versionSvc := version.NewService(versionRepo, documentRepo, lockRepo, viewRepo, auditSvc, notificationSvc, cfg.AutosaveAuditEvery, logger)
	editlockSvc := editlock.NewService(lockRepo, versionRepo, userRepo, auditSvc, notificationSvc, logger)
	viewSvc := view.NewService(viewRepo, versionRepo, auditSvc, logger)
	commentSvc := comment.NewService(commentRepo, versionRepo, documentRepo, auditSvc, logger)

	// API server
	apiServer := httpapi.NewServer(
		documentSvc,
		versionSvc,
		editlockSvc,
		viewSvc,
		commentSvc,
		notificationSvc,
		auditSvc,
		authSvc,
		userSvc,
		sseHub,
		m,
		cfg.SessionCookieName,
		cfg.SessionCookieSecure,
	)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// background loops
	go func() {
		ticker := time.NewTicker(cfg.LockSweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			_, _ = editlockSvc.ProcessExpiredLocks(context.Background(), 100)
		}
	}()

	go func() {
		ticker := time.NewTicker(cfg.SessionSweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			_, _ = authSvc.ProcessExpiredSessions(context.Background())
		}
	}()

	go func() {
		ticker := time.NewTicker(cfg.NotificationSendInterval)
		defer ticker.Stop()
		for range ticker.C {
			_, _ = notificationSvc.ProcessPending(context.Background(), 50)
			_, _ = notificationSvc.ProcessRetryable(context.Background(), 50)
		}
	}()

	go func() {
		ticker := time.NewTicker(cfg.NotificationExpireEvery)
		defer ticker.Stop()
		for range ticker.C {
			_, _ = notificationSvc.ExpireNotifications(context.Background())
		}
	}()

	// start server
	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
}

func loadHexKey(hexStr string) []byte {
	if hexStr == "" {
		return nil
	}
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil
	}
	return b
}
