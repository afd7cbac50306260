package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ducali/ducali-api/config"
	"github.com/ducali/ducali-api/logger"
	"github.com/ducali/ducali-api/middleware"
	"github.com/ducali/ducali-api/routes"
	"github.com/ducali/ducali-api/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.Init(cfg.LogLevel, cfg.GoEnv)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	log := logger.L()
	log.Info("starting Ducali API server", zap.String("env", cfg.GoEnv))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := config.ConnectDatabase(cfg); err != nil {
		return err
	}
	if err := config.Migrate(config.GetDB()); err != nil {
		return err
	}
	log.Info("database migration completed successfully")

	notifier, err := services.InitNotifier(cfg, config.GetDB())
	if err != nil {
		return err
	}
	defer func() {
		if err := notifier.Close(); err != nil {
			log.Warn("failed to close notifier", zap.Error(err))
		}
	}()

	if cfg.S3Enabled() {
		s3Service, err := services.InitS3Service(context.Background(), cfg)
		if err != nil {
			return err
		}
		services.InitImageService(s3Service)
	} else {
		log.Warn("AWS_S3_BUCKET not set, portfolio image URLs are disabled")
	}

	auth, err := middleware.EnsureValidToken(cfg)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.Setup(cfg, auth),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server is running", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
