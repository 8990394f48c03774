package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/analytica/backend/internal/client"
	"github.com/analytica/backend/internal/config"
	"github.com/analytica/backend/internal/db"
	"github.com/analytica/backend/internal/handler"
	"github.com/analytica/backend/internal/service"
	"github.com/analytica/backend/internal/storage"
)

func main() {
	// .env 파일이 없으면 환경변수만 사용
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := newLogger(cfg.Server.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg.Level = lvl
	return zcfg.Build()
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	// DB 연결 + 스키마 마이그레이션
	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()

	pg := db.NewPostgres(pool)
	if err := pg.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	blobs, err := newBlobStore(ctx, cfg.Storage, pg)
	if err != nil {
		return err
	}

	authService, err := service.NewAuthService(pg, pg, cfg.Auth, logger.Named("auth"))
	if err != nil {
		return err
	}
	if cfg.Auth.AdminUsername != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	purgeInterval, err := time.ParseDuration(cfg.Auth.RevocationPurgeInterval)
	if err != nil {
		return fmt.Errorf("%w: invalid REVOCATION_PURGE_INTERVAL", service.ErrMisconfigured)
	}
	go service.NewRevocationPurger(authService, purgeInterval, logger.Named("purger")).Run(ctx)

	rateLimit, err := strconv.Atoi(cfg.Auth.RateLimitPerMinute)
	if err != nil {
		return fmt.Errorf("%w: invalid AUTH_RATE_LIMIT_PER_MINUTE", service.ErrMisconfigured)
	}
	maxUpload, err := strconv.ParseInt(cfg.Server.MaxUploadBytes, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid MAX_UPLOAD_BYTES", service.ErrMisconfigured)
	}

	router := handler.NewRouter(handler.RouterDeps{
		Logger:             logger.Named("http"),
		Auth:               authService,
		Images:             service.NewImageService(pg, blobs, logger.Named("image")),
		Tabular:            service.NewTabularService(pg, blobs, logger.Named("tabular")),
		Texts:              newTextService(ctx, cfg, pg, logger),
		DB:                 pg,
		AllowedOrigins:     cfg.Server.AllowedOrigins,
		RateLimitPerMinute: rateLimit,
		MaxUploadBytes:     maxUpload,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newBlobStore(ctx context.Context, cfg config.StorageConfig, pg *db.Postgres) (storage.BlobStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "postgres":
		return db.NewBlobStore(pg), nil
	case "s3":
		return storage.NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: unknown BLOB_BACKEND %q", service.ErrMisconfigured, cfg.Backend)
	}
}

// AI_API_KEY / AGENT_URL이 없으면 해당 기능은 503으로 응답
func newTextService(ctx context.Context, cfg config.Config, pg *db.Postgres, logger *zap.Logger) *service.TextService {
	var (
		embedder  service.EmbeddingClient
		analyzer  service.TextAnalyzer
		projector service.Projector
	)

	if cfg.AI.APIKey != "" {
		ai, err := client.NewGenAIClient(ctx, cfg.AI)
		if err != nil {
			logger.Warn("genai client disabled", zap.Error(err))
		} else {
			embedder, analyzer = ai, ai
		}
	}
	if agent := client.NewAgentClient(cfg.Agent); agent != nil {
		projector = agent
	}

	return service.NewTextService(pg, embedder, analyzer, projector, logger.Named("text"))
}
