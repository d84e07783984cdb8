// Command lovary-server starts the couple diary HTTP API and its gRPC health listener.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/and161185/lovary/internal/config"
	"github.com/and161185/lovary/internal/diary"
	"github.com/and161185/lovary/internal/limiter"
	"github.com/and161185/lovary/internal/migrate"
	"github.com/and161185/lovary/internal/notify"
	"github.com/and161185/lovary/internal/repository/postgres"
	grpcserver "github.com/and161185/lovary/internal/server/grpc"
	httpserver "github.com/and161185/lovary/internal/server/http"
	"github.com/and161185/lovary/internal/service"
	"github.com/and161185/lovary/internal/storage"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const (
	healthInterval  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	logger, _ := zap.NewProduction()
	if cfg.Dev {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.HTTPAddr),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DSN, logger); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		logger.Fatal("pgxpool.New", zap.Error(err))
	}
	db := &postgres.DB{Pool: pool}
	defer db.Close()

	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("photo storage", zap.Error(err))
	}

	// Repositories
	userRepo := postgres.NewUserRepo(db)
	entryRepo := postgres.NewEntryRepo(db)
	requestRepo := postgres.NewPartnerRequestRepo(db)
	annivRepo := postgres.NewAnniversaryRepo(db)
	photoRepo := postgres.NewMonthlyPhotoRepo(db)

	var lim limiter.Limiter = limiter.Nop{}
	if cfg.LimiterEnabled() {
		lim = limiter.NewPG(pool, limiter.Settings{
			Window:   cfg.Login.Window,
			MaxFails: cfg.Login.MaxFails,
			BlockFor: cfg.Login.BlockFor,
		})
	} else {
		logger.Warn("login limiter disabled")
	}
	notifier := notify.New(notify.VAPID{
		PublicKey:  cfg.VAPID.PublicKey,
		PrivateKey: cfg.VAPID.PrivateKey,
		Subject:    cfg.VAPID.Subject,
	}, logger)

	// Services
	svc := httpserver.Services{
		Auth:          service.NewAuthService(userRepo, []byte(cfg.JWTKey), cfg.AccessTTL, lim, logger),
		Users:         service.NewUserService(userRepo),
		Pairing:       service.NewPairingService(userRepo, requestRepo),
		Diary:         service.NewDiaryService(entryRepo, userRepo, store, notifier, diary.SystemClock, logger),
		Anniversaries: service.NewAnniversaryService(userRepo, annivRepo),
		Photos:        service.NewPhotoService(userRepo, photoRepo, store, logger),
	}

	api := httpserver.New(svc, httpserver.Options{
		CORSOrigins:       cfg.CORSOrigins,
		UploadDir:         cfg.Storage.UploadDir,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
	}, logger)
	httpSrv := api.HTTPServer(cfg.HTTPAddr)

	errCh := make(chan error, 2)
	go func() {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()

	// Health & reflection (dev)
	hctx, hcancel := context.WithCancel(ctx)
	defer hcancel()
	health := grpcserver.NewHealth(db, healthInterval, logger)
	go health.Run(hctx)

	var gs interface {
		GracefulStop()
		Stop()
	}
	if cfg.HealthAddr != "" {
		lis, err := net.Listen("tcp", cfg.HealthAddr)
		if err != nil {
			logger.Fatal("listen", zap.String("addr", cfg.HealthAddr), zap.Error(err))
		}
		s := grpcserver.NewServer(health, cfg.Dev, logger)
		gs = s
		go func() {
			logger.Info("grpc health listening", zap.String("addr", cfg.HealthAddr))
			if err := s.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc: %w", err)
			}
		}()
	}

	// Wait for stop
	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		stop()
	}

	hcancel()
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(sctx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if gs != nil {
		done := make(chan struct{})
		go func() {
			gs.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-sctx.Done():
			gs.Stop()
		}
	}

	logger.Info("shutdown complete")
}

// newStore returns local disk storage, fronted by S3 when a bucket is configured.
func newStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.Store, error) {
	local, err := storage.NewLocal(cfg.Storage.UploadDir, cfg.Storage.PublicURL)
	if err != nil {
		return nil, err
	}
	s3cfg := cfg.Storage.S3
	if s3cfg.Bucket == "" {
		return local, nil
	}
	remote, err := storage.NewS3(ctx, storage.S3Config{
		Bucket:     s3cfg.Bucket,
		Region:     s3cfg.Region,
		Endpoint:   s3cfg.Endpoint,
		AccessKey:  s3cfg.AccessKey,
		SecretKey:  s3cfg.SecretKey,
		PublicURL:  s3cfg.PublicURL,
		PresignTTL: s3cfg.PresignTTL,
	})
	if err != nil {
		return nil, err
	}
	log.Info("photo storage", zap.String("bucket", s3cfg.Bucket), zap.String("fallback", cfg.Storage.UploadDir))
	return &storage.Fallback{Primary: remote, Secondary: local, Log: log}, nil
}
