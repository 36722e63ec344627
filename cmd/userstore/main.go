package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"example.com/user-admin/internal/config"
	domuser "example.com/user-admin/internal/domain/user"
	"example.com/user-admin/internal/infra/persistence/jsonfile"
	"example.com/user-admin/internal/infra/persistence/mysql"
	"example.com/user-admin/internal/infra/persistence/postgres"
	"example.com/user-admin/internal/infra/security"
	apihttp "example.com/user-admin/internal/interface/http"
	"example.com/user-admin/internal/logger"
	useruc "example.com/user-admin/internal/usecase/user"
)

func main() {
	cfg, err := config.LoadStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New("userstore", logger.ParseLevel(cfg.LogLevel), os.Stdout)
	log.Info("config loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("userstore stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.StoreConfig, log *slog.Logger) error {
	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	deps := apihttp.Dependencies{
		UserService: useruc.NewService(repo),
		Delay:       cfg.Delay,
		Logger:      log,
		Registry:    prometheus.NewRegistry(),
	}
	deps.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if cfg.JWTSecret != "" {
		deps.TokenService = security.NewJWTService(cfg.JWTSecret, time.Hour)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           apihttp.NewAPI(deps).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("user store listening", "addr", cfg.Addr, "driver", cfg.Driver, "delay", cfg.Delay.String())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func openRepository(ctx context.Context, cfg *config.StoreConfig) (domuser.Repository, func(), error) {
	openCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	switch cfg.Driver {
	case "mysql":
		db, err := mysql.Open(openCtx, cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		return mysql.NewUserRepository(db), func() { _ = db.Close() }, nil
	case "postgres":
		pool, err := postgres.Open(openCtx, cfg.PGDSN)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewUserRepository(pool), pool.Close, nil
	default:
		repo, err := jsonfile.Open(cfg.JSONPath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil
	}
}
