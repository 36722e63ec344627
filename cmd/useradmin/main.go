package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/term"

	"example.com/user-admin/internal/config"
	domuser "example.com/user-admin/internal/domain/user"
	rediscache "example.com/user-admin/internal/infra/cache/redis"
	"example.com/user-admin/internal/infra/persistence/sqlite"
	"example.com/user-admin/internal/infra/restclient"
	"example.com/user-admin/internal/infra/security"
	"example.com/user-admin/internal/interface/cli"
	"example.com/user-admin/internal/logger"
	"example.com/user-admin/internal/usecase/admin"
	"example.com/user-admin/internal/usecase/preference"
	"example.com/user-admin/internal/usecase/query"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadConsole()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	log := logger.New("useradmin", logger.ParseLevel(cfg.LogLevel), os.Stderr)
	log.Debug("config loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := []restclient.Option{restclient.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout})}
	if cfg.JWTSecret != "" {
		token, err := security.NewJWTService(cfg.JWTSecret, time.Hour).GenerateToken("useradmin", domuser.RoleAdmin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "token: %v\n", err)
			return 1
		}
		opts = append(opts, restclient.WithToken(token))
	}
	client, err := restclient.New(cfg.StoreURL, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "store client: %v\n", err)
		return 1
	}
	actions := admin.NewService(client, log)

	cache, closeCache := openCache(ctx, cfg, log)
	defer closeCache()

	prefStore, closePrefs := openPreferences(cfg, log)
	defer closePrefs()

	console := cli.NewConsole(cli.Dependencies{
		Actions:      actions,
		UserList:     query.NewUserList(cache, actions.ListUsers, log),
		Preferences:  preference.NewService(prefStore),
		In:           os.Stdin,
		Out:          os.Stdout,
		ErrOut:       os.Stderr,
		ShowProgress: term.IsTerminal(int(os.Stderr.Fd())),
		Logger:       log,
	})
	return console.Run(ctx, os.Args[1:])
}

// openCache prefers the shared Redis cache and falls back to a per-process one.
func openCache(ctx context.Context, cfg *config.ConsoleConfig, log *slog.Logger) (query.Cache, func()) {
	if cfg.RedisAddr == "" {
		return query.NewMemoryCache(cfg.CacheTTL), func() {}
	}
	c, err := rediscache.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
	if err != nil {
		log.Warn("redis cache unavailable, using memory cache", "addr", cfg.RedisAddr, "error", err)
		return query.NewMemoryCache(cfg.CacheTTL), func() {}
	}
	return c, func() { _ = c.Close() }
}

// openPreferences prefers the SQLite file and falls back to memory.
func openPreferences(cfg *config.ConsoleConfig, log *slog.Logger) (preference.Store, func()) {
	if cfg.PrefsPath == "" {
		return preference.NewMemoryStore(), func() {}
	}
	s, err := sqlite.Open(cfg.PrefsPath)
	if err != nil {
		log.Warn("preference file unavailable, sort will not persist", "path", cfg.PrefsPath, "error", err)
		return preference.NewMemoryStore(), func() {}
	}
	return s, func() { _ = s.Close() }
}
