// Command flashcards-server serves the flashcards web application.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/and161185/flashcards/internal/config"
	"github.com/and161185/flashcards/internal/identity"
	"github.com/and161185/flashcards/internal/migrate"
	"github.com/and161185/flashcards/internal/pagecache"
	"github.com/and161185/flashcards/internal/repository/postgres"
	httpserver "github.com/and161185/flashcards/internal/server/http"
	"github.com/and161185/flashcards/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations, and serves HTTP until SIGINT/SIGTERM.
func main() {
	config.LoadEnvFiles()
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
		zap.String("env", cfg.Env),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}
	if v, err := migrate.Version(ctx, cfg.DatabaseURL); err == nil {
		logger.Info("schema ready", zap.Int64("version", v))
	}

	// DB pool
	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("pgxpool.New", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	deckRepo := postgres.NewDeckRepo(db)
	cardRepo := postgres.NewCardRepo(db)

	pages, closeCache := newPageCache(ctx, cfg, logger)
	defer closeCache()

	// Services
	deckSvc := service.NewDeckService(deckRepo, cardRepo, pages, logger.Named("decks"))
	cardSvc := service.NewCardService(deckRepo, cardRepo, pages, logger.Named("cards"))

	app, err := httpserver.New(httpserver.Deps{
		Decks:     deckSvc,
		Cards:     cardSvc,
		Pages:     pages,
		Verifier:  identity.NewVerifier([]byte(cfg.SessionKey), cfg.SessionIssuer),
		Log:       logger.Named("http"),
		SignInURL: cfg.SignInURL,
		SignUpURL: cfg.SignUpURL,
		Ping:      db.Ping,
		APIRate:   cfg.APIRate,
		APIBurst:  cfg.APIBurst,
	})
	if err != nil {
		logger.Fatal("init http", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("forced shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}

func newLogger(cfg config.Config) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if cfg.Development() {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// newPageCache picks Redis when configured and reachable, the in-process store otherwise.
func newPageCache(ctx context.Context, cfg config.Config, logger *zap.Logger) (pagecache.Store, func()) {
	if cfg.RedisAddr == "" {
		return pagecache.NewMemory(cfg.CacheTTL), func() {}
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, using in-process page cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = client.Close()
		return pagecache.NewMemory(cfg.CacheTTL), func() {}
	}
	logger.Info("page cache: redis", zap.String("addr", cfg.RedisAddr))
	return pagecache.NewRedis(client, cfg.CacheTTL), func() { _ = client.Close() }
}
