package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/crossroads/broadcast"
	"github.com/danielhkuo/crossroads/chat"
	"github.com/danielhkuo/crossroads/cliparse"
	"github.com/danielhkuo/crossroads/db"
	"github.com/danielhkuo/crossroads/middleware"
	"github.com/danielhkuo/crossroads/outcomes"
	"github.com/danielhkuo/crossroads/poll"
	"github.com/danielhkuo/crossroads/router"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the outcome store
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("outcome store unavailable", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer closeStore()
	slog.Info("Outcome store ready", "type", cfg.DatabaseType)

	if cfg.SeedFile != "" {
		seed, err := outcomes.LoadSeedFile(ctx, store, cfg.SeedFile)
		if err != nil {
			slog.Error("seed load failed", "file", cfg.SeedFile, "error", err)
			os.Exit(1)
		}
		slog.Info("Outcomes seeded", "file", cfg.SeedFile, "count", len(seed.Outcomes), "seed_current", seed.Current)
	}

	hub := broadcast.NewHub()
	engine := poll.NewEngine(store, hub, poll.WithDefaultDuration(cfg.DefaultPollDuration))

	// Chat votes
	if cfg.TwitchChannel != "" {
		source := chat.NewTwitchSource(cfg.TwitchChannel, cfg.TwitchUsername, cfg.TwitchOAuthToken)
		go func() {
			if err := source.Run(ctx); err != nil {
				slog.Error("chat source stopped", "channel", cfg.TwitchChannel, "error", err)
			}
		}()
		go chat.NewAdapter(engine).Run(ctx, source.Messages())
	} else {
		slog.Warn("TWITCH_CHANNEL not set, chat voting disabled")
	}

	limiter := middleware.NewRateLimiter(cfg.CommandRateLimit)
	go limiter.RunCleanup(ctx, time.Minute, 3*time.Minute)

	// Create router
	mux := router.NewRouter(router.Deps{
		Engine:  engine,
		Store:   store,
		Hub:     hub,
		Limiter: limiter,
		Config:  cfg,
	})

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		slog.Info("Shutting down")
		cancel()
		engine.Close()
		hub.Close()

		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		server.Shutdown(shutdownCtx)
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// openStore connects the configured backend and returns it with its
// cleanup func
func openStore(ctx context.Context, cfg cliparse.Config) (outcomes.Store, func(), error) {
	switch cfg.DatabaseType {
	case cliparse.DatabaseMemory:
		return outcomes.NewMemoryStore(), func() {}, nil

	case cliparse.DatabaseRedis:
		store, err := outcomes.OpenRedis(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil

	case cliparse.DatabasePostgres, cliparse.DatabaseSQLite:
		dbConn, err := sql.Open(cfg.DatabaseType, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("database connection failed: %w", err)
		}
		if err := dbConn.PingContext(ctx); err != nil {
			dbConn.Close()
			return nil, nil, fmt.Errorf("database ping failed: %w", err)
		}
		if err := db.CreateSchema(dbConn); err != nil {
			dbConn.Close()
			return nil, nil, fmt.Errorf("schema creation failed: %w", err)
		}
		store, err := outcomes.NewSQLStore(dbConn, cfg.DatabaseType)
		if err != nil {
			dbConn.Close()
			return nil, nil, err
		}
		return store, func() { dbConn.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown database type %q", cfg.DatabaseType)
}
