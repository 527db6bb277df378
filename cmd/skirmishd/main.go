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

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/skirmish/internal/config"
	"github.com/udisondev/skirmish/internal/data"
	"github.com/udisondev/skirmish/internal/db"
	"github.com/udisondev/skirmish/internal/game/sim"
	"github.com/udisondev/skirmish/internal/netsync"
)

const ConfigPath = "config/skirmish.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("SKIRMISH_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("skirmish server starting",
		"addr", cfg.Addr(),
		"tick_rate", cfg.TickRate,
		"rule_set_source", cfg.RuleSetSource,
		"log_level", cfg.LogLevel)

	store, memory, closeDB, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	// Fail fast: the default class must resolve before anyone joins.
	if _, err := store.Load(ctx, cfg.DefaultClass); err != nil {
		return fmt.Errorf("loading default class %q: %w", cfg.DefaultClass, err)
	}

	inbox := make(chan netsync.Inbound, cfg.RequestQueueSize)
	game := sim.New(sim.Config{
		CascadeCap:      cfg.CascadeCap,
		Invulnerability: cfg.InvulnerabilitySec,
		DefaultClass:    cfg.DefaultClass,
		ActorRadius:     sim.DefaultConfig().ActorRadius,
		Friction:        sim.DefaultConfig().Friction,
	}, store, inbox)
	if memory != nil {
		game.SetClassMemory(memory)
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", netsync.NewHandler(inbox, netsync.HandlerConfig{
		WriteTimeout:  cfg.WriteTimeout,
		ReadTimeout:   cfg.ReadTimeout,
		SendQueueSize: cfg.RequestQueueSize,
	}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting simulation", "interval", cfg.TickInterval())
		if err := game.Run(gctx, cfg.TickInterval()); err != nil {
			return fmt.Errorf("simulation: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("starting websocket server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("websocket server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down websocket server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// openStore builds the rule-set store for the configured source.
// memory is nil unless postgres is used.
func openStore(ctx context.Context, cfg config.Server) (store data.Store, memory sim.ClassMemory, closeFn func(), err error) {
	closeFn = func() {}

	switch cfg.RuleSetSource {
	case config.SourceEmbedded:
		store = data.NewDirStore(data.DefaultRuleSets())
	case config.SourceDir:
		store = data.NewDirStore(os.DirFS(cfg.RuleSetDir))
	case config.SourcePostgres:
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, closeFn, fmt.Errorf("connecting to database: %w", err)
		}
		closeFn = database.Close
		slog.Info("database connected")

		version, err := db.RunMigrations(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, closeFn, fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied", "version", version)

		repo := db.NewRuleSetRepository(database.Pool())
		if cfg.SeedRuleSets {
			sets, err := data.NewDirStore(data.DefaultRuleSets()).LoadAll(ctx)
			if err != nil {
				return nil, nil, closeFn, fmt.Errorf("loading embedded rule sets: %w", err)
			}
			if err := repo.Seed(ctx, sets); err != nil {
				return nil, nil, closeFn, fmt.Errorf("seeding rule sets: %w", err)
			}
		}
		store = repo
		memory = db.NewClassRepository(database.Pool())
	default:
		return nil, nil, closeFn, fmt.Errorf("unknown rule set source %q", cfg.RuleSetSource)
	}

	return data.NewCachedStore(store), memory, closeFn, nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
