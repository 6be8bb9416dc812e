package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"quiz-authoring-service/internal/app"
	"quiz-authoring-service/internal/config"
	"quiz-authoring-service/internal/infra/memory"
	pgstore "quiz-authoring-service/internal/infra/postgres"
	redisstore "quiz-authoring-service/internal/infra/redis"
	"quiz-authoring-service/internal/logger"
	transport "quiz-authoring-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz authoring server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, found, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()
	if !found {
		log.Warn("config file not found, using defaults", "path", configPath)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	seedStore(ctx, store, cfg.Store.SeedPath, log)

	feed := app.NewChangeFeed()
	service := app.NewQuizService(store, app.WithChangeFeed(feed), app.WithLogger(log))

	if cfg.Log.Mode == "prod" || cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := transport.NewRouter(
		transport.NewQuizHandler(service, log),
		transport.NewWSHandler(feed, log),
		log,
	)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting quiz authoring service", "port", finalPort, "backend", cfg.Store.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore builds the configured backend. The returned func releases its connections.
func openStore(ctx context.Context, cfg config.Config, log *logger.Logger) (app.QuizStore, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return redisstore.NewQuizStore(client), func() { _ = client.Close() }, nil

	case config.BackendPostgres:
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		ttl := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
		return memory.NewCachedStore(pgstore.NewQuizStore(pool), ttl), pool.Close, nil

	default:
		return memory.NewQuizStore(), func() {}, nil
	}
}

// seedStore loads the snapshot file into an empty store. A missing or
// unreadable snapshot is logged and leaves the store as it was.
func seedStore(ctx context.Context, store app.QuizStore, path string, log *logger.Logger) {
	if path == "" {
		return
	}
	existing, err := store.List(ctx)
	if err != nil {
		log.Warn("quiz seed skipped, store not readable", "error", err)
		return
	}
	if len(existing) > 0 {
		log.Info("quiz seed skipped, store already populated", "quizzes", len(existing))
		return
	}
	quizzes, err := memory.LoadSeedFile(path)
	if err != nil {
		log.Warn("quiz seed not loaded", "path", path, "error", err)
		return
	}
	report, err := app.Seed(ctx, store, quizzes, log)
	if err != nil {
		log.Error("quiz seed interrupted", "path", path, "loaded", report.Loaded, "error", err)
		return
	}
	log.Info("quiz seed loaded", "path", path, "loaded", report.Loaded, "skipped", report.Skipped)
}
