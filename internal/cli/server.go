package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drivetest-quiz/internal/app"
	"drivetest-quiz/internal/config"
	"drivetest-quiz/internal/domain"
	"drivetest-quiz/internal/infra/file"
	"drivetest-quiz/internal/infra/memory"
	"drivetest-quiz/internal/infra/postgres"
	redisstore "drivetest-quiz/internal/infra/redis"
	"drivetest-quiz/internal/logger"
	transport "drivetest-quiz/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			return runServer(cmd.Context(), cfg, log, *port)
		},
	}
}

func loadConfig(path string) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}

func runServer(ctx context.Context, cfg config.Config, log *zap.Logger, portFlag string) error {
	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.QuestionLoader = file.NewQuestionLoader(cfg.Quiz.QuestionsPath)
	if pool != nil {
		loader = postgres.NewQuestionLoader(pool)
	}

	poolTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var questions app.QuestionRepository
	if redisClient != nil {
		questions = redisstore.NewQuestionRepository(redisClient, loader, poolTTL)
	} else {
		questions = memory.NewQuestionRepository(loader, poolTTL)
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redisstore.NewSessionStore(redisClient, sessionTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	var results app.KeyValueStore
	switch cfg.Results.Backend {
	case config.BackendRedis:
		results = redisstore.NewKVStore(redisClient)
	case config.BackendPostgres:
		db := postgres.OpenDB(cfg.Postgres.URL)
		defer db.Close()
		results = postgres.NewKVStore(db)
	default:
		results = memory.NewKVStore()
	}

	// fail fast on a broken question source instead of on the first connection
	if err := checkQuestionSource(ctx, questions); err != nil {
		return err
	}

	service := app.NewQuizService(questions, sessions, results, app.WithLogger(log))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", transport.NewWSHandler(service, log).ServeWS)
	mux.Handle("/results", transport.NewResultsHandler(service, log))

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz service",
			zap.String("addr", server.Addr),
			zap.String("results_backend", cfg.Results.Backend),
			zap.Bool("redis", redisClient != nil),
			zap.Bool("postgres", pool != nil),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func checkQuestionSource(ctx context.Context, questions app.QuestionRepository) error {
	pool, err := questions.GetQuestions(ctx)
	if err != nil {
		return fmt.Errorf("load question pool: %w", err)
	}
	if len(pool) == 0 {
		return domain.ErrEmptyPool
	}
	return nil
}
