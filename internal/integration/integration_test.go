package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"drivetest-quiz/internal/app"
	"drivetest-quiz/internal/domain"
	"drivetest-quiz/internal/infra/file"
	"drivetest-quiz/internal/infra/postgres"
	infraredis "drivetest-quiz/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := postgres.OpenDB(pgURL)
	defer db.Close()
	if _, err := postgres.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	bundled, err := file.NewQuestionLoader("../../data/questions.json").LoadQuestions(ctx)
	if err != nil {
		t.Fatalf("load bundled questions: %v", err)
	}
	seeded, err := postgres.SeedQuestions(ctx, db, bundled)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if seeded != len(bundled) {
		t.Fatalf("expected %d seeded, got %d", len(bundled), seeded)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	questions := infraredis.NewQuestionRepository(redisClient, postgres.NewQuestionLoader(pool), 5*time.Minute)
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	service := app.NewQuizService(questions, sessions, postgres.NewKVStore(db))

	session, err := service.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	want := app.QuizLength
	if len(bundled) < want {
		want = len(bundled)
	}
	if len(session.Questions) != want {
		t.Fatalf("expected %d questions, got %d", want, len(session.Questions))
	}

	// answer every question correctly, walking forward
	for i, q := range session.Questions {
		if _, err := service.SelectAnswer(ctx, session.ID, q.CorrectAnswer); err != nil {
			t.Fatalf("select %d: %v", i, err)
		}
		if _, err := service.Next(ctx, session.ID); err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
	}

	results, err := service.Submit(ctx, session.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if results.Score != 100 || results.IncorrectAnswers != 0 {
		t.Fatalf("expected perfect score, got %+v", results)
	}

	stored, err := service.LatestResults(ctx)
	if err != nil {
		t.Fatalf("latest results: %v", err)
	}
	if stored.Score != 100 || len(stored.UserAnswers) != want {
		t.Fatalf("unexpected stored results %+v", stored)
	}
	if _, err := sessions.Get(ctx, session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected submitted session dropped, got %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
