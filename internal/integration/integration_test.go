package integration

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"quiz-authoring-service/internal/app"
	"quiz-authoring-service/internal/domain"
	"quiz-authoring-service/internal/infra/memory"
	pgstore "quiz-authoring-service/internal/infra/postgres"
	pgmigrations "quiz-authoring-service/internal/infra/postgres/migrations"
	infraredis "quiz-authoring-service/internal/infra/redis"
)

func TestPostgresStoreEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	if _, err := pgmigrations.Apply(ctx, pgURL); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	store := memory.NewCachedStore(pgstore.NewQuizStore(pool), time.Minute)
	exerciseService(t, ctx, app.NewQuizService(store))
}

func TestRedisStoreEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("redis url: %v", err)
	}
	client := goredis.NewClient(opts)
	defer client.Close()

	exerciseService(t, ctx, app.NewQuizService(infraredis.NewQuizStore(client)))
}

func exerciseService(t *testing.T, ctx context.Context, service *app.QuizService) {
	t.Helper()

	created, err := service.Create(ctx, sampleInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	found, err := service.FindOne(ctx, created.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !reflect.DeepEqual(created, found) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", found, created)
	}

	name := "Renamed"
	renamed, err := service.Update(ctx, created.ID, domain.QuizPatch{Name: &name})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if !reflect.DeepEqual(renamed.Questions, created.Questions) {
		t.Fatalf("expected questions kept on rename")
	}

	replacement := []domain.QuestionInput{sampleInput().Questions[1]}
	replaced, err := service.Update(ctx, created.ID, domain.QuizPatch{Questions: &replacement})
	if err != nil {
		t.Fatalf("replace questions: %v", err)
	}
	stored, err := service.FindOne(ctx, created.ID)
	if err != nil {
		t.Fatalf("find after replace: %v", err)
	}
	if len(stored.Questions) != 1 || !reflect.DeepEqual(stored, replaced) {
		t.Fatalf("expected single replaced question, got %+v", stored)
	}

	all, err := service.FindAll(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("expected one quiz listed, got %d (%v)", len(all), err)
	}

	if err := service.Remove(ctx, created.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := service.FindOne(ctx, created.ID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found after remove, got %v", err)
	}
	if err := service.Remove(ctx, created.ID); !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("expected bad request on second remove, got %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
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

func sampleInput() domain.QuizInput {
	return domain.QuizInput{
		Name: "Arithmetic",
		Questions: []domain.QuestionInput{
			{
				Statement: "What is 2 + 2?",
				Answers: []domain.AnswerInput{
					{Statement: "3"}, {Statement: "4", IsCorrect: true}, {Statement: "5"}, {Statement: "22"},
				},
			},
			{
				Statement: "What is 3 * 3?",
				Answers: []domain.AnswerInput{
					{Statement: "9", IsCorrect: true}, {Statement: "6"}, {Statement: "33"}, {Statement: "0"},
				},
			},
		},
	}
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
