package suite

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-link/internal/repository/storage"
)

const (
	containerTTL = 120
	maxWait      = 120 * time.Second
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "alpine"
)

// Suite is a test harness backed by a throwaway Redis container.
type Suite struct {
	*testing.T
	Logger *slog.Logger

	// Storage is the client shared by the test; NewClient opens extra ones.
	Storage *redis.Client

	ctx       context.Context
	redisAddr string
}

func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), maxWait)
	t.Cleanup(cancel)

	that := &Suite{
		T:         t,
		Logger:    slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn})),
		ctx:       ctx,
		redisAddr: startRedis(t),
	}
	that.Storage = that.NewClient()

	return ctx, that
}

// NewClient - opens another connection to the suite's Redis, closed on cleanup.
func (that *Suite) NewClient() *redis.Client {
	that.Helper()

	client, err := storage.New(that.ctx, that.redisAddr)
	if err != nil {
		that.Fatalf("could not connect to redis at %s: %v", that.redisAddr, err)
	}

	that.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

// startRedis - runs a Redis container and waits until it answers. Returns its host:port.
func startRedis(t *testing.T) string {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("could not connect to docker: %v", err)
	}
	pool.MaxWait = maxWait

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start redis container: %v", err)
	}

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Errorf("could not purge redis container: %v", err)
		}
	})

	// hard kill in case the cleanup never runs
	_ = resource.Expire(containerTTL)

	addr := resource.GetHostPort(redisPort)
	if err = pool.Retry(func() error {
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()

		return client.Ping(context.Background()).Err()
	}); err != nil {
		t.Fatalf("redis at %s never became ready: %v", addr, err)
	}

	return addr
}
