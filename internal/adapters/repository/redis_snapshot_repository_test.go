package repository

import (
	"context"
	"errors"
	"os"
	"testing"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kamal-hamza/pxo/internal/core/domain"
)

// setupTestRedis connects to PXO_TEST_REDIS_URL and flushes it
func setupTestRedis(t *testing.T) *goredis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	redisURL := os.Getenv("PXO_TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("PXO_TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	client, err := NewRedisClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to create redis client: %v", err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("failed to flush redis: %v", err)
	}

	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestRedisSnapshotRepository_RoundTrip(t *testing.T) {
	client := setupTestRedis(t)
	repo := NewRedisSnapshotRepository(client)
	ctx := context.Background()

	if err := repo.Put(ctx, "example.com/", []byte(`{"overlays":[]}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	raw, err := client.Get(ctx, "pixelOverlayState_example.com/").Result()
	if err != nil || raw != `{"overlays":[]}` {
		t.Errorf("stored value = %q, %v; want the extension key layout", raw, err)
	}

	data, err := repo.Get(ctx, "example.com/")
	if err != nil || string(data) != `{"overlays":[]}` {
		t.Errorf("Get = %s, %v", data, err)
	}
}

func TestRedisSnapshotRepository_Missing(t *testing.T) {
	repo := NewRedisSnapshotRepository(setupTestRedis(t))

	_, err := repo.Get(context.Background(), "nope.com/")
	if !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Errorf("error = %v, want ErrSnapshotNotFound", err)
	}
}

func TestRedisSnapshotRepository_KeysAndDelete(t *testing.T) {
	client := setupTestRedis(t)
	repo := NewRedisSnapshotRepository(client)
	ctx := context.Background()

	client.Set(ctx, "unrelated", "x", 0)
	for _, key := range []string{"b.com/", "a.com/"} {
		if err := repo.Put(ctx, key, []byte("{}")); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := repo.Keys(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0] != "a.com/" || keys[1] != "b.com/" {
		t.Errorf("Keys = %v", keys)
	}

	if err := repo.Delete(ctx, "a.com/"); err != nil {
		t.Fatal(err)
	}
	keys, _ = repo.Keys(ctx)
	if len(keys) != 1 {
		t.Errorf("Keys after delete = %v", keys)
	}
}

func TestDedupe(t *testing.T) {
	got := dedupe([]string{"a", "a", "b", "c", "c"})
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("dedupe = %v", got)
	}
}
