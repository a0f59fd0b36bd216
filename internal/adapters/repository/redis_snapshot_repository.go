package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kamal-hamza/pxo/internal/core/domain"
	"github.com/kamal-hamza/pxo/internal/core/ports"
)

const scanBatch = 100

// RedisSnapshotRepository stores snapshots as plain string values under
// domain.StorageKey(page), the same key shape the extension used
type RedisSnapshotRepository struct {
	rdb goredis.Cmdable
}

// NewRedisSnapshotRepository creates a snapshot store over rdb
func NewRedisSnapshotRepository(rdb goredis.Cmdable) *RedisSnapshotRepository {
	return &RedisSnapshotRepository{rdb: rdb}
}

// NewRedisClient creates a client from a URL (e.g., "redis://localhost:6379/0")
// and verifies the connection
func NewRedisClient(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

var _ ports.SnapshotStore = (*RedisSnapshotRepository)(nil)

func (r *RedisSnapshotRepository) Put(ctx context.Context, key string, data []byte) error {
	if err := r.rdb.Set(ctx, domain.StorageKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}
	return nil
}

func (r *RedisSnapshotRepository) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.rdb.Get(ctx, domain.StorageKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSnapshotNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET failed: %w", err)
	}
	return data, nil
}

func (r *RedisSnapshotRepository) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, domain.StorageKey(key)).Err(); err != nil {
		return fmt.Errorf("redis DEL failed: %w", err)
	}
	return nil
}

// Keys walks the keyspace with SCAN rather than KEYS so a large shared
// instance is not blocked
func (r *RedisSnapshotRepository) Keys(ctx context.Context) ([]string, error) {
	var (
		cursor uint64
		keys   []string
	)
	pattern := domain.StorageKeyPrefix + "*"

	for {
		batch, next, err := r.rdb.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("redis SCAN failed: %w", err)
		}
		for _, k := range batch {
			keys = append(keys, strings.TrimPrefix(k, domain.StorageKeyPrefix))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	sort.Strings(keys)
	return dedupe(keys), nil
}

// dedupe drops repeats from a sorted slice; SCAN may return a key twice
func dedupe(sorted []string) []string {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, k := range sorted[1:] {
		if k != out[len(out)-1] {
			out = append(out, k)
		}
	}
	return out
}
