package results

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/searchroi/search-roi/internal/pkg/errors"
)

// RedisStore provides Redis-backed run persistence. Run records live under a
// key per run; a sorted set scored by start time keeps the listing order.
type RedisStore struct {
	client *redis.Client
	prefix string
}

const redisIndexKey = "runs"

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.StorageError("parsing redis URL", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.StorageError("connecting to redis", err)
	}

	return &RedisStore{
		client: client,
		prefix: "roi:run:",
	}, nil
}

func (rs *RedisStore) runKey(id string) string {
	return rs.prefix + id
}

func (rs *RedisStore) SaveRun(ctx context.Context, record *RunRecord) error {
	if record.ID == "" {
		return errors.ValidationError("run ID cannot be empty")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return errors.StorageError("failed to marshal run", err)
	}

	pipe := rs.client.Pipeline()
	pipe.Set(ctx, rs.runKey(record.ID), data, 0)
	pipe.ZAdd(ctx, rs.prefix+redisIndexKey, redis.Z{
		Score:  float64(record.StartedAt.Unix()),
		Member: record.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.StorageError("saving run", err)
	}

	return nil
}

func (rs *RedisStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	data, err := rs.client.Get(ctx, rs.runKey(id)).Bytes()
	if err == redis.Nil {
		return nil, errors.NotFoundError("run " + id)
	}
	if err != nil {
		return nil, errors.StorageError("loading run", err)
	}

	var record RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.StorageError("failed to unmarshal run", err)
	}

	return &record, nil
}

func (rs *RedisStore) ListRuns(ctx context.Context) ([]Summary, error) {
	ids, err := rs.client.ZRevRange(ctx, rs.prefix+redisIndexKey, 0, -1).Result()
	if err != nil {
		return nil, errors.StorageError("listing runs", err)
	}

	summaries := make([]Summary, 0, len(ids))
	for _, id := range ids {
		record, err := rs.GetRun(ctx, id)
		if err != nil {
			// Index entry with no record; skip
			continue
		}
		summaries = append(summaries, record.Summarize())
	}
	return summaries, nil
}

func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
