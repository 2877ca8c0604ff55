package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fadilmartias/resume-analyzer/internal/config"
	"github.com/fadilmartias/resume-analyzer/internal/model"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when nothing is cached for the lookup.
var ErrMiss = errors.New("cache miss")

// ErrStale is returned by Set when the email was invalidated after the caller
// took its Version; nothing is written.
var ErrStale = errors.New("cache entry superseded")

// anyName is the hash field used for lookups that do not narrow by name. Named
// lookups are prefixed so a candidate called "*" cannot collide with it.
const (
	anyName    = "*"
	namePrefix = "n:"
)

// AnalysisCache is a read-through cache for the latest record per lookup.
// Callers take Version before reading the store and pass it to Set, so a read
// that raced with an Invalidate is never cached.
type AnalysisCache interface {
	Get(ctx context.Context, email, name string) (*model.AnalysisRecord, error)
	Version(ctx context.Context, email string) (int64, error)
	Set(ctx context.Context, email, name string, version int64, record *model.AnalysisRecord) error
	Invalidate(ctx context.Context, email string) error
}

// RedisAnalysisCache keeps one hash per email; each field is a lookup (any name
// or one name) holding the latest record for it. A per-email generation counter
// is bumped on every invalidation.
type RedisAnalysisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAnalysisCache(client *redis.Client, ttl time.Duration) *RedisAnalysisCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisAnalysisCache{client: client, ttl: ttl}
}

func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func latestKey(email string) string {
	return "analysis:latest:" + model.NormalizeEmail(email)
}

func generationKey(email string) string {
	return "analysis:gen:" + model.NormalizeEmail(email)
}

func field(name string) string {
	if name == "" {
		return anyName
	}
	return namePrefix + name
}

func (c *RedisAnalysisCache) Get(ctx context.Context, email, name string) (*model.AnalysisRecord, error) {
	raw, err := c.client.HGet(ctx, latestKey(email), field(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	var record model.AnalysisRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decoding cached record: %w", err)
	}
	return &record, nil
}

func (c *RedisAnalysisCache) Version(ctx context.Context, email string) (int64, error) {
	return generation(ctx, c.client, generationKey(email))
}

func generation(ctx context.Context, cmd redis.StringCmdable, key string) (int64, error) {
	v, err := cmd.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Set stores record only if the email's generation still equals version.
func (c *RedisAnalysisCache) Set(ctx context.Context, email, name string, version int64, record *model.AnalysisRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	key, genKey := latestKey(email), generationKey(email)

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := generation(ctx, tx, genKey)
		if err != nil {
			return err
		}
		if current != version {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, field(name), raw)
			pipe.Expire(ctx, key, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrStale
	}
	return err
}

// Invalidate bumps the generation and drops every cached lookup for email.
func (c *RedisAnalysisCache) Invalidate(ctx context.Context, email string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(email))
		pipe.Del(ctx, latestKey(email))
		return nil
	})
	return err
}

// NopAnalysisCache always misses. Used when Redis is not configured.
type NopAnalysisCache struct{}

func (NopAnalysisCache) Get(context.Context, string, string) (*model.AnalysisRecord, error) {
	return nil, ErrMiss
}

func (NopAnalysisCache) Version(context.Context, string) (int64, error) {
	return 0, nil
}

func (NopAnalysisCache) Set(context.Context, string, string, int64, *model.AnalysisRecord) error {
	return nil
}

func (NopAnalysisCache) Invalidate(context.Context, string) error {
	return nil
}
