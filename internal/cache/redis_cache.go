package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// InvalidationChannel carries the path of every invalidation
const InvalidationChannel = "invalidate"

// redisClient implements Client using Redis.
// Each path has a generation counter. Entries are keyed by the generation a
// reader saw when it missed, so bumping it orphans every older entry, including
// ones written late by readers that raced the bump, until the TTL reclaims them.
type redisClient struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL       string
	KeyPrefix string
	TTL       time.Duration
}

// NewRedisClient creates a new Redis page cache client
func NewRedisClient(cfg RedisConfig, logger *slog.Logger) (Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("connected to Redis",
		slog.String("addr", opts.Addr),
		slog.String("prefix", cfg.KeyPrefix),
	)

	return newRedisClient(client, cfg, logger), nil
}

func newRedisClient(client *redis.Client, cfg RedisConfig, logger *slog.Logger) *redisClient {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "dashboard"
	}
	return &redisClient{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

// Get loads the cached entry for path+variant at the current generation
func (c *redisClient) Get(ctx context.Context, path, variant string, dst interface{}) (Generation, bool, error) {
	gen, err := c.generation(ctx, path)
	if err != nil {
		return NoGeneration, false, err
	}

	data, err := c.client.Get(ctx, c.entryKey(path, gen, variant)).Bytes()
	if errors.Is(err, redis.Nil) {
		return gen, false, nil
	}
	if err != nil {
		return NoGeneration, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		// gen stays valid so the recomputed value replaces the entry
		return gen, false, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}

	return gen, true, nil
}

// Set stores v under gen. If path was invalidated since gen was observed the
// entry lands under a generation no reader looks at.
func (c *redisClient) Set(ctx context.Context, path, variant string, gen Generation, v interface{}) error {
	if gen < 0 {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := c.client.Set(ctx, c.entryKey(path, gen, variant), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	return nil
}

// Invalidate bumps each path's generation and announces it on the channel
func (c *redisClient) Invalidate(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}

	pipe := c.client.TxPipeline()
	for _, path := range paths {
		pipe.Incr(ctx, c.generationKey(path))
		pipe.Publish(ctx, c.channel(), path)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	c.logger.Debug("cache invalidated", slog.Any("paths", paths))
	return nil
}

// Close closes the Redis connection
func (c *redisClient) Close() error {
	c.logger.Info("closing Redis connection")
	return c.client.Close()
}

// Health checks if Redis is healthy
func (c *redisClient) Health(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis health check failed: %w", err)
	}
	return nil
}

func (c *redisClient) generation(ctx context.Context, path string) (Generation, error) {
	raw, err := c.client.Get(ctx, c.generationKey(path)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return NoGeneration, fmt.Errorf("failed to read cache generation: %w", err)
	}

	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || gen < 0 {
		return NoGeneration, fmt.Errorf("corrupt cache generation %q", raw)
	}
	return Generation(gen), nil
}

func (c *redisClient) generationKey(path string) string {
	return c.prefix + ":gen:" + path
}

func (c *redisClient) entryKey(path string, gen Generation, variant string) string {
	return fmt.Sprintf("%s:page:%s:%d:%s", c.prefix, path, gen, variant)
}

func (c *redisClient) channel() string {
	return c.prefix + ":" + InvalidationChannel
}
