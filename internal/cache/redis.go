package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/inventory-agent/internal/config"
	"github.com/andresuchdata/inventory-agent/internal/domain"
)

const (
	supplyKeyPrefix   = "supply:"
	dashboardStatsKey = "dashboard:stats"

	defaultTTL = time.Minute
)

// NewRedisClient connects and pings a redis client from configuration.
func NewRedisClient(cfg config.CacheConfig) (*redis.Client, error) {
	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}

	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

type redisSupplyCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSupplyCache creates a redis-backed supply cache.
func NewRedisSupplyCache(client *redis.Client, ttl time.Duration) SupplyCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &redisSupplyCache{client: client, ttl: ttl}
}

func (c *redisSupplyCache) Get(ctx context.Context, productID string) (domain.DemandContext, bool, error) {
	raw, err := c.client.Get(ctx, supplyKeyPrefix+productID).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.DemandContext{}, false, nil
	}
	if err != nil {
		return domain.DemandContext{}, false, fmt.Errorf("redis get failed: %w", err)
	}

	var dc domain.DemandContext
	if err := json.Unmarshal(raw, &dc); err != nil {
		return domain.DemandContext{}, false, fmt.Errorf("failed to decode cached context: %w", err)
	}

	return dc, true, nil
}

func (c *redisSupplyCache) Set(ctx context.Context, productID string, dc domain.DemandContext) error {
	raw, err := json.Marshal(dc)
	if err != nil {
		return fmt.Errorf("failed to encode context: %w", err)
	}

	if err := c.client.Set(ctx, supplyKeyPrefix+productID, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

type redisDashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDashboardCache creates a redis-backed dashboard stats cache.
func NewRedisDashboardCache(client *redis.Client, ttl time.Duration) DashboardCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &redisDashboardCache{client: client, ttl: ttl}
}

func (c *redisDashboardCache) GetStats(ctx context.Context) (*domain.DashboardStats, bool, error) {
	raw, err := c.client.Get(ctx, dashboardStatsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var stats domain.DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached stats: %w", err)
	}

	return &stats, true, nil
}

func (c *redisDashboardCache) SetStats(ctx context.Context, stats *domain.DashboardStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}

	if err := c.client.Set(ctx, dashboardStatsKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisDashboardCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, dashboardStatsKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
