// Package redis caches dead-inventory reports in Redis.
//
// Cached reports are keyed by a generation counter. Invalidation bumps the
// counter, which orphans every report at once; orphans expire through their TTL.
// A report is written under the generation it was looked up in, so one computed
// across an invalidation is orphaned on arrival.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/egannguyen/inventory-ledger/internal/entity"
)

const (
	generationKey = "dead-inventory:generation"
	reportKeyFmt  = "dead-inventory:%d:report:%d"
)

// Config for the Redis connection.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// ReportCache stores dead-inventory reports per threshold.
type ReportCache struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

// Connect opens a client and verifies it with a ping.
func Connect(ctx context.Context, cfg Config) (*ReportCache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	slog.Info("Redis connected", "addr", cfg.Addr)
	return NewReportCache(client, cfg.TTL), nil
}

// NewReportCache wraps an existing client.
func NewReportCache(client goredis.UniversalClient, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ReportCache{client: client, ttl: ttl}
}

func reportKey(generation int64, thresholdDays int) string {
	return fmt.Sprintf(reportKeyFmt, generation, thresholdDays)
}

func (c *ReportCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return 0, fmt.Errorf("failed to read cache generation: %w", err)
	}
	return gen, nil
}

func (c *ReportCache) Get(ctx context.Context, thresholdDays int) ([]entity.DeadInventoryItem, int64, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, false, err
	}

	raw, err := c.client.Get(ctx, reportKey(gen, thresholdDays)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, fmt.Errorf("failed to read cached report: %w", err)
	}

	var items []entity.DeadInventoryItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, gen, false, fmt.Errorf("failed to decode cached report: %w", err)
	}
	return items, gen, true, nil
}

func (c *ReportCache) Set(ctx context.Context, generation int64, thresholdDays int, items []entity.DeadInventoryItem) error {
	key := reportKey(generation, thresholdDays)
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}
	return nil
}

func (c *ReportCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate reports: %w", err)
	}
	return nil
}

func (c *ReportCache) Close() error {
	return c.client.Close()
}
