package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/labelsense-backend/internal/logger"
	"github.com/yungbote/labelsense-backend/internal/types"
)

// ScanEvent is the small JSON payload published per orchestrated lookup for
// live dashboards. It is best-effort analytics; the durable ledger row in
// Postgres is the record of truth.
type ScanEvent struct {
	UserID      uuid.UUID          `json:"user_id"`
	Modality    types.ScanModality `json:"modality"`
	CacheHit    bool               `json:"cache_hit"`
	DisplayName string             `json:"display_name,omitempty"`
	RecordedAt  time.Time          `json:"recorded_at"`
}

type ScanEventBus interface {
	Publish(ctx context.Context, event ScanEvent) error
	Close() error
}

type scanEventBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewScanEventBus(log *logger.Logger) (ScanEventBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_SCAN_CHANNEL"))
	if ch == "" {
		ch = "scan_events"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &scanEventBus{
		log:     log.With("service", "RedisScanEventBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *scanEventBus) Publish(ctx context.Context, event ScanEvent) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis scan event bus not initialized")
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal scan event: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish scan event: %w", err)
	}
	return nil
}

func (b *scanEventBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
