package counters

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/atiati82/AI-CMS-sub002/internal/platform/logger"
)

// Buffer absorbs block impression/click events so the render path never
// blocks on the database. Counts are drained into postgres by the scheduler
// at the end of each run.
type Buffer interface {
	IncrImpression(ctx context.Context, blockID uuid.UUID)
	IncrClick(ctx context.Context, blockID uuid.UUID)
	// Drain hands each buffered (blockID, impressions, clicks) triple to
	// apply and resets the drained keys. A failed apply re-buffers the
	// counts.
	Drain(ctx context.Context, apply func(blockID uuid.UUID, impressions, clicks int) error) error
	Close() error
}

const (
	impressionsKey = "block:impressions"
	clicksKey      = "block:clicks"
)

type redisBuffer struct {
	rdb *goredis.Client
	log *logger.Logger
}

// NewRedisBuffer connects to REDIS_ADDR. Callers treat a nil Buffer as
// "count straight into postgres".
func NewRedisBuffer(log *logger.Logger) (Buffer, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
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
	return &redisBuffer{rdb: rdb, log: log.With("service", "CounterBuffer")}, nil
}

func (b *redisBuffer) IncrImpression(ctx context.Context, blockID uuid.UUID) {
	if err := b.rdb.HIncrBy(ctx, impressionsKey, blockID.String(), 1).Err(); err != nil {
		b.log.Warn("impression increment dropped", "block_id", blockID.String(), "error", err)
	}
}

func (b *redisBuffer) IncrClick(ctx context.Context, blockID uuid.UUID) {
	if err := b.rdb.HIncrBy(ctx, clicksKey, blockID.String(), 1).Err(); err != nil {
		b.log.Warn("click increment dropped", "block_id", blockID.String(), "error", err)
	}
}

func (b *redisBuffer) Drain(ctx context.Context, apply func(blockID uuid.UUID, impressions, clicks int) error) error {
	impressions, err := b.takeAll(ctx, impressionsKey)
	if err != nil {
		return err
	}
	clicks, err := b.takeAll(ctx, clicksKey)
	if err != nil {
		b.requeue(ctx, impressionsKey, impressions)
		return err
	}

	seen := map[uuid.UUID]struct{}{}
	for id := range impressions {
		seen[id] = struct{}{}
	}
	for id := range clicks {
		seen[id] = struct{}{}
	}

	for id := range seen {
		imp := impressions[id]
		clk := clicks[id]
		if err := apply(id, imp, clk); err != nil {
			b.requeue(ctx, impressionsKey, map[uuid.UUID]int{id: imp})
			b.requeue(ctx, clicksKey, map[uuid.UUID]int{id: clk})
			b.log.Warn("counter flush failed, re-buffered", "block_id", id.String(), "error", err)
		}
	}
	return nil
}

func (b *redisBuffer) takeAll(ctx context.Context, key string) (map[uuid.UUID]int, error) {
	pipe := b.rdb.TxPipeline()
	getAll := pipe.HGetAll(ctx, key)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	out := map[uuid.UUID]int{}
	for field, raw := range getAll.Val() {
		id, err := uuid.Parse(field)
		if err != nil {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			continue
		}
		out[id] = n
	}
	return out, nil
}

func (b *redisBuffer) requeue(ctx context.Context, key string, counts map[uuid.UUID]int) {
	for id, n := range counts {
		if n <= 0 {
			continue
		}
		if err := b.rdb.HIncrBy(ctx, key, id.String(), int64(n)).Err(); err != nil {
			b.log.Warn("counter requeue failed, counts lost", "block_id", id.String(), "error", err)
		}
	}
}

func (b *redisBuffer) Close() error { return b.rdb.Close() }
