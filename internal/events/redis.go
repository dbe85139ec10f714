package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmynk/billsplitter/internal/models"
)

// streamAdder is the part of *redis.Client the stream publisher uses.
type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisStream appends each event to a Redis stream so off-chain indexers
// can follow the ledger without polling the database.
type RedisStream struct {
	client streamAdder
	stream string
	maxLen int64
	logger *slog.Logger
}

// NewRedisStream creates a publisher writing to stream. maxLen > 0 trims
// the stream approximately to that many entries.
func NewRedisStream(client streamAdder, stream string, maxLen int64, logger *slog.Logger) *RedisStream {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStream{client: client, stream: stream, maxLen: maxLen, logger: logger}
}

func (r *RedisStream) Publish(ctx context.Context, events []models.Event) {
	for _, e := range events {
		if err := r.add(ctx, e); err != nil {
			r.logger.ErrorContext(ctx, "Failed to publish event to redis",
				"stream", r.stream, "seq", e.Seq, "kind", e.Kind, "error", err)
		}
	}
}

func (r *RedisStream) add(ctx context.Context, e models.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]interface{}{
			"id":      e.ID,
			"seq":     e.Seq,
			"ledger":  string(e.Ledger),
			"kind":    string(e.Kind),
			"bill_id": e.BillID.Hex(),
			"payload": string(payload),
		},
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}
	return r.client.XAdd(ctx, args).Err()
}

// ConnectRedis initializes a Redis client and checks it answers.
func ConnectRedis(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		// Close the client if ping fails
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}
