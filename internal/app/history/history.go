/*
Package history hands completed races to the downstream stats features.

Each result is serialized to JSON and pushed onto a Redis list; consumers pop
from the other end at their own pace.
*/
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"typerace/internal/app/race"
)

// DefaultQueueName is the Redis list completed races are pushed to.
const DefaultQueueName = "typerace_results"

// PerformanceRecord is one player's final line in a ResultRecord.
type PerformanceRecord struct {
	UserID     string  `json:"user_id"`
	Name       string  `json:"name"`
	IsHost     bool    `json:"is_host"`
	WPM        float64 `json:"wpm"`
	Accuracy   float64 `json:"accuracy"`
	Score      float64 `json:"score"`
	FinishedAt int64   `json:"finished_at"`
}

// ResultRecord is the queued form of a race.Outcome.
type ResultRecord struct {
	RoomCode      string              `json:"room_code"`
	WinnerID      *string             `json:"winner_id"`
	IsTie         bool                `json:"is_tie"`
	ContentConfig race.ContentConfig  `json:"content_config"`
	Performances  []PerformanceRecord `json:"performances"`
	EndedAt       int64               `json:"ended_at"`
}

// NewResultRecord flattens an outcome. Timestamps are Unix milliseconds.
func NewResultRecord(o *race.Outcome) ResultRecord {
	rec := ResultRecord{
		RoomCode:      o.RoomCode,
		IsTie:         o.IsTie,
		ContentConfig: o.Config,
		Performances:  make([]PerformanceRecord, 0, len(o.Standings)),
		EndedAt:       o.EndedAt.UnixMilli(),
	}
	if o.WinnerID != "" {
		winner := o.WinnerID
		rec.WinnerID = &winner
	}

	for _, p := range o.Standings {
		pr := PerformanceRecord{
			UserID:   p.UserID,
			Name:     p.Name,
			IsHost:   p.IsHost,
			WPM:      p.WPM,
			Accuracy: p.Accuracy,
			Score:    p.Score,
		}
		if p.FinishedAt != nil {
			pr.FinishedAt = p.FinishedAt.UnixMilli()
		}
		rec.Performances = append(rec.Performances, pr)
	}
	return rec
}

// ConnectRedis opens a client and pings it.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// RedisPublisher pushes results onto a Redis list.
type RedisPublisher struct {
	rdb   *redis.Client
	queue string
}

// NewRedisPublisher returns a publisher writing to queue, or DefaultQueueName when empty.
func NewRedisPublisher(rdb *redis.Client, queue string) *RedisPublisher {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &RedisPublisher{rdb: rdb, queue: queue}
}

// PublishResult implements race.ResultPublisher.
func (p *RedisPublisher) PublishResult(ctx context.Context, outcome *race.Outcome) error {
	data, err := json.Marshal(NewResultRecord(outcome))
	if err != nil {
		return fmt.Errorf("failed to marshal result for room %s: %w", outcome.RoomCode, err)
	}

	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", p.queue, err)
	}
	return nil
}
