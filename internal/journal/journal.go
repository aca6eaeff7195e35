// internal/journal/journal.go
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list every applied action is pushed onto for
// an external consumer. The journal is telemetry only: match state itself
// never touches Redis and is lost on restart regardless.
const DefaultQueueName = "agonia_actions"

// ActionRecord is one applied intent as it lands on the queue.
type ActionRecord struct {
	MatchID     uuid.UUID              `json:"match_id"`
	ActionIndex int                    `json:"action_index"`
	ActorID     uuid.UUID              `json:"actor_id"`
	ActionType  string                 `json:"action_type"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	Timestamp   int64                  `json:"timestamp"`
}

// Journal pushes action records onto a Redis list. A nil *Journal is a valid
// no-op journal, so callers never need to branch on whether one is
// configured.
type Journal struct {
	rdb   *redis.Client
	queue string
	index atomic.Int64 // records are pushed from concurrent goroutines
}

// Connect dials Redis and verifies the connection. queue may be empty to use
// the default.
func Connect(addr, queue string) (*Journal, error) {
	if queue == "" {
		queue = DefaultQueueName
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &Journal{rdb: rdb, queue: queue}, nil
}

// Record serializes and RPUSHes one action. Errors are returned, not fatal;
// the caller decides whether to log and move on.
func (j *Journal) Record(ctx context.Context, matchID, actorID uuid.UUID, actionType string, payload map[string]interface{}) error {
	if j == nil {
		return nil
	}
	rec := ActionRecord{
		MatchID:     matchID,
		ActionIndex: int(j.index.Add(1)),
		ActorID:     actorID,
		ActionType:  actionType,
		Payload:     payload,
		Timestamp:   time.Now().UnixMilli(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal action record: %w", err)
	}
	if err := j.rdb.RPush(ctx, j.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to push action record: %w", err)
	}
	return nil
}

// Close releases the Redis client.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.rdb.Close()
}
