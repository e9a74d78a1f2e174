package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/placement-portal/internal/application"
)

// ErrQueueEmpty is returned by Pop when no message arrived before the timeout.
var ErrQueueEmpty = errors.New("notification: queue empty")

// Queue is the outbox holding notifications between commit and delivery.
type Queue interface {
	Push(ctx context.Context, payload []byte) error
	Pop(ctx context.Context, timeout time.Duration) ([]byte, error)
	DeadLetter(ctx context.Context, payload []byte) error
}

// RedisQueue is a Redis list outbox. Producers LPUSH and consumers BRPOP, so
// messages are delivered oldest first.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue returns a queue stored under key. Dead letters go to
// "<key>:dead".
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key}
}

func (q *RedisQueue) Push(ctx context.Context, payload []byte) error {
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", q.key, err)
	}
	return nil
}

func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) ([]byte, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrQueueEmpty
		}
		return nil, fmt.Errorf("brpop %s: %w", q.key, err)
	}
	// BRPOP replies with [key, value].
	if len(res) < 2 || res[1] == "" {
		return nil, ErrQueueEmpty
	}
	return []byte(res[1]), nil
}

func (q *RedisQueue) DeadLetter(ctx context.Context, payload []byte) error {
	key := q.key + ":dead"
	if err := q.client.LPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", key, err)
	}
	return nil
}

// envelope is the JSON form of a queued notification.
type envelope struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"lastError,omitempty"`
	NotBefore time.Time `json:"notBefore"`
}

func newEnvelope(n application.Notification) envelope {
	return envelope{
		ID:        n.ID,
		Kind:      string(n.Kind),
		To:        n.To,
		Subject:   n.Subject,
		Body:      n.Body,
		CreatedAt: n.CreatedAt,
	}
}

func (e envelope) notification() application.Notification {
	return application.Notification{
		ID:        e.ID,
		Kind:      application.NotificationKind(e.Kind),
		To:        e.To,
		Subject:   e.Subject,
		Body:      e.Body,
		CreatedAt: e.CreatedAt,
	}
}

func encodeEnvelope(e envelope) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode notification %s: %w", e.ID, err)
	}
	return payload, nil
}

func decodeEnvelope(payload []byte) (envelope, error) {
	var e envelope
	if err := json.Unmarshal(payload, &e); err != nil {
		return envelope{}, fmt.Errorf("decode notification: %w", err)
	}
	return e, nil
}
