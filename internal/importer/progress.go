package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pkgerrors "github.com/tru-distribution/orderdesk-backend/pkg/errors"
	"github.com/tru-distribution/orderdesk-backend/pkg/redis"
)

// Progress is the poll-able state of a running import.
type Progress struct {
	Processed int `json:"processed"`
	Total     int `json:"total"`
}

// ProgressSink receives a progress snapshot after every settled chunk.
type ProgressSink interface {
	Publish(ctx context.Context, importID string, progress Progress) error
}

// ProgressSinkFunc adapts a plain function to a ProgressSink.
type ProgressSinkFunc func(ctx context.Context, importID string, progress Progress) error

func (f ProgressSinkFunc) Publish(ctx context.Context, importID string, progress Progress) error {
	return f(ctx, importID, progress)
}

// RedisProgressStore keeps import progress in redis under a TTL so the API
// can poll it while the import runs and for a while after it finishes.
type RedisProgressStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisProgressStore(client *redis.Client, ttl time.Duration) (*RedisProgressStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisProgressStore{client: client, ttl: ttl}, nil
}

func (s *RedisProgressStore) Publish(ctx context.Context, importID string, progress Progress) error {
	payload, err := json.Marshal(progress)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal import progress")
	}
	key := s.client.ImportProgressKey(importID)
	if err := s.client.Set(ctx, key, payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publish import progress")
	}
	return nil
}

// Fetch returns the last published snapshot for the import.
func (s *RedisProgressStore) Fetch(ctx context.Context, importID string) (Progress, error) {
	key := s.client.ImportProgressKey(importID)
	raw, err := s.client.Get(ctx, key)
	if err != nil {
		if redis.IsNotFound(err) {
			return Progress{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no progress for import %s", importID))
		}
		return Progress{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch import progress")
	}

	var progress Progress
	if err := json.Unmarshal([]byte(raw), &progress); err != nil {
		return Progress{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unmarshal import progress")
	}
	return progress, nil
}
