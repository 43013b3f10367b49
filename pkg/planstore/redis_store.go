package planstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Gobusters/ectologger"

	"github.com/cheatday/planner/pkg/models"
	"github.com/cheatday/planner/pkg/redis"
	"github.com/cheatday/planner/pkg/tracing"
)

// planDocumentKey is the single key holding the whole plan document.
const planDocumentKey = "cheatday:plans"

// RedisStore keeps the plan document as a JSON string under a single key.
type RedisStore struct {
	client *redis.Client
	logger ectologger.Logger
}

// NewRedisStore returns a redis-backed store.
func NewRedisStore(client *redis.Client, logger ectologger.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger}
}

// Load fetches the document, returning (nil, nil) when the key is unset.
func (s *RedisStore) Load(ctx context.Context) (*models.PlanSet, error) {
	ctx, span := tracing.StartSpan(ctx, "RedisStore.Load")
	defer span.End()

	raw, err := s.client.Get(ctx, planDocumentKey)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("failed to load plan document")
		return nil, &StorageError{Op: "load", Err: err}
	}

	var set models.PlanSet
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("stored plan document is unreadable")
		return nil, &StorageError{Op: "load", Err: err}
	}
	return &set, nil
}

// Save overwrites the document. No expiry: plans live until replaced.
func (s *RedisStore) Save(ctx context.Context, set models.PlanSet) error {
	ctx, span := tracing.StartSpan(ctx, "RedisStore.Save")
	defer span.End()

	raw, err := json.Marshal(set)
	if err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	if err := s.client.Set(ctx, planDocumentKey, string(raw), 0); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("failed to save plan document")
		return &StorageError{Op: "save", Err: err}
	}
	return nil
}
