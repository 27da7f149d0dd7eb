package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KirkDiggler/yze-core/internal/entities"
	yzeerr "github.com/KirkDiggler/yze-core/internal/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// redisRepo implements the Repository interface using Redis. Records are
// JSON strings under record:{id}; each actor has a sorted set of record ids
// scored by creation time.
type redisRepo struct {
	client       redis.UniversalClient
	timeProvider TimeProvider
	maxRetries   int
	logger       *zap.Logger
}

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client       redis.UniversalClient // Required
	TimeProvider TimeProvider          // Optional, defaults to the wall clock
	MaxRetries   int                   // Optional, defaults to DefaultMaxRetries
	Logger       *zap.Logger           // Optional
}

// NewRedisRepository creates a new Redis-backed record repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil {
		panic("RedisRepoConfig cannot be nil")
	}
	if cfg.Client == nil {
		panic("Redis client cannot be nil")
	}

	repo := &redisRepo{
		client:       cfg.Client,
		timeProvider: cfg.TimeProvider,
		maxRetries:   cfg.MaxRetries,
		logger:       cfg.Logger,
	}
	if repo.timeProvider == nil {
		repo.timeProvider = SystemTime()
	}
	if repo.maxRetries <= 0 {
		repo.maxRetries = DefaultMaxRetries
	}
	if repo.logger == nil {
		repo.logger = zap.NewNop()
	}

	return repo
}

// key generates the Redis key for a record
func (r *redisRepo) key(id string) string {
	return fmt.Sprintf("record:%s", id)
}

// actorRecordsKey generates the Redis key for an actor's record index
func (r *redisRepo) actorRecordsKey(actorID string) string {
	return fmt.Sprintf("actor:%s:records", actorID)
}

// Create stores a new record. SETNX claims the key, so of two creates with
// the same ID only one succeeds.
func (r *redisRepo) Create(ctx context.Context, record *entities.Record) error {
	if err := validateNew(record); err != nil {
		return err
	}

	now := r.timeProvider.Now()
	stored := *record
	stored.CreatedAt = now
	stored.UpdatedAt = now
	stored.Version = 1

	jsonData, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	created, err := r.client.SetNX(ctx, r.key(record.ID), string(jsonData), 0).Result()
	if err != nil {
		return fmt.Errorf("failed to create record: %w", err)
	}
	if !created {
		return alreadyExists(record.ID)
	}

	err = r.client.ZAdd(ctx, r.actorRecordsKey(record.ActorID), redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: record.ID,
	}).Err()
	if err != nil {
		if delErr := r.client.Del(ctx, r.key(record.ID)).Err(); delErr != nil {
			r.logger.Warn("failed to remove unindexed record",
				zap.String("record_id", record.ID),
				zap.Error(delErr))
		}
		return fmt.Errorf("failed to index record: %w", err)
	}

	record.CreatedAt = now
	record.UpdatedAt = now
	record.Version = 1
	return nil
}

// Get retrieves a record by ID
func (r *redisRepo) Get(ctx context.Context, id string) (*entities.Record, error) {
	if id == "" {
		return nil, yzeerr.InvalidArgument("record ID is required")
	}

	jsonData, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	return decode(jsonData)
}

// Mutate uses WATCH/MULTI so a concurrent writer aborts this attempt; the
// callback is then re-run against the newer record
func (r *redisRepo) Mutate(ctx context.Context, id string, fn MutateFunc) (*entities.Record, error) {
	if id == "" {
		return nil, yzeerr.InvalidArgument("record ID is required")
	}
	if fn == nil {
		return nil, yzeerr.InvalidArgument("mutate function is required")
	}

	key := r.key(id)
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		var result *entities.Record

		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			jsonData, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return notFound(id)
			}
			if err != nil {
				return fmt.Errorf("failed to get record: %w", err)
			}

			current, err := decode(jsonData)
			if err != nil {
				return err
			}

			next, err := applyMutation(current, fn, r.timeProvider)
			if err != nil {
				return err
			}
			if next == nil {
				result = current
				return nil
			}

			payload, err := json.Marshal(next)
			if err != nil {
				return fmt.Errorf("failed to marshal record: %w", err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, string(payload), 0)
				return nil
			})
			if err != nil {
				return err
			}

			result = next
			return nil
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			r.logger.Debug("record changed during mutate, retrying",
				zap.String("record_id", id),
				zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}

	return nil, yzeerr.Conflictf("record '%s' kept changing; gave up after %d attempts", id, r.maxRetries).
		WithMeta("record_id", id)
}

// ListByActor returns an actor's records, newest first
func (r *redisRepo) ListByActor(ctx context.Context, actorID string) ([]*entities.Record, error) {
	if actorID == "" {
		return nil, yzeerr.InvalidArgument("actor ID is required")
	}

	ids, err := r.client.ZRevRange(ctx, r.actorRecordsKey(actorID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list record IDs: %w", err)
	}

	records := make([]*entities.Record, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			record, err := r.Get(gctx, id)
			if yzeerr.IsNotFound(err) {
				// Index entry outlived its record
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to get record %s: %w", id, err)
			}
			records[i] = record
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := records[:0]
	for _, record := range records {
		if record != nil {
			out = append(out, record)
		}
	}
	return out, nil
}

// LatestByActor returns the newest record for an actor carrying a roll state
func (r *redisRepo) LatestByActor(ctx context.Context, actorID string) (*entities.Record, error) {
	list, err := r.ListByActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if record := firstWithRoll(list); record != nil {
		return record, nil
	}
	return nil, noRollRecord(actorID)
}

// Delete removes a record and its index entry
func (r *redisRepo) Delete(ctx context.Context, id string) error {
	record, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.key(id))
	pipe.ZRem(ctx, r.actorRecordsKey(record.ActorID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	return nil
}

func decode(jsonData []byte) (*entities.Record, error) {
	var record entities.Record
	if err := json.Unmarshal(jsonData, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return migrate(&record), nil
}
