package actors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/yze-core/internal/entities"
	yzeerr "github.com/KirkDiggler/yze-core/internal/errors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const actorIndexKey = "actors"

// redisRepo stores each actor as JSON under actor:{id} and keeps the ids in
// the "actors" set
type redisRepo struct {
	client redis.UniversalClient
	now    func() time.Time
}

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient // Required
}

// NewRedisRepository creates a new Redis-backed actor repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil {
		panic("RedisRepoConfig cannot be nil")
	}
	if cfg.Client == nil {
		panic("Redis client cannot be nil")
	}

	return &redisRepo{
		client: cfg.Client,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *redisRepo) key(id string) string {
	return fmt.Sprintf("actor:%s", id)
}

// Create stores a new actor
func (r *redisRepo) Create(ctx context.Context, actor *entities.Actor) error {
	if err := validate(actor); err != nil {
		return err
	}

	exists, err := r.client.Exists(ctx, r.key(actor.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check actor existence: %w", err)
	}
	if exists > 0 {
		return alreadyExists(actor.ID)
	}

	now := r.now()
	actor.CreatedAt = now
	actor.UpdatedAt = now

	return r.save(ctx, actor)
}

// Get retrieves an actor by ID
func (r *redisRepo) Get(ctx context.Context, id string) (*entities.Actor, error) {
	if id == "" {
		return nil, yzeerr.InvalidArgument("actor ID is required")
	}

	jsonData, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}

	var actor entities.Actor
	if err := json.Unmarshal(jsonData, &actor); err != nil {
		return nil, fmt.Errorf("failed to unmarshal actor: %w", err)
	}
	return &actor, nil
}

// List returns all actors ordered by name
func (r *redisRepo) List(ctx context.Context) ([]*entities.Actor, error) {
	ids, err := r.client.SMembers(ctx, actorIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list actor IDs: %w", err)
	}

	found := make([]*entities.Actor, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			actor, err := r.Get(gctx, id)
			if yzeerr.IsNotFound(err) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to get actor %s: %w", id, err)
			}
			found[i] = actor
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*entities.Actor, 0, len(found))
	for _, actor := range found {
		if actor != nil {
			out = append(out, actor)
		}
	}
	sortByName(out)
	return out, nil
}

// Update replaces an existing actor
func (r *redisRepo) Update(ctx context.Context, actor *entities.Actor) error {
	if err := validate(actor); err != nil {
		return err
	}

	existing, err := r.Get(ctx, actor.ID)
	if err != nil {
		return err
	}

	actor.CreatedAt = existing.CreatedAt
	actor.UpdatedAt = r.now()

	return r.save(ctx, actor)
}

// Delete removes an actor and its index entry
func (r *redisRepo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return yzeerr.InvalidArgument("actor ID is required")
	}

	deleted, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete actor: %w", err)
	}
	if deleted == 0 {
		return notFound(id)
	}

	if err := r.client.SRem(ctx, actorIndexKey, id).Err(); err != nil {
		return fmt.Errorf("failed to remove actor from index: %w", err)
	}
	return nil
}

func (r *redisRepo) save(ctx context.Context, actor *entities.Actor) error {
	jsonData, err := json.Marshal(actor)
	if err != nil {
		return fmt.Errorf("failed to marshal actor: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(actor.ID), string(jsonData), 0)
	pipe.SAdd(ctx, actorIndexKey, actor.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save actor: %w", err)
	}
	return nil
}
