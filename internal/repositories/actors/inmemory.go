package actors

import (
	"context"
	"sync"
	"time"

	"github.com/KirkDiggler/yze-core/internal/entities"
	yzeerr "github.com/KirkDiggler/yze-core/internal/errors"
)

// InMemoryRepository is an in-memory implementation of the actor repository.
// Stored actors are deep copies, so callers can edit what they get back freely.
type InMemoryRepository struct {
	mu     sync.RWMutex
	actors map[string]*entities.Actor
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		actors: make(map[string]*entities.Actor),
	}
}

// Create stores a new actor
func (r *InMemoryRepository) Create(ctx context.Context, actor *entities.Actor) error {
	if err := validate(actor); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actors[actor.ID]; exists {
		return alreadyExists(actor.ID)
	}

	now := time.Now().UTC()
	actor.CreatedAt = now
	actor.UpdatedAt = now

	stored, err := actor.Clone()
	if err != nil {
		return yzeerr.Wrap(err, "failed to store actor")
	}
	r.actors[actor.ID] = stored
	return nil
}

// Get retrieves an actor by ID
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*entities.Actor, error) {
	if id == "" {
		return nil, yzeerr.InvalidArgument("actor ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	actor, exists := r.actors[id]
	if !exists {
		return nil, notFound(id)
	}
	return actor.Clone()
}

// List returns all actors ordered by name
func (r *InMemoryRepository) List(ctx context.Context) ([]*entities.Actor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.Actor, 0, len(r.actors))
	for _, actor := range r.actors {
		copied, err := actor.Clone()
		if err != nil {
			return nil, err
		}
		out = append(out, copied)
	}
	sortByName(out)
	return out, nil
}

// Update replaces an existing actor
func (r *InMemoryRepository) Update(ctx context.Context, actor *entities.Actor) error {
	if err := validate(actor); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.actors[actor.ID]
	if !exists {
		return notFound(actor.ID)
	}

	actor.CreatedAt = existing.CreatedAt
	actor.UpdatedAt = time.Now().UTC()

	stored, err := actor.Clone()
	if err != nil {
		return yzeerr.Wrap(err, "failed to store actor")
	}
	r.actors[actor.ID] = stored
	return nil
}

// Delete removes an actor
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return yzeerr.InvalidArgument("actor ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actors[id]; !exists {
		return notFound(id)
	}
	delete(r.actors, id)
	return nil
}
