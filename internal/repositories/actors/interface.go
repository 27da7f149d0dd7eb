package actors

//go:generate mockgen -destination=mock/mock.go -package=mockactors -source=interface.go

import (
	"context"

	"github.com/KirkDiggler/yze-core/internal/entities"
)

// Repository defines the interface for actor persistence
type Repository interface {
	// Create stores a new actor
	Create(ctx context.Context, actor *entities.Actor) error

	// Get retrieves an actor by ID
	Get(ctx context.Context, id string) (*entities.Actor, error)

	// List returns every stored actor ordered by name
	List(ctx context.Context) ([]*entities.Actor, error)

	// Update replaces an existing actor
	Update(ctx context.Context, actor *entities.Actor) error

	// Delete removes an actor
	Delete(ctx context.Context, id string) error
}
