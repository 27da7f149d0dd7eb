package records

//go:generate mockgen -destination=mock/mock.go -package=mockrecords -source=interface.go

import (
	"context"
	"errors"

	"github.com/KirkDiggler/yze-core/internal/entities"
)

// DefaultMaxRetries bounds optimistic write retries in Mutate
const DefaultMaxRetries = 5

// ErrSkipWrite can be returned by a MutateFunc to leave the record untouched.
// Mutate then returns the record as read, with a nil error.
var ErrSkipWrite = errors.New("skip write")

// MutateFunc edits a freshly read copy of a record. ID, ActorID, CreatedAt
// and Version are owned by the store and changes to them are ignored.
type MutateFunc func(record *entities.Record) error

// Repository defines the interface for chat/log record persistence
type Repository interface {
	// Create stores a new record and stamps its timestamps and version
	Create(ctx context.Context, record *entities.Record) error

	// Get retrieves a record by ID
	Get(ctx context.Context, id string) (*entities.Record, error)

	// Mutate runs a read-modify-write on one record. Writes to the same
	// record are serialized: fn always sees the latest committed version.
	Mutate(ctx context.Context, id string, fn MutateFunc) (*entities.Record, error)

	// ListByActor returns an actor's records, newest first
	ListByActor(ctx context.Context, actorID string) ([]*entities.Record, error)

	// LatestByActor returns the newest record for an actor that carries a roll state
	LatestByActor(ctx context.Context, actorID string) (*entities.Record, error)

	// Delete removes a record
	Delete(ctx context.Context, id string) error
}
