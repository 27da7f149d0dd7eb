package records

import (
	"context"
	"sort"
	"sync"

	"github.com/KirkDiggler/yze-core/internal/entities"
	yzeerr "github.com/KirkDiggler/yze-core/internal/errors"
)

type storedRecord struct {
	record *entities.Record
	seq    int64
}

// InMemoryRepository is an in-memory implementation of the record repository.
// Mutate holds the write lock across the callback, so writes are serialized.
type InMemoryRepository struct {
	mu           sync.RWMutex
	records      map[string]*storedRecord
	seq          int64
	timeProvider TimeProvider
}

// NewInMemoryRepository creates a new in-memory repository. A nil time
// provider uses the wall clock.
func NewInMemoryRepository(timeProvider TimeProvider) *InMemoryRepository {
	if timeProvider == nil {
		timeProvider = SystemTime()
	}
	return &InMemoryRepository{
		records:      make(map[string]*storedRecord),
		timeProvider: timeProvider,
	}
}

// Create stores a new record
func (r *InMemoryRepository) Create(ctx context.Context, record *entities.Record) error {
	if err := validateNew(record); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[record.ID]; exists {
		return alreadyExists(record.ID)
	}

	now := r.timeProvider.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	record.Version = 1

	r.seq++
	r.records[record.ID] = &storedRecord{record: record.Clone(), seq: r.seq}
	return nil
}

// Get retrieves a record by ID
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*entities.Record, error) {
	if id == "" {
		return nil, yzeerr.InvalidArgument("record ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, exists := r.records[id]
	if !exists {
		return nil, notFound(id)
	}
	return migrate(stored.record.Clone()), nil
}

// Mutate runs fn under the repository write lock
func (r *InMemoryRepository) Mutate(ctx context.Context, id string, fn MutateFunc) (*entities.Record, error) {
	if id == "" {
		return nil, yzeerr.InvalidArgument("record ID is required")
	}
	if fn == nil {
		return nil, yzeerr.InvalidArgument("mutate function is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.records[id]
	if !exists {
		return nil, notFound(id)
	}

	current := migrate(stored.record.Clone())
	next, err := applyMutation(current, fn, r.timeProvider)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return current, nil
	}

	stored.record = next.Clone()
	return next, nil
}

// ListByActor returns an actor's records, newest first
func (r *InMemoryRepository) ListByActor(ctx context.Context, actorID string) ([]*entities.Record, error) {
	if actorID == "" {
		return nil, yzeerr.InvalidArgument("actor ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*storedRecord
	for _, stored := range r.records {
		if stored.record.ActorID == actorID {
			matched = append(matched, stored)
		}
	}

	// Newest first; insertion order breaks timestamp ties
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.record.CreatedAt.Equal(b.record.CreatedAt) {
			return a.record.CreatedAt.After(b.record.CreatedAt)
		}
		return a.seq > b.seq
	})

	out := make([]*entities.Record, len(matched))
	for i, stored := range matched {
		out[i] = migrate(stored.record.Clone())
	}
	return out, nil
}

// LatestByActor returns the newest record for an actor carrying a roll state
func (r *InMemoryRepository) LatestByActor(ctx context.Context, actorID string) (*entities.Record, error) {
	list, err := r.ListByActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if record := firstWithRoll(list); record != nil {
		return record, nil
	}
	return nil, noRollRecord(actorID)
}

// Delete removes a record
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return yzeerr.InvalidArgument("record ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[id]; !exists {
		return notFound(id)
	}
	delete(r.records, id)
	return nil
}
