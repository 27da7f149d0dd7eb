package records

import (
	"errors"

	"github.com/KirkDiggler/yze-core/internal/entities"
	yzeerr "github.com/KirkDiggler/yze-core/internal/errors"
)

func validateNew(record *entities.Record) error {
	if record == nil {
		return yzeerr.InvalidArgument("record cannot be nil")
	}
	if record.ID == "" {
		return yzeerr.InvalidArgument("record ID is required")
	}
	if record.ActorID == "" {
		return yzeerr.InvalidArgument("record actor ID is required").
			WithMeta("record_id", record.ID)
	}
	return nil
}

func notFound(id string) error {
	return yzeerr.NotFoundf("record with ID '%s' not found", id).
		WithMeta("record_id", id)
}

func alreadyExists(id string) error {
	return yzeerr.AlreadyExistsf("record with ID '%s' already exists", id).
		WithMeta("record_id", id)
}

func noRollRecord(actorID string) error {
	return yzeerr.NotFoundf("no roll record found for actor '%s'", actorID).
		WithMeta("actor_id", actorID)
}

// applyMutation runs fn on a copy of current and returns the record to
// write, or nil when fn asked to skip the write
func applyMutation(current *entities.Record, fn MutateFunc, tp TimeProvider) (*entities.Record, error) {
	working := current.Clone()
	if err := fn(working); err != nil {
		if errors.Is(err, ErrSkipWrite) {
			return nil, nil
		}
		return nil, err
	}

	working.ID = current.ID
	working.ActorID = current.ActorID
	working.CreatedAt = current.CreatedAt
	working.Version = current.Version + 1
	working.UpdatedAt = tp.Now()
	return working, nil
}

// migrate upgrades legacy roll state shapes in place
func migrate(record *entities.Record) *entities.Record {
	if record != nil && record.RollState != nil {
		record.RollState.Migrate()
	}
	return record
}

func firstWithRoll(list []*entities.Record) *entities.Record {
	for _, record := range list {
		if record.RollState != nil {
			return record
		}
	}
	return nil
}
