package roll

import (
	"context"

	"github.com/KirkDiggler/yze-core/internal/dice"
	"github.com/KirkDiggler/yze-core/internal/entities"
)

// Service runs rolls against stored actors and records
type Service interface {
	// RollAttribute rolls an attribute pool
	RollAttribute(ctx context.Context, input *RollAttributeInput) (*RollOutput, error)

	// RollSkill rolls an attribute + skill pool
	RollSkill(ctx context.Context, input *RollSkillInput) (*RollOutput, error)

	// RollNPCPool rolls one of an NPC's fixed pools
	RollNPCPool(ctx context.Context, input *RollNPCPoolInput) (*RollOutput, error)

	// Push pushes the roll stored on a record
	Push(ctx context.Context, recordID string) (*PushOutput, error)

	// PushLast pushes the newest roll record of an actor
	PushLast(ctx context.Context, actorID string) (*PushOutput, error)
}

// RollAttributeInput selects an attribute roll
type RollAttributeInput struct {
	ActorID     string
	AuthorID    string
	AttributeID string
	Title       string // Optional, defaults to "{Attribute} Roll"

	// BaseOverride replaces the attribute value when it is a finite number
	BaseOverride *float64

	// Modifiers apply to this roll only
	Modifiers []entities.ModifierEntry
}

// RollSkillInput selects a skill roll
type RollSkillInput struct {
	ActorID     string
	AuthorID    string
	AttributeID string // Optional, defaults to the skill's attribute in the active setting
	SkillID     string
	Title       string // Optional, defaults to "{Attribute}+{Skill} Roll"

	BaseOverride *float64
	Modifiers    []entities.ModifierEntry
}

// RollNPCPoolInput selects an NPC pool roll
type RollNPCPoolInput struct {
	ActorID  string
	AuthorID string
	PoolID   string
}

// RollOutput is a stored roll
type RollOutput struct {
	Record  *entities.Record
	Pool    *entities.DicePool
	Roll    *dice.PoolResult
	Summary *entities.RollSummary
}

// PushOutput is the outcome of a push request. Record is the stored record
// after the attempt; when Rejected is set nothing was written.
type PushOutput struct {
	Record   *entities.Record
	Result   *PushResult
	Rejected string
	Summary  *entities.RollSummary
	Actor    *entities.Actor // nil when the actor could not be resolved
}

// Applied reports whether the push changed the roll
func (o *PushOutput) Applied() bool {
	return o != nil && o.Rejected == ""
}
