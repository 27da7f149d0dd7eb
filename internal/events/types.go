package events

import (
	"github.com/KirkDiggler/yze-core/internal/dice"
	"github.com/KirkDiggler/yze-core/internal/entities"
)

// EventType represents the type of engine event
type EventType string

// Event is the base interface for all engine events
type Event interface {
	GetType() EventType
	IsCancelled() bool
	Cancel()
}

// BaseEvent provides common implementation for all events
type BaseEvent struct {
	Type      EventType
	Cancelled bool
}

func (e *BaseEvent) GetType() EventType { return e.Type }
func (e *BaseEvent) IsCancelled() bool  { return e.Cancelled }

// Cancel stops delivery to lower priority listeners of a cancellable event
func (e *BaseEvent) Cancel() { e.Cancelled = true }

// PoolExtensionEvent exposes an in-progress pool. Pool is live: changes to
// Base and Modifiers are used for the total and breakdown.
type PoolExtensionEvent struct {
	BaseEvent
	Actor       *entities.Actor
	Setting     *entities.Setting
	AttributeID string
	SkillID     string
	Pool        *entities.DicePool
}

// NewPoolExtensionEvent creates a pool-extension event
func NewPoolExtensionEvent(actor *entities.Actor, setting *entities.Setting, pool *entities.DicePool) *PoolExtensionEvent {
	return &PoolExtensionEvent{
		BaseEvent:   BaseEvent{Type: EventTypePoolExtension},
		Actor:       actor,
		Setting:     setting,
		AttributeID: pool.AttributeID,
		SkillID:     pool.SkillID,
		Pool:        pool,
	}
}

// SettingActivatedEvent is fired after a setting becomes active
type SettingActivatedEvent struct {
	BaseEvent
	Setting  *entities.Setting
	Previous *entities.Setting // nil when nothing was active
}

// NewSettingActivatedEvent creates a setting-activated event
func NewSettingActivatedEvent(setting, previous *entities.Setting) *SettingActivatedEvent {
	return &SettingActivatedEvent{
		BaseEvent: BaseEvent{Type: EventTypeSettingActivated},
		Setting:   setting,
		Previous:  previous,
	}
}

// SettingDeactivatedEvent is fired after a setting stops being active
type SettingDeactivatedEvent struct {
	BaseEvent
	Setting *entities.Setting
}

// NewSettingDeactivatedEvent creates a setting-deactivated event
func NewSettingDeactivatedEvent(setting *entities.Setting) *SettingDeactivatedEvent {
	return &SettingDeactivatedEvent{
		BaseEvent: BaseEvent{Type: EventTypeSettingDeactivated},
		Setting:   setting,
	}
}

// RollCreatedEvent is fired after a new roll record is stored
type RollCreatedEvent struct {
	BaseEvent
	Actor   *entities.Actor
	Setting *entities.Setting
	Record  *entities.Record
	State   *entities.RollState
	Roll    *dice.PoolResult
}

// NewRollCreatedEvent creates a roll-created event
func NewRollCreatedEvent(actor *entities.Actor, setting *entities.Setting, record *entities.Record, roll *dice.PoolResult) *RollCreatedEvent {
	return &RollCreatedEvent{
		BaseEvent: BaseEvent{Type: EventTypeRollCreated},
		Actor:     actor,
		Setting:   setting,
		Record:    record,
		State:     record.RollState,
		Roll:      roll,
	}
}

// PushSnapshot is the roll as it was before a push
type PushSnapshot struct {
	Dice      []int
	Successes int
	State     *entities.RollState
}

// RollPushedEvent is fired after a push has been committed. Actor is
// resolved best effort and may be nil; listeners must handle that.
type RollPushedEvent struct {
	BaseEvent
	Actor    *entities.Actor
	Setting  *entities.Setting
	Record   *entities.Record
	State    *entities.RollState
	Roll     *dice.PoolResult // Only the rerolled dice
	Previous PushSnapshot
}

// NewRollPushedEvent creates a roll-pushed event
func NewRollPushedEvent(actor *entities.Actor, setting *entities.Setting, record *entities.Record, roll *dice.PoolResult, previous PushSnapshot) *RollPushedEvent {
	return &RollPushedEvent{
		BaseEvent: BaseEvent{Type: EventTypeRollPushed},
		Actor:     actor,
		Setting:   setting,
		Record:    record,
		State:     record.RollState,
		Roll:      roll,
		Previous:  previous,
	}
}
