// Package consequence applies the side effects a setting attaches to pushing
// a roll.
package consequence

import (
	"context"
	"math"

	"github.com/KirkDiggler/yze-core/internal/entities"
	yzeerr "github.com/KirkDiggler/yze-core/internal/errors"
	"github.com/KirkDiggler/yze-core/internal/events"
	"github.com/KirkDiggler/yze-core/internal/repositories/actors"
	"github.com/KirkDiggler/yze-core/internal/setting"
	"go.uber.org/zap"
)

// StressOnPushID identifies the listener on the bus
const StressOnPushID = "consequence.stress-on-push"

// StressOnPush raises the setting's push-consequence resource on the pushing
// actor, clamped to [0, max]
type StressOnPush struct {
	actors   actors.Repository
	priority int
	logger   *zap.Logger
}

// StressOnPushConfig holds configuration for the listener
type StressOnPushConfig struct {
	Actors   actors.Repository // Required
	Priority int               // Optional
	Logger   *zap.Logger       // Optional
}

// NewStressOnPush creates the listener
func NewStressOnPush(cfg *StressOnPushConfig) *StressOnPush {
	if cfg == nil {
		panic("StressOnPushConfig cannot be nil")
	}
	if cfg.Actors == nil {
		panic("actor repository is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &StressOnPush{
		actors:   cfg.Actors,
		priority: cfg.Priority,
		logger:   logger,
	}
}

// Register subscribes the listener to roll-pushed events
func (l *StressOnPush) Register(bus *events.Bus) {
	bus.Subscribe(events.EventTypeRollPushed, l)
}

func (l *StressOnPush) ID() string    { return StressOnPushID }
func (l *StressOnPush) Priority() int { return l.priority }

// HandleEvent implements events.EventListener
func (l *StressOnPush) HandleEvent(ctx context.Context, event events.Event) error {
	pushed, ok := event.(*events.RollPushedEvent)
	if !ok {
		return nil
	}
	if pushed.Actor == nil {
		l.logger.Debug("push consequence skipped, actor unknown")
		return nil
	}
	if pushed.Setting == nil || pushed.Setting.PushConsequence == nil {
		return nil
	}

	pc := pushed.Setting.PushConsequence
	res, ok := pushed.Setting.Resource(pc.Resource)
	if !ok || res.Path == "" {
		l.logger.Warn("push consequence names an unknown resource",
			zap.String("setting", pushed.Setting.ID),
			zap.String("resource", pc.Resource))
		return nil
	}

	// Read the stored actor so concurrent sheet edits are not clobbered
	actor, err := l.actors.Get(ctx, pushed.Actor.ID)
	if err != nil {
		return yzeerr.Wrapf(err, "failed to load actor %s for push consequence", pushed.Actor.ID)
	}

	current, limit, next := Apply(actor, res, pc.Amount.Int())
	if next == current {
		return nil
	}

	if err := l.actors.Update(ctx, actor); err != nil {
		return yzeerr.Wrapf(err, "failed to apply %s to actor %s", pc.Resource, actor.ID).
			WithMeta("resource", pc.Resource)
	}
	pushed.Actor.SetValueAt(res.Path, next)

	l.logger.Info("applied push consequence",
		zap.String("actor_id", actor.ID),
		zap.String("resource", pc.Resource),
		zap.Int("from", current),
		zap.Int("to", next),
		zap.Int("max", limit))

	return nil
}

// Apply adds amount to the resource on actor and returns the old value, the
// limit used and the new value
func Apply(actor *entities.Actor, res *entities.ResourceDef, amount int) (current, limit, next int) {
	if v, ok := actor.NumberAt(res.Path); ok {
		current = int(math.Trunc(v))
	}

	limit = res.DefaultMax.Int()
	if res.MaxPath != "" {
		if v, ok := actor.NumberAt(res.MaxPath); ok {
			limit = int(math.Trunc(v))
		}
	}
	if limit <= 0 {
		limit = setting.DefaultResourceMax
	}

	next = min(max(current+amount, 0), limit)
	if next != current {
		actor.SetValueAt(res.Path, next)
	}
	return current, limit, next
}
