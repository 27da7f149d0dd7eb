// Package dicepool turns an actor, the active setting and a set of modifiers
// into the pool of dice to roll.
package dicepool

import (
	"context"
	"math"

	"github.com/KirkDiggler/yze-core/internal/entities"
	yzeerr "github.com/KirkDiggler/yze-core/internal/errors"
	"github.com/KirkDiggler/yze-core/internal/events"
	"github.com/KirkDiggler/yze-core/internal/modifiers"
	"go.uber.org/zap"
)

// Options selects what the pool is built from
type Options struct {
	AttributeID string
	SkillID     string

	// BaseOverride fixes the base and skips attribute and skill lookup when
	// it is a finite number
	BaseOverride *float64

	// Modifiers are per-roll entries, added with origin config
	Modifiers []entities.ModifierEntry
}

// Builder builds dice pools
type Builder struct {
	events events.Emitter
	logger *zap.Logger
}

// BuilderConfig holds configuration for the builder
type BuilderConfig struct {
	Events events.Emitter // Optional, pool-extension is not fired when nil
	Logger *zap.Logger    // Optional
}

// NewBuilder creates a pool builder
func NewBuilder(cfg *BuilderConfig) *Builder {
	if cfg == nil {
		cfg = &BuilderConfig{}
	}

	b := &Builder{events: cfg.Events, logger: cfg.Logger}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	return b
}

// Build validates the inputs, aggregates modifiers and lets pool-extension
// listeners adjust the pool before the total and breakdown are computed.
// setting is used as a single snapshot for the whole build.
func (b *Builder) Build(ctx context.Context, actor *entities.Actor, setting *entities.Setting, opts Options) (*entities.DicePool, error) {
	if actor == nil {
		return nil, yzeerr.Validation("an actor is required to build a dice pool")
	}

	pool := &entities.DicePool{
		AttributeID: opts.AttributeID,
		SkillID:     opts.SkillID,
	}

	if override, ok := finite(opts.BaseOverride); ok {
		pool.Base = max(0, int(math.Trunc(override)))
		pool.Overridden = true
	} else {
		if err := resolveBase(actor, pool); err != nil {
			return nil, err
		}
	}

	pool.Modifiers = modifiers.Aggregate(actor, setting, modifiers.Scope{
		AttributeID: opts.AttributeID,
		SkillID:     opts.SkillID,
	}, opts.Modifiers)

	if b.events != nil {
		event := events.NewPoolExtensionEvent(actor, setting, pool)
		if err := b.events.Emit(ctx, event); err != nil {
			b.logger.Warn("pool extension listener failed",
				zap.String("actor_id", actor.ID),
				zap.Error(err))
		}
	}

	Finalize(pool, setting)

	b.logger.Debug("built dice pool",
		zap.String("actor_id", actor.ID),
		zap.String("attribute", pool.AttributeID),
		zap.String("skill", pool.SkillID),
		zap.Int("base", pool.Base),
		zap.Int("total", pool.Total))

	return pool, nil
}

// Finalize computes the total, breakdown and summary from the pool's base
// and modifiers
func Finalize(pool *entities.DicePool, setting *entities.Setting) {
	pool.Base = max(0, pool.Base)
	pool.Total = max(0, pool.Base+pool.ModifierSum())
	pool.Breakdown = Breakdown(pool.Base, pool.Modifiers, pool.Total)
	pool.Summary = Summarize(pool, setting)
}

func resolveBase(actor *entities.Actor, pool *entities.DicePool) error {
	if pool.AttributeID == "" {
		return yzeerr.Validationf("actor %s: an attribute id is required when no base override is given", actor.ID).
			WithMeta("actor_id", actor.ID)
	}

	path := entities.AttributePath(pool.AttributeID)
	attr, ok := actor.NumberAt(path)
	if !ok {
		return yzeerr.Validationf("actor %s has no numeric value for attribute %q at %s", actor.ID, pool.AttributeID, path).
			WithMeta("actor_id", actor.ID).
			WithMeta("path", path)
	}
	pool.AttributeValue = int(math.Trunc(attr))

	if pool.SkillID != "" {
		path = entities.SkillPath(pool.SkillID)
		skill, ok := actor.NumberAt(path)
		if !ok {
			return yzeerr.Validationf("actor %s has no numeric value for skill %q at %s", actor.ID, pool.SkillID, path).
				WithMeta("actor_id", actor.ID).
				WithMeta("path", path)
		}
		pool.SkillValue = int(math.Trunc(skill))
	}

	pool.Base = max(0, pool.AttributeValue+pool.SkillValue)
	return nil
}

func finite(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}
