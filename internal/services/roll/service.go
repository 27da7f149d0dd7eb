// Package roll runs the roll lifecycle: build a pool, roll it, store the
// roll state on a record and push it at most once.
package roll

import (
	"context"

	"github.com/KirkDiggler/yze-core/internal/dice"
	"github.com/KirkDiggler/yze-core/internal/dicepool"
	"github.com/KirkDiggler/yze-core/internal/entities"
	yzeerr "github.com/KirkDiggler/yze-core/internal/errors"
	"github.com/KirkDiggler/yze-core/internal/events"
	"github.com/KirkDiggler/yze-core/internal/render"
	"github.com/KirkDiggler/yze-core/internal/repositories/actors"
	"github.com/KirkDiggler/yze-core/internal/repositories/records"
	"github.com/KirkDiggler/yze-core/internal/uuid"
	"go.uber.org/zap"
)

// SettingSource supplies setting snapshots
type SettingSource interface {
	Active() *entities.Setting
	Get(id string) (*entities.Setting, error)
}

type service struct {
	records      records.Repository
	actors       actors.Repository
	settings     SettingSource
	builder      *dicepool.Builder
	roller       dice.Roller
	events       events.Emitter
	renderer     render.Renderer
	uuid         uuid.Generator
	timeProvider records.TimeProvider
	logger       *zap.Logger
}

// ServiceConfig holds configuration for the roll service
type ServiceConfig struct {
	Records      records.Repository   // Required
	Actors       actors.Repository    // Required
	Settings     SettingSource        // Optional, rolls run without a setting when nil
	Builder      *dicepool.Builder    // Optional
	Roller       dice.Roller          // Optional, defaults to random dice
	Events       events.Emitter       // Optional
	Renderer     render.Renderer      // Optional
	UUID         uuid.Generator       // Optional
	TimeProvider records.TimeProvider // Optional
	Logger       *zap.Logger          // Optional
}

// NewService creates a new roll service
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil {
		panic("ServiceConfig cannot be nil")
	}
	if cfg.Records == nil {
		panic("record repository is required")
	}
	if cfg.Actors == nil {
		panic("actor repository is required")
	}

	svc := &service{
		records:      cfg.Records,
		actors:       cfg.Actors,
		settings:     cfg.Settings,
		builder:      cfg.Builder,
		roller:       cfg.Roller,
		events:       cfg.Events,
		renderer:     cfg.Renderer,
		uuid:         cfg.UUID,
		timeProvider: cfg.TimeProvider,
		logger:       cfg.Logger,
	}

	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.builder == nil {
		svc.builder = dicepool.NewBuilder(&dicepool.BuilderConfig{
			Events: cfg.Events,
			Logger: svc.logger,
		})
	}
	if svc.roller == nil {
		svc.roller = dice.NewRandomRoller()
	}
	if svc.renderer == nil {
		svc.renderer = render.NewRollRenderer()
	}
	if svc.uuid == nil {
		svc.uuid = uuid.NewGoogleUUIDGenerator()
	}
	if svc.timeProvider == nil {
		svc.timeProvider = records.SystemTime()
	}

	return svc
}

// RollAttribute rolls an attribute pool
func (s *service) RollAttribute(ctx context.Context, input *RollAttributeInput) (*RollOutput, error) {
	if input == nil {
		return nil, yzeerr.InvalidArgument("input cannot be nil")
	}

	setting := s.activeSetting()
	actor, err := s.getActor(ctx, input.ActorID)
	if err != nil {
		return nil, err
	}

	pool, err := s.builder.Build(ctx, actor, setting, dicepool.Options{
		AttributeID:  input.AttributeID,
		BaseOverride: input.BaseOverride,
		Modifiers:    input.Modifiers,
	})
	if err != nil {
		return nil, err
	}

	title := input.Title
	if title == "" {
		title = setting.AttributeName(input.AttributeID) + " Roll"
	}

	return s.store(ctx, actor, setting, input.AuthorID, entities.RollKindAttribute, title, pool, SnapshotPool(pool))
}

// RollSkill rolls an attribute + skill pool
func (s *service) RollSkill(ctx context.Context, input *RollSkillInput) (*RollOutput, error) {
	if input == nil {
		return nil, yzeerr.InvalidArgument("input cannot be nil")
	}
	if input.SkillID == "" {
		return nil, yzeerr.Validation("a skill id is required for a skill roll")
	}

	setting := s.activeSetting()
	actor, err := s.getActor(ctx, input.ActorID)
	if err != nil {
		return nil, err
	}

	attributeID := input.AttributeID
	if attributeID == "" {
		if skill, ok := setting.Skill(input.SkillID); ok {
			attributeID = skill.Attribute
		}
	}

	pool, err := s.builder.Build(ctx, actor, setting, dicepool.Options{
		AttributeID:  attributeID,
		SkillID:      input.SkillID,
		BaseOverride: input.BaseOverride,
		Modifiers:    input.Modifiers,
	})
	if err != nil {
		return nil, err
	}

	title := input.Title
	if title == "" {
		title = setting.AttributeName(attributeID) + "+" + setting.SkillName(input.SkillID) + " Roll"
	}

	return s.store(ctx, actor, setting, input.AuthorID, entities.RollKindSkill, title, pool, SnapshotPool(pool))
}

// RollNPCPool rolls a fixed-size NPC pool. NPC pools take no modifiers.
func (s *service) RollNPCPool(ctx context.Context, input *RollNPCPoolInput) (*RollOutput, error) {
	if input == nil {
		return nil, yzeerr.InvalidArgument("input cannot be nil")
	}

	setting := s.activeSetting()
	actor, err := s.getActor(ctx, input.ActorID)
	if err != nil {
		return nil, err
	}

	npcPool, ok := actor.Pool(input.PoolID)
	if !ok {
		return nil, yzeerr.NotFoundf("actor %s has no pool %q", actor.ID, input.PoolID).
			WithMeta("actor_id", actor.ID).
			WithMeta("pool_id", input.PoolID)
	}

	pool := &entities.DicePool{Base: max(0, npcPool.Dice.Int())}
	dicepool.Finalize(pool, setting)

	snap := SnapshotPool(pool)
	snap.PoolID = npcPool.ID
	snap.PoolName = npcPool.Name
	snap.CanPush = npcPool.CanPush
	snap.AttributeValue = 0

	title := npcPool.Name
	if title == "" {
		title = npcPool.ID
	}

	return s.store(ctx, actor, setting, input.AuthorID, entities.RollKindNPC, title, pool, snap)
}

// store rolls the pool and persists the fresh roll state
func (s *service) store(ctx context.Context, actor *entities.Actor, setting *entities.Setting, authorID string,
	kind entities.RollKind, title string, pool *entities.DicePool, snap *entities.PoolSnapshot) (*RollOutput, error) {
	result, err := s.roller.RollPool(pool.Total)
	if err != nil {
		return nil, yzeerr.Wrap(err, "failed to roll dice pool")
	}

	state := NewRollState(StateParams{
		Kind:     kind,
		Title:    title,
		ActorID:  actor.ID,
		AuthorID: authorID,
		Setting:  setting,
		Pool:     snap,
		Dice:     result.Dice,
		Now:      s.timeProvider.Now(),
	})

	record := &entities.Record{
		ID:        s.uuid.New(),
		ActorID:   actor.ID,
		ActorName: actor.Name,
		AuthorID:  authorID,
		Content:   s.renderer.Content(actor.Name, state, setting),
		RollState: state,
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, yzeerr.Wrapf(err, "failed to store roll for actor %s", actor.ID)
	}

	summary := Summarize(state, setting, record.ID)
	s.cacheSummary(ctx, actor, summary)

	s.emit(ctx, events.NewRollCreatedEvent(actor, setting, record, result))

	s.logger.Info("rolled dice pool",
		zap.String("record_id", record.ID),
		zap.String("actor_id", actor.ID),
		zap.String("kind", string(kind)),
		zap.Int("dice", pool.Total),
		zap.Int("successes", state.Results.Successes))

	return &RollOutput{
		Record:  record,
		Pool:    pool,
		Roll:    result,
		Summary: summary,
	}, nil
}

// Push pushes the roll stored on a record. The read-modify-write runs inside
// the store's Mutate, so concurrent pushes of one record are serialized and
// only the first one rerolls.
func (s *service) Push(ctx context.Context, recordID string) (*PushOutput, error) {
	if recordID == "" {
		return nil, yzeerr.InvalidArgument("record ID is required")
	}

	var (
		result  *PushResult
		setting *entities.Setting
	)
	record, err := s.records.Mutate(ctx, recordID, func(rec *entities.Record) error {
		if rec.RollState == nil {
			return yzeerr.PushRejected(ReasonMissingState, "cannot push: record has no roll state").
				WithMeta("record_id", rec.ID)
		}

		setting = s.settingFor(rec.RollState)
		res, err := Push(rec.RollState, s.roller, s.timeProvider.Now())
		if err != nil {
			return err
		}
		result = res
		if !res.Applied() {
			return records.ErrSkipWrite
		}

		rec.RollState = res.State
		rec.Content = s.renderer.Content(rec.ActorName, res.State, setting)
		return nil
	})
	if err != nil {
		return nil, yzeerr.Wrapf(err, "failed to push record %s", recordID).
			WithMeta("record_id", recordID)
	}

	out := &PushOutput{
		Record:   record,
		Result:   result,
		Rejected: result.Rejected,
		Summary:  Summarize(record.RollState, setting, record.ID),
	}
	if !result.Applied() {
		s.logger.Debug("push rejected",
			zap.String("record_id", recordID),
			zap.String("reason", result.Rejected))
		return out, nil
	}

	// The push is committed; nothing below may fail it
	actor, err := s.actors.Get(ctx, record.ActorID)
	if err != nil {
		s.logger.Warn("pushed roll but could not resolve actor", append([]zap.Field{
			zap.String("record_id", record.ID),
			zap.String("actor_id", record.ActorID),
		}, yzeerr.Fields(err)...)...)
		actor = nil
	}
	if actor != nil {
		s.cacheSummary(ctx, actor, out.Summary)
	}
	out.Actor = actor

	s.emit(ctx, events.NewRollPushedEvent(actor, setting, record, result.Roll, events.PushSnapshot{
		Dice:      append([]int(nil), result.Previous.Results.Dice...),
		Successes: result.Previous.Results.Successes,
		State:     result.Previous,
	}))

	s.logger.Info("pushed roll",
		zap.String("record_id", record.ID),
		zap.String("actor_id", record.ActorID),
		zap.Ints("rerolled", result.State.Push.RerolledIndices),
		zap.Int("successes", result.State.Results.Successes))

	return out, nil
}

// PushLast pushes the newest roll record of an actor
func (s *service) PushLast(ctx context.Context, actorID string) (*PushOutput, error) {
	if actorID == "" {
		return nil, yzeerr.InvalidArgument("actor ID is required")
	}

	record, err := s.records.LatestByActor(ctx, actorID)
	if err != nil {
		return nil, yzeerr.Wrapf(err, "failed to find last roll of actor %s", actorID)
	}
	return s.Push(ctx, record.ID)
}

func (s *service) getActor(ctx context.Context, id string) (*entities.Actor, error) {
	if id == "" {
		return nil, yzeerr.Validation("an actor is required to roll")
	}
	actor, err := s.actors.Get(ctx, id)
	if err != nil {
		return nil, yzeerr.Wrapf(err, "failed to get actor %s", id)
	}
	return actor, nil
}

func (s *service) activeSetting() *entities.Setting {
	if s.settings == nil {
		return nil
	}
	return s.settings.Active()
}

// settingFor prefers the setting a roll was made under
func (s *service) settingFor(state *entities.RollState) *entities.Setting {
	if s.settings == nil {
		return nil
	}
	if state.SettingID != "" {
		if setting, err := s.settings.Get(state.SettingID); err == nil {
			return setting
		}
	}
	return s.settings.Active()
}

// cacheSummary stores the last-roll summary on the actor. The roll is
// already stored, so failures are only logged.
func (s *service) cacheSummary(ctx context.Context, actor *entities.Actor, summary *entities.RollSummary) {
	actor.Flags.LastRoll = summary
	if err := s.actors.Update(ctx, actor); err != nil {
		s.logger.Warn("failed to cache last roll on actor",
			zap.String("actor_id", actor.ID),
			zap.Error(err))
	}
}

func (s *service) emit(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Emit(ctx, event); err != nil {
		s.logger.Warn("roll listener failed",
			zap.String("event", string(event.GetType())),
			zap.Error(err))
	}
}
