package roll_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	mockdice "github.com/KirkDiggler/yze-core/internal/dice/mock"
	"github.com/KirkDiggler/yze-core/internal/entities"
	yzeerr "github.com/KirkDiggler/yze-core/internal/errors"
	"github.com/KirkDiggler/yze-core/internal/events"
	"github.com/KirkDiggler/yze-core/internal/repositories/actors"
	mockactors "github.com/KirkDiggler/yze-core/internal/repositories/actors/mock"
	"github.com/KirkDiggler/yze-core/internal/repositories/records"
	mockrecords "github.com/KirkDiggler/yze-core/internal/repositories/records/mock"
	"github.com/KirkDiggler/yze-core/internal/services/roll"
	"github.com/KirkDiggler/yze-core/internal/setting"
	"github.com/KirkDiggler/yze-core/internal/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

var rollTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type ServiceTestSuite struct {
	suite.Suite
	ctx          context.Context
	ctrl         *gomock.Controller
	timeProvider *mockrecords.MockTimeProvider
	roller       *mockdice.ManualMockRoller
	records      *records.InMemoryRepository
	actors       *actors.InMemoryRepository
	bus          *events.Bus
	registry     *setting.Registry
	service      roll.Service

	pushed []*events.RollPushedEvent
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func testSetting() *entities.Setting {
	return &entities.Setting{
		ID:   "test",
		Name: "Test Setting",
		Attributes: []entities.AttributeDef{
			{ID: "str", Name: "Strength"},
			{ID: "agi", Name: "Agility"},
		},
		Skills: []entities.SkillDef{
			{ID: "melee", Name: "Melee", Attribute: "str"},
		},
		Resources: map[string]entities.ResourceDef{
			"stress": {Name: "Stress", Path: "system.stress.value", MaxPath: "system.stress.max"},
		},
	}
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.timeProvider = mockrecords.NewMockTimeProvider(s.ctrl)
	s.timeProvider.EXPECT().Now().Return(rollTime).AnyTimes()
	s.roller = mockdice.NewManualMockRoller()
	s.records = records.NewInMemoryRepository(s.timeProvider)
	s.actors = actors.NewInMemoryRepository()
	s.bus = events.NewBus(nil)
	s.registry = setting.NewRegistry(&setting.RegistryConfig{Events: s.bus})
	s.pushed = nil

	s.Require().NoError(s.registry.Register(testSetting()))
	s.Require().NoError(s.registry.Activate(s.ctx, "test"))

	s.bus.Subscribe(events.EventTypeRollPushed, events.NewListener("capture", 0,
		func(_ context.Context, e events.Event) error {
			s.pushed = append(s.pushed, e.(*events.RollPushedEvent))
			return nil
		}))

	s.service = s.newService(s.actors)

	actor := &entities.Actor{ID: "ada", Name: "Ada", Type: entities.ActorTypeCharacter}
	actor.SetValueAt(entities.AttributePath("str"), 3)
	actor.SetValueAt(entities.SkillPath("melee"), 2)
	s.Require().NoError(s.actors.Create(s.ctx, actor))
}

func (s *ServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceTestSuite) newService(actorRepo actors.Repository) roll.Service {
	return roll.NewService(&roll.ServiceConfig{
		Records:      s.records,
		Actors:       actorRepo,
		Settings:     s.registry,
		Roller:       s.roller,
		Events:       s.bus,
		UUID:         uuid.NewSequenceGenerator("rec"),
		TimeProvider: s.timeProvider,
	})
}

func (s *ServiceTestSuite) rollMelee(faces ...int) *roll.RollOutput {
	s.roller.SetRolls(faces)
	out, err := s.service.RollSkill(s.ctx, &roll.RollSkillInput{
		ActorID:  "ada",
		AuthorID: "user-1",
		SkillID:  "melee",
	})
	s.Require().NoError(err)
	return out
}

func (s *ServiceTestSuite) TestRollSkill_BaseOnly() {
	out := s.rollMelee(6, 3, 6, 1, 2)

	s.Equal(5, out.Pool.Total)
	s.Equal("Base 5 = 5", out.Pool.Breakdown)

	state := out.Record.RollState
	s.Equal(entities.RollKindSkill, state.Kind)
	s.Equal("Strength+Melee Roll", state.Title)
	s.Equal("test", state.SettingID)
	s.Equal("user-1", state.AuthorID)
	s.Equal([]int{6, 3, 6, 1, 2}, state.Results.Dice)
	s.Equal(2, state.Results.Successes)
	s.Equal([]int{6, 3, 6}, state.Results.AttributeDice)
	s.Equal([]int{1, 2}, state.Results.SkillDice)
	s.Equal([]int{}, state.Results.ModifierDice)
	s.False(state.Pushed)
	s.True(state.Pushable)
	s.Equal(0, state.PushCount)
	s.True(state.CreatedAt.Equal(rollTime))

	stored, err := s.records.Get(s.ctx, out.Record.ID)
	s.Require().NoError(err)
	s.Equal("Ada", stored.ActorName)
	s.Contains(stored.Content, "**Ada** rolls Strength+Melee Roll")

	s.Equal("Melee (Strength)", out.Summary.Label)
	s.Equal(1, out.Summary.Banes)

	actor, err := s.actors.Get(s.ctx, "ada")
	s.Require().NoError(err)
	s.Require().NotNil(actor.Flags.LastRoll)
	s.Equal(out.Record.ID, actor.Flags.LastRoll.RecordID)
	s.Equal(2, actor.Flags.LastRoll.Successes)
}

func (s *ServiceTestSuite) TestRollSkill_AdHocBonus() {
	s.roller.SetRolls([]int{1, 2, 3, 4, 5, 6, 6})
	out, err := s.service.RollSkill(s.ctx, &roll.RollSkillInput{
		ActorID: "ada",
		SkillID: "melee",
		Modifiers: []entities.ModifierEntry{
			{Source: "Bonus", Value: 2},
		},
	})
	s.Require().NoError(err)

	s.Equal(7, out.Pool.Total)
	s.Contains(out.Pool.Breakdown, "+ Bonus 2")
	s.Equal([]int{6, 6}, out.Record.RollState.Results.ModifierDice)
	s.Equal([]int{7}, s.roller.PoolCounts())
}

func (s *ServiceTestSuite) TestRollAttribute() {
	s.roller.SetRolls([]int{6, 1, 2})
	out, err := s.service.RollAttribute(s.ctx, &roll.RollAttributeInput{
		ActorID:     "ada",
		AttributeID: "str",
	})
	s.Require().NoError(err)

	state := out.Record.RollState
	s.Equal("Strength Roll", state.Title)
	s.Equal([]int{6, 1, 2}, state.Results.AttributeDice)
	s.Equal([]int{}, state.Results.SkillDice)
	s.Equal("Strength", out.Summary.Label)
}

func (s *ServiceTestSuite) TestRollAttribute_MissingValue() {
	_, err := s.service.RollAttribute(s.ctx, &roll.RollAttributeInput{
		ActorID:     "ada",
		AttributeID: "agi",
	})
	s.True(yzeerr.IsValidation(err))

	list, err := s.records.ListByActor(s.ctx, "ada")
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *ServiceTestSuite) TestRoll_UnknownActor() {
	_, err := s.service.RollAttribute(s.ctx, &roll.RollAttributeInput{
		ActorID:     "ghost",
		AttributeID: "str",
	})
	s.True(yzeerr.IsNotFound(err))
}

func (s *ServiceTestSuite) TestPush_Scenario() {
	out := s.rollMelee(6, 3, 6, 1, 2)

	s.roller.SetRolls([]int{6, 5, 4})
	pushed, err := s.service.Push(s.ctx, out.Record.ID)
	s.Require().NoError(err)
	s.True(pushed.Applied())

	state := pushed.Record.RollState
	s.Equal([]int{6, 6, 6, 5, 4}, state.Results.Dice)
	s.Equal(3, state.Results.Successes)
	s.True(state.Pushed)
	s.False(state.Pushable)
	s.Equal(1, state.PushCount)
	s.Equal([]int{1, 3, 4}, state.Push.RerolledIndices)
	s.Equal([]int{6, 3, 6, 1, 2}, state.Push.BeforeDice)
	s.Equal([]int{6, 6, 6}, state.Results.AttributeDice)
	s.Equal([]int{5, 4}, state.Results.SkillDice)
	s.Equal(int64(2), pushed.Record.Version)
	s.Require().NotNil(pushed.Actor)

	s.Require().Len(s.pushed, 1)
	event := s.pushed[0]
	s.Equal("ada", event.Actor.ID)
	s.Equal([]int{6, 3, 6, 1, 2}, event.Previous.Dice)
	s.Equal(2, event.Previous.Successes)
	s.False(event.Previous.State.Pushed)
	s.Equal([]int{6, 5, 4}, event.Roll.Dice)

	actor, err := s.actors.Get(s.ctx, "ada")
	s.Require().NoError(err)
	s.True(actor.Flags.LastRoll.Pushed)
	s.Equal(3, actor.Flags.LastRoll.Successes)

	// Second push is a no-op echo
	again, err := s.service.Push(s.ctx, out.Record.ID)
	s.Require().NoError(err)
	s.False(again.Applied())
	s.Equal(roll.ReasonAlreadyPushed, again.Rejected)
	s.Equal([]int{6, 6, 6, 5, 4}, again.Record.RollState.Results.Dice)
	s.Equal(1, again.Record.RollState.PushCount)
	s.Equal(int64(2), again.Record.Version)
	s.Len(s.pushed, 1)
	s.Equal([]int{5, 3}, s.roller.PoolCounts())
}

func (s *ServiceTestSuite) TestPush_NothingToPush() {
	s.roller.SetRolls([]int{6, 6, 6})
	out, err := s.service.RollAttribute(s.ctx, &roll.RollAttributeInput{
		ActorID:     "ada",
		AttributeID: "str",
	})
	s.Require().NoError(err)

	pushed, err := s.service.Push(s.ctx, out.Record.ID)
	s.Require().NoError(err)
	s.Equal(roll.ReasonNothingToPush, pushed.Rejected)
	s.False(pushed.Record.RollState.Pushed)
	s.Equal(int64(1), pushed.Record.Version)
	s.Empty(s.pushed)
}

func (s *ServiceTestSuite) TestPush_MissingState() {
	s.Require().NoError(s.records.Create(s.ctx, &entities.Record{
		ID:      "chat-1",
		ActorID: "ada",
		Content: "just talking",
	}))

	_, err := s.service.Push(s.ctx, "chat-1")
	s.Require().Error(err)
	s.True(yzeerr.IsPushRejected(err))
	s.Equal(roll.ReasonMissingState, yzeerr.GetReason(err))
}

func (s *ServiceTestSuite) TestPush_UnknownRecord() {
	_, err := s.service.Push(s.ctx, "missing")
	s.True(yzeerr.IsNotFound(err))
}

func (s *ServiceTestSuite) TestPush_ConcurrentCallsPushOnce() {
	out := s.rollMelee(1, 2, 3, 4, 5)
	s.roller.SetRolls([]int{6, 6, 6, 6, 6})

	const callers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied int
		echoed  int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.service.Push(s.ctx, out.Record.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
			case res.Applied():
				applied++
			case res.Rejected == roll.ReasonAlreadyPushed:
				echoed++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, applied)
	s.Equal(callers-1, echoed)

	stored, err := s.records.Get(s.ctx, out.Record.ID)
	s.Require().NoError(err)
	s.Equal(1, stored.RollState.PushCount)
	s.Equal([]int{6, 6, 6, 6, 6}, stored.RollState.Results.Dice)
}

func (s *ServiceTestSuite) TestPush_ListenerFailureKeepsPush() {
	s.bus.Subscribe(events.EventTypeRollPushed, events.NewListener("broken", 10,
		func(context.Context, events.Event) error {
			return errors.New("listener exploded")
		}))
	s.bus.Subscribe(events.EventTypeRollPushed, events.NewListener("panicky", 20,
		func(context.Context, events.Event) error {
			panic("boom")
		}))

	out := s.rollMelee(1, 1, 1, 1, 1)
	s.roller.SetRolls([]int{2, 2, 2, 2, 2})

	pushed, err := s.service.Push(s.ctx, out.Record.ID)
	s.Require().NoError(err)
	s.True(pushed.Applied())
	s.Len(s.pushed, 1)

	stored, err := s.records.Get(s.ctx, out.Record.ID)
	s.Require().NoError(err)
	s.True(stored.RollState.Pushed)
}

func (s *ServiceTestSuite) TestPushLast() {
	first := s.rollMelee(1, 1, 1, 1, 1)
	second := s.rollMelee(2, 2, 2, 2, 2)

	s.roller.SetRolls([]int{6, 6, 6, 6, 6})
	pushed, err := s.service.PushLast(s.ctx, "ada")
	s.Require().NoError(err)
	s.Equal(second.Record.ID, pushed.Record.ID)

	untouched, err := s.records.Get(s.ctx, first.Record.ID)
	s.Require().NoError(err)
	s.False(untouched.RollState.Pushed)
}

func (s *ServiceTestSuite) TestPushLast_NoRolls() {
	_, err := s.service.PushLast(s.ctx, "ada")
	s.True(yzeerr.IsNotFound(err))
}

func (s *ServiceTestSuite) TestRollNPCPool() {
	npc := &entities.Actor{
		ID:   "raider",
		Name: "Raider",
		Type: entities.ActorTypeNPC,
		Pools: []entities.NPCPool{
			{ID: "attack", Name: "Attack", Dice: 4, CanPush: false},
			{ID: "dodge", Name: "Dodge", Dice: 2, CanPush: true},
		},
	}
	s.Require().NoError(s.actors.Create(s.ctx, npc))

	s.roller.SetRolls([]int{6, 2, 3, 1})
	out, err := s.service.RollNPCPool(s.ctx, &roll.RollNPCPoolInput{ActorID: "raider", PoolID: "attack"})
	s.Require().NoError(err)

	state := out.Record.RollState
	s.Equal(entities.RollKindNPC, state.Kind)
	s.Equal("Attack", state.Title)
	s.Equal("Base 4 = 4", state.Pool.Breakdown)
	s.Equal("attack", state.Pool.PoolID)
	s.False(state.Pushable)
	s.Equal([]int{}, state.Results.AttributeDice)
	s.Equal("Attack", out.Summary.Label)

	pushed, err := s.service.Push(s.ctx, out.Record.ID)
	s.Require().NoError(err)
	s.Equal(roll.ReasonNotPushable, pushed.Rejected)

	s.roller.SetRolls([]int{3, 4})
	dodge, err := s.service.RollNPCPool(s.ctx, &roll.RollNPCPoolInput{ActorID: "raider", PoolID: "dodge"})
	s.Require().NoError(err)
	s.True(dodge.Record.RollState.Pushable)

	_, err = s.service.RollNPCPool(s.ctx, &roll.RollNPCPoolInput{ActorID: "raider", PoolID: "bite"})
	s.True(yzeerr.IsNotFound(err))
}

func (s *ServiceTestSuite) TestNonPushableKind() {
	strict := testSetting()
	strict.ID = "strict"
	strict.NonPushableKinds = []entities.RollKind{entities.RollKindAttribute}
	s.Require().NoError(s.registry.Register(strict))
	s.Require().NoError(s.registry.Activate(s.ctx, "strict"))

	s.roller.SetRolls([]int{1, 2, 3})
	out, err := s.service.RollAttribute(s.ctx, &roll.RollAttributeInput{ActorID: "ada", AttributeID: "str"})
	s.Require().NoError(err)
	s.False(out.Record.RollState.Pushable)

	pushed, err := s.service.Push(s.ctx, out.Record.ID)
	s.Require().NoError(err)
	s.Equal(roll.ReasonNotPushable, pushed.Rejected)
}

func (s *ServiceTestSuite) TestPush_ActorLookupFailureIsNotFatal() {
	out := s.rollMelee(1, 2, 3, 4, 5)

	mockActors := mockactors.NewMockRepository(s.ctrl)
	mockActors.EXPECT().Get(gomock.Any(), "ada").
		Return(nil, yzeerr.NotFound("actor deleted"))
	svc := s.newService(mockActors)

	s.roller.SetRolls([]int{6, 6, 6, 6, 6})
	pushed, err := svc.Push(s.ctx, out.Record.ID)
	s.Require().NoError(err)
	s.True(pushed.Applied())
	s.Nil(pushed.Actor)

	s.Require().Len(s.pushed, 1)
	s.Nil(s.pushed[0].Actor)
	s.True(s.pushed[0].State.Pushed)
}

func (s *ServiceTestSuite) TestRoll_CacheFailureIsNotFatal() {
	mockActors := mockactors.NewMockRepository(s.ctrl)
	actor, err := s.actors.Get(s.ctx, "ada")
	s.Require().NoError(err)
	mockActors.EXPECT().Get(gomock.Any(), "ada").Return(actor, nil)
	mockActors.EXPECT().Update(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
	svc := s.newService(mockActors)

	s.roller.SetRolls([]int{6, 6, 6})
	out, err := svc.RollAttribute(s.ctx, &roll.RollAttributeInput{ActorID: "ada", AttributeID: "str"})
	s.Require().NoError(err)
	s.Equal(3, out.Summary.Successes)
}

func (s *ServiceTestSuite) TestInputValidation() {
	_, err := s.service.RollAttribute(s.ctx, nil)
	s.True(yzeerr.IsInvalidArgument(err))

	_, err = s.service.RollSkill(s.ctx, &roll.RollSkillInput{ActorID: "ada"})
	s.True(yzeerr.IsValidation(err))

	_, err = s.service.RollAttribute(s.ctx, &roll.RollAttributeInput{AttributeID: "str"})
	s.True(yzeerr.IsValidation(err))

	_, err = s.service.Push(s.ctx, "")
	s.True(yzeerr.IsInvalidArgument(err))
}
