package records_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/KirkDiggler/yze-core/internal/entities"
	yzeerr "github.com/KirkDiggler/yze-core/internal/errors"
	"github.com/KirkDiggler/yze-core/internal/repositories/records"
	mockrecords "github.com/KirkDiggler/yze-core/internal/repositories/records/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

var baseTime = time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)

// steppingClock hands out strictly increasing timestamps
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// repositoryContractSuite runs the same behaviour checks against every
// Repository implementation
type repositoryContractSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	timeProvider *mockrecords.MockTimeProvider
	clock        *steppingClock
	repo         records.Repository
	ctx          context.Context

	newRepo func(tp records.TimeProvider) records.Repository
}

func (s *repositoryContractSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.clock = &steppingClock{now: baseTime}
	s.timeProvider = mockrecords.NewMockTimeProvider(s.ctrl)
	s.timeProvider.EXPECT().Now().DoAndReturn(s.clock.next).AnyTimes()
	s.repo = s.newRepo(s.timeProvider)
	s.ctx = context.Background()
}

func (s *repositoryContractSuite) TearDownTest() {
	s.ctrl.Finish()
}

func rollRecord(id, actorID string) *entities.Record {
	return &entities.Record{
		ID:      id,
		ActorID: actorID,
		Content: "Strength roll",
		RollState: &entities.RollState{
			Version:  entities.RollStateVersion,
			ActorID:  actorID,
			Kind:     entities.RollKindAttribute,
			Title:    "Strength",
			Pushable: true,
			Pool: &entities.PoolSnapshot{
				AttributeID:    "strength",
				AttributeValue: 3,
				Base:           3,
				Total:          3,
			},
			Results: &entities.RollResults{
				Dice:          []int{6, 2, 1},
				Successes:     1,
				AttributeDice: []int{6, 2, 1},
				SkillDice:     []int{},
				ModifierDice:  []int{},
			},
			CreatedAt: baseTime,
		},
	}
}

func (s *repositoryContractSuite) TestCreateAndGet() {
	record := rollRecord("rec-1", "actor-1")

	err := s.repo.Create(s.ctx, record)
	s.Require().NoError(err)
	s.Equal(int64(1), record.Version)
	s.False(record.CreatedAt.IsZero())

	got, err := s.repo.Get(s.ctx, "rec-1")
	s.Require().NoError(err)
	s.Equal("actor-1", got.ActorID)
	s.Equal(int64(1), got.Version)
	s.True(record.CreatedAt.Equal(got.CreatedAt))
	s.Require().NotNil(got.RollState)
	s.Equal([]int{6, 2, 1}, got.RollState.Results.Dice)
}

func (s *repositoryContractSuite) TestCreateValidation() {
	s.True(yzeerr.IsInvalidArgument(s.repo.Create(s.ctx, nil)))
	s.True(yzeerr.IsInvalidArgument(s.repo.Create(s.ctx, &entities.Record{ActorID: "actor-1"})))
	s.True(yzeerr.IsInvalidArgument(s.repo.Create(s.ctx, &entities.Record{ID: "rec-1"})))
}

func (s *repositoryContractSuite) TestCreateDuplicate() {
	s.Require().NoError(s.repo.Create(s.ctx, rollRecord("rec-1", "actor-1")))

	err := s.repo.Create(s.ctx, rollRecord("rec-1", "actor-1"))
	s.True(yzeerr.IsAlreadyExists(err))
}

func (s *repositoryContractSuite) TestConcurrentCreateOneWins() {
	const creators = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		duplicate int
	)

	for i := 0; i < creators; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.repo.Create(s.ctx, rollRecord("rec-1", "actor-1"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case yzeerr.IsAlreadyExists(err):
				duplicate++
			default:
				s.Failf("unexpected create error", "%v", err)
			}
		}()
	}
	wg.Wait()

	s.Equal(1, created)
	s.Equal(creators-1, duplicate)

	list, err := s.repo.ListByActor(s.ctx, "actor-1")
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *repositoryContractSuite) TestGetNotFound() {
	_, err := s.repo.Get(s.ctx, "missing")
	s.True(yzeerr.IsNotFound(err))

	_, err = s.repo.Get(s.ctx, "")
	s.True(yzeerr.IsInvalidArgument(err))
}

func (s *repositoryContractSuite) TestMutateBumpsVersion() {
	s.Require().NoError(s.repo.Create(s.ctx, rollRecord("rec-1", "actor-1")))

	updated, err := s.repo.Mutate(s.ctx, "rec-1", func(record *entities.Record) error {
		record.RollState.Pushed = true
		record.RollState.PushCount = 1
		// Store-owned fields are ignored
		record.ActorID = "someone-else"
		record.Version = 99
		return nil
	})
	s.Require().NoError(err)
	s.Equal(int64(2), updated.Version)
	s.Equal("actor-1", updated.ActorID)
	s.True(updated.UpdatedAt.After(updated.CreatedAt))

	got, err := s.repo.Get(s.ctx, "rec-1")
	s.Require().NoError(err)
	s.True(got.RollState.Pushed)
	s.Equal(1, got.RollState.PushCount)
	s.Equal(int64(2), got.Version)
}

func (s *repositoryContractSuite) TestMutateSkipWrite() {
	s.Require().NoError(s.repo.Create(s.ctx, rollRecord("rec-1", "actor-1")))

	got, err := s.repo.Mutate(s.ctx, "rec-1", func(record *entities.Record) error {
		record.Content = "changed"
		return records.ErrSkipWrite
	})
	s.Require().NoError(err)
	s.Equal("Strength roll", got.Content)
	s.Equal(int64(1), got.Version)

	stored, err := s.repo.Get(s.ctx, "rec-1")
	s.Require().NoError(err)
	s.Equal("Strength roll", stored.Content)
}

func (s *repositoryContractSuite) TestMutateCallbackError() {
	s.Require().NoError(s.repo.Create(s.ctx, rollRecord("rec-1", "actor-1")))
	boom := errors.New("boom")

	_, err := s.repo.Mutate(s.ctx, "rec-1", func(record *entities.Record) error {
		record.Content = "changed"
		return boom
	})
	s.ErrorIs(err, boom)

	stored, err := s.repo.Get(s.ctx, "rec-1")
	s.Require().NoError(err)
	s.Equal("Strength roll", stored.Content)
	s.Equal(int64(1), stored.Version)
}

func (s *repositoryContractSuite) TestMutateMissing() {
	_, err := s.repo.Mutate(s.ctx, "missing", func(*entities.Record) error { return nil })
	s.True(yzeerr.IsNotFound(err))

	_, err = s.repo.Mutate(s.ctx, "rec-1", nil)
	s.True(yzeerr.IsInvalidArgument(err))
}

func (s *repositoryContractSuite) TestConcurrentMutateIsSerialized() {
	s.Require().NoError(s.repo.Create(s.ctx, rollRecord("rec-1", "actor-1")))

	const writers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied int
	)

	// Each writer only pushes a roll that has not been pushed yet
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.repo.Mutate(s.ctx, "rec-1", func(record *entities.Record) error {
				if record.RollState.Pushed {
					return records.ErrSkipWrite
				}
				record.RollState.Pushed = true
				record.RollState.PushCount++
				return nil
			})
			if err == nil {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	got, err := s.repo.Get(s.ctx, "rec-1")
	s.Require().NoError(err)
	s.True(got.RollState.Pushed)
	s.Equal(1, got.RollState.PushCount)
	s.Equal(int64(2), got.Version)
	s.Equal(writers, applied)
}

func (s *repositoryContractSuite) TestListByActorNewestFirst() {
	for i := 1; i <= 3; i++ {
		s.Require().NoError(s.repo.Create(s.ctx, rollRecord(fmt.Sprintf("rec-%d", i), "actor-1")))
	}
	s.Require().NoError(s.repo.Create(s.ctx, rollRecord("other", "actor-2")))

	list, err := s.repo.ListByActor(s.ctx, "actor-1")
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal("rec-3", list[0].ID)
	s.Equal("rec-2", list[1].ID)
	s.Equal("rec-1", list[2].ID)

	empty, err := s.repo.ListByActor(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(empty)
}

func (s *repositoryContractSuite) TestLatestByActorSkipsPlainMessages() {
	s.Require().NoError(s.repo.Create(s.ctx, rollRecord("roll", "actor-1")))
	s.Require().NoError(s.repo.Create(s.ctx, &entities.Record{
		ID:      "chat",
		ActorID: "actor-1",
		Content: "hello",
	}))

	latest, err := s.repo.LatestByActor(s.ctx, "actor-1")
	s.Require().NoError(err)
	s.Equal("roll", latest.ID)

	_, err = s.repo.LatestByActor(s.ctx, "actor-2")
	s.True(yzeerr.IsNotFound(err))
}

func (s *repositoryContractSuite) TestLegacyRollStateIsMigratedOnLoad() {
	diceCount, mod := 5, 2
	record := &entities.Record{
		ID:      "legacy",
		ActorID: "actor-1",
		RollState: &entities.RollState{
			Version: 0,
			ActorID: "actor-1",
			Kind:    entities.RollKindAttribute,
			Pool: &entities.PoolSnapshot{
				AttributeID: "strength",
				DiceCount:   &diceCount,
				Mod:         &mod,
			},
		},
	}
	s.Require().NoError(s.repo.Create(s.ctx, record))

	got, err := s.repo.Get(s.ctx, "legacy")
	s.Require().NoError(err)
	s.Equal(entities.RollStateVersion, got.RollState.Version)
	s.Equal(3, got.RollState.Pool.AttributeValue)
	s.Equal(5, got.RollState.Pool.Total)
	s.Nil(got.RollState.Pool.DiceCount)
	s.Require().Len(got.RollState.Pool.Modifiers, 1)
	s.Equal(2, got.RollState.Pool.Modifiers[0].Value)
}

func (s *repositoryContractSuite) TestDelete() {
	s.Require().NoError(s.repo.Create(s.ctx, rollRecord("rec-1", "actor-1")))

	s.Require().NoError(s.repo.Delete(s.ctx, "rec-1"))

	_, err := s.repo.Get(s.ctx, "rec-1")
	s.True(yzeerr.IsNotFound(err))
	s.True(yzeerr.IsNotFound(s.repo.Delete(s.ctx, "rec-1")))

	list, err := s.repo.ListByActor(s.ctx, "actor-1")
	s.Require().NoError(err)
	s.Empty(list)
}
