package actors_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/KirkDiggler/yze-core/internal/entities"
	yzeerr "github.com/KirkDiggler/yze-core/internal/errors"
	"github.com/KirkDiggler/yze-core/internal/repositories/actors"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisRepoTestSuite struct {
	suite.Suite
	mockClient *redis.Client
	mock       redismock.ClientMock
	repo       actors.Repository
	ctx        context.Context
}

func (s *RedisRepoTestSuite) SetupTest() {
	s.mockClient, s.mock = redismock.NewClientMock()
	s.repo = actors.NewRedisRepository(&actors.RedisRepoConfig{Client: s.mockClient})
	s.ctx = context.Background()
}

func (s *RedisRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestRedisRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepoTestSuite))
}

func (s *RedisRepoTestSuite) TestCreate_AlreadyExists() {
	s.mock.ExpectExists("actor:ada").SetVal(1)

	err := s.repo.Create(s.ctx, testActor("ada", "Ada"))
	s.True(yzeerr.IsAlreadyExists(err))
}

func (s *RedisRepoTestSuite) TestCreate_ExistsError() {
	s.mock.ExpectExists("actor:ada").SetErr(errors.New("connection refused"))

	err := s.repo.Create(s.ctx, testActor("ada", "Ada"))
	s.Error(err)
}

func (s *RedisRepoTestSuite) TestGet() {
	data, err := json.Marshal(testActor("ada", "Ada"))
	s.Require().NoError(err)
	s.mock.ExpectGet("actor:ada").SetVal(string(data))

	got, err := s.repo.Get(s.ctx, "ada")
	s.Require().NoError(err)
	s.Equal("Ada", got.Name)
	strength, ok := got.NumberAt(entities.AttributePath("strength"))
	s.True(ok)
	s.Equal(3.0, strength)
}

func (s *RedisRepoTestSuite) TestGet_NotFound() {
	s.mock.ExpectGet("actor:ghost").RedisNil()

	_, err := s.repo.Get(s.ctx, "ghost")
	s.True(yzeerr.IsNotFound(err))
}

func (s *RedisRepoTestSuite) TestList() {
	data, err := json.Marshal(testActor("ada", "Ada"))
	s.Require().NoError(err)

	s.mock.ExpectSMembers("actors").SetVal([]string{"ada"})
	s.mock.ExpectGet("actor:ada").SetVal(string(data))

	list, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("ada", list[0].ID)
}

func (s *RedisRepoTestSuite) TestDelete() {
	s.mock.ExpectDel("actor:ada").SetVal(1)
	s.mock.ExpectSRem("actors", "ada").SetVal(1)

	s.NoError(s.repo.Delete(s.ctx, "ada"))
}

func (s *RedisRepoTestSuite) TestDelete_NotFound() {
	s.mock.ExpectDel("actor:ghost").SetVal(0)

	s.True(yzeerr.IsNotFound(s.repo.Delete(s.ctx, "ghost")))
}
