package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/haruki/examquest/internal/repository"
	"github.com/haruki/examquest/internal/repository/sqlite"
	"github.com/haruki/examquest/internal/testutil"
)

type StateStoreSuite struct {
	suite.Suite
	db    *sql.DB
	store repository.StateStore
}

func (s *StateStoreSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.store = sqlite.NewStateStore(s.db)
}

func (s *StateStoreSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *StateStoreSuite) TestGetMissingKey() {
	value, ok, err := s.store.Get(context.Background(), "never-written")
	s.Require().NoError(err)
	s.False(ok)
	s.Nil(value)
}

func (s *StateStoreSuite) TestSetAndGet() {
	ctx := context.Background()

	s.Require().NoError(s.store.Set(ctx, "examquest-v1", []byte(`{"totalScore":90}`)))

	value, ok, err := s.store.Get(ctx, "examquest-v1")
	s.Require().NoError(err)
	s.True(ok)
	s.JSONEq(`{"totalScore":90}`, string(value))
}

func (s *StateStoreSuite) TestSetOverwrites() {
	ctx := context.Background()

	s.Require().NoError(s.store.Set(ctx, "key", []byte(`[1]`)))
	s.Require().NoError(s.store.Set(ctx, "key", []byte(`[1,2]`)))

	value, ok, err := s.store.Get(ctx, "key")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(`[1,2]`, string(value))
}

func (s *StateStoreSuite) TestDelete() {
	ctx := context.Background()

	s.Require().NoError(s.store.Set(ctx, "key", []byte(`{}`)))
	s.Require().NoError(s.store.Delete(ctx, "key"))

	_, ok, err := s.store.Get(ctx, "key")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *StateStoreSuite) TestClear() {
	ctx := context.Background()

	s.Require().NoError(s.store.Set(ctx, "a", []byte(`1`)))
	s.Require().NoError(s.store.Set(ctx, "b", []byte(`2`)))
	s.Require().NoError(s.store.Clear(ctx))

	for _, key := range []string{"a", "b"} {
		_, ok, err := s.store.Get(ctx, key)
		s.Require().NoError(err)
		s.False(ok)
	}
}

func TestStateStoreSuite(t *testing.T) {
	suite.Run(t, new(StateStoreSuite))
}
