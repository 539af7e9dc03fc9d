package service

import (
	"clientsvc/internal/backends/memory"
	"clientsvc/internal/types"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testTopic = "arn:aws:sns:us-east-1:000000000000:client-events"

var errBoom = errors.New("boom")

type ClientServiceTestSuite struct {
	suite.Suite

	ctx   context.Context
	store *mockStore
	svc   *ClientService
}

func TestClientServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ClientServiceTestSuite))
}

func (s *ClientServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = new(mockStore)
	s.svc = NewClientService(s.store)
}

func (s *ClientServiceTestSuite) TearDownTest() {
	s.store.AssertExpectations(s.T())
}

func (s *ClientServiceTestSuite) TestFindAllWrapsStoreFailure() {
	s.store.On("GetAll", s.ctx).Return(nil, types.ErrStorageUnavailable)

	_, err := s.svc.FindAll(s.ctx)
	s.ErrorIs(err, types.ErrOperationFailed)
	s.NotErrorIs(err, types.ErrStorageUnavailable)
}

func (s *ClientServiceTestSuite) TestFindByIDEmptyIDSkipsStore() {
	_, err := s.svc.FindByID(s.ctx, "")
	s.ErrorIs(err, types.ErrInvalidInput)
	s.store.AssertNotCalled(s.T(), "GetByID", mock.Anything, mock.Anything)
}

func (s *ClientServiceTestSuite) TestFindByIDAbsent() {
	s.store.On("GetByID", s.ctx, "missing").Return(nil, nil)

	_, err := s.svc.FindByID(s.ctx, "missing")
	s.ErrorIs(err, types.ErrNotFound)
	var nf *types.NotFoundError
	s.Require().ErrorAs(err, &nf)
	s.Equal("missing", nf.ID)
}

func (s *ClientServiceTestSuite) TestFindByIDPropagatesStorageError() {
	cause := types.Err(types.ErrStorageUnavailable, errBoom, "")
	s.store.On("GetByID", s.ctx, "c1").Return(nil, cause)

	_, err := s.svc.FindByID(s.ctx, "c1")
	s.Equal(cause, err)
}

func (s *ClientServiceTestSuite) TestCreateRejectsInvalidCandidates() {
	for _, c := range []types.Record{nil, {}, {"fullName": "  "}, {"fullName": 42}} {
		_, err := s.svc.Create(s.ctx, c)
		s.ErrorIs(err, types.ErrInvalidInput)
	}
	s.store.AssertNotCalled(s.T(), "Insert", mock.Anything, mock.Anything)
}

func (s *ClientServiceTestSuite) TestCreateWrapsStoreFailure() {
	c := types.Record{"fullName": "Bob"}
	s.store.On("Insert", s.ctx, c).Return(nil, errBoom)

	_, err := s.svc.Create(s.ctx, c)
	s.ErrorIs(err, types.ErrOperationFailed)
	s.NotErrorIs(err, errBoom)
}

func (s *ClientServiceTestSuite) TestUpdateRequiresIDAndCandidate() {
	_, err := s.svc.Update(s.ctx, "", types.Record{"fullName": "x"})
	s.ErrorIs(err, types.ErrInvalidInput)
	_, err = s.svc.Update(s.ctx, "c1", nil)
	s.ErrorIs(err, types.ErrInvalidInput)
	s.store.AssertNotCalled(s.T(), "Update", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ClientServiceTestSuite) TestUpdateOutcomes() {
	s.store.On("Update", s.ctx, "gone", types.Record{"a": 1}).
		Return(types.UpdateResult{Outcome: types.UpdateNotFound}, nil)
	s.store.On("Update", s.ctx, "c1", types.Record{}).
		Return(types.UpdateResult{Outcome: types.NoFieldsProvided}, nil)

	_, err := s.svc.Update(s.ctx, "gone", types.Record{"a": 1})
	s.ErrorIs(err, types.ErrNotFound)

	_, err = s.svc.Update(s.ctx, "c1", types.Record{})
	s.ErrorIs(err, types.ErrNoFieldsProvided)
	s.ErrorIs(err, types.ErrInvalidInput)
	s.NotErrorIs(err, types.ErrNotFound)
}

func (s *ClientServiceTestSuite) TestUpdatePropagatesStorageError() {
	s.store.On("Update", s.ctx, "c1", types.Record{"a": 1}).
		Return(types.UpdateResult{}, types.ErrStorageRejected)

	_, err := s.svc.Update(s.ctx, "c1", types.Record{"a": 1})
	s.ErrorIs(err, types.ErrStorageRejected)
}

func (s *ClientServiceTestSuite) TestDelete() {
	_, err := s.svc.Delete(s.ctx, "")
	s.ErrorIs(err, types.ErrInvalidInput)

	s.store.On("DeleteItem", s.ctx, "c1").Return(nil).Once()
	ok, err := s.svc.Delete(s.ctx, "c1")
	s.NoError(err)
	s.True(ok)

	s.store.On("DeleteItem", s.ctx, "c2").Return(errBoom).Once()
	ok, err = s.svc.Delete(s.ctx, "c2")
	s.False(ok)
	s.ErrorIs(err, types.ErrOperationFailed)
}

func (s *ClientServiceTestSuite) TestCreateAllValidatesEveryCandidateFirst() {
	_, err := s.svc.CreateAll(s.ctx, []types.Record{{"fullName": "a"}, {"email": "b@x"}})
	s.ErrorIs(err, types.ErrInvalidInput)
	s.Contains(err.Error(), "client #1")
	s.store.AssertNotCalled(s.T(), "InsertAll", mock.Anything, mock.Anything)
}

func (s *ClientServiceTestSuite) TestCreateAllReturnsBatchError() {
	in := []types.Record{{"fullName": "a"}, {"fullName": "b"}}
	stored := []types.Record{{"id": "1", "fullName": "a"}}
	be := &types.BatchError{Total: 2, Failed: map[int]error{1: errBoom}}
	s.store.On("InsertAll", s.ctx, in).Return(stored, be)

	out, err := s.svc.CreateAll(s.ctx, in)
	s.Equal(stored, out)
	var got *types.BatchError
	s.Require().ErrorAs(err, &got)
	s.Equal([]int{1}, got.FailedIndexes())
}

func (s *ClientServiceTestSuite) TestChangeEventsArePublished() {
	pub := new(mockPublisher)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.svc = NewClientService(s.store, WithPublisher(pub, testTopic), WithClock(func() time.Time { return at }))

	c := types.Record{"fullName": "Carol"}
	s.store.On("Insert", s.ctx, c).Return(types.Record{"id": "c9", "fullName": "Carol"}, nil)
	var published types.ChangeEvent
	pub.On("PublishRaw", s.ctx, testTopic, mock.Anything).Run(func(args mock.Arguments) {
		s.Require().NoError(json.Unmarshal(args.Get(2).([]byte), &published))
	}).Return(errBoom)

	// publish failures do not fail the write
	out, err := s.svc.Create(s.ctx, c)
	s.Require().NoError(err)
	s.Equal("c9", out.ID())
	s.Equal(types.ClientCreated, published.Type)
	s.Equal("c9", published.ID)
	s.Equal("Carol", published.Record["fullName"])
	s.True(at.Equal(published.At))
	pub.AssertNumberOfCalls(s.T(), "PublishRaw", 1)
}

// Alice walks through the whole lifecycle against the in-memory store.
func TestClientLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewClientService(memory.NewRecordStore(0))

	created, err := svc.Create(ctx, types.Record{"fullName": "Alice Smith", "dateOfBirth": "1985-05-15", "isActive": true})
	require.NoError(t, err)
	id := created.ID()
	assert.NotEmpty(t, id)
	assert.Equal(t, "Alice Smith", created["fullName"])

	all, err := svc.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, id, all[0].ID())

	_, err = svc.Update(ctx, id, types.Record{"fullName": "Alice A. Smith"})
	require.NoError(t, err)
	got, err := svc.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Alice A. Smith", got["fullName"])
	assert.Equal(t, "1985-05-15", got["dateOfBirth"])
	assert.Equal(t, true, got["isActive"])

	_, err = svc.Update(ctx, id, types.Record{})
	assert.ErrorIs(t, err, types.ErrNoFieldsProvided)
	got, err = svc.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Alice A. Smith", got["fullName"])

	ok, err := svc.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = svc.FindByID(ctx, id)
	assert.ErrorIs(t, err, types.ErrNotFound)
}
