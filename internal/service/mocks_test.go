package service

import (
	"clientsvc/internal/types"
	"context"

	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetAll(ctx context.Context) ([]types.Record, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]types.Record)
	return out, args.Error(1)
}

func (m *mockStore) GetByID(ctx context.Context, id string) (types.Record, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(types.Record)
	return out, args.Error(1)
}

func (m *mockStore) Insert(ctx context.Context, candidate types.Record) (types.Record, error) {
	args := m.Called(ctx, candidate)
	out, _ := args.Get(0).(types.Record)
	return out, args.Error(1)
}

func (m *mockStore) InsertAll(ctx context.Context, candidates []types.Record) ([]types.Record, error) {
	args := m.Called(ctx, candidates)
	out, _ := args.Get(0).([]types.Record)
	return out, args.Error(1)
}

func (m *mockStore) Update(ctx context.Context, id string, updates types.Record) (types.UpdateResult, error) {
	args := m.Called(ctx, id, updates)
	return args.Get(0).(types.UpdateResult), args.Error(1)
}

func (m *mockStore) DeleteItem(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishRaw(ctx context.Context, arn string, payload []byte) error {
	return m.Called(ctx, arn, payload).Error(0)
}
