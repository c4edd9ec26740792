package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/meshnum/internal/finalize"
	"github.com/meshnum/internal/history"
)

// MockRunRepository is a mock implementation of history.RunRepository.
type MockRunRepository struct {
	mock.Mock
}

// SaveRun mocks SaveRun.
func (m *MockRunRepository) SaveRun(ctx context.Context, runID string, rank, worldSize int, result finalize.Result, checkpointKey string, fatalFindings int) error {
	args := m.Called(ctx, runID, rank, worldSize, result, checkpointKey, fatalFindings)
	return args.Error(0)
}

// GetRun mocks GetRun.
func (m *MockRunRepository) GetRun(ctx context.Context, runID string, rank int) (*history.RunRecord, error) {
	args := m.Called(ctx, runID, rank)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*history.RunRecord), args.Error(1)
}

// ListRuns mocks ListRuns.
func (m *MockRunRepository) ListRuns(ctx context.Context, runID string) ([]*history.RunRecord, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*history.RunRecord), args.Error(1)
}

// SaveSharerEdges mocks SaveSharerEdges.
func (m *MockRunRepository) SaveSharerEdges(ctx context.Context, runID string, ownerRank int, edges map[int]int32) error {
	args := m.Called(ctx, runID, ownerRank, edges)
	return args.Error(0)
}

// ListSharerEdges mocks ListSharerEdges.
func (m *MockRunRepository) ListSharerEdges(ctx context.Context, runID string) ([]*history.SharerEdgeRecord, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*history.SharerEdgeRecord), args.Error(1)
}

// ExpectSaveRun sets up an expectation for SaveRun.
func (m *MockRunRepository) ExpectSaveRun(runID string, rank int, err error) *mock.Call {
	return m.On("SaveRun", mock.Anything, runID, rank, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(err)
}

// ExpectListRuns sets up an expectation for ListRuns.
func (m *MockRunRepository) ExpectListRuns(runID string, runs []*history.RunRecord, err error) *mock.Call {
	return m.On("ListRuns", mock.Anything, runID).Return(runs, err)
}
