package mocks

import (
	"context"

	"github.com/nmer1/Project-Tracking-App/internal/tracker"
	"github.com/stretchr/testify/mock"
)

// SnapshotGateway is a mock for repository.SnapshotGateway.
type SnapshotGateway struct {
	mock.Mock
}

func (m *SnapshotGateway) Load(ctx context.Context) (*tracker.Snapshot, error) {
	args := m.Called(ctx)
	if snap, ok := args.Get(0).(*tracker.Snapshot); ok {
		return snap, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SnapshotGateway) Save(ctx context.Context, snap *tracker.Snapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}
