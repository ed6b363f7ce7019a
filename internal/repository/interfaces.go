package repository

import (
	"context"

	"github.com/nmer1/Project-Tracking-App/internal/tracker"
)

// SnapshotGateway persists the entity store as one unit. Load must never
// fail on a missing or unreadable table; those degrade to empty collections.
// Save must be atomic with respect to external readers: either the whole
// snapshot lands or the previous one stays intact.
type SnapshotGateway interface {
	Load(ctx context.Context) (*tracker.Snapshot, error)
	Save(ctx context.Context, snap *tracker.Snapshot) error
}
