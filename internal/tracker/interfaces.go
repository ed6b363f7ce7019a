package tracker

import "context"

// Gateway persists the whole entity store as one atomic snapshot.
type Gateway interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}
