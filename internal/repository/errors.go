package repository

import "errors"

var (
	// ErrSnapshotSave is returned when the snapshot could not be written.
	// The in-memory mutation has still happened; it is just not durable.
	ErrSnapshotSave = errors.New("snapshot save failed")

	// ErrSnapshotLoad is returned when the backing store itself cannot be
	// read at all. Individual missing tables are not an error.
	ErrSnapshotLoad = errors.New("snapshot load failed")
)
