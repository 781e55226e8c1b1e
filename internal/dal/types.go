// Package dal persists the draft ledger snapshot: one JSON document holding
// the picks, the active flag and the current inflation rate.
package dal

import (
	"context"
	"fmt"

	"github.com/Billy-Davies-2/auction-draft/internal/models"
)

// SnapshotStore saves and loads the single draft snapshot. Load returns an
// error wrapping models.ErrPersistenceMissing when nothing was saved.
type SnapshotStore interface {
	Save(ctx context.Context, data []byte) (location string, err error)
	Load(ctx context.Context) ([]byte, error)
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
	Close() error
}

func missing(where string) error {
	return fmt.Errorf("%w at %s", models.ErrPersistenceMissing, where)
}
