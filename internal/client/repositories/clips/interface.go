// Package clips persists the clip history so it survives restarts.
//
// Rows carry the store rank in the position column; GetAll returns them
// highest position first, which is the newest-first order the in-memory
// store presents. Writes retry transient SQLite errors.
package clips

import (
	"context"
	"time"

	"github.com/dmitrijs2005/clipkeeper/internal/clips"
)

type Repository interface {
	// GetAll returns every stored clip, newest first.
	GetAll(ctx context.Context) ([]clips.Clip, error)

	// Upsert inserts the entry or overwrites the row with the same id.
	Upsert(ctx context.Context, e clips.Entry) error

	// DeleteByIDs removes the given ids and returns how many rows went away.
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)

	// DeleteOlderThan removes clips captured at or before cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// ReplaceAll swaps the table contents for entries in one transaction.
	ReplaceAll(ctx context.Context, entries []clips.Entry) error
}
