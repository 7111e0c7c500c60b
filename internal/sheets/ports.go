package sheets

import (
	"context"

	"saishi/internal/core"
)

// RecordMirror keeps a spreadsheet copy of the tournament records. Rows are
// keyed by record ID; the mirror is never read back as a source of truth.
type RecordMirror interface {
	// Upsert writes t, replacing any row that already carries its ID.
	Upsert(ctx context.Context, t core.Tournament) error
	// Delete removes the row for id. Unknown IDs are not an error.
	Delete(ctx context.Context, id string) error
	// ReplaceAll rewrites the whole mirror from records.
	ReplaceAll(ctx context.Context, records []core.Tournament) error
}

// IDHeader heads the key column that precedes the export columns.
const IDHeader = "记录ID"
