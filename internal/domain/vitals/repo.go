package vitals

import (
	"context"
	"io"
)

// VisitFileRepository is the flat-file backing of a VisitStore.
type VisitFileRepository interface {
	// Open returns a reader over the stored vitals lines. A missing or
	// unreadable source yields ErrSourceUnavailable.
	Open(ctx context.Context) (io.ReadCloser, error)
	// Append adds one serialized visit line.
	Append(ctx context.Context, line string) error
	// Rewrite replaces the stored lines with the contents of store.
	Rewrite(ctx context.Context, store *VisitStore) error
}
