// Package watermark persists the "fetched up to here" timestamp that makes
// runs incremental.
package watermark

import "context"

// Store reads and writes the single last-run timestamp. An empty string
// means no watermark is set: the next fetch covers the full history.
//
// The watermark must only be advanced after a successful fetch; a failed run
// leaves the prior value untouched so the same window is re-queried.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, timestamp string) error
	Clear(ctx context.Context) error
}
