// ABOUTME: Storage interfaces for handing normalized batches to persistence
// ABOUTME: The storage layer itself lives outside this module

package interfaces

import (
	"context"

	"digests-ingest/core/domain"
)

// BatchSink receives every successfully ingested batch
type BatchSink interface {
	Store(ctx context.Context, batch *domain.Batch) error
}
