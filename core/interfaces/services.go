// ABOUTME: Service interfaces for the core business logic
// ABOUTME: Defines contracts between the ingestion service and its schedulers

package interfaces

import (
	"context"

	"digests-ingest/core/domain"
)

// Ingester fetches one feed URL and returns its normalized batch
type Ingester interface {
	Ingest(ctx context.Context, url string) (*domain.Batch, error)
}
