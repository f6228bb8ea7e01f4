package port

import (
	"context"

	"podads/internal/core/domain"
)

// CatalogRepository is the outbound port to the candidate catalog. It is
// queried by podcast category only: implementations return every
// (campaign, creative) pair whose campaign either has no category targeting
// or targets the given category, regardless of campaign status, schedule or
// creative approval — all of that is the filter chain's responsibility.
//
// Implementations must be safe for concurrent reads; the catalog snapshot
// is shared read-only across decisions.
type CatalogRepository interface {
	LoadCandidates(ctx context.Context, category string) ([]domain.Candidate, error)
}
