package port

import (
	"context"

	"podads/internal/core/domain"
)

// DecisionUseCase is the primary port into the decision pipeline.
type DecisionUseCase interface {
	// Decide evaluates one ad request against the catalog and returns the
	// full decision trace. An empty catalog or a fully filtered candidate
	// set is a valid no-fill decision, not an error; the only error class
	// is malformed input (wrapping domain.ErrInvalidRequest) and catalog
	// access failures.
	Decide(ctx context.Context, req domain.AdRequest, seed int64) (*domain.AdDecision, error)

	// DecideBatch evaluates the same request under seeds
	// seed, seed+1, ..., seed+count-1 and returns the decisions in seed
	// order. Decisions are independent and may be computed concurrently;
	// the catalog snapshot is read-only for the whole batch.
	DecideBatch(ctx context.Context, req domain.AdRequest, seed int64, count int) ([]*domain.AdDecision, error)
}
