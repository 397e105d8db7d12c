package ports

import (
	"context"

	"github.com/akalinowski/nbp-rates-etl/internal/core/domain"
)

// DimensionRepository defines persistence operations for the currency
// dimension.
type DimensionRepository interface {
	// LoadCurrencyMap returns the full code -> surrogate id mapping.
	// The dimension is small and bounded, so no pagination is offered.
	LoadCurrencyMap(ctx context.Context) (domain.CurrencyMap, error)

	// InsertMissing persists dimension rows for newly observed codes.
	// Codes that already exist are left untouched rather than erroring;
	// empty input is a no-op with no store round-trip.
	InsertMissing(ctx context.Context, currencies []domain.NewCurrency) error
}

// FactRepository defines persistence operations for daily rate facts.
type FactRepository interface {
	// InsertFacts persists rate facts, silently skipping any
	// (currency, date) pair that already has a row. Empty input is a
	// no-op with no store round-trip.
	InsertFacts(ctx context.Context, facts []domain.RateFact) error
}
