package ports

import (
	"context"
	"time"

	"github.com/akalinowski/nbp-rates-etl/internal/core/domain"
)

// RateSource fetches one day's rate table from an upstream provider.
type RateSource interface {
	// FetchRates returns the snapshot published for the given date.
	// A date with no published table yields Snapshot.Available == false
	// and a nil error.
	FetchRates(ctx context.Context, date time.Time) (domain.Snapshot, error)
}
