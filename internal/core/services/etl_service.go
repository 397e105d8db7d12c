package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/akalinowski/nbp-rates-etl/internal/core/ports"
)

// ETLService sequences one full load: fetch -> reconcile dimension ->
// build facts -> insert facts. The first error aborts the run; dimension
// inserts already committed at that point are not rolled back.
type ETLService struct {
	source     ports.RateSource
	dimensions ports.DimensionRepository
	facts      ports.FactRepository
	transform  *TransformService
	logger     *slog.Logger
}

func NewETLService(
	source ports.RateSource,
	dimensions ports.DimensionRepository,
	facts ports.FactRepository,
	transform *TransformService,
	logger *slog.Logger,
) *ETLService {
	return &ETLService{
		source:     source,
		dimensions: dimensions,
		facts:      facts,
		transform:  transform,
		logger:     logger,
	}
}

// Run executes the load for a single target date. A date with no published
// rate table completes successfully with nothing written.
func (s *ETLService) Run(ctx context.Context, date time.Time) error {
	logger := s.logger.With(
		slog.String("run_id", uuid.NewString()),
		slog.String("date", date.Format("2006-01-02")),
	)
	logger.Info("Starting ETL run")

	snapshot, err := s.source.FetchRates(ctx, date)
	if err != nil {
		return fmt.Errorf("fetching rates: %w", err)
	}
	if !snapshot.Available {
		logger.Info("No rate table published, nothing to load")
		return nil
	}

	currencies, err := s.dimensions.LoadCurrencyMap(ctx)
	if err != nil {
		return fmt.Errorf("loading currency map: %w", err)
	}
	logger.Info("Loaded currency map", slog.Int("currencies", len(currencies)))

	missing := s.transform.ExtractMissingCurrencies(snapshot.Rates, currencies)
	if len(missing) > 0 {
		logger.Info("Inserting new currencies", slog.Int("count", len(missing)))
		if err := s.dimensions.InsertMissing(ctx, missing); err != nil {
			return fmt.Errorf("inserting currencies: %w", err)
		}
		// Re-read instead of patching the map locally so the
		// store-assigned surrogate ids are picked up.
		currencies, err = s.dimensions.LoadCurrencyMap(ctx)
		if err != nil {
			return fmt.Errorf("reloading currency map: %w", err)
		}
	}

	facts, unresolved := s.transform.TransformToFacts(snapshot.Rates, currencies, date)
	for _, code := range unresolved {
		logger.Warn("Currency missing from dimension after refresh, dropping record",
			slog.String("code", code))
	}

	if err := s.facts.InsertFacts(ctx, facts); err != nil {
		return fmt.Errorf("inserting rate facts: %w", err)
	}

	logger.Info("ETL run completed",
		slog.Int("facts", len(facts)),
		slog.Int("new_currencies", len(missing)),
		slog.Int("unresolved", len(unresolved)),
	)
	return nil
}
