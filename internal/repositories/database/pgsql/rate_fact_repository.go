package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akalinowski/nbp-rates-etl/internal/core/domain"
	"github.com/akalinowski/nbp-rates-etl/internal/core/ports"
)

// PgxRateFactRepository owns the fact_exchange_rate table.
type PgxRateFactRepository struct {
	BaseRepository
}

// NewPgxRateFactRepository creates a new repository for daily rate facts.
func NewPgxRateFactRepository(pool *pgxpool.Pool) *PgxRateFactRepository {
	return &PgxRateFactRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ ports.FactRepository = (*PgxRateFactRepository)(nil)

// InsertFacts inserts rate facts. A row whose (currency_id, rate_date) key
// already exists is silently dropped by the composite unique constraint, so
// reruns for the same date never overwrite earlier loads.
func (r *PgxRateFactRepository) InsertFacts(ctx context.Context, facts []domain.RateFact) error {
	if len(facts) == 0 {
		return nil
	}

	query := `
		INSERT INTO fact_exchange_rate (currency_id, rate, rate_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (currency_id, rate_date) DO NOTHING;
	`

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	batch := &pgx.Batch{}
	for _, fact := range facts {
		batch.Queue(query, fact.CurrencyID, fact.Rate, fact.RateDate)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert rate facts: %w", err)
	}

	return r.Commit(ctx, tx)
}
