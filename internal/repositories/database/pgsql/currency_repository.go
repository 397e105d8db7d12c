package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akalinowski/nbp-rates-etl/internal/core/domain"
	"github.com/akalinowski/nbp-rates-etl/internal/core/ports"
)

// PgxCurrencyRepository owns the dim_currency table.
type PgxCurrencyRepository struct {
	BaseRepository
}

// NewPgxCurrencyRepository creates a new repository for the currency dimension.
func NewPgxCurrencyRepository(pool *pgxpool.Pool) *PgxCurrencyRepository {
	return &PgxCurrencyRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ ports.DimensionRepository = (*PgxCurrencyRepository)(nil)

// LoadCurrencyMap retrieves the full code -> surrogate id mapping from the
// dimension table.
func (r *PgxCurrencyRepository) LoadCurrencyMap(ctx context.Context) (domain.CurrencyMap, error) {
	query := `
		SELECT currency_id, currency_code
		FROM dim_currency;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query currency dimension: %w", err)
	}
	defer rows.Close()

	currencies := make(domain.CurrencyMap)
	for rows.Next() {
		var (
			id   int64
			code string
		)
		if err := rows.Scan(&id, &code); err != nil {
			return nil, fmt.Errorf("failed to scan currency row: %w", err)
		}
		currencies[code] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read currency dimension: %w", err)
	}

	return currencies, nil
}

// InsertMissing inserts new dimension rows. Conflicts on currency_code are
// absorbed by the unique constraint, so duplicates within the batch or
// against existing rows neither error nor create a second row.
func (r *PgxCurrencyRepository) InsertMissing(ctx context.Context, currencies []domain.NewCurrency) error {
	if len(currencies) == 0 {
		return nil
	}

	query := `
		INSERT INTO dim_currency (currency_code, currency_name)
		VALUES ($1, $2)
		ON CONFLICT (currency_code) DO NOTHING;
	`

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	batch := &pgx.Batch{}
	for _, currency := range currencies {
		batch.Queue(query, currency.Code, currency.Name)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert currencies: %w", err)
	}

	return r.Commit(ctx, tx)
}
