package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/akalinowski/nbp-rates-etl/internal/core/services"
	"github.com/akalinowski/nbp-rates-etl/internal/nbp"
	"github.com/akalinowski/nbp-rates-etl/internal/platform/config"
	"github.com/akalinowski/nbp-rates-etl/internal/repositories/database/pgsql"
	"github.com/akalinowski/nbp-rates-etl/pkg/database"
)

const dateLayout = "2006-01-02"

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := newRootCmd(logger).Execute(); err != nil {
		logger.Error("ETL run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:           "rates-etl",
		Short:         "Load daily NBP exchange rates into the warehouse",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate the date before touching config, network or
			// database; a malformed date must have no side effects.
			date, err := parseTargetDate(dateFlag)
			if err != nil {
				return err
			}
			return run(cmd.Context(), logger, date)
		},
	}
	cmd.Flags().StringVar(&dateFlag, "date", "",
		"target date in YYYY-MM-DD format (defaults to today)")
	return cmd
}

// parseTargetDate parses the --date flag, defaulting to today's date when
// the flag was omitted.
func parseTargetDate(value string) (time.Time, error) {
	if value == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected format YYYY-MM-DD", value)
	}
	return date, nil
}

func run(ctx context.Context, logger *slog.Logger, date time.Time) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()
	logger.Info("Database connection pool established")

	etl := services.NewETLService(
		nbp.NewClient(cfg.NBPAPIURL, cfg.HTTPTimeout, logger),
		pgsql.NewPgxCurrencyRepository(pool),
		pgsql.NewPgxRateFactRepository(pool),
		services.NewTransformService(),
		logger,
	)
	return etl.Run(ctx, date)
}
