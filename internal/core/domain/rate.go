package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawRate is a single entry of an upstream rate table as published by the
// source. Mid preserves the exact decimal value of the source's textual
// representation.
type RawRate struct {
	Code string          `json:"code"`
	Name string          `json:"name"`
	Mid  decimal.Decimal `json:"mid"`
}

// Snapshot is the outcome of one upstream fetch. Available is false when the
// source published no table for the requested date; that is a valid
// "nothing to load today" outcome, not an error.
type Snapshot struct {
	Rates     []RawRate
	Available bool
}

// RateFact is one fact table row: at most one mid rate per currency per day.
// Rows are written once and never updated.
type RateFact struct {
	CurrencyID int64           `json:"currencyID"` // FK -> Currency.CurrencyID
	RateDate   time.Time       `json:"rateDate"`
	Rate       decimal.Decimal `json:"rate"`
}
