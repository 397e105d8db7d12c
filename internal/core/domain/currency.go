package domain

// Currency is one row of the currency dimension.
type Currency struct {
	CurrencyID   int64  `json:"currencyID"`   // Surrogate key, assigned by the store and stable once assigned
	CurrencyCode string `json:"currencyCode"` // e.g. "USD", unique across the dimension
	CurrencyName string `json:"currencyName"` // e.g. "US Dollar"
}

// NewCurrency is a dimension row candidate observed in a source snapshot
// before the store has assigned it a surrogate id.
type NewCurrency struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// CurrencyMap maps currency codes to surrogate ids. It is loaded wholesale
// from the dimension store and replaced by a re-read, never patched in place.
type CurrencyMap map[string]int64
