package services

import (
	"time"

	"github.com/akalinowski/nbp-rates-etl/internal/core/domain"
)

// TransformService derives dimension and fact rows from a raw rate snapshot.
// Its methods are pure: no I/O, deterministic for a given input.
type TransformService struct{}

func NewTransformService() *TransformService {
	return &TransformService{}
}

// ExtractMissingCurrencies returns the currencies present in raw but absent
// from known, in first-seen order. A code appearing more than once in raw is
// emitted at most once.
func (s *TransformService) ExtractMissingCurrencies(raw []domain.RawRate, known domain.CurrencyMap) []domain.NewCurrency {
	seen := make(map[string]struct{}, len(known))
	for code := range known {
		seen[code] = struct{}{}
	}

	var missing []domain.NewCurrency
	for _, record := range raw {
		if _, ok := seen[record.Code]; ok {
			continue
		}
		missing = append(missing, domain.NewCurrency{
			Code: record.Code,
			Name: record.Name,
		})
		seen[record.Code] = struct{}{}
	}

	return missing
}

// TransformToFacts builds fact rows for every raw record whose code resolves
// through currencies, preserving source order. Records that do not resolve
// are dropped; their codes are returned so the caller can report the
// inconsistency.
func (s *TransformService) TransformToFacts(raw []domain.RawRate, currencies domain.CurrencyMap, rateDate time.Time) ([]domain.RateFact, []string) {
	facts := make([]domain.RateFact, 0, len(raw))
	var unresolved []string

	for _, record := range raw {
		currencyID, ok := currencies[record.Code]
		if !ok {
			unresolved = append(unresolved, record.Code)
			continue
		}
		facts = append(facts, domain.RateFact{
			CurrencyID: currencyID,
			RateDate:   rateDate,
			Rate:       record.Mid,
		})
	}

	return facts, unresolved
}
