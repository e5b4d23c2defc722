// Package ratesource fetches raw exchange-rate data for the pivot currencies
// from external endpoints. Sources are a small closed set of variants behind
// one interface, selected at construction time: the daily-fixing XML source
// and the live-quote JSON source with its historical CSV cache.
package ratesource

import (
	"context"

	"github.com/moneta-app/moneta-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Source produces pivot-relative rates for one pivot currency. A returned
// rate r for unit U means amountInU = amountInPivot * r.
//
// Transient failures (network, timeout, parse) are logged by the source and
// degrade to an empty result: callers must treat a missing unit as "no data"
// and leave the affected events postponed rather than fail.
type Source interface {
	// Pivot returns the pivot currency this source quotes against.
	Pivot() domain.CurrencyUnit

	// FetchRates returns pivot->currency rates for the given day, restricted
	// to the given units when the set is non-empty.
	FetchRates(ctx context.Context, day domain.Day, units []domain.CurrencyUnit) map[domain.CurrencyUnit]decimal.Decimal
}

// unitSet builds a membership set; an empty slice means "no restriction".
func unitSet(units []domain.CurrencyUnit) map[domain.CurrencyUnit]struct{} {
	if len(units) == 0 {
		return nil
	}
	set := make(map[domain.CurrencyUnit]struct{}, len(units))
	for _, u := range units {
		set[u] = struct{}{}
	}
	return set
}

func wanted(set map[domain.CurrencyUnit]struct{}, u domain.CurrencyUnit) bool {
	if set == nil {
		return true
	}
	_, ok := set[u]
	return ok
}
