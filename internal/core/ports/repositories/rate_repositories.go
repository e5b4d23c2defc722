package repositories

import (
	"context"

	"github.com/moneta-app/moneta-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RateReader defines read operations for confirmed conversion rates.
type RateReader interface {
	// GetRate retrieves the confirmed rate for (day, from, to). A miss is
	// not an error: it returns (nil, nil).
	GetRate(ctx context.Context, day domain.Day, from, to domain.CurrencyUnit) (*decimal.Decimal, error)

	// GetLatestRate retrieves the most recently known rate for (from, to)
	// regardless of day. A miss returns (nil, nil).
	GetLatestRate(ctx context.Context, from, to domain.CurrencyUnit) (*decimal.Decimal, error)

	// IsStale reports whether no rate towards the given unit has been
	// recorded for today.
	IsStale(ctx context.Context, to domain.CurrencyUnit) (bool, error)
}

// RateWriter defines write operations for confirmed conversion rates.
type RateWriter interface {
	// AddRate persists a confirmed (day, from, to) -> rate fact. It returns
	// false when the fact already exists; a uniqueness race with another
	// resolver is benign, never an error.
	AddRate(ctx context.Context, day domain.Day, from, to domain.CurrencyUnit, rate decimal.Decimal) (bool, error)
}

// RateRepositoryFacade combines all conversion-rate repository interfaces.
type RateRepositoryFacade interface {
	RateReader
	RateWriter
}
