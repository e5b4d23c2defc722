package repositories

import (
	"context"

	"github.com/moneta-app/moneta-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MutationWriter defines write operations for booked mutations.
type MutationWriter interface {
	// SaveMutation books a mutation and applies its signed balance change to
	// the account inside one database transaction.
	SaveMutation(ctx context.Context, mutation domain.Mutation, balanceChange decimal.Decimal) error
}

// MutationReader defines read operations for booked mutations.
type MutationReader interface {
	// ListMutationsByAccount retrieves a paginated list of mutations for an
	// account using token-based pagination.
	ListMutationsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Mutation, *string, error)
}

// ExchangeWriter defines write operations for booked exchanges.
type ExchangeWriter interface {
	// SaveExchange books an exchange and applies both balance changes (buy
	// account credited, sell account debited) inside one database transaction.
	SaveExchange(ctx context.Context, exchange domain.Exchange) error
}

// ReplayWriter defines the atomic booking operations used by reconciliation.
// Booking a replayed event and retiring its postponed record must be one
// transaction: a partial replay would leave the record behind and let the
// next task for the same pair book the event a second time.
type ReplayWriter interface {
	// ReplayMutation books a replayed mutation, applies its signed balance
	// change and deletes the postponed record, all in one transaction.
	// When the postponed record is already gone nothing is booked and
	// ErrNotFound is returned.
	ReplayMutation(ctx context.Context, mutation domain.Mutation, balanceChange decimal.Decimal, postponedID string) error

	// ReplayExchange books a replayed exchange, applies both balance
	// changes and clears the postponed record's relevant flag, all in one
	// transaction. When the flag is already cleared nothing is booked and
	// ErrNotFound is returned.
	ReplayExchange(ctx context.Context, exchange domain.Exchange, postponedID string) error
}

// PostponedReader defines read operations over the two postponed streams.
type PostponedReader interface {
	// ListPostponedMutations retrieves pending postponed mutations for the
	// given day that reference either unit, in either field.
	ListPostponedMutations(ctx context.Context, day domain.Day, unitA, unitB domain.CurrencyUnit) ([]domain.PostponedMutation, error)

	// ListPostponedExchanges retrieves still-relevant postponed exchanges for
	// the given day where either involved account holds one of the units.
	ListPostponedExchanges(ctx context.Context, day domain.Day, unitA, unitB domain.CurrencyUnit) ([]domain.PostponedExchange, error)

	// ListPostponingReasons derives, per day, the set of currency units that
	// still have at least one postponed event referencing them.
	ListPostponingReasons(ctx context.Context) ([]domain.PostponingReasons, error)
}

// PostponedWriter defines write operations over the two postponed streams.
type PostponedWriter interface {
	// SavePostponedMutation parks a mutation until its blocking rate is known.
	SavePostponedMutation(ctx context.Context, pm domain.PostponedMutation) error

	// SavePostponedExchange parks an exchange until its blocking rate is known.
	SavePostponedExchange(ctx context.Context, pe domain.PostponedExchange) error
}

// LedgerRepositoryFacade combines all ledger repository interfaces: booked
// events plus the postponed streams.
type LedgerRepositoryFacade interface {
	MutationWriter
	MutationReader
	ExchangeWriter
	ReplayWriter
	PostponedReader
	PostponedWriter
}

// LedgerRepositoryWithTx extends LedgerRepositoryFacade with transaction capabilities.
type LedgerRepositoryWithTx interface {
	LedgerRepositoryFacade
	TransactionManager
}
