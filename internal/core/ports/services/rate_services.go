package services

import (
	"context"

	"github.com/moneta-app/moneta-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RateResolverSvc is the public face of the rate resolution engine.
type RateResolverSvc interface {
	// Resolve determines the (from, to) rate for the given day, falling back
	// across pivot routes and rate sources. It returns nil when no route
	// yields a rate; source unavailability is never surfaced as an error.
	// Every successful resolution schedules reconciliation of postponed
	// events as a side effect.
	Resolve(ctx context.Context, day domain.Day, from, to domain.CurrencyUnit) *decimal.Decimal
}

// RateResolverInternalSvc adds the entry point used from inside the
// reconciliation worker, which must not reschedule reconciliation.
type RateResolverInternalSvc interface {
	// ResolveWithoutReconciliation behaves like Resolve but never enqueues
	// reconciliation tasks.
	ResolveWithoutReconciliation(ctx context.Context, day domain.Day, from, to domain.CurrencyUnit) *decimal.Decimal
}

// RateResolverSvcFacade combines the resolver interfaces.
type RateResolverSvcFacade interface {
	RateResolverSvc
	RateResolverInternalSvc
}

// ReconcileTask is the plain-data unit of work consumed by the
// reconciliation worker: a rate that was just learned (or re-confirmed)
// for one day and one conversion pair.
type ReconcileTask struct {
	Day  domain.Day
	Pair domain.ConversionPair
	Rate decimal.Decimal
}

// ReconciliationSvc schedules and executes replay of postponed events.
type ReconciliationSvc interface {
	// Enqueue hands a task to the single background worker. It never blocks
	// the caller; tasks are executed strictly in FIFO order after the
	// enqueueing call returns.
	Enqueue(task ReconcileTask)

	// RefreshPostponed derives the postponing reasons from the ledger and
	// re-resolves the affected rates, scheduling replay for any that resolve.
	RefreshPostponed(ctx context.Context) error
}

// ReconciliationSvcFacade adds lifecycle management to ReconciliationSvc.
// Start spawns the worker; Drain closes the queue and waits for the worker
// to finish the remaining tasks.
type ReconciliationSvcFacade interface {
	ReconciliationSvc
	Start()
	Drain()
}
