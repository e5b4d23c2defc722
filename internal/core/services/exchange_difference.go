package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/moneta-app/moneta-backend/internal/core/domain"
	portssvc "github.com/moneta-app/moneta-backend/internal/core/ports/services"
	"github.com/moneta-app/moneta-backend/internal/utils/ratemath"
)

// correctionDirection returns the direction of the conversion-difference
// correction for an event booked at a custom rate. cmp is the comparison of
// the custom rate against the natural one (custom.Cmp(natural)).
//
// A benefit overvalued by the custom rate credited too much, so the gap is
// itself a benefit that must be attributed to the conversion difference; the
// remaining three cells follow the same reasoning.
func correctionDirection(eventDir domain.Direction, cmp int) domain.Direction {
	if cmp > 0 {
		return eventDir
	}
	return eventDir.Opposite()
}

// replayRate orients a reconciliation task's rate onto the postponed event's
// own pair. The task rate is used directly when the pairs match, inverted
// when they are reversed, and re-resolved (without rescheduling) when the
// event's pair merely shares a currency with the task's.
func replayRate(ctx context.Context, resolver portssvc.RateResolverInternalSvc, day domain.Day, eventPair, taskPair domain.ConversionPair, taskRate decimal.Decimal) *decimal.Decimal {
	switch {
	case eventPair == taskPair:
		return &taskRate
	case eventPair == taskPair.Reversed():
		reversed := ratemath.Reverse(taskRate)
		return &reversed
	default:
		return resolver.ResolveWithoutReconciliation(ctx, day, eventPair.From, eventPair.To)
	}
}
