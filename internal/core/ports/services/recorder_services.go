package services

import (
	"context"
	"errors"

	"github.com/moneta-app/moneta-backend/internal/core/domain"
	"github.com/moneta-app/moneta-backend/internal/dto"
	"github.com/shopspring/decimal"
)

// ErrRateStillUnknown is returned by the replay entry points when the rate
// learned by a task does not price the event's own conversion pair. The
// event stays postponed; this is not a replay failure.
var ErrRateStillUnknown = errors.New("conversion rate still unknown")

// MutationRecorderSvc records funds mutations, converting between the
// event's native currency and the account's currency when they differ.
type MutationRecorderSvc interface {
	// RecordMutation books the mutation, or parks it as a postponed record
	// when no conversion rate is available. Parking is success, not failure.
	RecordMutation(ctx context.Context, req dto.CreateMutationRequest, agent string) (*dto.RecordMutationResult, error)
}

// MutationReplaySvc is the reconciliation-side entry point of the recorder.
type MutationReplaySvc interface {
	// ReplayPostponed re-invokes the recorder for a postponed mutation with
	// a rate learned for the given pair. It returns ErrRateStillUnknown when
	// the event's own pair cannot be priced from the task rate.
	ReplayPostponed(ctx context.Context, pm domain.PostponedMutation, pair domain.ConversionPair, rate decimal.Decimal) error
}

// MutationSvcFacade combines the mutation recorder interfaces.
type MutationSvcFacade interface {
	MutationRecorderSvc
	MutationReplaySvc
}

// ExchangeRecorderSvc records currency exchanges between two accounts.
type ExchangeRecorderSvc interface {
	// RecordExchange books the exchange, or parks it as a postponed record
	// when no conversion rate is available.
	RecordExchange(ctx context.Context, req dto.CreateExchangeRequest, agent string) (*dto.RecordExchangeResult, error)
}

// ExchangeReplaySvc is the reconciliation-side entry point of the recorder.
type ExchangeReplaySvc interface {
	// ReplayPostponed re-invokes the recorder for a postponed exchange with
	// a rate learned for the given pair.
	ReplayPostponed(ctx context.Context, pe domain.PostponedExchange, pair domain.ConversionPair, rate decimal.Decimal) error
}

// ExchangeSvcFacade combines the exchange recorder interfaces.
type ExchangeSvcFacade interface {
	ExchangeRecorderSvc
	ExchangeReplaySvc
}
