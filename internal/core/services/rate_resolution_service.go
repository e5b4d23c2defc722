package services

import (
	"context"
	"log/slog"

	"github.com/moneta-app/moneta-backend/internal/adapters/ratesource"
	"github.com/moneta-app/moneta-backend/internal/core/domain"
	portsrepo "github.com/moneta-app/moneta-backend/internal/core/ports/repositories"
	portssvc "github.com/moneta-app/moneta-backend/internal/core/ports/services"
	"github.com/moneta-app/moneta-backend/internal/utils/ratemath"
	"github.com/shopspring/decimal"
)

// rateResolutionService decides the routing strategy for a rate lookup:
// direct against a pivot, or via two daily-fixing legs for arbitrary pairs.
// Newly learned rates are persisted through the rate repository and every
// successful resolution enqueues a reconciliation task, so postponed events
// blocked on the rate get replayed.
type rateResolutionService struct {
	rateRepo    portsrepo.RateRepositoryFacade
	dailySource ratesource.Source
	liveSource  ratesource.Source
	reconciler  portssvc.ReconciliationSvc
	logger      *slog.Logger
}

// NewRateResolutionService creates the rate resolution engine.
func NewRateResolutionService(
	rateRepo portsrepo.RateRepositoryFacade,
	dailySource ratesource.Source,
	liveSource ratesource.Source,
	reconciler portssvc.ReconciliationSvc,
	logger *slog.Logger,
) portssvc.RateResolverSvcFacade {
	return &rateResolutionService{
		rateRepo:    rateRepo,
		dailySource: dailySource,
		liveSource:  liveSource,
		reconciler:  reconciler,
		logger:      logger.With(slog.String("component", "rate_resolver")),
	}
}

var _ portssvc.RateResolverSvcFacade = (*rateResolutionService)(nil)

// Resolve implements portssvc.RateResolverSvc.
func (s *rateResolutionService) Resolve(ctx context.Context, day domain.Day, from, to domain.CurrencyUnit) *decimal.Decimal {
	return s.resolve(ctx, day, from, to, true)
}

// ResolveWithoutReconciliation implements portssvc.RateResolverInternalSvc.
// The reconciliation worker resolves through this entry point so a replay
// can never schedule further reconciliation of itself.
func (s *rateResolutionService) ResolveWithoutReconciliation(ctx context.Context, day domain.Day, from, to domain.CurrencyUnit) *decimal.Decimal {
	return s.resolve(ctx, day, from, to, false)
}

func (s *rateResolutionService) resolve(ctx context.Context, day domain.Day, from, to domain.CurrencyUnit, schedule bool) *decimal.Decimal {
	if from == to {
		one := decimal.NewFromInt(1)
		return &one
	}

	switch {
	case from.IsLiveQuotePivot() || to.IsLiveQuotePivot():
		return s.resolveViaPivot(ctx, s.liveSource, day, from, to, schedule)
	case from.IsDailyFixingPivot() || to.IsDailyFixingPivot():
		return s.resolveViaPivot(ctx, s.dailySource, day, from, to, schedule)
	default:
		return s.resolveCross(ctx, day, from, to, schedule)
	}
}

// resolveViaPivot handles pairs where one side is the source's pivot.
func (s *rateResolutionService) resolveViaPivot(ctx context.Context, source ratesource.Source, day domain.Day, from, to domain.CurrencyUnit, schedule bool) *decimal.Decimal {
	pivot := source.Pivot()
	other := to
	if to == pivot {
		other = from
	}

	var pivotRate *decimal.Decimal
	if pivot.IsLiveQuotePivot() && day.IsToday() {
		// The live pivot always takes a live fetch for the current day: no
		// persistence-first check and no persistence of intraday quotes.
		rates := source.FetchRates(ctx, day, []domain.CurrencyUnit{other})
		if rate, ok := rates[other]; ok {
			pivotRate = &rate
		}
	} else {
		pivotRate = s.pivotLeg(ctx, source, day, other)
	}
	if pivotRate == nil {
		return nil
	}

	if schedule {
		s.reconciler.Enqueue(portssvc.ReconcileTask{
			Day:  day,
			Pair: domain.NewConversionPair(pivot, other),
			Rate: *pivotRate,
		})
	}

	if from == pivot {
		return pivotRate
	}
	reversed := ratemath.Reverse(*pivotRate)
	return &reversed
}

// resolveCross handles arbitrary pairs. Both legs go through the
// daily-fixing pivot only, keeping cross resolution deterministic regardless
// of live-quote freshness; the composed rate is a single exact division.
func (s *rateResolutionService) resolveCross(ctx context.Context, day domain.Day, from, to domain.CurrencyUnit, schedule bool) *decimal.Decimal {
	pivot := s.dailySource.Pivot()

	legFrom := s.pivotLeg(ctx, s.dailySource, day, from)
	legTo := s.pivotLeg(ctx, s.dailySource, day, to)
	if legFrom == nil || legTo == nil {
		return nil
	}

	cross := ratemath.Cross(*legTo, *legFrom)

	// The derived rate is persisted as a fact of its own, tagged under the
	// from currency.
	s.persistRate(ctx, day, from, to, cross)

	if schedule {
		s.reconciler.Enqueue(portssvc.ReconcileTask{Day: day, Pair: domain.NewConversionPair(pivot, from), Rate: *legFrom})
		s.reconciler.Enqueue(portssvc.ReconcileTask{Day: day, Pair: domain.NewConversionPair(pivot, to), Rate: *legTo})
		s.reconciler.Enqueue(portssvc.ReconcileTask{Day: day, Pair: domain.NewConversionPair(from, to), Rate: cross})
	}
	return &cross
}

// pivotLeg returns the pivot->unit rate for the day: repository first, then
// the source, persisting anything newly learned.
func (s *rateResolutionService) pivotLeg(ctx context.Context, source ratesource.Source, day domain.Day, unit domain.CurrencyUnit) *decimal.Decimal {
	pivot := source.Pivot()

	rate, err := s.rateRepo.GetRate(ctx, day, pivot, unit)
	if err != nil {
		s.logger.Error("Rate lookup failed",
			slog.String("day", day.String()),
			slog.String("pair", domain.NewConversionPair(pivot, unit).String()),
			slog.String("error", err.Error()))
	}
	if rate != nil {
		return rate
	}

	fetched, ok := source.FetchRates(ctx, day, []domain.CurrencyUnit{unit})[unit]
	if !ok {
		return nil
	}
	s.persistRate(ctx, day, pivot, unit, fetched)
	return &fetched
}

// persistRate writes a newly learned rate. Durability is best effort: the
// in-memory rate is still served to the caller when the write fails, and a
// uniqueness race with a concurrent resolver is benign.
func (s *rateResolutionService) persistRate(ctx context.Context, day domain.Day, from, to domain.CurrencyUnit, rate decimal.Decimal) {
	added, err := s.rateRepo.AddRate(ctx, day, from, to, rate)
	if err != nil {
		s.logger.Error("Failed to persist conversion rate",
			slog.String("day", day.String()),
			slog.String("pair", domain.NewConversionPair(from, to).String()),
			slog.String("error", err.Error()))
		return
	}
	if !added {
		s.logger.Debug("Conversion rate already persisted by a concurrent resolver",
			slog.String("day", day.String()),
			slog.String("pair", domain.NewConversionPair(from, to).String()))
	}
}
