package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moneta-app/moneta-backend/internal/apperrors"
	"github.com/moneta-app/moneta-backend/internal/core/domain"
	portsrepo "github.com/moneta-app/moneta-backend/internal/core/ports/repositories"
	portssvc "github.com/moneta-app/moneta-backend/internal/core/ports/services"
	"github.com/moneta-app/moneta-backend/internal/dto"
	"github.com/moneta-app/moneta-backend/internal/middleware"
	"github.com/moneta-app/moneta-backend/internal/utils/ratemath"
)

// exchangeService records currency exchanges between two accounts. The user
// fixes the amount entering the buy account; the amount leaving the sell
// account is derived from the sell-to-buy rate.
type exchangeService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	subjectRepo portsrepo.SubjectRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	resolver    portssvc.RateResolverSvcFacade
}

// NewExchangeService creates a new exchange recorder.
func NewExchangeService(
	accountRepo portsrepo.AccountRepositoryFacade,
	subjectRepo portsrepo.SubjectRepositoryFacade,
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	resolver portssvc.RateResolverSvcFacade,
) portssvc.ExchangeSvcFacade {
	return &exchangeService{
		accountRepo: accountRepo,
		subjectRepo: subjectRepo,
		ledgerRepo:  ledgerRepo,
		resolver:    resolver,
	}
}

var _ portssvc.ExchangeSvcFacade = (*exchangeService)(nil)

// RecordExchange implements portssvc.ExchangeRecorderSvc.
func (s *exchangeService) RecordExchange(ctx context.Context, req dto.CreateExchangeRequest, agent string) (*dto.RecordExchangeResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.BuyAccountID == req.SellAccountID {
		return nil, fmt.Errorf("%w: buy and sell accounts must differ", apperrors.ErrValidation)
	}
	if req.BuyAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: buy amount must be positive", apperrors.ErrValidation)
	}
	if req.CustomRate != nil && req.CustomRate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: custom rate must be positive", apperrors.ErrValidation)
	}

	buy, sell, err := s.loadAccounts(ctx, req.BuyAccountID, req.SellAccountID)
	if err != nil {
		return nil, err
	}

	// Same currency on both sides: one-to-one, no rate involved.
	if buy.Unit == sell.Unit {
		exchange := s.newExchange(buy, sell, req.BuyAmount, req.BuyAmount, decimal.NewFromInt(1), agent, req.HappenedAt)
		if err := s.ledgerRepo.SaveExchange(ctx, exchange); err != nil {
			return nil, fmt.Errorf("failed to book exchange: %w", err)
		}
		return &dto.RecordExchangeResult{Exchange: &exchange}, nil
	}

	day := domain.DayOf(req.HappenedAt)
	natural := s.resolver.Resolve(ctx, day, sell.Unit, buy.Unit)

	if natural == nil {
		// Parked even when a custom rate was supplied: the correction for
		// the custom-vs-natural gap cannot be priced yet.
		pe := domain.PostponedExchange{
			PostponedID:   uuid.NewString(),
			BuyAccountID:  buy.AccountID,
			SellAccountID: sell.AccountID,
			BuyAmount:     req.BuyAmount,
			CustomRate:    req.CustomRate,
			Agent:         agent,
			HappenedAt:    req.HappenedAt,
			Day:           day,
			Relevant:      true,
			AuditFields:   newAudit(agent, time.Now()),
		}
		if err := s.ledgerRepo.SavePostponedExchange(ctx, pe); err != nil {
			return nil, fmt.Errorf("failed to postpone exchange: %w", err)
		}
		logger.Info("Exchange postponed until a rate is known",
			slog.String("postponed_id", pe.PostponedID),
			slog.String("pair", domain.ConversionPair{From: sell.Unit, To: buy.Unit}.String()),
			slog.String("day", day.String()))
		return &dto.RecordExchangeResult{Postponed: &pe}, nil
	}

	applied := *natural
	if req.CustomRate != nil {
		applied = *req.CustomRate
	}

	sellAmount := ratemath.ConvertBack(req.BuyAmount, applied, sell.Unit.Scale())
	exchange := s.newExchange(buy, sell, req.BuyAmount, sellAmount, applied, agent, req.HappenedAt)
	if err := s.ledgerRepo.SaveExchange(ctx, exchange); err != nil {
		return nil, fmt.Errorf("failed to book exchange: %w", err)
	}

	if req.CustomRate != nil && !natural.Equal(applied) {
		if err := s.bookConversionDifference(ctx, buy, sellAmount, applied, *natural, agent, req.HappenedAt); err != nil {
			return nil, err
		}
	}
	return &dto.RecordExchangeResult{Exchange: &exchange}, nil
}

// ReplayPostponed implements portssvc.ExchangeReplaySvc. The booking and the
// relevant-flag clear happen in one repository transaction so a duplicate
// task cannot book the exchange twice.
func (s *exchangeService) ReplayPostponed(ctx context.Context, pe domain.PostponedExchange, pair domain.ConversionPair, rate decimal.Decimal) error {
	buy, sell, err := s.loadAccounts(ctx, pe.BuyAccountID, pe.SellAccountID)
	if err != nil {
		return err
	}

	eventPair := domain.ConversionPair{From: sell.Unit, To: buy.Unit}
	natural := replayRate(ctx, s.resolver, pe.Day, eventPair, pair, rate)
	if natural == nil {
		return portssvc.ErrRateStillUnknown
	}
	applied := *natural
	if pe.CustomRate != nil {
		applied = *pe.CustomRate
	}

	sellAmount := ratemath.ConvertBack(pe.BuyAmount, applied, sell.Unit.Scale())
	exchange := s.newExchange(buy, sell, pe.BuyAmount, sellAmount, applied, pe.Agent, pe.HappenedAt)
	if err := s.ledgerRepo.ReplayExchange(ctx, exchange, pe.PostponedID); err != nil {
		return fmt.Errorf("failed to book replayed exchange: %w", err)
	}

	if pe.CustomRate != nil && !natural.Equal(applied) {
		if err := s.bookConversionDifference(ctx, buy, sellAmount, applied, *natural, pe.Agent, pe.HappenedAt); err != nil {
			return err
		}
	}
	return nil
}

func (s *exchangeService) loadAccounts(ctx context.Context, buyID, sellID string) (*domain.Account, *domain.Account, error) {
	buy, err := s.accountRepo.FindAccountByID(ctx, buyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load buy account %s: %w", buyID, err)
	}
	sell, err := s.accountRepo.FindAccountByID(ctx, sellID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load sell account %s: %w", sellID, err)
	}
	return buy, sell, nil
}

func (s *exchangeService) newExchange(
	buy, sell *domain.Account,
	buyAmount, sellAmount, rate decimal.Decimal,
	agent string,
	happenedAt time.Time,
) domain.Exchange {
	return domain.Exchange{
		ExchangeID:    uuid.NewString(),
		BuyAccountID:  buy.AccountID,
		SellAccountID: sell.AccountID,
		BuyAmount:     buyAmount,
		SellAmount:    sellAmount,
		Rate:          rate,
		Agent:         agent,
		HappenedAt:    happenedAt,
		AuditFields:   newAudit(agent, time.Now()),
	}
}

// bookConversionDifference books the gap between the custom and natural
// rates onto the buy account. Selling less than the natural rate dictated is
// a benefit for the holder, selling more is a loss.
func (s *exchangeService) bookConversionDifference(
	ctx context.Context,
	buy *domain.Account,
	sellAmount decimal.Decimal,
	custom, natural decimal.Decimal,
	agent string,
	happenedAt time.Time,
) error {
	diff := ratemath.RoundHalfDown(sellAmount.Mul(custom).Sub(sellAmount.Mul(natural)).Abs(), buy.Unit.Scale())
	if diff.IsZero() {
		return nil
	}

	subject, err := s.subjectRepo.FindSubjectByCode(ctx, domain.SubjectConversionDifference)
	if err != nil {
		return fmt.Errorf("reserved conversion-difference subject missing: %w", err)
	}

	dir := correctionDirection(domain.Benefit, custom.Cmp(natural))
	correction := domain.Mutation{
		MutationID:  uuid.NewString(),
		AccountID:   buy.AccountID,
		SubjectID:   subject.SubjectID,
		Direction:   dir,
		Amount:      diff,
		Unit:        buy.Unit,
		Quantity:    decimal.NewFromInt(1),
		Agent:       agent,
		HappenedAt:  happenedAt,
		AuditFields: newAudit(agent, time.Now()),
	}
	if err := s.ledgerRepo.SaveMutation(ctx, correction, dir.Signed(diff)); err != nil {
		return fmt.Errorf("failed to book conversion difference: %w", err)
	}
	return nil
}
