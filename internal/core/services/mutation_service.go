package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
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

// mutationService records funds mutations. When the event's currency differs
// from the account's, the amount is converted at the custom rate (if the user
// supplied one) or the natural rate from the resolution engine; while the
// natural rate is unknown the event is parked as a postponed mutation and
// booked later by reconciliation.
type mutationService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	subjectRepo portsrepo.SubjectRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	resolver    portssvc.RateResolverSvcFacade
}

// NewMutationService creates a new mutation recorder.
func NewMutationService(
	accountRepo portsrepo.AccountRepositoryFacade,
	subjectRepo portsrepo.SubjectRepositoryFacade,
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	resolver portssvc.RateResolverSvcFacade,
) portssvc.MutationSvcFacade {
	return &mutationService{
		accountRepo: accountRepo,
		subjectRepo: subjectRepo,
		ledgerRepo:  ledgerRepo,
		resolver:    resolver,
	}
}

var _ portssvc.MutationSvcFacade = (*mutationService)(nil)

// RecordMutation implements portssvc.MutationRecorderSvc.
func (s *mutationService) RecordMutation(ctx context.Context, req dto.CreateMutationRequest, agent string) (*dto.RecordMutationResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: mutation amount must be positive", apperrors.ErrValidation)
	}
	if req.CustomRate != nil && req.CustomRate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: custom rate must be positive", apperrors.ErrValidation)
	}

	account, err := s.accountRepo.FindAccountByID(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", req.AccountID, err)
	}

	subject, err := s.subjectRepo.FindSubjectByCode(ctx, req.SubjectCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: subject code '%s' not found", apperrors.ErrValidation, req.SubjectCode)
		}
		return nil, fmt.Errorf("failed to validate subject '%s': %w", req.SubjectCode, err)
	}

	unit := domain.CurrencyUnit(strings.ToUpper(req.Unit))
	quantity := decimal.NewFromInt(1)
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	// Same currency: no rate involved, book immediately.
	if unit == account.Unit {
		mutation := domain.Mutation{
			MutationID:  uuid.NewString(),
			AccountID:   account.AccountID,
			SubjectID:   subject.SubjectID,
			Direction:   req.Direction,
			Amount:      req.Amount,
			Unit:        account.Unit,
			Quantity:    quantity,
			Agent:       agent,
			HappenedAt:  req.HappenedAt,
			AuditFields: newAudit(agent, time.Now()),
		}
		if err := s.ledgerRepo.SaveMutation(ctx, mutation, req.Direction.Signed(req.Amount)); err != nil {
			return nil, fmt.Errorf("failed to book mutation: %w", err)
		}
		return &dto.RecordMutationResult{Mutation: &mutation}, nil
	}

	day := domain.DayOf(req.HappenedAt)
	natural := s.resolver.Resolve(ctx, day, unit, account.Unit)

	if natural == nil {
		// No route yields the natural rate: park the event and report
		// success. A custom rate alone is not enough to book, because the
		// conversion-difference correction needs the natural rate; the
		// custom rate is kept on the postponed record for the replay.
		pm := domain.PostponedMutation{
			PostponedID:    uuid.NewString(),
			AccountID:      account.AccountID,
			SubjectID:      subject.SubjectID,
			Direction:      req.Direction,
			Amount:         req.Amount,
			Unit:           unit,
			ConversionUnit: account.Unit,
			CustomRate:     req.CustomRate,
			Quantity:       quantity,
			Agent:          agent,
			HappenedAt:     req.HappenedAt,
			Day:            day,
			AuditFields:    newAudit(agent, time.Now()),
		}
		if err := s.ledgerRepo.SavePostponedMutation(ctx, pm); err != nil {
			return nil, fmt.Errorf("failed to postpone mutation: %w", err)
		}
		logger.Info("Mutation postponed until a rate is known",
			slog.String("postponed_id", pm.PostponedID),
			slog.String("pair", pm.Pair().String()),
			slog.String("day", day.String()))
		return &dto.RecordMutationResult{Postponed: &pm}, nil
	}

	applied := *natural
	if req.CustomRate != nil {
		applied = *req.CustomRate
	}

	mutation := s.convertedMutation(account, subject.SubjectID, req.Direction,
		req.Amount, unit, quantity, agent, req.HappenedAt, applied)
	if err := s.ledgerRepo.SaveMutation(ctx, mutation, req.Direction.Signed(mutation.Amount)); err != nil {
		return nil, fmt.Errorf("failed to book mutation: %w", err)
	}

	if req.CustomRate != nil && !natural.Equal(applied) {
		if err := s.bookConversionDifference(ctx, account, req.Direction, req.Amount, applied, *natural, agent, req.HappenedAt); err != nil {
			return nil, err
		}
	}
	return &dto.RecordMutationResult{Mutation: &mutation}, nil
}

// ReplayPostponed implements portssvc.MutationReplaySvc. It is invoked only
// from the reconciliation worker, with a rate learned for the task's pair.
// It needs the natural rate even when the record carries a custom one: the
// conversion-difference correction is priced against it.
func (s *mutationService) ReplayPostponed(ctx context.Context, pm domain.PostponedMutation, pair domain.ConversionPair, rate decimal.Decimal) error {
	natural := replayRate(ctx, s.resolver, pm.Day, pm.Pair(), pair, rate)
	if natural == nil {
		return portssvc.ErrRateStillUnknown
	}
	applied := *natural
	if pm.CustomRate != nil {
		applied = *pm.CustomRate
	}

	account, err := s.accountRepo.FindAccountByID(ctx, pm.AccountID)
	if err != nil {
		return fmt.Errorf("failed to load account %s: %w", pm.AccountID, err)
	}

	mutation := s.convertedMutation(account, pm.SubjectID, pm.Direction,
		pm.Amount, pm.Unit, pm.Quantity, pm.Agent, pm.HappenedAt, applied)
	if err := s.ledgerRepo.ReplayMutation(ctx, mutation, pm.Direction.Signed(mutation.Amount), pm.PostponedID); err != nil {
		return fmt.Errorf("failed to book replayed mutation: %w", err)
	}

	if pm.CustomRate != nil && !natural.Equal(applied) {
		if err := s.bookConversionDifference(ctx, account, pm.Direction, pm.Amount, applied, *natural, pm.Agent, pm.HappenedAt); err != nil {
			return err
		}
	}
	return nil
}

// convertedMutation builds the booked form of a cross-currency mutation: the
// amount converted into the account's unit at the applied rate, with the
// conversion recorded on the row.
func (s *mutationService) convertedMutation(
	account *domain.Account,
	subjectID string,
	direction domain.Direction,
	amount decimal.Decimal,
	unit domain.CurrencyUnit,
	quantity decimal.Decimal,
	agent string,
	happenedAt time.Time,
	applied decimal.Decimal,
) domain.Mutation {
	counter := ratemath.Convert(amount, applied, account.Unit.Scale())
	return domain.Mutation{
		MutationID:  uuid.NewString(),
		AccountID:   account.AccountID,
		SubjectID:   subjectID,
		Direction:   direction,
		Amount:      counter,
		Unit:        account.Unit,
		Quantity:    quantity,
		Agent:       agent,
		HappenedAt:  happenedAt,
		AppliedRate: &applied,
		CounterUnit: &unit,
		AuditFields: newAudit(agent, time.Now()),
	}
}

// bookConversionDifference books the correction for the gap between the
// custom and natural rates, under the reserved conversion-difference subject.
func (s *mutationService) bookConversionDifference(
	ctx context.Context,
	account *domain.Account,
	direction domain.Direction,
	amount decimal.Decimal,
	custom decimal.Decimal,
	natural decimal.Decimal,
	agent string,
	happenedAt time.Time,
) error {
	diff := ratemath.RoundHalfDown(amount.Mul(custom).Sub(amount.Mul(natural)).Abs(), account.Unit.Scale())
	if diff.IsZero() {
		return nil
	}

	subject, err := s.subjectRepo.FindSubjectByCode(ctx, domain.SubjectConversionDifference)
	if err != nil {
		return fmt.Errorf("reserved conversion-difference subject missing: %w", err)
	}

	correctionDir := correctionDirection(direction, custom.Cmp(natural))
	correction := domain.Mutation{
		MutationID:  uuid.NewString(),
		AccountID:   account.AccountID,
		SubjectID:   subject.SubjectID,
		Direction:   correctionDir,
		Amount:      diff,
		Unit:        account.Unit,
		Quantity:    decimal.NewFromInt(1),
		Agent:       agent,
		HappenedAt:  happenedAt,
		AuditFields: newAudit(agent, time.Now()),
	}
	if err := s.ledgerRepo.SaveMutation(ctx, correction, correctionDir.Signed(diff)); err != nil {
		return fmt.Errorf("failed to book conversion difference: %w", err)
	}
	return nil
}

// newAudit builds audit fields for a record created by the given agent.
func newAudit(agent string, now time.Time) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     agent,
		LastUpdatedAt: now,
		LastUpdatedBy: agent,
	}
}
