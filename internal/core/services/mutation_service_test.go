package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/moneta-app/moneta-backend/internal/apperrors"
	"github.com/moneta-app/moneta-backend/internal/core/domain"
	portssvc "github.com/moneta-app/moneta-backend/internal/core/ports/services"
	"github.com/moneta-app/moneta-backend/internal/core/services"
	"github.com/moneta-app/moneta-backend/internal/dto"
)

type MutationServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockSubjectRepo *MockSubjectRepository
	mockLedgerRepo  *MockLedgerRepository
	mockResolver    *MockRateResolver
	service         portssvc.MutationSvcFacade

	account     domain.Account
	subject     domain.Subject
	diffSubject domain.Subject
	happenedAt  time.Time
}

func (suite *MutationServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockSubjectRepo = new(MockSubjectRepository)
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockResolver = new(MockRateResolver)
	suite.service = services.NewMutationService(
		suite.mockAccountRepo, suite.mockSubjectRepo, suite.mockLedgerRepo, suite.mockResolver,
	)

	suite.account = domain.Account{
		AccountID: uuid.NewString(),
		Name:      "Wallet",
		Unit:      unitEUR,
		Balance:   decimal.Zero,
		IsActive:  true,
	}
	suite.subject = domain.Subject{
		SubjectID: uuid.NewString(),
		Code:      "GROCERIES",
		Name:      "Groceries",
	}
	suite.diffSubject = domain.Subject{
		SubjectID: uuid.NewString(),
		Code:      domain.SubjectConversionDifference,
		Name:      "Conversion difference",
		Reserved:  true,
	}
	suite.happenedAt = time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)
}

func (suite *MutationServiceTestSuite) expectLookups() {
	suite.mockAccountRepo.On("FindAccountByID", mock.Anything, suite.account.AccountID).
		Return(&suite.account, nil)
	suite.mockSubjectRepo.On("FindSubjectByCode", mock.Anything, suite.subject.Code).
		Return(&suite.subject, nil)
}

func (suite *MutationServiceTestSuite) request(direction domain.Direction, amount, unit string, customRate *decimal.Decimal) dto.CreateMutationRequest {
	return dto.CreateMutationRequest{
		AccountID:   suite.account.AccountID,
		SubjectCode: suite.subject.Code,
		Direction:   direction,
		Amount:      decimal.RequireFromString(amount),
		Unit:        unit,
		CustomRate:  customRate,
		HappenedAt:  suite.happenedAt,
	}
}

func (suite *MutationServiceTestSuite) TestRecordMutation_SameCurrency_BooksDirectly() {
	ctx := context.Background()
	suite.expectLookups()

	suite.mockLedgerRepo.On("SaveMutation", ctx, mock.MatchedBy(func(m domain.Mutation) bool {
		return m.Amount.Equal(decimal.RequireFromString("25.50")) &&
			m.Unit == unitEUR && m.AppliedRate == nil && m.CounterUnit == nil
	}), decimal.RequireFromString("-25.50")).Return(nil).Once()

	res, err := suite.service.RecordMutation(ctx, suite.request(domain.Loss, "25.50", "EUR", nil), "tester")

	suite.Require().NoError(err)
	suite.Require().NotNil(res.Mutation)
	suite.False(res.Deferred())
	suite.mockResolver.AssertNotCalled(suite.T(), "Resolve")
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *MutationServiceTestSuite) TestRecordMutation_NaturalRate_Converts() {
	ctx := context.Background()
	day := domain.DayOf(suite.happenedAt)
	natural := decimal.RequireFromString("0.9")
	suite.expectLookups()

	suite.mockResolver.On("Resolve", ctx, day, unitUSD, unitEUR).Return(&natural).Once()
	suite.mockLedgerRepo.On("SaveMutation", ctx, mock.MatchedBy(func(m domain.Mutation) bool {
		return m.Amount.Equal(decimal.RequireFromString("45.00")) &&
			m.Unit == unitEUR &&
			m.AppliedRate != nil && m.AppliedRate.Equal(natural) &&
			m.CounterUnit != nil && *m.CounterUnit == unitUSD
	}), decimal.RequireFromString("45.00")).Return(nil).Once()

	res, err := suite.service.RecordMutation(ctx, suite.request(domain.Benefit, "50", "USD", nil), "tester")

	suite.Require().NoError(err)
	suite.Require().NotNil(res.Mutation)
	suite.True(res.Mutation.Amount.Equal(decimal.RequireFromString("45.00")))
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *MutationServiceTestSuite) TestRecordMutation_NoRate_Postpones() {
	ctx := context.Background()
	day := domain.DayOf(suite.happenedAt)
	suite.expectLookups()

	suite.mockResolver.On("Resolve", ctx, day, unitUSD, unitEUR).Return(nil).Once()
	suite.mockLedgerRepo.On("SavePostponedMutation", ctx, mock.MatchedBy(func(pm domain.PostponedMutation) bool {
		return pm.Unit == unitUSD && pm.ConversionUnit == unitEUR &&
			pm.Amount.Equal(decimal.RequireFromString("50")) &&
			pm.Day.Equal(day) && pm.CustomRate == nil
	})).Return(nil).Once()

	res, err := suite.service.RecordMutation(ctx, suite.request(domain.Benefit, "50", "USD", nil), "tester")

	// Postponing is success for the caller.
	suite.Require().NoError(err)
	suite.Require().NotNil(res.Postponed)
	suite.True(res.Deferred())
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "SaveMutation")
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *MutationServiceTestSuite) TestRecordMutation_CustomRateNoNatural_PostponesWithCustom() {
	ctx := context.Background()
	day := domain.DayOf(suite.happenedAt)
	custom := decimal.RequireFromString("1.20")
	suite.expectLookups()

	suite.mockResolver.On("Resolve", ctx, day, unitUSD, unitEUR).Return(nil).Once()
	// The correction needs the market rate, so a custom rate alone cannot
	// book the event. The record keeps the custom rate for the replay.
	suite.mockLedgerRepo.On("SavePostponedMutation", ctx, mock.MatchedBy(func(pm domain.PostponedMutation) bool {
		return pm.CustomRate != nil && pm.CustomRate.Equal(custom) &&
			pm.Unit == unitUSD && pm.ConversionUnit == unitEUR
	})).Return(nil).Once()

	res, err := suite.service.RecordMutation(ctx, suite.request(domain.Benefit, "50", "USD", &custom), "tester")

	suite.Require().NoError(err)
	suite.Require().NotNil(res.Postponed)
	suite.True(res.Deferred())
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "SaveMutation")
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *MutationServiceTestSuite) TestRecordMutation_CustomRate_BooksCorrection() {
	testCases := []struct {
		name          string
		direction     domain.Direction
		custom        string
		natural       string
		wantBooked    string
		wantDiff      string
		wantDirection domain.Direction
	}{
		{"benefit overvalued is benefit", domain.Benefit, "1.20", "1.10", "120.00", "10.00", domain.Benefit},
		{"benefit undervalued is loss", domain.Benefit, "1.00", "1.10", "100.00", "10.00", domain.Loss},
		{"loss overvalued is loss", domain.Loss, "1.20", "1.10", "120.00", "10.00", domain.Loss},
		{"loss undervalued is benefit", domain.Loss, "1.00", "1.10", "100.00", "10.00", domain.Benefit},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.SetupTest()
			ctx := context.Background()
			day := domain.DayOf(suite.happenedAt)
			custom := decimal.RequireFromString(tc.custom)
			natural := decimal.RequireFromString(tc.natural)
			suite.expectLookups()
			suite.mockSubjectRepo.On("FindSubjectByCode", mock.Anything, domain.SubjectConversionDifference).
				Return(&suite.diffSubject, nil).Once()

			suite.mockResolver.On("Resolve", ctx, day, unitUSD, unitEUR).Return(&natural).Once()

			suite.mockLedgerRepo.On("SaveMutation", ctx, mock.MatchedBy(func(m domain.Mutation) bool {
				return m.SubjectID == suite.subject.SubjectID &&
					m.Direction == tc.direction &&
					m.Amount.Equal(decimal.RequireFromString(tc.wantBooked))
			}), mock.AnythingOfType("decimal.Decimal")).Return(nil).Once()
			suite.mockLedgerRepo.On("SaveMutation", ctx, mock.MatchedBy(func(m domain.Mutation) bool {
				return m.SubjectID == suite.diffSubject.SubjectID &&
					m.Direction == tc.wantDirection &&
					m.Amount.Equal(decimal.RequireFromString(tc.wantDiff))
			}), mock.AnythingOfType("decimal.Decimal")).Return(nil).Once()

			res, err := suite.service.RecordMutation(ctx, suite.request(tc.direction, "100", "USD", &custom), "tester")

			suite.Require().NoError(err)
			suite.Require().NotNil(res.Mutation)
			suite.mockLedgerRepo.AssertExpectations(suite.T())
		})
	}
}

func (suite *MutationServiceTestSuite) TestRecordMutation_CustomEqualsNatural_NoCorrection() {
	ctx := context.Background()
	day := domain.DayOf(suite.happenedAt)
	rate := decimal.RequireFromString("1.10")
	suite.expectLookups()

	suite.mockResolver.On("Resolve", ctx, day, unitUSD, unitEUR).Return(&rate).Once()
	suite.mockLedgerRepo.On("SaveMutation", ctx, mock.AnythingOfType("domain.Mutation"), mock.AnythingOfType("decimal.Decimal")).
		Return(nil).Once()

	_, err := suite.service.RecordMutation(ctx, suite.request(domain.Benefit, "100", "USD", &rate), "tester")

	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
	suite.mockSubjectRepo.AssertNotCalled(suite.T(), "FindSubjectByCode", mock.Anything, domain.SubjectConversionDifference)
}

func (suite *MutationServiceTestSuite) TestRecordMutation_UnknownSubject_ValidationError() {
	ctx := context.Background()
	suite.mockAccountRepo.On("FindAccountByID", mock.Anything, suite.account.AccountID).
		Return(&suite.account, nil)
	suite.mockSubjectRepo.On("FindSubjectByCode", mock.Anything, suite.subject.Code).
		Return(nil, apperrors.ErrNotFound)

	res, err := suite.service.RecordMutation(ctx, suite.request(domain.Loss, "10", "EUR", nil), "tester")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(res)
}

func (suite *MutationServiceTestSuite) TestRecordMutation_NonPositiveAmount_ValidationError() {
	ctx := context.Background()

	_, err := suite.service.RecordMutation(ctx, suite.request(domain.Loss, "0", "EUR", nil), "tester")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "SaveMutation")
}

func (suite *MutationServiceTestSuite) postponed(customRate *decimal.Decimal) domain.PostponedMutation {
	return domain.PostponedMutation{
		PostponedID:    uuid.NewString(),
		AccountID:      suite.account.AccountID,
		SubjectID:      suite.subject.SubjectID,
		Direction:      domain.Benefit,
		Amount:         decimal.RequireFromString("50"),
		Unit:           unitUSD,
		ConversionUnit: unitEUR,
		CustomRate:     customRate,
		Quantity:       decimal.NewFromInt(1),
		Agent:          "tester",
		HappenedAt:     suite.happenedAt,
		Day:            domain.DayOf(suite.happenedAt),
	}
}

func (suite *MutationServiceTestSuite) TestReplayPostponed_BooksAndDeletes() {
	ctx := context.Background()
	pm := suite.postponed(nil)
	rate := decimal.RequireFromString("0.9")

	suite.mockAccountRepo.On("FindAccountByID", mock.Anything, suite.account.AccountID).
		Return(&suite.account, nil)
	suite.mockLedgerRepo.On("ReplayMutation", ctx, mock.MatchedBy(func(m domain.Mutation) bool {
		return m.Amount.Equal(decimal.RequireFromString("45.00"))
	}), decimal.RequireFromString("45.00"), pm.PostponedID).Return(nil).Once()

	err := suite.service.ReplayPostponed(ctx, pm, pm.Pair(), rate)

	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
	suite.mockResolver.AssertNotCalled(suite.T(), "ResolveWithoutReconciliation")
}

func (suite *MutationServiceTestSuite) TestReplayPostponed_ReversedPair_InvertsRate() {
	ctx := context.Background()
	pm := suite.postponed(nil)
	// Task learned EUR->USD = 2, the event needs USD->EUR = 0.5.
	rate := decimal.RequireFromString("2")

	suite.mockAccountRepo.On("FindAccountByID", mock.Anything, suite.account.AccountID).
		Return(&suite.account, nil)
	suite.mockLedgerRepo.On("ReplayMutation", ctx, mock.MatchedBy(func(m domain.Mutation) bool {
		return m.Amount.Equal(decimal.RequireFromString("25.00"))
	}), mock.AnythingOfType("decimal.Decimal"), pm.PostponedID).Return(nil).Once()

	err := suite.service.ReplayPostponed(ctx, pm, pm.Pair().Reversed(), rate)

	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *MutationServiceTestSuite) TestReplayPostponed_CustomRate_BooksAtCustomWithCorrection() {
	ctx := context.Background()
	custom := decimal.RequireFromString("1.20")
	pm := suite.postponed(&custom)
	natural := decimal.RequireFromString("0.90")

	suite.mockAccountRepo.On("FindAccountByID", mock.Anything, suite.account.AccountID).
		Return(&suite.account, nil)
	suite.mockSubjectRepo.On("FindSubjectByCode", mock.Anything, domain.SubjectConversionDifference).
		Return(&suite.diffSubject, nil).Once()
	suite.mockLedgerRepo.On("ReplayMutation", ctx, mock.MatchedBy(func(m domain.Mutation) bool {
		return m.Amount.Equal(decimal.RequireFromString("60.00")) &&
			m.AppliedRate != nil && m.AppliedRate.Equal(custom)
	}), decimal.RequireFromString("60.00"), pm.PostponedID).Return(nil).Once()
	suite.mockLedgerRepo.On("SaveMutation", ctx, mock.MatchedBy(func(m domain.Mutation) bool {
		return m.SubjectID == suite.diffSubject.SubjectID &&
			m.Direction == domain.Benefit &&
			m.Amount.Equal(decimal.RequireFromString("15.00"))
	}), mock.AnythingOfType("decimal.Decimal")).Return(nil).Once()

	err := suite.service.ReplayPostponed(ctx, pm, pm.Pair(), natural)

	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *MutationServiceTestSuite) TestReplayPostponed_PairStillUnpriced_StaysPostponed() {
	ctx := context.Background()
	pm := suite.postponed(nil)
	relatedPair := domain.NewConversionPair(unitRUB, unitUSD)

	suite.mockResolver.On("ResolveWithoutReconciliation", ctx, pm.Day, unitUSD, unitEUR).
		Return(nil).Once()

	err := suite.service.ReplayPostponed(ctx, pm, relatedPair, decimal.RequireFromString("0.011"))

	suite.Require().ErrorIs(err, portssvc.ErrRateStillUnknown)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "ReplayMutation")
}

func (suite *MutationServiceTestSuite) TestReplayPostponed_CustomRateStillNeedsNatural() {
	ctx := context.Background()
	custom := decimal.RequireFromString("1.20")
	pm := suite.postponed(&custom)
	relatedPair := domain.NewConversionPair(unitRUB, unitUSD)

	suite.mockResolver.On("ResolveWithoutReconciliation", ctx, pm.Day, unitUSD, unitEUR).
		Return(nil).Once()

	// The correction against the market rate cannot be priced yet, so the
	// custom rate alone must not release the event.
	err := suite.service.ReplayPostponed(ctx, pm, relatedPair, decimal.RequireFromString("0.011"))

	suite.Require().ErrorIs(err, portssvc.ErrRateStillUnknown)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "ReplayMutation")
}

func (suite *MutationServiceTestSuite) TestReplayPostponed_RecordAlreadyConsumed() {
	ctx := context.Background()
	pm := suite.postponed(nil)
	rate := decimal.RequireFromString("0.9")

	suite.mockAccountRepo.On("FindAccountByID", mock.Anything, suite.account.AccountID).
		Return(&suite.account, nil)
	suite.mockLedgerRepo.On("ReplayMutation", ctx, mock.AnythingOfType("domain.Mutation"), mock.AnythingOfType("decimal.Decimal"), pm.PostponedID).
		Return(apperrors.ErrNotFound).Once()

	err := suite.service.ReplayPostponed(ctx, pm, pm.Pair(), rate)

	// An earlier task booked the event; nothing else may be booked here.
	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "SaveMutation")
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func TestMutationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MutationServiceTestSuite))
}
