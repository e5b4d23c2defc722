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

type ExchangeServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockSubjectRepo *MockSubjectRepository
	mockLedgerRepo  *MockLedgerRepository
	mockResolver    *MockRateResolver
	service         portssvc.ExchangeSvcFacade

	buyAccount  domain.Account
	sellAccount domain.Account
	diffSubject domain.Subject
	happenedAt  time.Time
}

func (suite *ExchangeServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockSubjectRepo = new(MockSubjectRepository)
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockResolver = new(MockRateResolver)
	suite.service = services.NewExchangeService(
		suite.mockAccountRepo, suite.mockSubjectRepo, suite.mockLedgerRepo, suite.mockResolver,
	)

	suite.buyAccount = domain.Account{
		AccountID: uuid.NewString(),
		Name:      "EUR wallet",
		Unit:      unitEUR,
		IsActive:  true,
	}
	suite.sellAccount = domain.Account{
		AccountID: uuid.NewString(),
		Name:      "USD wallet",
		Unit:      unitUSD,
		IsActive:  true,
	}
	suite.diffSubject = domain.Subject{
		SubjectID: uuid.NewString(),
		Code:      domain.SubjectConversionDifference,
		Reserved:  true,
	}
	suite.happenedAt = time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
}

func (suite *ExchangeServiceTestSuite) expectAccounts() {
	suite.mockAccountRepo.On("FindAccountByID", mock.Anything, suite.buyAccount.AccountID).
		Return(&suite.buyAccount, nil)
	suite.mockAccountRepo.On("FindAccountByID", mock.Anything, suite.sellAccount.AccountID).
		Return(&suite.sellAccount, nil)
}

func (suite *ExchangeServiceTestSuite) request(buyAmount string, customRate *decimal.Decimal) dto.CreateExchangeRequest {
	return dto.CreateExchangeRequest{
		BuyAccountID:  suite.buyAccount.AccountID,
		SellAccountID: suite.sellAccount.AccountID,
		BuyAmount:     decimal.RequireFromString(buyAmount),
		CustomRate:    customRate,
		HappenedAt:    suite.happenedAt,
	}
}

func (suite *ExchangeServiceTestSuite) TestRecordExchange_SameUnit_OneToOne() {
	ctx := context.Background()
	suite.sellAccount.Unit = unitEUR
	suite.expectAccounts()

	suite.mockLedgerRepo.On("SaveExchange", ctx, mock.MatchedBy(func(e domain.Exchange) bool {
		return e.BuyAmount.Equal(decimal.RequireFromString("100")) &&
			e.SellAmount.Equal(decimal.RequireFromString("100")) &&
			e.Rate.Equal(decimal.NewFromInt(1))
	})).Return(nil).Once()

	res, err := suite.service.RecordExchange(ctx, suite.request("100", nil), "tester")

	suite.Require().NoError(err)
	suite.Require().NotNil(res.Exchange)
	suite.mockResolver.AssertNotCalled(suite.T(), "Resolve")
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeServiceTestSuite) TestRecordExchange_NaturalRate_DerivesSellAmount() {
	ctx := context.Background()
	day := domain.DayOf(suite.happenedAt)
	natural := decimal.RequireFromString("0.9")
	suite.expectAccounts()

	suite.mockResolver.On("Resolve", ctx, day, unitUSD, unitEUR).Return(&natural).Once()
	suite.mockLedgerRepo.On("SaveExchange", ctx, mock.MatchedBy(func(e domain.Exchange) bool {
		return e.BuyAmount.Equal(decimal.RequireFromString("45")) &&
			e.SellAmount.Equal(decimal.RequireFromString("50.00")) &&
			e.Rate.Equal(natural)
	})).Return(nil).Once()

	res, err := suite.service.RecordExchange(ctx, suite.request("45", nil), "tester")

	suite.Require().NoError(err)
	suite.Require().NotNil(res.Exchange)
	suite.False(res.Deferred())
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeServiceTestSuite) TestRecordExchange_NoRate_Postpones() {
	ctx := context.Background()
	day := domain.DayOf(suite.happenedAt)
	suite.expectAccounts()

	suite.mockResolver.On("Resolve", ctx, day, unitUSD, unitEUR).Return(nil).Once()
	suite.mockLedgerRepo.On("SavePostponedExchange", ctx, mock.MatchedBy(func(pe domain.PostponedExchange) bool {
		return pe.BuyAccountID == suite.buyAccount.AccountID &&
			pe.SellAccountID == suite.sellAccount.AccountID &&
			pe.BuyAmount.Equal(decimal.RequireFromString("45")) &&
			pe.Relevant && pe.Day.Equal(day)
	})).Return(nil).Once()

	res, err := suite.service.RecordExchange(ctx, suite.request("45", nil), "tester")

	suite.Require().NoError(err)
	suite.Require().NotNil(res.Postponed)
	suite.True(res.Deferred())
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "SaveExchange")
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeServiceTestSuite) TestRecordExchange_CustomBelowNatural_BooksLossCorrection() {
	ctx := context.Background()
	day := domain.DayOf(suite.happenedAt)
	custom := decimal.RequireFromString("0.9")
	natural := decimal.RequireFromString("1.0")
	suite.expectAccounts()
	suite.mockSubjectRepo.On("FindSubjectByCode", mock.Anything, domain.SubjectConversionDifference).
		Return(&suite.diffSubject, nil).Once()

	suite.mockResolver.On("Resolve", ctx, day, unitUSD, unitEUR).Return(&natural).Once()
	suite.mockLedgerRepo.On("SaveExchange", ctx, mock.MatchedBy(func(e domain.Exchange) bool {
		// 45 EUR bought at 0.9 means 50 USD sold.
		return e.SellAmount.Equal(decimal.RequireFromString("50.00")) && e.Rate.Equal(custom)
	})).Return(nil).Once()
	// At the natural rate those 50 USD were worth 50 EUR, so the holder gave
	// up 5 EUR: a loss on the buy account.
	suite.mockLedgerRepo.On("SaveMutation", ctx, mock.MatchedBy(func(m domain.Mutation) bool {
		return m.AccountID == suite.buyAccount.AccountID &&
			m.SubjectID == suite.diffSubject.SubjectID &&
			m.Direction == domain.Loss &&
			m.Amount.Equal(decimal.RequireFromString("5.00"))
	}), mock.AnythingOfType("decimal.Decimal")).Return(nil).Once()

	res, err := suite.service.RecordExchange(ctx, suite.request("45", &custom), "tester")

	suite.Require().NoError(err)
	suite.Require().NotNil(res.Exchange)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeServiceTestSuite) TestRecordExchange_CustomAboveNatural_BooksBenefitCorrection() {
	ctx := context.Background()
	day := domain.DayOf(suite.happenedAt)
	custom := decimal.RequireFromString("1.0")
	natural := decimal.RequireFromString("0.9")
	suite.expectAccounts()
	suite.mockSubjectRepo.On("FindSubjectByCode", mock.Anything, domain.SubjectConversionDifference).
		Return(&suite.diffSubject, nil).Once()

	suite.mockResolver.On("Resolve", ctx, day, unitUSD, unitEUR).Return(&natural).Once()
	suite.mockLedgerRepo.On("SaveExchange", ctx, mock.AnythingOfType("domain.Exchange")).Return(nil).Once()
	suite.mockLedgerRepo.On("SaveMutation", ctx, mock.MatchedBy(func(m domain.Mutation) bool {
		return m.Direction == domain.Benefit &&
			m.Amount.Equal(decimal.RequireFromString("4.50"))
	}), mock.AnythingOfType("decimal.Decimal")).Return(nil).Once()

	res, err := suite.service.RecordExchange(ctx, suite.request("45", &custom), "tester")

	suite.Require().NoError(err)
	suite.Require().NotNil(res.Exchange)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeServiceTestSuite) TestRecordExchange_SameAccount_ValidationError() {
	ctx := context.Background()
	req := suite.request("45", nil)
	req.SellAccountID = req.BuyAccountID

	_, err := suite.service.RecordExchange(ctx, req, "tester")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExchangeServiceTestSuite) TestReplayPostponed_BooksAndMarksProcessed() {
	ctx := context.Background()
	pe := domain.PostponedExchange{
		PostponedID:   uuid.NewString(),
		BuyAccountID:  suite.buyAccount.AccountID,
		SellAccountID: suite.sellAccount.AccountID,
		BuyAmount:     decimal.RequireFromString("45"),
		Agent:         "tester",
		HappenedAt:    suite.happenedAt,
		Day:           domain.DayOf(suite.happenedAt),
		Relevant:      true,
	}
	rate := decimal.RequireFromString("0.9")
	suite.expectAccounts()

	suite.mockLedgerRepo.On("ReplayExchange", ctx, mock.MatchedBy(func(e domain.Exchange) bool {
		return e.SellAmount.Equal(decimal.RequireFromString("50.00")) && e.Rate.Equal(rate)
	}), pe.PostponedID).Return(nil).Once()

	err := suite.service.ReplayPostponed(ctx, pe, domain.NewConversionPair(unitUSD, unitEUR), rate)

	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeServiceTestSuite) TestReplayPostponed_RecordAlreadyConsumed() {
	ctx := context.Background()
	pe := domain.PostponedExchange{
		PostponedID:   uuid.NewString(),
		BuyAccountID:  suite.buyAccount.AccountID,
		SellAccountID: suite.sellAccount.AccountID,
		BuyAmount:     decimal.RequireFromString("45"),
		Agent:         "tester",
		HappenedAt:    suite.happenedAt,
		Day:           domain.DayOf(suite.happenedAt),
		Relevant:      true,
	}
	rate := decimal.RequireFromString("0.9")
	suite.expectAccounts()

	suite.mockLedgerRepo.On("ReplayExchange", ctx, mock.AnythingOfType("domain.Exchange"), pe.PostponedID).
		Return(apperrors.ErrNotFound).Once()

	err := suite.service.ReplayPostponed(ctx, pe, domain.NewConversionPair(unitUSD, unitEUR), rate)

	// An earlier task booked the exchange; no separate booking may follow.
	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "SaveExchange")
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeServiceTestSuite) TestReplayPostponed_PairStillUnpriced_StaysPostponed() {
	ctx := context.Background()
	pe := domain.PostponedExchange{
		PostponedID:   uuid.NewString(),
		BuyAccountID:  suite.buyAccount.AccountID,
		SellAccountID: suite.sellAccount.AccountID,
		BuyAmount:     decimal.RequireFromString("45"),
		Day:           domain.DayOf(suite.happenedAt),
		Relevant:      true,
	}
	suite.expectAccounts()
	suite.mockResolver.On("ResolveWithoutReconciliation", ctx, pe.Day, unitUSD, unitEUR).
		Return(nil).Once()

	err := suite.service.ReplayPostponed(ctx, pe, domain.NewConversionPair(unitRUB, unitUSD), decimal.RequireFromString("0.011"))

	suite.Require().ErrorIs(err, portssvc.ErrRateStillUnknown)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "ReplayExchange")
}

func (suite *ExchangeServiceTestSuite) TestRecordExchange_CustomRateNoNatural_PostponesWithCustom() {
	ctx := context.Background()
	day := domain.DayOf(suite.happenedAt)
	custom := decimal.RequireFromString("0.9")
	suite.expectAccounts()

	suite.mockResolver.On("Resolve", ctx, day, unitUSD, unitEUR).Return(nil).Once()
	// The correction against the market rate cannot be priced yet, so the
	// exchange is parked with its custom rate instead of booked.
	suite.mockLedgerRepo.On("SavePostponedExchange", ctx, mock.MatchedBy(func(pe domain.PostponedExchange) bool {
		return pe.CustomRate != nil && pe.CustomRate.Equal(custom) && pe.Relevant
	})).Return(nil).Once()

	res, err := suite.service.RecordExchange(ctx, suite.request("45", &custom), "tester")

	suite.Require().NoError(err)
	suite.Require().NotNil(res.Postponed)
	suite.True(res.Deferred())
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "SaveExchange")
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func TestExchangeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeServiceTestSuite))
}
