package services_test

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/moneta-app/moneta-backend/internal/core/domain"
	portssvc "github.com/moneta-app/moneta-backend/internal/core/ports/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// --- Mock RateRepository ---
type MockRateRepository struct {
	mock.Mock
}

func (m *MockRateRepository) GetRate(ctx context.Context, day domain.Day, from, to domain.CurrencyUnit) (*decimal.Decimal, error) {
	args := m.Called(ctx, day, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*decimal.Decimal), args.Error(1)
}

func (m *MockRateRepository) GetLatestRate(ctx context.Context, from, to domain.CurrencyUnit) (*decimal.Decimal, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*decimal.Decimal), args.Error(1)
}

func (m *MockRateRepository) IsStale(ctx context.Context, to domain.CurrencyUnit) (bool, error) {
	args := m.Called(ctx, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockRateRepository) AddRate(ctx context.Context, day domain.Day, from, to domain.CurrencyUnit, rate decimal.Decimal) (bool, error) {
	args := m.Called(ctx, day, from, to, rate)
	return args.Bool(0), args.Error(1)
}

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, agent string, now time.Time) error {
	args := m.Called(ctx, accountID, agent, now)
	return args.Error(0)
}

// --- Mock SubjectRepository ---
type MockSubjectRepository struct {
	mock.Mock
}

func (m *MockSubjectRepository) FindSubjectByCode(ctx context.Context, code string) (*domain.Subject, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subject), args.Error(1)
}

func (m *MockSubjectRepository) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Subject), args.Error(1)
}

func (m *MockSubjectRepository) SaveSubject(ctx context.Context, subject domain.Subject) error {
	args := m.Called(ctx, subject)
	return args.Error(0)
}

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) SaveMutation(ctx context.Context, mutation domain.Mutation, balanceChange decimal.Decimal) error {
	args := m.Called(ctx, mutation, balanceChange)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListMutationsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Mutation, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	var mutations []domain.Mutation
	if args.Get(0) != nil {
		mutations = args.Get(0).([]domain.Mutation)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return mutations, token, args.Error(2)
}

func (m *MockLedgerRepository) SaveExchange(ctx context.Context, exchange domain.Exchange) error {
	args := m.Called(ctx, exchange)
	return args.Error(0)
}

func (m *MockLedgerRepository) ReplayMutation(ctx context.Context, mutation domain.Mutation, balanceChange decimal.Decimal, postponedID string) error {
	args := m.Called(ctx, mutation, balanceChange, postponedID)
	return args.Error(0)
}

func (m *MockLedgerRepository) ReplayExchange(ctx context.Context, exchange domain.Exchange, postponedID string) error {
	args := m.Called(ctx, exchange, postponedID)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListPostponedMutations(ctx context.Context, day domain.Day, unitA, unitB domain.CurrencyUnit) ([]domain.PostponedMutation, error) {
	args := m.Called(ctx, day, unitA, unitB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PostponedMutation), args.Error(1)
}

func (m *MockLedgerRepository) ListPostponedExchanges(ctx context.Context, day domain.Day, unitA, unitB domain.CurrencyUnit) ([]domain.PostponedExchange, error) {
	args := m.Called(ctx, day, unitA, unitB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PostponedExchange), args.Error(1)
}

func (m *MockLedgerRepository) ListPostponingReasons(ctx context.Context) ([]domain.PostponingReasons, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PostponingReasons), args.Error(1)
}

func (m *MockLedgerRepository) SavePostponedMutation(ctx context.Context, pm domain.PostponedMutation) error {
	args := m.Called(ctx, pm)
	return args.Error(0)
}

func (m *MockLedgerRepository) SavePostponedExchange(ctx context.Context, pe domain.PostponedExchange) error {
	args := m.Called(ctx, pe)
	return args.Error(0)
}

// --- Mock rate Source ---
type MockRateSource struct {
	mock.Mock
	pivot domain.CurrencyUnit
}

func NewMockRateSource(pivot domain.CurrencyUnit) *MockRateSource {
	return &MockRateSource{pivot: pivot}
}

func (m *MockRateSource) Pivot() domain.CurrencyUnit {
	return m.pivot
}

func (m *MockRateSource) FetchRates(ctx context.Context, day domain.Day, units []domain.CurrencyUnit) map[domain.CurrencyUnit]decimal.Decimal {
	args := m.Called(ctx, day, units)
	if args.Get(0) == nil {
		return map[domain.CurrencyUnit]decimal.Decimal{}
	}
	return args.Get(0).(map[domain.CurrencyUnit]decimal.Decimal)
}

// --- Mock RateResolver ---
type MockRateResolver struct {
	mock.Mock
}

func (m *MockRateResolver) Resolve(ctx context.Context, day domain.Day, from, to domain.CurrencyUnit) *decimal.Decimal {
	args := m.Called(ctx, day, from, to)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*decimal.Decimal)
}

func (m *MockRateResolver) ResolveWithoutReconciliation(ctx context.Context, day domain.Day, from, to domain.CurrencyUnit) *decimal.Decimal {
	args := m.Called(ctx, day, from, to)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*decimal.Decimal)
}

// --- Mock Reconciler ---
type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Enqueue(task portssvc.ReconcileTask) {
	m.Called(task)
}

func (m *MockReconciler) RefreshPostponed(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
