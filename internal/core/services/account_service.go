package services

import (
	"context"
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
)

// accountService implements portssvc.AccountSvcFacade.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	ledgerRepo  portsrepo.MutationReader
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, ledgerRepo portsrepo.MutationReader) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, agent string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Balance.LessThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: opening balance cannot be negative", apperrors.ErrValidation)
	}

	account := domain.Account{
		AccountID:   uuid.NewString(),
		Name:        req.Name,
		Unit:        domain.CurrencyUnit(strings.ToUpper(req.Unit)),
		Balance:     req.Balance,
		Description: req.Description,
		IsActive:    true,
		AuditFields: newAudit(agent, time.Now()),
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created",
		slog.String("account_id", account.AccountID),
		slog.String("unit", account.Unit.String()))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (s *accountService) ListMutationsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Mutation, *string, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	if limit <= 0 {
		limit = 50
	}
	mutations, token, err := s.ledgerRepo.ListMutationsByAccount(ctx, accountID, limit, nextToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list mutations for account %s: %w", accountID, err)
	}
	return mutations, token, nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, agent string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.accountRepo.DeactivateAccount(ctx, accountID, agent, time.Now()); err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}
	logger.Info("Account deactivated", slog.String("account_id", accountID))
	return nil
}
