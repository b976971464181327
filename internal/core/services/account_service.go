package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dhanrajs/fx_exchange_app/internal/apperrors"
	"github.com/dhanrajs/fx_exchange_app/internal/core/domain"
	portsrepo "github.com/dhanrajs/fx_exchange_app/internal/core/ports/repositories"
	"github.com/dhanrajs/fx_exchange_app/internal/dto"
	"github.com/dhanrajs/fx_exchange_app/internal/middleware"
	"github.com/shopspring/decimal"
)

// AccountService manages the per-currency float accounts.
type AccountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
}

func NewAccountService(repo portsrepo.AccountRepositoryFacade) *AccountService {
	return &AccountService{accountRepo: repo}
}

func (s *AccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.OpeningBalance.IsNegative() {
		return nil, apperrors.NewValidationError([]string{"openingBalance must not be negative"})
	}

	now := time.Now()
	account := domain.Account{
		CurrencyCode: req.CurrencyCode,
		Balance:      req.OpeningBalance,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("currency", account.CurrencyCode))
		}
		return nil, err
	}

	logger.Info("Account created", slog.String("currency", account.CurrencyCode))
	return &account, nil
}

func (s *AccountService) GetAccountBalance(ctx context.Context, currencyCode string) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindAccountByCurrency(ctx, currencyCode)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.accountRepo.ListAccounts(ctx)
}
