package services

import (
	"context"

	"github.com/dhanrajs/fx_exchange_app/internal/core/domain"
	"github.com/dhanrajs/fx_exchange_app/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountSvcFacade exposes the per-currency cash float accounts.
type AccountSvcFacade interface {
	// CreateAccount creates the float account for a currency at bootstrap.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)

	// GetAccountBalance returns the current balance for a currency.
	GetAccountBalance(ctx context.Context, currencyCode string) (decimal.Decimal, error)

	// ListAccounts returns all currency accounts with balances.
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}
