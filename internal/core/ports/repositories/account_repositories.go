package repositories

import (
	"context"
	"time"

	"github.com/dhanrajs/fx_exchange_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for currency accounts.
type AccountReader interface {
	// FindAccountByCurrency retrieves the account for a currency code.
	FindAccountByCurrency(ctx context.Context, currencyCode string) (*domain.Account, error)

	// FindAccountsByCurrencies retrieves multiple accounts keyed by currency code.
	FindAccountsByCurrencies(ctx context.Context, currencyCodes []string) (map[string]domain.Account, error)

	// ListAccounts retrieves all currency accounts ordered by code.
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// AccountWriter defines write operations for currency accounts.
type AccountWriter interface {
	// SaveAccount persists a new currency account (bootstrap only).
	SaveAccount(ctx context.Context, account domain.Account) error
}

// AccountTransactionSupport defines operations used inside a ledger transaction.
type AccountTransactionSupport interface {
	// FindAccountsByCurrenciesForUpdate selects accounts in deterministic order and
	// locks their rows for update. Must be called within a transaction.
	FindAccountsByCurrenciesForUpdate(ctx context.Context, tx pgx.Tx, currencyCodes []string) (map[string]domain.Account, error)

	// ApplyBalanceDeltasInTx applies signed deltas to account balances within a
	// transaction. Each debit is conditioned on the balance staying non-negative;
	// a violated condition returns apperrors.ErrInsufficientBalance and the whole
	// transaction must be rolled back by the caller.
	ApplyBalanceDeltasInTx(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}
