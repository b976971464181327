package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dhanrajs/fx_exchange_app/internal/apperrors"
	"github.com/dhanrajs/fx_exchange_app/internal/core/domain"
	portsrepo "github.com/dhanrajs/fx_exchange_app/internal/core/ports/repositories"
	"github.com/dhanrajs/fx_exchange_app/internal/models"
	"github.com/dhanrajs/fx_exchange_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for currency account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// SaveAccount inserts a new currency account. Accounts are created once per
// currency at bootstrap and never deleted.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	modelAcc := mapping.ToModelAccount(account)

	query := `
		INSERT INTO accounts (currency_code, balance, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelAcc.CurrencyCode,
		modelAcc.Balance,
		modelAcc.CreatedAt,
		modelAcc.CreatedBy,
		modelAcc.LastUpdatedAt,
		modelAcc.LastUpdatedBy,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique violation
			return fmt.Errorf("%w: account for currency %s already exists", apperrors.ErrDuplicate, modelAcc.CurrencyCode)
		}
		return fmt.Errorf("failed to save account %s: %w", modelAcc.CurrencyCode, err)
	}
	return nil
}

// FindAccountByCurrency retrieves the account for a currency code.
func (r *PgxAccountRepository) FindAccountByCurrency(ctx context.Context, currencyCode string) (*domain.Account, error) {
	query := `
		SELECT currency_code, balance, created_at, created_by, last_updated_at, last_updated_by
		FROM accounts
		WHERE currency_code = $1;
	`
	var modelAcc models.Account
	err := r.Pool.QueryRow(ctx, query, currencyCode).Scan(
		&modelAcc.CurrencyCode,
		&modelAcc.Balance,
		&modelAcc.CreatedAt,
		&modelAcc.CreatedBy,
		&modelAcc.LastUpdatedAt,
		&modelAcc.LastUpdatedBy,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account for currency %s: %w", currencyCode, err)
	}

	domainAcc := mapping.ToDomainAccount(modelAcc)
	return &domainAcc, nil
}

// FindAccountsByCurrencies retrieves multiple accounts keyed by currency code.
// Missing currencies are simply absent from the map; the caller decides whether
// that is an error.
func (r *PgxAccountRepository) FindAccountsByCurrencies(ctx context.Context, currencyCodes []string) (map[string]domain.Account, error) {
	if len(currencyCodes) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `
		SELECT currency_code, balance, created_at, created_by, last_updated_at, last_updated_by
		FROM accounts
		WHERE currency_code = ANY($1);
	`
	rows, err := r.Pool.Query(ctx, query, currencyCodes)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by currencies: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		var modelAcc models.Account
		err := rows.Scan(
			&modelAcc.CurrencyCode,
			&modelAcc.Balance,
			&modelAcc.CreatedAt,
			&modelAcc.CreatedBy,
			&modelAcc.LastUpdatedAt,
			&modelAcc.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row during batch fetch: %w", err)
		}
		accountsMap[modelAcc.CurrencyCode] = mapping.ToDomainAccount(modelAcc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows during batch fetch: %w", err)
	}

	return accountsMap, nil
}

// ListAccounts retrieves all currency accounts ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	query := `
		SELECT currency_code, balance, created_at, created_by, last_updated_at, last_updated_by
		FROM accounts
		ORDER BY currency_code;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		var modelAcc models.Account
		err := rows.Scan(
			&modelAcc.CurrencyCode,
			&modelAcc.Balance,
			&modelAcc.CreatedAt,
			&modelAcc.CreatedBy,
			&modelAcc.LastUpdatedAt,
			&modelAcc.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, modelAcc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}

	return mapping.ToDomainAccountSlice(accounts), nil
}

// FindAccountsByCurrenciesForUpdate retrieves accounts and locks the rows for
// update. Currencies are sorted before locking so two concurrent transactions
// touching the same pair always acquire locks in the same order (no deadlocks).
// Must be called within a transaction.
func (r *PgxAccountRepository) FindAccountsByCurrenciesForUpdate(ctx context.Context, tx pgx.Tx, currencyCodes []string) (map[string]domain.Account, error) {
	if len(currencyCodes) == 0 {
		return map[string]domain.Account{}, nil
	}

	sorted := make([]string, len(currencyCodes))
	copy(sorted, currencyCodes)
	sort.Strings(sorted)

	query := `
		SELECT currency_code, balance, created_at, created_by, last_updated_at, last_updated_by
		FROM accounts
		WHERE currency_code = ANY($1)
		ORDER BY currency_code
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, sorted)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts for update: %w", mapConflictError(err))
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		var modelAcc models.Account
		err := rows.Scan(
			&modelAcc.CurrencyCode,
			&modelAcc.Balance,
			&modelAcc.CreatedAt,
			&modelAcc.CreatedBy,
			&modelAcc.LastUpdatedAt,
			&modelAcc.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked account row: %w", err)
		}
		accountsMap[modelAcc.CurrencyCode] = mapping.ToDomainAccount(modelAcc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked account rows: %w", mapConflictError(err))
	}

	if len(accountsMap) != len(sorted) {
		missing := []string{}
		for _, code := range sorted {
			if _, found := accountsMap[code]; !found {
				missing = append(missing, code)
			}
		}
		slog.WarnContext(ctx, "Some accounts requested for update lock were not found", "missing_currencies", missing)
		return nil, fmt.Errorf("%w: could not find or lock accounts for currencies %v", apperrors.ErrNotFound, missing)
	}

	return accountsMap, nil
}

// ApplyBalanceDeltasInTx applies signed deltas to account balances within a
// transaction. Debits are guarded in the UPDATE itself (balance + delta >= 0) so
// a balance read before the statement can never be trusted over the stored row;
// a zero-row result on a debit means the guard failed and the whole transaction
// must be rolled back.
func (r *PgxAccountRepository) ApplyBalanceDeltasInTx(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(deltas) == 0 {
		return nil
	}

	query := `
		UPDATE accounts
		SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE currency_code = $1 AND balance + $2 >= 0;
	`

	// Apply in sorted order for deterministic behavior under concurrency.
	currencies := make([]string, 0, len(deltas))
	for code := range deltas {
		currencies = append(currencies, code)
	}
	sort.Strings(currencies)

	batch := &pgx.Batch{}
	queued := make([]string, 0, len(currencies))
	for _, code := range currencies {
		if deltas[code].IsZero() {
			continue
		}
		batch.Queue(query, code, deltas[code], now, userID)
		queued = append(queued, code)
	}

	if batch.Len() == 0 {
		return nil
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = fmt.Errorf("failed to update balance for currency %s: %w", queued[i], mapConflictError(err))
			}
		} else if ct.RowsAffected() == 0 {
			// The account exists (it was locked above), so the guard failed.
			if batchErr == nil {
				batchErr = fmt.Errorf("%w: currency %s", apperrors.ErrInsufficientBalance, queued[i])
			}
		}
	}

	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close balance update batch: %w", mapConflictError(err))
	}

	return batchErr
}
