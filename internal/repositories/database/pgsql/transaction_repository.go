package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dhanrajs/fx_exchange_app/internal/apperrors"
	"github.com/dhanrajs/fx_exchange_app/internal/core/domain"
	portsrepo "github.com/dhanrajs/fx_exchange_app/internal/core/ports/repositories"
	"github.com/dhanrajs/fx_exchange_app/internal/models"
	"github.com/dhanrajs/fx_exchange_app/internal/utils/mapping"
	"github.com/dhanrajs/fx_exchange_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxTransactionRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxTransactionRepository creates a new repository for transaction data.
func newPgxTransactionRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

// Ensure PgxTransactionRepository implements portsrepo.TransactionRepositoryFacade
var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

const transactionColumns = `transaction_id, transaction_type, currency_code, amount, exchange_rate, amount_settlement,
	customer_name, customer_email, notes, signature, status,
	created_at, created_by, last_updated_at, last_updated_by, reversed_at, reversed_by`

// SaveTransaction persists the transaction record, its balance entries, and the
// account balance changes as one database transaction. Lock order is fixed by
// sorted currency code; every debit is guarded against going negative inside the
// UPDATE. Either everything commits or nothing does.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction, entries []domain.Entry, balanceChanges map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // No-op once committed

	now := txn.CreatedAt
	userID := txn.CreatedBy

	// 1. Lock the affected accounts. This also verifies they all exist.
	currencies := make([]string, 0, len(balanceChanges))
	for code := range balanceChanges {
		currencies = append(currencies, code)
	}
	if _, err := r.accountRepo.FindAccountsByCurrenciesForUpdate(ctx, tx, currencies); err != nil {
		return err
	}

	// 2. Apply the guarded balance deltas.
	if err := r.accountRepo.ApplyBalanceDeltasInTx(ctx, tx, balanceChanges, userID, now); err != nil {
		return err
	}

	// 3. Insert the transaction record.
	modelTxn := mapping.ToModelTransaction(txn)
	txnQuery := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err = tx.Exec(ctx, txnQuery,
		modelTxn.TransactionID,
		modelTxn.TransactionType,
		modelTxn.CurrencyCode,
		modelTxn.Amount,
		modelTxn.ExchangeRate,
		modelTxn.AmountSettlement,
		modelTxn.CustomerName,
		modelTxn.CustomerEmail,
		modelTxn.Notes,
		modelTxn.Signature,
		modelTxn.Status,
		modelTxn.CreatedAt,
		modelTxn.CreatedBy,
		modelTxn.LastUpdatedAt,
		modelTxn.LastUpdatedBy,
		modelTxn.ReversedAt,
		modelTxn.ReversedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert transaction "+modelTxn.TransactionID, mapConflictError(err))
	}

	// 4. Insert the recorded balance entries.
	entryQuery := `
		INSERT INTO transaction_entries (entry_id, transaction_id, currency_code, delta)
		VALUES ($1, $2, $3, $4);
	`
	batch := &pgx.Batch{}
	for _, entry := range entries {
		modelEntry := mapping.ToModelEntry(entry)
		batch.Queue(entryQuery,
			modelEntry.EntryID,
			modelEntry.TransactionID,
			modelEntry.CurrencyCode,
			modelEntry.Delta,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert entries for transaction "+modelTxn.TransactionID, mapConflictError(err))
	}

	if err := r.Commit(ctx, tx); err != nil {
		return mapConflictError(err)
	}

	return nil
}

// FindTransactionByID retrieves a transaction by its reference.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE transaction_id = $1;
	`
	modelTxn, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction by ID "+transactionID, err)
	}

	domainTxn := mapping.ToDomainTransaction(*modelTxn)
	return &domainTxn, nil
}

// FindEntriesByTransactionID retrieves the recorded balance effect of a transaction.
func (r *PgxTransactionRepository) FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.Entry, error) {
	query := `
		SELECT entry_id, transaction_id, currency_code, delta
		FROM transaction_entries
		WHERE transaction_id = $1
		ORDER BY currency_code;
	`
	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entries for transaction "+transactionID, err)
	}
	defer rows.Close()

	entries := []models.TransactionEntry{}
	for rows.Next() {
		var e models.TransactionEntry
		if err := rows.Scan(&e.EntryID, &e.TransactionID, &e.CurrencyCode, &e.Delta); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entry row for transaction "+transactionID, err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry rows for transaction "+transactionID, err)
	}

	return mapping.ToDomainEntrySlice(entries), nil
}

// ListTransactions retrieves a page of transactions using token-based pagination.
// Ordering is (created_at, transaction_id) descending, which is stable.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, limit int, nextToken *string, filter portsrepo.ListTransactionsFilter) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + transactionColumns + `
		FROM transactions
	`
	filterClause := `WHERE 1=1`
	args := []interface{}{}

	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		filterClause += ` AND transaction_type = $` + strconv.Itoa(len(args))
	}
	if filter.CurrencyCode != nil {
		args = append(args, *filter.CurrencyCode)
		filterClause += ` AND currency_code = $` + strconv.Itoa(len(args))
	}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastCreatedAt, lastID)
		filterClause += ` AND (created_at, transaction_id) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	orderByClause := `ORDER BY created_at DESC, transaction_id DESC`
	args = append(args, fetchLimit)
	query := baseQuery + " " + filterClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query transactions", err)
	}
	defer rows.Close()

	modelTxns := make([]models.Transaction, 0, fetchLimit)
	for rows.Next() {
		modelTxn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan transaction row", scanErr)
		}
		modelTxns = append(modelTxns, *modelTxn)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating transaction rows", err)
	}

	var nextTokenVal *string
	results := modelTxns
	if len(modelTxns) > limit {
		lastTxn := modelTxns[limit-1]
		token := pagination.EncodeToken(lastTxn.CreatedAt, lastTxn.TransactionID)
		nextTokenVal = &token
		results = modelTxns[:limit]
	}

	return mapping.ToDomainTransactionSlice(results), nextTokenVal, nil
}

// UpdateTransactionDetails updates descriptive fields only. Financial fields and
// status are deliberately not touched here.
func (r *PgxTransactionRepository) UpdateTransactionDetails(ctx context.Context, txn domain.Transaction) error {
	modelTxn := mapping.ToModelTransaction(txn)

	query := `
		UPDATE transactions
		SET notes = $2,
		    customer_email = $3,
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE transaction_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		modelTxn.TransactionID,
		modelTxn.Notes,
		modelTxn.CustomerEmail,
		modelTxn.LastUpdatedAt,
		modelTxn.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update transaction "+modelTxn.TransactionID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("transaction " + modelTxn.TransactionID + " not found for update")
	}

	return nil
}

// ReverseTransaction flips the transaction to REVERSED and applies the inverse
// balance deltas atomically. The status flip is conditioned on the current status
// still being COMPLETED, so a second reversal (or a racing one) affects zero rows
// and fails with ErrAlreadyReversed without touching any balance.
func (r *PgxTransactionRepository) ReverseTransaction(ctx context.Context, transactionID string, inverseDeltas map[string]decimal.Decimal, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// 1. Conditional status flip first: this serializes reversals of the same
	// transaction via the row lock on the transactions row.
	statusQuery := `
		UPDATE transactions
		SET status = $2,
		    reversed_at = $3,
		    reversed_by = $4,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE transaction_id = $1 AND status = $5;
	`
	cmdTag, err := tx.Exec(ctx, statusQuery,
		transactionID,
		models.Reversed,
		now,
		userID,
		models.Completed,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status for transaction "+transactionID, mapConflictError(err))
	}

	if cmdTag.RowsAffected() == 0 {
		// Either the transaction does not exist or it is already reversed.
		var status sql.NullString
		findErr := tx.QueryRow(ctx, `SELECT status FROM transactions WHERE transaction_id = $1;`, transactionID).Scan(&status)
		if errors.Is(findErr, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		if findErr != nil {
			return apperrors.NewAppError(500, "failed to check status of transaction "+transactionID, findErr)
		}
		return fmt.Errorf("%w: transaction %s", apperrors.ErrAlreadyReversed, transactionID)
	}

	// 2. Lock the affected accounts in deterministic order.
	currencies := make([]string, 0, len(inverseDeltas))
	for code := range inverseDeltas {
		currencies = append(currencies, code)
	}
	if _, err := r.accountRepo.FindAccountsByCurrenciesForUpdate(ctx, tx, currencies); err != nil {
		return err
	}

	// 3. Apply the guarded inverse deltas. Undoing a credit can fail here if the
	// money has since been paid out; the whole reversal rolls back.
	if err := r.accountRepo.ApplyBalanceDeltasInTx(ctx, tx, inverseDeltas, userID, now); err != nil {
		return err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return mapConflictError(err)
	}

	return nil
}

// rowScanner lets scanTransaction work for both QueryRow and Query results.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var m models.Transaction
	var exchangeRate, amountSettlement *decimal.Decimal
	var reversedAt *time.Time
	var reversedBy sql.NullString

	err := row.Scan(
		&m.TransactionID,
		&m.TransactionType,
		&m.CurrencyCode,
		&m.Amount,
		&exchangeRate,
		&amountSettlement,
		&m.CustomerName,
		&m.CustomerEmail,
		&m.Notes,
		&m.Signature,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&reversedAt,
		&reversedBy,
	)
	if err != nil {
		return nil, err
	}

	m.ExchangeRate = exchangeRate
	m.AmountSettlement = amountSettlement
	m.ReversedAt = reversedAt
	if reversedBy.Valid {
		m.ReversedBy = &reversedBy.String
	}
	return &m, nil
}
