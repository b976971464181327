package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dhanrajs/fx_exchange_app/internal/apperrors"
	"github.com/dhanrajs/fx_exchange_app/internal/core/domain"
	portsrepo "github.com/dhanrajs/fx_exchange_app/internal/core/ports/repositories"
	"github.com/dhanrajs/fx_exchange_app/internal/core/services"
	"github.com/dhanrajs/fx_exchange_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryLedgerRepo is an in-memory TransactionRepositoryFacade with the same
// atomicity semantics as the pgsql implementation: all deltas of a transaction
// are checked and applied under one lock, or none are.
type memoryLedgerRepo struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
	txns     map[string]domain.Transaction
	entries  map[string][]domain.Entry
}

func newMemoryLedgerRepo(balances map[string]decimal.Decimal) *memoryLedgerRepo {
	return &memoryLedgerRepo{
		balances: balances,
		txns:     make(map[string]domain.Transaction),
		entries:  make(map[string][]domain.Entry),
	}
}

func (r *memoryLedgerRepo) applyDeltasLocked(deltas map[string]decimal.Decimal) error {
	for currency, delta := range deltas {
		balance, ok := r.balances[currency]
		if !ok {
			return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, currency)
		}
		if balance.Add(delta).IsNegative() {
			return fmt.Errorf("%w: currency %s", apperrors.ErrInsufficientBalance, currency)
		}
	}
	for currency, delta := range deltas {
		r.balances[currency] = r.balances[currency].Add(delta)
	}
	return nil
}

func (r *memoryLedgerRepo) SaveTransaction(ctx context.Context, txn domain.Transaction, entries []domain.Entry, balanceChanges map[string]decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.applyDeltasLocked(balanceChanges); err != nil {
		return err
	}
	r.txns[txn.TransactionID] = txn
	r.entries[txn.TransactionID] = entries
	return nil
}

func (r *memoryLedgerRepo) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	txn, ok := r.txns[transactionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &txn, nil
}

func (r *memoryLedgerRepo) FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[transactionID], nil
}

func (r *memoryLedgerRepo) ListTransactions(ctx context.Context, limit int, nextToken *string, filter portsrepo.ListTransactionsFilter) ([]domain.Transaction, *string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	txns := make([]domain.Transaction, 0, len(r.txns))
	for _, txn := range r.txns {
		txns = append(txns, txn)
	}
	return txns, nil, nil
}

func (r *memoryLedgerRepo) UpdateTransactionDetails(ctx context.Context, txn domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.txns[txn.TransactionID]
	if !ok {
		return apperrors.ErrNotFound
	}
	stored.Notes = txn.Notes
	stored.CustomerEmail = txn.CustomerEmail
	r.txns[txn.TransactionID] = stored
	return nil
}

func (r *memoryLedgerRepo) ReverseTransaction(ctx context.Context, transactionID string, inverseDeltas map[string]decimal.Decimal, userID string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	txn, ok := r.txns[transactionID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if txn.Status != domain.Completed {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrAlreadyReversed, transactionID)
	}
	if err := r.applyDeltasLocked(inverseDeltas); err != nil {
		return err
	}
	txn.Status = domain.Reversed
	txn.ReversedAt = &now
	txn.ReversedBy = userID
	r.txns[transactionID] = txn
	return nil
}

func (r *memoryLedgerRepo) balance(currency string) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[currency]
}

var _ portsrepo.TransactionRepositoryFacade = (*memoryLedgerRepo)(nil)

func sellRequest(amount string) dto.CreateTransactionRequest {
	return dto.CreateTransactionRequest{
		Type:          domain.Sell,
		CurrencyCode:  "USD",
		Amount:        dec(amount),
		ExchangeRate:  ratePtr("6.75"),
		CustomerName:  "Jordan Ali",
		CustomerEmail: "jordan.ali@example.com",
	}
}

// N concurrent sells of amount a against balance B succeed exactly floor(B/a)
// times; the rest fail with insufficient balance and leave no partial effect.
func TestConcurrentSells_ExactlyFloorSucceed(t *testing.T) {
	repo := newMemoryLedgerRepo(map[string]decimal.Decimal{
		"USD": dec("100"),
		"TTD": dec("0"),
	})
	service := services.NewLedgerService(repo, "TTD", 3)

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.CreateTransaction(context.Background(), sellRequest("15"), uuid.NewString())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes, insufficient := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, apperrors.ErrInsufficientBalance):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// floor(100/15) = 6
	assert.Equal(t, 6, successes)
	assert.Equal(t, 2, insufficient)
	assert.True(t, repo.balance("USD").Equal(dec("10")), "final USD balance should be 100 - 6*15, got %s", repo.balance("USD"))
	assert.True(t, repo.balance("TTD").Equal(dec("607.5")), "TTD should hold 6*15*6.75, got %s", repo.balance("TTD"))
}

func TestConcurrentSells_TwoForSixtyAgainstHundred(t *testing.T) {
	repo := newMemoryLedgerRepo(map[string]decimal.Decimal{
		"USD": dec("100"),
		"TTD": dec("0"),
	})
	service := services.NewLedgerService(repo, "TTD", 3)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.CreateTransaction(context.Background(), sellRequest("60"), uuid.NewString())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		} else {
			require.ErrorIs(t, err, apperrors.ErrInsufficientBalance)
		}
	}

	assert.Equal(t, 1, successes)
	assert.True(t, repo.balance("USD").Equal(dec("40")))
}

// Reversing a transaction right after creation restores every affected balance
// exactly; a second reversal fails and changes nothing.
func TestReversalSymmetryAndIdempotency(t *testing.T) {
	repo := newMemoryLedgerRepo(map[string]decimal.Decimal{
		"USD": dec("500"),
		"TTD": dec("1000"),
	})
	service := services.NewLedgerService(repo, "TTD", 3)
	ctx := context.Background()
	userID := uuid.NewString()

	req := dto.CreateTransactionRequest{
		Type:          domain.Buy,
		CurrencyCode:  "USD",
		Amount:        dec("100"),
		ExchangeRate:  ratePtr("6.80"),
		CustomerName:  "Maria Persad",
		CustomerEmail: "maria.persad@example.com",
	}
	txn, err := service.CreateTransaction(ctx, req, userID)
	require.NoError(t, err)
	require.True(t, repo.balance("USD").Equal(dec("600")))
	require.True(t, repo.balance("TTD").Equal(dec("320")))

	require.NoError(t, service.ReverseTransaction(ctx, txn.TransactionID, userID))
	assert.True(t, repo.balance("USD").Equal(dec("500")))
	assert.True(t, repo.balance("TTD").Equal(dec("1000")))

	// Record is retained, marked REVERSED.
	reversed, err := service.GetTransactionByID(ctx, txn.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.Reversed, reversed.Status)
	assert.NotNil(t, reversed.ReversedAt)

	// Second reversal is rejected and balances stay put.
	err = service.ReverseTransaction(ctx, txn.TransactionID, userID)
	require.ErrorIs(t, err, apperrors.ErrAlreadyReversed)
	assert.True(t, repo.balance("USD").Equal(dec("500")))
	assert.True(t, repo.balance("TTD").Equal(dec("1000")))
}

// Reversing a CASH_IN whose money has already been paid out would drive the
// balance negative, so it must fail with no partial effect.
func TestReversal_InsufficientBalanceLeavesNoPartialEffect(t *testing.T) {
	repo := newMemoryLedgerRepo(map[string]decimal.Decimal{
		"USD": dec("0"),
		"TTD": dec("0"),
	})
	service := services.NewLedgerService(repo, "TTD", 3)
	ctx := context.Background()
	userID := uuid.NewString()

	cashIn := dto.CreateTransactionRequest{
		Type:          domain.CashIn,
		CurrencyCode:  "USD",
		Amount:        dec("100"),
		CustomerName:  "Jordan Ali",
		CustomerEmail: "jordan.ali@example.com",
	}
	created, err := service.CreateTransaction(ctx, cashIn, userID)
	require.NoError(t, err)

	cashOut := dto.CreateTransactionRequest{
		Type:          domain.CashOut,
		CurrencyCode:  "USD",
		Amount:        dec("80"),
		CustomerName:  "Jordan Ali",
		CustomerEmail: "jordan.ali@example.com",
	}
	_, err = service.CreateTransaction(ctx, cashOut, userID)
	require.NoError(t, err)

	err = service.ReverseTransaction(ctx, created.TransactionID, userID)
	require.ErrorIs(t, err, apperrors.ErrInsufficientBalance)

	assert.True(t, repo.balance("USD").Equal(dec("20")))
	stored, err := service.GetTransactionByID(ctx, created.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.Completed, stored.Status)
}
