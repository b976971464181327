package repositories

import (
	"context"
	"time"

	"github.com/dhanrajs/fx_exchange_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ListTransactionsFilter narrows a transaction listing.
type ListTransactionsFilter struct {
	Type         *domain.TransactionType
	CurrencyCode *string
}

// TransactionReader defines read operations for transactions.
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction by its reference.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindEntriesByTransactionID retrieves the recorded balance effect of a transaction.
	FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.Entry, error)

	// ListTransactions retrieves a page of transactions newest first, with an
	// opaque cursor token for the next page.
	ListTransactions(ctx context.Context, limit int, nextToken *string, filter ListTransactionsFilter) ([]domain.Transaction, *string, error)
}

// TransactionWriter defines write operations for transactions.
type TransactionWriter interface {
	// SaveTransaction persists the transaction, its entries, and the corresponding
	// account balance changes as a single atomic unit. If any debited account
	// would go negative, nothing is applied and ErrInsufficientBalance is
	// returned. Exhausted conflict retries surface as ErrConcurrencyConflict.
	SaveTransaction(ctx context.Context, txn domain.Transaction, entries []domain.Entry, balanceChanges map[string]decimal.Decimal) error

	// UpdateTransactionDetails updates descriptive fields only (notes, customer
	// email). Financial fields are immutable.
	UpdateTransactionDetails(ctx context.Context, txn domain.Transaction) error

	// ReverseTransaction flips the transaction to REVERSED and applies the given
	// inverse deltas atomically. The status flip is conditioned on the current
	// status being COMPLETED so a racing double-reversal loses cleanly with
	// ErrAlreadyReversed.
	ReverseTransaction(ctx context.Context, transactionID string, inverseDeltas map[string]decimal.Decimal, userID string, now time.Time) error
}

// TransactionRepositoryFacade combines all transaction repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
