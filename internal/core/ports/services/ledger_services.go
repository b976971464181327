package services

import (
	"context"

	"github.com/dhanrajs/fx_exchange_app/internal/core/domain"
	"github.com/dhanrajs/fx_exchange_app/internal/dto"
)

// LedgerSvcFacade is the transaction-consistency engine: it validates a request,
// computes its balance effect, and applies effect + record as one atomic unit.
type LedgerSvcFacade interface {
	// CreateTransaction validates and records a transaction together with its
	// balance effect. Returns ErrValidation, ErrNotFound (unknown currency),
	// ErrInsufficientBalance or ErrConcurrencyConflict.
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, creatorUserID string) (*domain.Transaction, error)

	// GetTransactionByID retrieves a transaction with its recorded entries.
	GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves a page of transactions, newest first.
	ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)

	// UpdateTransactionDetails edits descriptive fields (notes, customer email)
	// without touching balances.
	UpdateTransactionDetails(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error)

	// ReverseTransaction applies the stored inverse effect and marks the
	// transaction REVERSED. Returns ErrNotFound, ErrAlreadyReversed,
	// ErrInsufficientBalance or ErrConcurrencyConflict.
	ReverseTransaction(ctx context.Context, transactionID string, userID string) error
}
