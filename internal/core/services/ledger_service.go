package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dhanrajs/fx_exchange_app/internal/apperrors"
	"github.com/dhanrajs/fx_exchange_app/internal/core/domain"
	portsrepo "github.com/dhanrajs/fx_exchange_app/internal/core/ports/repositories"
	"github.com/dhanrajs/fx_exchange_app/internal/dto"
	"github.com/dhanrajs/fx_exchange_app/internal/middleware"
	"github.com/dhanrajs/fx_exchange_app/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerService records transactions and their balance effects atomically.
// On a concurrency conflict reported by the repository it retries the whole
// write a bounded number of times before giving up with ErrConcurrencyConflict.
type LedgerService struct {
	transactionRepo    portsrepo.TransactionRepositoryFacade
	validator          *TransactionValidator
	settlementCurrency string
	maxRetries         int
}

func NewLedgerService(transactionRepo portsrepo.TransactionRepositoryFacade, settlementCurrency string, maxRetries int) *LedgerService {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &LedgerService{
		transactionRepo:    transactionRepo,
		validator:          NewTransactionValidator(settlementCurrency),
		settlementCurrency: settlementCurrency,
		maxRetries:         maxRetries,
	}
}

func (s *LedgerService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, creatorUserID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := time.Now()
	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		Type:          req.Type,
		CurrencyCode:  req.CurrencyCode,
		Amount:        req.Amount,
		ExchangeRate:  req.ExchangeRate,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Notes:         req.Notes,
		Signature:     req.Signature,
		Status:        domain.Completed,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if txn.Type.IsTrade() {
		settlement := accounting.SettlementAmount(txn.Amount, *txn.ExchangeRate)
		txn.AmountSettlement = &settlement
	}

	effects, err := accounting.CalculateEffects(txn, s.settlementCurrency)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to compute balance effect", err)
	}

	entries := make([]domain.Entry, 0, len(effects))
	for currency, delta := range effects {
		entries = append(entries, domain.Entry{
			EntryID:       uuid.NewString(),
			TransactionID: txn.TransactionID,
			CurrencyCode:  currency,
			Delta:         delta,
		})
	}

	err = s.withRetries(ctx, "create", txn.TransactionID, func() error {
		return s.transactionRepo.SaveTransaction(ctx, txn, entries, effects)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrInsufficientBalance) && !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to save transaction", slog.String("error", err.Error()), slog.String("transaction_id", txn.TransactionID))
		}
		return nil, err
	}

	txn.Entries = entries
	logger.Info("Transaction recorded",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("type", string(txn.Type)),
		slog.String("currency", txn.CurrencyCode),
	)
	return &txn, nil
}

func (s *LedgerService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	entries, err := s.transactionRepo.FindEntriesByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	txn.Entries = entries
	return txn, nil
}

func (s *LedgerService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	filter := portsrepo.ListTransactionsFilter{
		CurrencyCode: params.CurrencyCode,
	}
	if params.Type != nil {
		txnType := domain.TransactionType(*params.Type)
		if !txnType.Valid() {
			return nil, apperrors.NewValidationError([]string{fmt.Sprintf("unknown transaction type filter '%s'", *params.Type)})
		}
		filter.Type = &txnType
	}

	txns, nextToken, err := s.transactionRepo.ListTransactions(ctx, params.Limit, params.NextToken, filter)
	if err != nil {
		return nil, err
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}

func (s *LedgerService) UpdateTransactionDetails(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if req.Notes != nil {
		txn.Notes = *req.Notes
	}
	if req.CustomerEmail != nil {
		txn.CustomerEmail = *req.CustomerEmail
	}
	txn.LastUpdatedAt = time.Now()
	txn.LastUpdatedBy = userID

	if err := s.transactionRepo.UpdateTransactionDetails(ctx, *txn); err != nil {
		logger.Error("Failed to update transaction details", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return nil, err
	}

	return txn, nil
}

func (s *LedgerService) ReverseTransaction(ctx context.Context, transactionID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	// Replay the stored entries rather than re-deriving the effect from the
	// transaction fields: the entries are what actually happened.
	entries, err := s.transactionRepo.FindEntriesByTransactionID(ctx, transactionID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		if _, err := s.transactionRepo.FindTransactionByID(ctx, transactionID); err != nil {
			return err
		}
		return apperrors.NewAppError(500, "transaction "+transactionID+" has no recorded entries", apperrors.ErrInternal)
	}

	effects := make(map[string]decimal.Decimal, len(entries))
	for _, entry := range entries {
		effects[entry.CurrencyCode] = effects[entry.CurrencyCode].Add(entry.Delta)
	}
	inverse := accounting.InvertEffects(effects)

	now := time.Now()
	err = s.withRetries(ctx, "reverse", transactionID, func() error {
		return s.transactionRepo.ReverseTransaction(ctx, transactionID, inverse, userID, now)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrAlreadyReversed) && !errors.Is(err, apperrors.ErrInsufficientBalance) {
			logger.Error("Failed to reverse transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		}
		return err
	}

	logger.Info("Transaction reversed", slog.String("transaction_id", transactionID))
	return nil
}

// withRetries runs op up to maxRetries times, retrying only on
// ErrConcurrencyConflict. Any other error, and success, return immediately.
func (s *LedgerService) withRetries(ctx context.Context, opName, transactionID string, op func() error) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	var err error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		err = op()
		if err == nil || !errors.Is(err, apperrors.ErrConcurrencyConflict) {
			return err
		}
		logger.Warn("Concurrency conflict, retrying",
			slog.String("op", opName),
			slog.String("transaction_id", transactionID),
			slog.Int("attempt", attempt),
		)
	}
	return fmt.Errorf("%w: %s of transaction %s failed after %d attempts", apperrors.ErrConcurrencyConflict, opName, transactionID, s.maxRetries)
}
