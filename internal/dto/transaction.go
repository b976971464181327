package dto

import (
	"time"

	"github.com/dhanrajs/fx_exchange_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest carries a new transaction to record. Field-level rule
// checking lives in the transaction validator so every violation is reported at
// once rather than failing on the first binding tag.
type CreateTransactionRequest struct {
	Type          domain.TransactionType `json:"type"`
	CurrencyCode  string                 `json:"currencyCode"`
	Amount        decimal.Decimal        `json:"amount"`
	ExchangeRate  *decimal.Decimal       `json:"exchangeRate,omitempty"`
	CustomerName  string                 `json:"customerName"`
	CustomerEmail string                 `json:"customerEmail"`
	Notes         string                 `json:"notes,omitempty"`
	Signature     string                 `json:"signature,omitempty"`
}

// UpdateTransactionRequest updates descriptive fields only. Pointers distinguish
// omitted fields from zero values.
type UpdateTransactionRequest struct {
	Notes         *string `json:"notes,omitempty"`
	CustomerEmail *string `json:"customerEmail,omitempty" binding:"omitempty,email"`
}

// ListTransactionsParams are query parameters for listing transactions.
type ListTransactionsParams struct {
	Limit        int     `form:"limit,default=20"`
	NextToken    *string `form:"nextToken"`
	Type         *string `form:"type"`
	CurrencyCode *string `form:"currency"`
}

// EntryResponse is one leg of a transaction's recorded balance effect.
type EntryResponse struct {
	CurrencyCode string          `json:"currencyCode"`
	Delta        decimal.Decimal `json:"delta"`
}

// TransactionResponse is the API shape of a recorded transaction.
type TransactionResponse struct {
	TransactionID    string           `json:"transactionID"`
	Type             string           `json:"type"`
	CurrencyCode     string           `json:"currencyCode"`
	Amount           decimal.Decimal  `json:"amount"`
	ExchangeRate     *decimal.Decimal `json:"exchangeRate,omitempty"`
	AmountSettlement *decimal.Decimal `json:"amountSettlement,omitempty"`
	CustomerName     string           `json:"customerName"`
	CustomerEmail    string           `json:"customerEmail"`
	Notes            string           `json:"notes,omitempty"`
	Status           string           `json:"status"`
	CreatedAt        time.Time        `json:"createdAt"`
	CreatedBy        string           `json:"createdBy"`
	ReversedAt       *time.Time       `json:"reversedAt,omitempty"`
	Entries          []EntryResponse  `json:"entries,omitempty"`
}

// ListTransactionsResponse wraps a page of transactions with the next cursor.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain transaction to its API shape.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TransactionID:    txn.TransactionID,
		Type:             string(txn.Type),
		CurrencyCode:     txn.CurrencyCode,
		Amount:           txn.Amount,
		ExchangeRate:     txn.ExchangeRate,
		AmountSettlement: txn.AmountSettlement,
		CustomerName:     txn.CustomerName,
		CustomerEmail:    txn.CustomerEmail,
		Notes:            txn.Notes,
		Status:           string(txn.Status),
		CreatedAt:        txn.CreatedAt,
		CreatedBy:        txn.CreatedBy,
		ReversedAt:       txn.ReversedAt,
	}
	if len(txn.Entries) > 0 {
		resp.Entries = make([]EntryResponse, len(txn.Entries))
		for i, e := range txn.Entries {
			resp.Entries[i] = EntryResponse{CurrencyCode: e.CurrencyCode, Delta: e.Delta}
		}
	}
	return resp
}

// ToTransactionResponses converts a slice of domain transactions.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}
