package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType mirrors domain.TransactionType at the storage layer.
type TransactionType string

const (
	CashIn  TransactionType = "CASH_IN"
	CashOut TransactionType = "CASH_OUT"
	Buy     TransactionType = "BUY"
	Sell    TransactionType = "SELL"
)

// TransactionStatus mirrors domain.TransactionStatus at the storage layer.
type TransactionStatus string

const (
	Completed TransactionStatus = "COMPLETED"
	Reversed  TransactionStatus = "REVERSED"
)

// Transaction is the DB representation of a recorded exchange operation.
type Transaction struct {
	TransactionID    string            `db:"transaction_id"`
	TransactionType  TransactionType   `db:"transaction_type"`
	CurrencyCode     string            `db:"currency_code"`
	Amount           decimal.Decimal   `db:"amount"`
	ExchangeRate     *decimal.Decimal  `db:"exchange_rate"`     // NULL for cash movements
	AmountSettlement *decimal.Decimal  `db:"amount_settlement"` // NULL for cash movements
	CustomerName     string            `db:"customer_name"`
	CustomerEmail    string            `db:"customer_email"`
	Notes            string            `db:"notes"`
	Signature        string            `db:"signature"`
	Status           TransactionStatus `db:"status"`
	AuditFields
	ReversedAt *time.Time `db:"reversed_at"`
	ReversedBy *string    `db:"reversed_by"`
}

// TransactionEntry is one persisted leg of a transaction's balance effect.
type TransactionEntry struct {
	EntryID       string          `db:"entry_id"`
	TransactionID string          `db:"transaction_id"`
	CurrencyCode  string          `db:"currency_code"`
	Delta         decimal.Decimal `db:"delta"`
}
