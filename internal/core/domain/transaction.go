package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the fixed set of operations a teller can record.
type TransactionType string

const (
	CashIn  TransactionType = "CASH_IN"  // customer deposits foreign cash
	CashOut TransactionType = "CASH_OUT" // customer withdraws foreign cash
	Buy     TransactionType = "BUY"      // business buys foreign currency, pays settlement
	Sell    TransactionType = "SELL"     // business sells foreign currency, receives settlement
)

// Valid reports whether t is one of the four known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case CashIn, CashOut, Buy, Sell:
		return true
	}
	return false
}

// IsTrade reports whether the type exchanges against the settlement currency.
func (t TransactionType) IsTrade() bool {
	return t == Buy || t == Sell
}

// TransactionStatus indicates the state of a recorded transaction.
type TransactionStatus string

const (
	Completed TransactionStatus = "COMPLETED"
	Reversed  TransactionStatus = "REVERSED"
)

// Transaction is a single customer-facing exchange operation. The financial fields
// (Type, CurrencyCode, Amount, ExchangeRate, AmountSettlement) are immutable after
// creation; only Notes and CustomerEmail may be edited.
type Transaction struct {
	TransactionID    string            `json:"transactionID"` // Primary key (UUID), doubles as the receipt reference
	Type             TransactionType   `json:"type"`
	CurrencyCode     string            `json:"currencyCode"` // The foreign/transaction currency
	Amount           decimal.Decimal   `json:"amount"`       // Positive, in CurrencyCode
	ExchangeRate     *decimal.Decimal  `json:"exchangeRate,omitempty"`     // Required for BUY/SELL; CurrencyCode -> settlement
	AmountSettlement *decimal.Decimal  `json:"amountSettlement,omitempty"` // Amount * ExchangeRate for BUY/SELL
	CustomerName     string            `json:"customerName"`
	CustomerEmail    string            `json:"customerEmail"`
	Notes            string            `json:"notes"`
	Signature        string            `json:"signature,omitempty"` // Data-URL string captured at the counter
	Status           TransactionStatus `json:"status"`
	AuditFields
	ReversedAt *time.Time `json:"reversedAt,omitempty"`
	ReversedBy string     `json:"reversedBy,omitempty"`

	// Entries is the recorded balance effect, populated when fetched with detail.
	Entries []Entry `json:"entries,omitempty"`
}

// Entry is one leg of a transaction's balance effect on a single currency account.
// Entries are persisted with the transaction so a reversal can replay the exact
// inverse without re-deriving it from the type.
type Entry struct {
	EntryID       string          `json:"entryID"`
	TransactionID string          `json:"transactionID"`
	CurrencyCode  string          `json:"currencyCode"`
	Delta         decimal.Decimal `json:"delta"` // Signed; positive credits the account
}
