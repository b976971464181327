package domain

import (
	"github.com/shopspring/decimal"
)

// Account holds the cash float for a single currency. One account exists per
// currency code, created at bootstrap; the balance never goes below zero after a
// committed operation.
type Account struct {
	CurrencyCode string          `json:"currencyCode"` // Primary key (e.g. "TTD", "USD")
	Balance      decimal.Decimal `json:"balance"`
	AuditFields
}
