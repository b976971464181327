package models

import (
	"github.com/shopspring/decimal"
)

// Account is the DB representation of a per-currency cash float.
// The table carries a CHECK (balance >= 0) constraint as a last line of defense;
// the repositories never rely on it alone.
type Account struct {
	CurrencyCode string          `db:"currency_code"`
	Balance      decimal.Decimal `db:"balance"`
	AuditFields
}
