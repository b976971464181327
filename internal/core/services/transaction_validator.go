package services

import (
	"fmt"
	"regexp"

	"github.com/dhanrajs/fx_exchange_app/internal/apperrors"
	"github.com/dhanrajs/fx_exchange_app/internal/core/domain"
	"github.com/dhanrajs/fx_exchange_app/internal/dto"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	maxAmount       = decimal.NewFromInt(100_000_000)
	maxExchangeRate = decimal.NewFromInt(1000)

	currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

// TransactionValidator checks a create request against every business rule and
// reports all violations together, not just the first one it hits.
type TransactionValidator struct {
	settlementCurrency string
	validate           *validator.Validate
}

func NewTransactionValidator(settlementCurrency string) *TransactionValidator {
	return &TransactionValidator{
		settlementCurrency: settlementCurrency,
		validate:           validator.New(),
	}
}

// Validate returns nil or a *apperrors.ValidationError listing every violated rule.
func (v *TransactionValidator) Validate(req dto.CreateTransactionRequest) error {
	var violations []string

	if !req.Type.Valid() {
		violations = append(violations, fmt.Sprintf("type must be one of CASH_IN, CASH_OUT, BUY, SELL; got '%s'", req.Type))
	}

	if !currencyCodePattern.MatchString(req.CurrencyCode) {
		violations = append(violations, fmt.Sprintf("currencyCode must be a 3-letter uppercase code; got '%s'", req.CurrencyCode))
	}

	if !req.Amount.IsPositive() {
		violations = append(violations, "amount must be greater than zero")
	} else if req.Amount.GreaterThan(maxAmount) {
		violations = append(violations, "amount must not exceed 100000000")
	}

	if req.Type.IsTrade() {
		switch {
		case req.ExchangeRate == nil:
			violations = append(violations, fmt.Sprintf("exchangeRate is required for %s transactions", req.Type))
		case !req.ExchangeRate.IsPositive():
			violations = append(violations, "exchangeRate must be greater than zero")
		case req.ExchangeRate.GreaterThan(maxExchangeRate):
			violations = append(violations, "exchangeRate must not exceed 1000")
		}
	} else if req.Type.Valid() && req.ExchangeRate != nil {
		violations = append(violations, fmt.Sprintf("exchangeRate must not be set for %s transactions", req.Type))
	}

	if req.Type == domain.Sell && req.CurrencyCode == v.settlementCurrency {
		violations = append(violations, fmt.Sprintf("SELL transactions cannot target the settlement currency %s", v.settlementCurrency))
	}

	if req.CustomerName == "" {
		violations = append(violations, "customerName is required")
	}

	if req.CustomerEmail == "" {
		violations = append(violations, "customerEmail is required")
	} else if err := v.validate.Var(req.CustomerEmail, "email"); err != nil {
		violations = append(violations, fmt.Sprintf("customerEmail '%s' is not a valid email address", req.CustomerEmail))
	}

	if len(violations) > 0 {
		return apperrors.NewValidationError(violations)
	}
	return nil
}
