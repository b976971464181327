package dto

import (
	"time"

	"github.com/dhanrajs/fx_exchange_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest bootstraps the float account for a currency.
type CreateAccountRequest struct {
	CurrencyCode   string          `json:"currencyCode" binding:"required,len=3,uppercase"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
}

// AccountResponse is the API shape of a currency account.
type AccountResponse struct {
	CurrencyCode string          `json:"currencyCode"`
	Balance      decimal.Decimal `json:"balance"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// BalanceResponse is the read-only balance view of a single currency.
type BalanceResponse struct {
	CurrencyCode string          `json:"currencyCode"`
	Balance      decimal.Decimal `json:"balance"`
}

// ListAccountsResponse wraps the full account list.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ToAccountResponse converts a domain account to its API shape.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		CurrencyCode: a.CurrencyCode,
		Balance:      a.Balance,
		CreatedAt:    a.CreatedAt,
	}
}

// ToListAccountsResponse converts a slice of domain accounts.
func ToListAccountsResponse(accounts []domain.Account) ListAccountsResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return ListAccountsResponse{Accounts: responses}
}
