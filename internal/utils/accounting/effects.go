package accounting

import (
	"fmt"

	"github.com/dhanrajs/fx_exchange_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CalculateEffects maps a transaction to its balance effect: one signed delta per
// affected currency account. This is the single place the effect table lives; both
// the ledger service and its tests go through it.
//
//	CASH_IN   +amount on the transaction currency
//	CASH_OUT  -amount on the transaction currency
//	BUY       +amount on the transaction currency, -amount*rate on settlement
//	SELL      -amount on the transaction currency, +amount*rate on settlement
func CalculateEffects(txn domain.Transaction, settlementCurrency string) (map[string]decimal.Decimal, error) {
	effects := make(map[string]decimal.Decimal, 2)

	switch txn.Type {
	case domain.CashIn:
		effects[txn.CurrencyCode] = txn.Amount
	case domain.CashOut:
		effects[txn.CurrencyCode] = txn.Amount.Neg()
	case domain.Buy, domain.Sell:
		if txn.ExchangeRate == nil {
			return nil, fmt.Errorf("exchange rate missing for %s transaction %s", txn.Type, txn.TransactionID)
		}
		settlement := txn.Amount.Mul(*txn.ExchangeRate)
		if txn.Type == domain.Buy {
			effects[txn.CurrencyCode] = txn.Amount
			effects[settlementCurrency] = effects[settlementCurrency].Sub(settlement)
		} else {
			effects[txn.CurrencyCode] = txn.Amount.Neg()
			effects[settlementCurrency] = effects[settlementCurrency].Add(settlement)
		}
	default:
		return nil, fmt.Errorf("unknown transaction type '%s' for transaction %s", txn.Type, txn.TransactionID)
	}

	return effects, nil
}

// SettlementAmount computes amount * rate for trade transactions.
func SettlementAmount(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate)
}

// InvertEffects returns the sign-inverted copy of an effect map, used for reversals.
func InvertEffects(effects map[string]decimal.Decimal) map[string]decimal.Decimal {
	inverted := make(map[string]decimal.Decimal, len(effects))
	for currency, delta := range effects {
		inverted[currency] = delta.Neg()
	}
	return inverted
}
