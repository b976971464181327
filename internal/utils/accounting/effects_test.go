package accounting_test

import (
	"testing"

	"github.com/dhanrajs/fx_exchange_app/internal/core/domain"
	"github.com/dhanrajs/fx_exchange_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const settlement = "TTD"

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func ratePtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestCalculateEffects(t *testing.T) {
	tests := []struct {
		name string
		txn  domain.Transaction
		want map[string]string
	}{
		{
			name: "cash in credits the transaction currency",
			txn: domain.Transaction{
				Type:         domain.CashIn,
				CurrencyCode: "USD",
				Amount:       dec("100"),
			},
			want: map[string]string{"USD": "100"},
		},
		{
			name: "cash out debits the transaction currency",
			txn: domain.Transaction{
				Type:         domain.CashOut,
				CurrencyCode: "USD",
				Amount:       dec("50"),
			},
			want: map[string]string{"USD": "-50"},
		},
		{
			name: "buy credits currency and debits settlement",
			txn: domain.Transaction{
				Type:         domain.Buy,
				CurrencyCode: "USD",
				Amount:       dec("100"),
				ExchangeRate: ratePtr("6.80"),
			},
			want: map[string]string{"USD": "100", "TTD": "-680"},
		},
		{
			name: "sell debits currency and credits settlement",
			txn: domain.Transaction{
				Type:         domain.Sell,
				CurrencyCode: "EUR",
				Amount:       dec("200"),
				ExchangeRate: ratePtr("7.50"),
			},
			want: map[string]string{"EUR": "-200", "TTD": "1500"},
		},
		{
			name: "buy of the settlement currency nets both legs",
			txn: domain.Transaction{
				Type:         domain.Buy,
				CurrencyCode: "TTD",
				Amount:       dec("100"),
				ExchangeRate: ratePtr("1"),
			},
			want: map[string]string{"TTD": "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effects, err := accounting.CalculateEffects(tt.txn, settlement)
			require.NoError(t, err)
			require.Len(t, effects, len(tt.want))
			for currency, wantDelta := range tt.want {
				assert.True(t, effects[currency].Equal(dec(wantDelta)),
					"currency %s: want %s, got %s", currency, wantDelta, effects[currency])
			}
		})
	}
}

func TestCalculateEffects_MissingRate(t *testing.T) {
	txn := domain.Transaction{
		Type:         domain.Buy,
		CurrencyCode: "USD",
		Amount:       dec("100"),
	}
	_, err := accounting.CalculateEffects(txn, settlement)
	require.Error(t, err)
}

func TestCalculateEffects_UnknownType(t *testing.T) {
	txn := domain.Transaction{
		Type:         domain.TransactionType("TRANSFER"),
		CurrencyCode: "USD",
		Amount:       dec("100"),
	}
	_, err := accounting.CalculateEffects(txn, settlement)
	require.Error(t, err)
}

func TestInvertEffects_RoundTrip(t *testing.T) {
	txn := domain.Transaction{
		Type:         domain.Sell,
		CurrencyCode: "EUR",
		Amount:       dec("33.33"),
		ExchangeRate: ratePtr("7.4123"),
	}
	effects, err := accounting.CalculateEffects(txn, settlement)
	require.NoError(t, err)

	inverted := accounting.InvertEffects(effects)
	require.Len(t, inverted, len(effects))
	for currency, delta := range effects {
		sum := delta.Add(inverted[currency])
		assert.True(t, sum.IsZero(), "currency %s: effect plus inverse is %s, want 0", currency, sum)
	}
}

func TestSettlementAmount(t *testing.T) {
	got := accounting.SettlementAmount(dec("100"), dec("6.80"))
	assert.True(t, got.Equal(dec("680")))
}
