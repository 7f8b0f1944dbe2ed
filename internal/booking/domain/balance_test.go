package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRecomputeBalance(t *testing.T) {
	assert.True(t, dec("6000.00").Equal(RecomputeBalance(dec("10000.00"), dec("4000.00"))))
	assert.True(t, decimal.Zero.Equal(RecomputeBalance(dec("10000.00"), dec("10000.00"))))
	// Overpayment clamps at zero instead of going negative.
	assert.True(t, decimal.Zero.Equal(RecomputeBalance(dec("10000.00"), dec("12000.00"))))
}

func TestApplyCredit(t *testing.T) {
	b := &Booking{
		DiscountedAmount: dec("10000.00"),
		ReceivedAmount:   decimal.Zero,
		BalanceAmount:    dec("10000.00"),
	}

	b.ApplyCredit(dec("4000.00"))
	assert.True(t, dec("4000.00").Equal(b.ReceivedAmount))
	assert.True(t, dec("6000.00").Equal(b.BalanceAmount))

	// A correction that shrinks the credit flows back as a negative delta.
	b.ApplyCredit(dec("-1000.00"))
	assert.True(t, dec("3000.00").Equal(b.ReceivedAmount))
	assert.True(t, dec("7000.00").Equal(b.BalanceAmount))
}

func TestApplyDebitRaisesBalanceOnly(t *testing.T) {
	b := &Booking{
		DiscountedAmount: dec("1000.00"),
		ReceivedAmount:   decimal.Zero,
		BalanceAmount:    dec("1000.00"),
	}

	b.ApplyDebit(dec("500.00"))
	assert.True(t, dec("1500.00").Equal(b.BalanceAmount))
	assert.True(t, decimal.Zero.Equal(b.ReceivedAmount))
}

func TestApplyDebitHasNoClamp(t *testing.T) {
	b := &Booking{
		DiscountedAmount: dec("1000.00"),
		ReceivedAmount:   dec("1000.00"),
		BalanceAmount:    decimal.Zero,
	}

	b.ApplyDebit(dec("250.00"))
	assert.True(t, dec("250.00").Equal(b.BalanceAmount))
}

func TestCurrentBalanceIgnoresStoredColumn(t *testing.T) {
	b := &Booking{
		DiscountedAmount: dec("10000.00"),
		ReceivedAmount:   dec("4000.00"),
		BalanceAmount:    dec("9999.99"), // stale
	}
	assert.True(t, dec("6000.00").Equal(b.CurrentBalance()))
}
