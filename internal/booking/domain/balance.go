package domain

import "github.com/shopspring/decimal"

// The balance reconciler. Credits advance receivedAmount and re-derive
// the balance from the discounted total; debits raise the balance
// directly and leave receivedAmount alone. Callers run these inside
// the same write scope as the ledger mutation they reconcile.

// RecomputeBalance is the authoritative balance derivation:
// discountedAmount - receivedAmount, clamped at zero.
func RecomputeBalance(discounted, received decimal.Decimal) decimal.Decimal {
	balance := discounted.Sub(received)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

// CurrentBalance recomputes the booking's outstanding balance at call
// time rather than trusting the stored column.
func (b *Booking) CurrentBalance() decimal.Decimal {
	return RecomputeBalance(b.DiscountedAmount, b.ReceivedAmount)
}

// ApplyCredit advances receivedAmount by delta (negative for a
// correction that shrinks a credit) and re-derives the balance.
func (b *Booking) ApplyCredit(delta decimal.Decimal) {
	b.ReceivedAmount = b.ReceivedAmount.Add(delta)
	b.BalanceAmount = RecomputeBalance(b.DiscountedAmount, b.ReceivedAmount)
}

// ApplyDebit raises what the customer owes. No clamp: a debit always
// increases the balance, and a negative delta (debit correction)
// lowers it again.
func (b *Booking) ApplyDebit(delta decimal.Decimal) {
	b.BalanceAmount = b.BalanceAmount.Add(delta)
}
