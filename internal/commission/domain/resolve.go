package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// MasterWithRates pairs a master with its active rates for resolution.
type MasterWithRates struct {
	Master CommissionMaster
	Rates  []CommissionRate
}

// ResolveRate picks the rate payable on headerID as of a given date.
// Candidates are active masters whose window covers asOf; among those
// the latest applicable_from wins. A covering master with no rate for
// the header is an explicit zero, not a fallback to an older card.
func ResolveRate(cards []MasterWithRates, headerID snowflake.ID, asOf time.Time) (decimal.Decimal, bool) {
	var winner *MasterWithRates
	for i := range cards {
		card := &cards[i]
		if !card.Master.IsActive || !card.Master.Covers(asOf) {
			continue
		}
		if winner == nil || card.Master.ApplicableFrom.After(winner.Master.ApplicableFrom) {
			winner = card
		}
	}
	if winner == nil {
		return decimal.Zero, false
	}
	for i := range winner.Rates {
		r := &winner.Rates[i]
		if r.HeaderID == headerID && r.IsActive {
			return r.Rate, true
		}
	}
	return decimal.Zero, true
}

// CommissionOn applies a percentage rate to a base amount, rounded to
// two decimal places.
func CommissionOn(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
}
