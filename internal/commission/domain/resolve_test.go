package domain

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
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

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func card(id int64, from string, to *time.Time, active bool, rates ...CommissionRate) MasterWithRates {
	return MasterWithRates{
		Master: CommissionMaster{
			ID:             snowflake.ParseInt64(id),
			ApplicableFrom: day(from),
			ApplicableTo:   to,
			IsActive:       active,
		},
		Rates: rates,
	}
}

func rate(headerID int64, pct string) CommissionRate {
	return CommissionRate{
		HeaderID: snowflake.ParseInt64(headerID),
		Rate:     dec(pct),
		IsActive: true,
	}
}

func TestResolveRatePicksLatestApplicableFrom(t *testing.T) {
	header := snowflake.ParseInt64(7)
	cards := []MasterWithRates{
		card(1, "2026-01-01", nil, true, rate(7, "2.00")),
		card(2, "2026-03-01", nil, true, rate(7, "3.50")),
	}

	// Before the second card starts, the first one applies.
	got, ok := ResolveRate(cards, header, day("2026-02-15"))
	assert.True(t, ok)
	assert.True(t, dec("2.00").Equal(got))

	// From March onward the newer card wins.
	got, ok = ResolveRate(cards, header, day("2026-03-10"))
	assert.True(t, ok)
	assert.True(t, dec("3.50").Equal(got))
}

func TestResolveRateRespectsWindowEnd(t *testing.T) {
	header := snowflake.ParseInt64(7)
	end := day("2026-06-30")
	cards := []MasterWithRates{
		card(1, "2026-01-01", &end, true, rate(7, "2.00")),
	}

	_, ok := ResolveRate(cards, header, day("2026-07-01"))
	assert.False(t, ok)
}

func TestResolveRateNoFallbackToOlderCard(t *testing.T) {
	header := snowflake.ParseInt64(7)
	other := snowflake.ParseInt64(8)
	cards := []MasterWithRates{
		card(1, "2026-01-01", nil, true, rate(7, "2.00")),
		// Newer card covers the date but has no rate for the header:
		// the answer is an explicit zero, not the older card's 2%.
		card(2, "2026-03-01", nil, true, rate(8, "1.00")),
	}

	got, ok := ResolveRate(cards, header, day("2026-04-01"))
	assert.True(t, ok)
	assert.True(t, got.IsZero())

	got, ok = ResolveRate(cards, other, day("2026-04-01"))
	assert.True(t, ok)
	assert.True(t, dec("1.00").Equal(got))
}

func TestResolveRateSkipsInactiveCards(t *testing.T) {
	header := snowflake.ParseInt64(7)
	cards := []MasterWithRates{
		card(1, "2026-01-01", nil, true, rate(7, "2.00")),
		card(2, "2026-03-01", nil, false, rate(7, "9.00")),
	}

	got, ok := ResolveRate(cards, header, day("2026-04-01"))
	assert.True(t, ok)
	assert.True(t, dec("2.00").Equal(got))
}

func TestResolveRateIsDeterministic(t *testing.T) {
	header := snowflake.ParseInt64(7)
	cards := []MasterWithRates{
		card(1, "2026-01-01", nil, true, rate(7, "2.00")),
		card(2, "2026-03-01", nil, true, rate(7, "3.50")),
	}

	first, _ := ResolveRate(cards, header, day("2026-04-01"))
	for i := 0; i < 5; i++ {
		again, _ := ResolveRate(cards, header, day("2026-04-01"))
		assert.True(t, first.Equal(again))
	}
}

func TestCommissionOnRoundsToTwoPlaces(t *testing.T) {
	// 3333.33 * 2.5% = 83.33325 -> 83.33
	assert.Equal(t, "83.33", CommissionOn(dec("3333.33"), dec("2.5")).StringFixed(2))
	// 100 * 3.555% = 3.555 -> 3.56 (half away from zero)
	assert.Equal(t, "3.56", CommissionOn(dec("100"), dec("3.555")).StringFixed(2))
	assert.Equal(t, "0.00", CommissionOn(dec("100"), decimal.Zero).StringFixed(2))
}
