package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BookingTotals is the full-sum recomputation used by the out-of-band
// reconciliation, never by the hot path.
type BookingTotals struct {
	Credits decimal.Decimal
	Debits  decimal.Decimal
}

type Repository interface {
	Insert(ctx context.Context, tx *gorm.DB, entry *LedgerEntry) error
	UpdateAmount(ctx context.Context, tx *gorm.DB, entry *LedgerEntry) error
	MarkReversed(ctx context.Context, tx *gorm.DB, id snowflake.ID, at time.Time) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*LedgerEntry, error)
	ListByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) ([]LedgerEntry, error)
	SumByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) (BookingTotals, error)
}
