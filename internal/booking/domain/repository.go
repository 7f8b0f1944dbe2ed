package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, tx *gorm.DB, booking *Booking) error
	InsertComponents(ctx context.Context, tx *gorm.DB, components []PriceComponent) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Booking, error)
	ListComponents(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) ([]PriceComponent, error)
	// UpdateBalance persists receivedAmount/balanceAmount guarded by
	// the optimistic version; returns ErrVersionConflict when another
	// writer got there first. The caller stamps UpdatedAt.
	UpdateBalance(ctx context.Context, tx *gorm.DB, booking *Booking) error
	ListBySubdealer(ctx context.Context, db *gorm.DB, subdealerID snowflake.ID, from, to *time.Time) ([]Booking, error)
}
