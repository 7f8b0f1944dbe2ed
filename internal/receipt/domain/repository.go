package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, tx *gorm.DB, receipt *Receipt) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Receipt, error)
	ListByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) ([]Receipt, error)
	MarkCancelled(ctx context.Context, tx *gorm.DB, receipt *Receipt) error
}
