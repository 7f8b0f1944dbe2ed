package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, tx *gorm.DB, d *FinanceDisbursement) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*FinanceDisbursement, error)
	ListByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) ([]FinanceDisbursement, error)
	MarkCancelled(ctx context.Context, tx *gorm.DB, d *FinanceDisbursement) error
}
