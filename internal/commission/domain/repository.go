package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertMaster(ctx context.Context, tx *gorm.DB, m *CommissionMaster) error
	UpdateMasterDates(ctx context.Context, tx *gorm.DB, m *CommissionMaster) error
	FindMasterByFrom(ctx context.Context, db *gorm.DB, subdealerID, modelID snowflake.ID, applicableFrom time.Time) (*CommissionMaster, error)
	ListMastersByPair(ctx context.Context, db *gorm.DB, subdealerID, modelID snowflake.ID) ([]CommissionMaster, error)
	ListMastersBySubdealer(ctx context.Context, db *gorm.DB, subdealerID snowflake.ID) ([]CommissionMaster, error)

	InsertRate(ctx context.Context, tx *gorm.DB, r *CommissionRate) error
	UpdateRate(ctx context.Context, tx *gorm.DB, r *CommissionRate) error
	ListRates(ctx context.Context, db *gorm.DB, masterID snowflake.ID) ([]CommissionRate, error)

	InsertHistory(ctx context.Context, tx *gorm.DB, h *RateHistory) error
	ListHistoryByPair(ctx context.Context, db *gorm.DB, subdealerID, modelID snowflake.ID) ([]RateHistory, error)
}
