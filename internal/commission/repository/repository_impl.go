package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	commissiondomain "github.com/dealerstack/vaahan/internal/commission/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() commissiondomain.Repository {
	return &repo{}
}

func (r *repo) InsertMaster(ctx context.Context, tx *gorm.DB, m *commissiondomain.CommissionMaster) error {
	return tx.WithContext(ctx).Exec(
		`INSERT INTO commission_masters (
			id, subdealer_id, model_id,
			applicable_from, applicable_to, is_active,
			created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID,
		m.SubdealerID,
		m.ModelID,
		m.ApplicableFrom,
		m.ApplicableTo,
		m.IsActive,
		m.CreatedBy,
		m.CreatedAt,
		m.UpdatedAt,
	).Error
}

func (r *repo) UpdateMasterDates(ctx context.Context, tx *gorm.DB, m *commissiondomain.CommissionMaster) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE commission_masters
		 SET applicable_from = ?, applicable_to = ?, updated_at = ?
		 WHERE id = ?`,
		m.ApplicableFrom,
		m.ApplicableTo,
		m.UpdatedAt,
		m.ID,
	).Error
}

func (r *repo) FindMasterByFrom(ctx context.Context, db *gorm.DB, subdealerID, modelID snowflake.ID, applicableFrom time.Time) (*commissiondomain.CommissionMaster, error) {
	var m commissiondomain.CommissionMaster
	err := db.WithContext(ctx).Raw(
		`SELECT id, subdealer_id, model_id,
		 applicable_from, applicable_to, is_active,
		 created_by, created_at, updated_at
		 FROM commission_masters
		 WHERE subdealer_id = ? AND model_id = ? AND applicable_from = ?`,
		subdealerID, modelID, applicableFrom,
	).Scan(&m).Error
	if err != nil {
		return nil, err
	}
	if m.ID == 0 {
		return nil, nil
	}
	return &m, nil
}

func (r *repo) ListMastersByPair(ctx context.Context, db *gorm.DB, subdealerID, modelID snowflake.ID) ([]commissiondomain.CommissionMaster, error) {
	var items []commissiondomain.CommissionMaster
	err := db.WithContext(ctx).Raw(
		`SELECT id, subdealer_id, model_id,
		 applicable_from, applicable_to, is_active,
		 created_by, created_at, updated_at
		 FROM commission_masters
		 WHERE subdealer_id = ? AND model_id = ?
		 ORDER BY applicable_from ASC`,
		subdealerID, modelID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListMastersBySubdealer(ctx context.Context, db *gorm.DB, subdealerID snowflake.ID) ([]commissiondomain.CommissionMaster, error) {
	var items []commissiondomain.CommissionMaster
	err := db.WithContext(ctx).Raw(
		`SELECT id, subdealer_id, model_id,
		 applicable_from, applicable_to, is_active,
		 created_by, created_at, updated_at
		 FROM commission_masters
		 WHERE subdealer_id = ?
		 ORDER BY model_id ASC, applicable_from ASC`,
		subdealerID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) InsertRate(ctx context.Context, tx *gorm.DB, rate *commissiondomain.CommissionRate) error {
	return tx.WithContext(ctx).Exec(
		`INSERT INTO commission_rates (
			id, master_id, header_id, rate, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rate.ID,
		rate.MasterID,
		rate.HeaderID,
		rate.Rate,
		rate.IsActive,
		rate.CreatedAt,
		rate.UpdatedAt,
	).Error
}

func (r *repo) UpdateRate(ctx context.Context, tx *gorm.DB, rate *commissiondomain.CommissionRate) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE commission_rates
		 SET rate = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		rate.Rate,
		rate.IsActive,
		rate.UpdatedAt,
		rate.ID,
	).Error
}

func (r *repo) ListRates(ctx context.Context, db *gorm.DB, masterID snowflake.ID) ([]commissiondomain.CommissionRate, error) {
	var items []commissiondomain.CommissionRate
	err := db.WithContext(ctx).Raw(
		`SELECT id, master_id, header_id, rate, is_active, created_at, updated_at
		 FROM commission_rates WHERE master_id = ? ORDER BY header_id ASC`,
		masterID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) InsertHistory(ctx context.Context, tx *gorm.DB, h *commissiondomain.RateHistory) error {
	return tx.WithContext(ctx).Exec(
		`INSERT INTO commission_rate_history (
			id, master_id, header_id, change_type,
			old_rate, new_rate,
			old_applicable_from, old_applicable_to,
			new_applicable_from, new_applicable_to,
			changed_by, changed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID,
		h.MasterID,
		h.HeaderID,
		h.ChangeType,
		h.OldRate,
		h.NewRate,
		h.OldFrom,
		h.OldTo,
		h.NewFrom,
		h.NewTo,
		h.ChangedBy,
		h.ChangedAt,
	).Error
}

func (r *repo) ListHistoryByPair(ctx context.Context, db *gorm.DB, subdealerID, modelID snowflake.ID) ([]commissiondomain.RateHistory, error) {
	var items []commissiondomain.RateHistory
	err := db.WithContext(ctx).Raw(
		`SELECT h.id, h.master_id, h.header_id, h.change_type,
		 h.old_rate, h.new_rate,
		 h.old_applicable_from, h.old_applicable_to,
		 h.new_applicable_from, h.new_applicable_to,
		 h.changed_by, h.changed_at
		 FROM commission_rate_history h
		 JOIN commission_masters m ON m.id = h.master_id
		 WHERE m.subdealer_id = ? AND m.model_id = ?
		 ORDER BY h.changed_at ASC, h.id ASC`,
		subdealerID, modelID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
