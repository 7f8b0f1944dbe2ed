package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	disbursementdomain "github.com/dealerstack/vaahan/internal/disbursement/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() disbursementdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, d *disbursementdomain.FinanceDisbursement) error {
	return tx.WithContext(ctx).Exec(
		`INSERT INTO finance_disbursements (
			id, booking_id, ledger_entry_id, provider_id,
			disbursement_reference, amount, status,
			issued_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID,
		d.BookingID,
		d.LedgerEntryID,
		d.ProviderID,
		d.DisbursementReference,
		d.Amount,
		d.Status,
		d.IssuedBy,
		d.CreatedAt,
		d.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*disbursementdomain.FinanceDisbursement, error) {
	var d disbursementdomain.FinanceDisbursement
	err := db.WithContext(ctx).Raw(
		`SELECT id, booking_id, ledger_entry_id, provider_id,
		 disbursement_reference, amount, status,
		 issued_by, cancelled_by, cancelled_at, created_at, updated_at
		 FROM finance_disbursements WHERE id = ?`, id,
	).Scan(&d).Error
	if err != nil {
		return nil, err
	}
	if d.ID == 0 {
		return nil, nil
	}
	return &d, nil
}

func (r *repo) ListByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) ([]disbursementdomain.FinanceDisbursement, error) {
	var items []disbursementdomain.FinanceDisbursement
	err := db.WithContext(ctx).Raw(
		`SELECT id, booking_id, ledger_entry_id, provider_id,
		 disbursement_reference, amount, status,
		 issued_by, cancelled_by, cancelled_at, created_at, updated_at
		 FROM finance_disbursements WHERE booking_id = ? ORDER BY created_at ASC, id ASC`, bookingID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) MarkCancelled(ctx context.Context, tx *gorm.DB, d *disbursementdomain.FinanceDisbursement) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE finance_disbursements
		 SET status = ?, cancelled_by = ?, cancelled_at = ?, updated_at = ?
		 WHERE id = ?`,
		d.Status,
		d.CancelledBy,
		d.CancelledAt,
		d.UpdatedAt,
		d.ID,
	).Error
}
