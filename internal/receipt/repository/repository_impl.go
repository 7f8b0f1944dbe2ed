package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	receiptdomain "github.com/dealerstack/vaahan/internal/receipt/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() receiptdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, rc *receiptdomain.Receipt) error {
	return tx.WithContext(ctx).Exec(
		`INSERT INTO receipts (
			id, receipt_number, booking_id, ledger_entry_id,
			amount, payment_mode, status,
			issued_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rc.ID,
		rc.ReceiptNumber,
		rc.BookingID,
		rc.LedgerEntryID,
		rc.Amount,
		rc.PaymentMode,
		rc.Status,
		rc.IssuedBy,
		rc.CreatedAt,
		rc.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*receiptdomain.Receipt, error) {
	var rc receiptdomain.Receipt
	err := db.WithContext(ctx).Raw(
		`SELECT id, receipt_number, booking_id, ledger_entry_id,
		 amount, payment_mode, status,
		 issued_by, cancelled_by, cancelled_at, created_at, updated_at
		 FROM receipts WHERE id = ?`, id,
	).Scan(&rc).Error
	if err != nil {
		return nil, err
	}
	if rc.ID == 0 {
		return nil, nil
	}
	return &rc, nil
}

func (r *repo) ListByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) ([]receiptdomain.Receipt, error) {
	var items []receiptdomain.Receipt
	err := db.WithContext(ctx).Raw(
		`SELECT id, receipt_number, booking_id, ledger_entry_id,
		 amount, payment_mode, status,
		 issued_by, cancelled_by, cancelled_at, created_at, updated_at
		 FROM receipts WHERE booking_id = ? ORDER BY created_at ASC, id ASC`, bookingID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) MarkCancelled(ctx context.Context, tx *gorm.DB, rc *receiptdomain.Receipt) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE receipts
		 SET status = ?, cancelled_by = ?, cancelled_at = ?, updated_at = ?
		 WHERE id = ?`,
		rc.Status,
		rc.CancelledBy,
		rc.CancelledAt,
		rc.UpdatedAt,
		rc.ID,
	).Error
}
