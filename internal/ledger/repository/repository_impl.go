package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/dealerstack/vaahan/internal/ledger/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() ledgerdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, e *ledgerdomain.LedgerEntry) error {
	return tx.WithContext(ctx).Exec(
		`INSERT INTO ledger_entries (
			id, booking_id, amount, payment_mode, is_debit,
			cash_location_id, bank_id, transaction_reference, remarks,
			source_kind, source_id, source_collection,
			received_by, created_by, reversed_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.BookingID,
		e.Amount,
		e.PaymentMode,
		e.IsDebit,
		e.CashLocationID,
		e.BankID,
		e.TransactionReference,
		e.Remarks,
		e.SourceKind,
		e.SourceID,
		e.SourceCollection,
		e.ReceivedBy,
		e.CreatedBy,
		e.ReversedAt,
		e.CreatedAt,
		e.UpdatedAt,
	).Error
}

func (r *repo) UpdateAmount(ctx context.Context, tx *gorm.DB, e *ledgerdomain.LedgerEntry) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE ledger_entries
		 SET amount = ?, transaction_reference = ?, updated_at = ?
		 WHERE id = ?`,
		e.Amount,
		e.TransactionReference,
		e.UpdatedAt,
		e.ID,
	).Error
}

func (r *repo) MarkReversed(ctx context.Context, tx *gorm.DB, id snowflake.ID, at time.Time) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE ledger_entries SET reversed_at = ?, updated_at = ? WHERE id = ? AND reversed_at IS NULL`,
		at, at, id,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ledgerdomain.LedgerEntry, error) {
	var e ledgerdomain.LedgerEntry
	err := db.WithContext(ctx).Raw(
		`SELECT id, booking_id, amount, payment_mode, is_debit,
		 cash_location_id, bank_id, transaction_reference, remarks,
		 source_kind, source_id, source_collection,
		 received_by, created_by, reversed_at, created_at, updated_at
		 FROM ledger_entries WHERE id = ?`, id,
	).Scan(&e).Error
	if err != nil {
		return nil, err
	}
	if e.ID == 0 {
		return nil, nil
	}
	return &e, nil
}

func (r *repo) ListByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) ([]ledgerdomain.LedgerEntry, error) {
	var items []ledgerdomain.LedgerEntry
	err := db.WithContext(ctx).Raw(
		`SELECT id, booking_id, amount, payment_mode, is_debit,
		 cash_location_id, bank_id, transaction_reference, remarks,
		 source_kind, source_id, source_collection,
		 received_by, created_by, reversed_at, created_at, updated_at
		 FROM ledger_entries WHERE booking_id = ? ORDER BY created_at ASC, id ASC`, bookingID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) SumByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) (ledgerdomain.BookingTotals, error) {
	type row struct {
		Credits sql.NullString `gorm:"column:credits"`
		Debits  sql.NullString `gorm:"column:debits"`
	}

	var result row
	err := db.WithContext(ctx).Raw(
		`SELECT
		 COALESCE(SUM(CASE WHEN is_debit THEN 0 ELSE amount END), 0) AS credits,
		 COALESCE(SUM(CASE WHEN is_debit THEN amount ELSE 0 END), 0) AS debits
		 FROM ledger_entries WHERE booking_id = ? AND reversed_at IS NULL`, bookingID,
	).Scan(&result).Error
	if err != nil {
		return ledgerdomain.BookingTotals{}, err
	}

	totals := ledgerdomain.BookingTotals{Credits: decimal.Zero, Debits: decimal.Zero}
	if result.Credits.Valid {
		if v, err := decimal.NewFromString(result.Credits.String); err == nil {
			totals.Credits = v
		}
	}
	if result.Debits.Valid {
		if v, err := decimal.NewFromString(result.Debits.String); err == nil {
			totals.Debits = v
		}
	}
	return totals, nil
}
