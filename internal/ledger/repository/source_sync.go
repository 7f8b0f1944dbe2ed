package repository

import (
	"context"

	ledgerdomain "github.com/dealerstack/vaahan/internal/ledger/domain"
	"gorm.io/gorm"
)

// SyncSourceAmount keeps the originating receipt/disbursement row in
// step with a corrected ledger entry, preserving the 1:1 invariant.
func SyncSourceAmount(ctx context.Context, tx *gorm.DB, e *ledgerdomain.LedgerEntry) error {
	switch e.SourceKind {
	case ledgerdomain.SourceKindReceipt:
		return tx.WithContext(ctx).Exec(
			`UPDATE receipts SET amount = ?, updated_at = ? WHERE ledger_entry_id = ?`,
			e.Amount, e.UpdatedAt, e.ID,
		).Error
	case ledgerdomain.SourceKindDisbursement:
		return tx.WithContext(ctx).Exec(
			`UPDATE finance_disbursements SET amount = ?, updated_at = ? WHERE ledger_entry_id = ?`,
			e.Amount, e.UpdatedAt, e.ID,
		).Error
	default:
		return nil
	}
}
