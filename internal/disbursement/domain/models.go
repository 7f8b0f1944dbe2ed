package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type DisbursementStatus string

// Creation posts the ledger credit in the same transaction, so a
// disbursement is COMPLETED from its first committed state.
const (
	DisbursementStatusCompleted DisbursementStatus = "COMPLETED"
	DisbursementStatusCancelled DisbursementStatus = "CANCELLED"
)

// FinanceDisbursement records money released by a finance provider
// against a financed booking. The provider-issued reference is unique
// across the whole table so a re-submitted payout cannot credit the
// booking twice.
type FinanceDisbursement struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	BookingID     snowflake.ID `json:"booking_id" gorm:"not null;index"`
	LedgerEntryID snowflake.ID `json:"ledger_entry_id" gorm:"not null;uniqueIndex"`
	ProviderID    snowflake.ID `json:"provider_id" gorm:"not null;index"`

	DisbursementReference string             `json:"disbursement_reference" gorm:"type:text;not null;uniqueIndex"`
	Amount                decimal.Decimal    `json:"amount" gorm:"type:numeric(14,2);not null"`
	Status                DisbursementStatus `json:"status" gorm:"type:text;not null;default:'COMPLETED'"`

	IssuedBy    string     `json:"issued_by" gorm:"type:text;not null"`
	CancelledBy *string    `json:"cancelled_by,omitempty" gorm:"type:text"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" gorm:""`
	CreatedAt   time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (FinanceDisbursement) TableName() string { return "finance_disbursements" }
