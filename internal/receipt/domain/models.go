package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/dealerstack/vaahan/internal/ledger/domain"
	"github.com/shopspring/decimal"
)

type ReceiptStatus string

const (
	ReceiptStatusActive    ReceiptStatus = "ACTIVE"
	ReceiptStatusCancelled ReceiptStatus = "CANCELLED"
)

// Receipt is the printable acknowledgement of a customer payment. It
// is always backed 1:1 by a credit ledger entry; the entry is the
// accounting truth, the receipt is the document.
type Receipt struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	ReceiptNumber string       `json:"receipt_number" gorm:"type:text;not null;uniqueIndex"`
	BookingID     snowflake.ID `json:"booking_id" gorm:"not null;index"`
	LedgerEntryID snowflake.ID `json:"ledger_entry_id" gorm:"not null;uniqueIndex"`

	Amount      decimal.Decimal          `json:"amount" gorm:"type:numeric(14,2);not null"`
	PaymentMode ledgerdomain.PaymentMode `json:"payment_mode" gorm:"type:text;not null"`
	Status      ReceiptStatus            `json:"status" gorm:"type:text;not null;default:'ACTIVE'"`

	IssuedBy    string     `json:"issued_by" gorm:"type:text;not null"`
	CancelledBy *string    `json:"cancelled_by,omitempty" gorm:"type:text"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" gorm:""`
	CreatedAt   time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Receipt) TableName() string { return "receipts" }
