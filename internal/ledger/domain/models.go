package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// PaymentMode is a closed set; each variant carries its own
// required-field rule, checked exhaustively in ValidateLocation.
// The stored strings are the wire contract shared with reporting
// consumers and must not be renamed.
type PaymentMode string

const (
	PaymentModeCash                PaymentMode = "Cash"
	PaymentModeBank                PaymentMode = "Bank"
	PaymentModeFinanceDisbursement PaymentMode = "Finance Disbursement"
	PaymentModeExchange            PaymentMode = "Exchange"
	PaymentModePayOrder            PaymentMode = "Pay Order"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentModeCash, PaymentModeBank, PaymentModeFinanceDisbursement,
		PaymentModeExchange, PaymentModePayOrder:
		return true
	default:
		return false
	}
}

// LocationInput carries the mode-dependent location references of a
// credit entry.
type LocationInput struct {
	CashLocationID *snowflake.ID
	BankID         *snowflake.ID
}

// ValidateLocation enforces the per-variant required-field set.
func (m PaymentMode) ValidateLocation(loc LocationInput) error {
	switch m {
	case PaymentModeCash:
		if loc.CashLocationID == nil || *loc.CashLocationID == 0 {
			return ErrCashLocationRequired
		}
		return nil
	case PaymentModeBank, PaymentModePayOrder:
		if loc.BankID == nil || *loc.BankID == 0 {
			return ErrBankRequired
		}
		return nil
	case PaymentModeFinanceDisbursement, PaymentModeExchange:
		// Provider/exchange vehicle are validated by their issuers.
		return nil
	default:
		return ErrInvalidPaymentMode
	}
}

// Source kinds for traceability back to the originating document.
const (
	SourceKindReceipt      = "receipt"
	SourceKindDisbursement = "finance_disbursement"
	SourceKindManualDebit  = "manual_debit"
)

// LedgerEntry is one monetary movement against a booking. Entries are
// corrected through explicit amount updates that re-derive the
// booking balance delta, never silently mutated.
type LedgerEntry struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	BookingID snowflake.ID `json:"booking_id" gorm:"not null;index"`

	Amount decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	// PaymentMode is empty on manual debit adjustments; every credit
	// carries one of the five modes.
	PaymentMode PaymentMode `json:"payment_mode,omitempty" gorm:"type:text"`
	IsDebit     bool        `json:"is_debit" gorm:"not null;default:false"`

	CashLocationID       *snowflake.ID `json:"cash_location_id,omitempty" gorm:""`
	BankID               *snowflake.ID `json:"bank_id,omitempty" gorm:""`
	TransactionReference *string       `json:"transaction_reference,omitempty" gorm:"type:text"`
	Remarks              string        `json:"remarks,omitempty" gorm:"type:text"`

	SourceKind       string        `json:"source_kind" gorm:"type:text;not null"`
	SourceID         *snowflake.ID `json:"source_id,omitempty" gorm:"index"`
	SourceCollection string        `json:"source_collection,omitempty" gorm:"type:text"`

	ReceivedBy string `json:"received_by" gorm:"type:text;not null"`
	CreatedBy  string `json:"created_by" gorm:"type:text;not null"`
	// ReversedAt is set when the owning receipt/disbursement is
	// cancelled; reversed entries are excluded from balance sums.
	ReversedAt *time.Time `json:"reversed_at,omitempty" gorm:""`
	CreatedAt  time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (LedgerEntry) TableName() string { return "ledger_entries" }
