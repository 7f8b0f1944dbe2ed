package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Cancel(ctx context.Context, disbursementID, actor string) (*Response, error)
	ListByBooking(ctx context.Context, bookingID string) ([]Response, error)
}

type CreateRequest struct {
	BookingID             string          `json:"booking_id"`
	ProviderID            string          `json:"provider_id"`
	DisbursementReference string          `json:"disbursement_reference"`
	Amount                decimal.Decimal `json:"amount"`
	Remarks               string          `json:"remarks"`
	Actor                 string          `json:"-"`
}

type Response struct {
	ID                    snowflake.ID       `json:"id"`
	BookingID             snowflake.ID       `json:"booking_id"`
	LedgerEntryID         snowflake.ID       `json:"ledger_entry_id"`
	ProviderID            snowflake.ID       `json:"provider_id"`
	DisbursementReference string             `json:"disbursement_reference"`
	Amount                decimal.Decimal    `json:"amount"`
	Status                DisbursementStatus `json:"status"`
	IssuedBy              string             `json:"issued_by"`
	CancelledBy           *string            `json:"cancelled_by,omitempty"`
	CancelledAt           *time.Time         `json:"cancelled_at,omitempty"`
	CreatedAt             time.Time          `json:"created_at"`
}

var (
	ErrInvalidDisbursementID = errors.New("invalid_disbursement_id")
	ErrInvalidProviderID     = errors.New("invalid_provider_id")
	ErrInvalidReference      = errors.New("invalid_disbursement_reference")
	ErrNotFound              = errors.New("disbursement_not_found")
	ErrAlreadyCancelled      = errors.New("disbursement_already_cancelled")
	ErrDuplicateReference    = errors.New("duplicate_disbursement_reference")
	ErrBookingNotFinanced    = errors.New("booking_not_financed")
	ErrProviderMismatch      = errors.New("provider_mismatch")
)
