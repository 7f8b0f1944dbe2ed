package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	AddDebit(ctx context.Context, req AddDebitRequest) (*EntryResponse, error)
	UpdateEntryAmount(ctx context.Context, req UpdateEntryRequest) (*EntryResponse, error)
	ListByBooking(ctx context.Context, bookingID string) ([]EntryResponse, error)
}

type AddDebitRequest struct {
	BookingID string          `json:"booking_id"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
	Actor     string          `json:"-"`
}

type UpdateEntryRequest struct {
	EntryID              string          `json:"entry_id"`
	Amount               decimal.Decimal `json:"amount"`
	TransactionReference *string         `json:"transaction_reference"`
	Actor                string          `json:"-"`
}

type EntryResponse struct {
	ID                   snowflake.ID    `json:"id"`
	BookingID            snowflake.ID    `json:"booking_id"`
	Amount               decimal.Decimal `json:"amount"`
	PaymentMode          PaymentMode     `json:"payment_mode"`
	IsDebit              bool            `json:"is_debit"`
	CashLocationID       *snowflake.ID   `json:"cash_location_id,omitempty"`
	BankID               *snowflake.ID   `json:"bank_id,omitempty"`
	TransactionReference *string         `json:"transaction_reference,omitempty"`
	Remarks              string          `json:"remarks,omitempty"`
	SourceKind           string          `json:"source_kind"`
	SourceID             *snowflake.ID   `json:"source_id,omitempty"`
	SourceCollection     string          `json:"source_collection,omitempty"`
	ReceivedBy           string          `json:"received_by"`
	CreatedBy            string          `json:"created_by"`
	CreatedAt            time.Time       `json:"created_at"`
}

var (
	ErrInvalidBookingID     = errors.New("invalid_booking_id")
	ErrInvalidEntryID       = errors.New("invalid_entry_id")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidPaymentMode   = errors.New("invalid_payment_mode")
	ErrInvalidReason        = errors.New("invalid_reason")
	ErrInvalidActor         = errors.New("invalid_actor")
	ErrCashLocationRequired = errors.New("cash_location_required")
	ErrBankRequired         = errors.New("bank_required")
	ErrEntryNotFound        = errors.New("ledger_entry_not_found")
	ErrEntryReversed        = errors.New("ledger_entry_reversed")

	// ErrAmountExceedsBalance is the errors.Is target for
	// AmountExceedsBalanceError.
	ErrAmountExceedsBalance = errors.New("amount_exceeds_balance")
)

// AmountExceedsBalanceError rejects a credit larger than the
// outstanding balance and reports how much is still receivable.
type AmountExceedsBalanceError struct {
	Remaining decimal.Decimal
}

func (e *AmountExceedsBalanceError) Error() string {
	return fmt.Sprintf("amount_exceeds_balance: remaining %s", e.Remaining.StringFixed(2))
}

func (e *AmountExceedsBalanceError) Is(target error) bool {
	return target == ErrAmountExceedsBalance
}
