package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/dealerstack/vaahan/internal/ledger/domain"
	"github.com/shopspring/decimal"
)

type Service interface {
	Add(ctx context.Context, req AddRequest) (*Response, error)
	Cancel(ctx context.Context, receiptID, actor string) (*Response, error)
	ListByBooking(ctx context.Context, bookingID string) ([]Response, error)
}

type AddRequest struct {
	BookingID            string                   `json:"booking_id"`
	Amount               decimal.Decimal          `json:"amount"`
	PaymentMode          ledgerdomain.PaymentMode `json:"payment_mode"`
	CashLocationID       *string                  `json:"cash_location_id"`
	BankID               *string                  `json:"bank_id"`
	TransactionReference *string                  `json:"transaction_reference"`
	Remarks              string                   `json:"remarks"`
	Actor                string                   `json:"-"`
}

type Response struct {
	ID            snowflake.ID             `json:"id"`
	ReceiptNumber string                   `json:"receipt_number"`
	BookingID     snowflake.ID             `json:"booking_id"`
	LedgerEntryID snowflake.ID             `json:"ledger_entry_id"`
	Amount        decimal.Decimal          `json:"amount"`
	PaymentMode   ledgerdomain.PaymentMode `json:"payment_mode"`
	Status        ReceiptStatus            `json:"status"`
	IssuedBy      string                   `json:"issued_by"`
	CancelledBy   *string                  `json:"cancelled_by,omitempty"`
	CancelledAt   *time.Time               `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
}

var (
	ErrInvalidReceiptID = errors.New("invalid_receipt_id")
	ErrNotFound         = errors.New("receipt_not_found")
	ErrAlreadyCancelled = errors.New("receipt_already_cancelled")
)
