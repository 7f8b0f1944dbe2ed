package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	UpsertRates(ctx context.Context, req UpsertRatesRequest) (*UpsertRatesResponse, error)
	SetDateRange(ctx context.Context, req SetDateRangeRequest) (*SetDateRangeResponse, error)
	Calculate(ctx context.Context, req CalculateRequest) (*CalculateResponse, error)
	ListHistory(ctx context.Context, subdealerID, modelID string) ([]HistoryResponse, error)
}

type RateInput struct {
	HeaderID string          `json:"header_id"`
	Rate     decimal.Decimal `json:"rate"`
}

type UpsertRatesRequest struct {
	SubdealerID    string      `json:"-"`
	ModelID        string      `json:"-"`
	ApplicableFrom time.Time   `json:"applicable_from"`
	ApplicableTo   *time.Time  `json:"applicable_to"`
	Rates          []RateInput `json:"rates"`
	Actor          string      `json:"-"`
}

type UpsertRatesResponse struct {
	MasterID    snowflake.ID `json:"master_id"`
	Created     int          `json:"created"`
	Updated     int          `json:"updated"`
	Deactivated int          `json:"deactivated"`
}

type SetDateRangeRequest struct {
	SubdealerID    string     `json:"-"`
	ApplicableFrom time.Time  `json:"applicable_from"`
	ApplicableTo   *time.Time `json:"applicable_to"`
	Actor          string     `json:"-"`
}

type SetDateRangeResponse struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

type CalculateRequest struct {
	SubdealerID string     `json:"-"`
	From        *time.Time `json:"from"`
	To          *time.Time `json:"to"`
}

type ComponentCommission struct {
	HeaderID   snowflake.ID    `json:"header_id"`
	HeaderName string          `json:"header_name"`
	Base       decimal.Decimal `json:"base"`
	Rate       decimal.Decimal `json:"rate"`
	Commission decimal.Decimal `json:"commission"`
	// NoRate marks components the covering cards carry no rate for;
	// the row is reported with an explicit zero instead of dropped.
	NoRate bool `json:"no_rate,omitempty"`
}

type BookingCommission struct {
	BookingID     snowflake.ID          `json:"booking_id"`
	BookingNumber string                `json:"booking_number"`
	ModelID       snowflake.ID          `json:"model_id"`
	BookedAt      time.Time             `json:"booked_at"`
	Components    []ComponentCommission `json:"components"`
	Total         decimal.Decimal       `json:"total"`
	// NoRateCard marks bookings dated outside every rate card window;
	// their commission is an explicit zero.
	NoRateCard bool `json:"no_rate_card,omitempty"`
}

type CalculateResponse struct {
	SubdealerID snowflake.ID        `json:"subdealer_id"`
	Bookings    []BookingCommission `json:"bookings"`
	Total       decimal.Decimal     `json:"total"`
}

type HistoryResponse struct {
	ID         snowflake.ID     `json:"id"`
	MasterID   snowflake.ID     `json:"master_id"`
	HeaderID   snowflake.ID     `json:"header_id"`
	ChangeType RateChangeType   `json:"change_type"`
	OldRate    *decimal.Decimal `json:"old_rate,omitempty"`
	NewRate    *decimal.Decimal `json:"new_rate,omitempty"`
	OldFrom    *time.Time       `json:"old_applicable_from,omitempty"`
	OldTo      *time.Time       `json:"old_applicable_to,omitempty"`
	NewFrom    *time.Time       `json:"new_applicable_from,omitempty"`
	NewTo      *time.Time       `json:"new_applicable_to,omitempty"`
	ChangedBy  string           `json:"changed_by"`
	ChangedAt  time.Time        `json:"changed_at"`
}

var (
	ErrInvalidSubdealerID = errors.New("invalid_subdealer_id")
	ErrInvalidModelID     = errors.New("invalid_model_id")
	ErrInvalidHeaderID    = errors.New("invalid_header_id")
	ErrInvalidRate        = errors.New("invalid_rate")
	ErrInvalidDateRange   = errors.New("invalid_date_range")
	ErrEmptyRates         = errors.New("empty_rates")
	ErrDuplicateHeader    = errors.New("duplicate_rate_header")
	ErrHeaderNotEligible  = errors.New("header_not_eligible_for_commission")
	ErrHeaderProductType  = errors.New("header_product_type_mismatch")
	ErrInvalidActor       = errors.New("invalid_actor")
)
