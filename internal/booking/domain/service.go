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
	Get(ctx context.Context, id string) (*Response, error)
}

type CreateRequest struct {
	CustomerName string             `json:"customer_name"`
	ModelID      string             `json:"model_id"`
	SubdealerID  string             `json:"subdealer_id"`
	FinancerID   string             `json:"financer_id"`
	Components   []ComponentRequest `json:"components"`
	Actor        string             `json:"-"`
}

type ComponentRequest struct {
	HeaderID        string           `json:"header_id"`
	OriginalValue   decimal.Decimal  `json:"original_value"`
	DiscountedValue *decimal.Decimal `json:"discounted_value"`
}

type Response struct {
	ID               snowflake.ID        `json:"id"`
	BookingNumber    string              `json:"booking_number"`
	CustomerName     string              `json:"customer_name"`
	ModelID          snowflake.ID        `json:"model_id"`
	SubdealerID      *snowflake.ID       `json:"subdealer_id,omitempty"`
	FinancerID       *snowflake.ID       `json:"financer_id,omitempty"`
	TotalAmount      decimal.Decimal     `json:"total_amount"`
	DiscountedAmount decimal.Decimal     `json:"discounted_amount"`
	ReceivedAmount   decimal.Decimal     `json:"received_amount"`
	BalanceAmount    decimal.Decimal     `json:"balance_amount"`
	Components       []ComponentResponse `json:"components,omitempty"`
	CreatedBy        string              `json:"created_by"`
	CreatedAt        time.Time           `json:"created_at"`
}

type ComponentResponse struct {
	ID              snowflake.ID     `json:"id"`
	HeaderID        snowflake.ID     `json:"header_id"`
	OriginalValue   decimal.Decimal  `json:"original_value"`
	DiscountedValue *decimal.Decimal `json:"discounted_value,omitempty"`
	IsDiscountable  bool             `json:"is_discountable"`
	IsMandatory     bool             `json:"is_mandatory"`
}

var (
	ErrInvalidID             = errors.New("invalid_booking_id")
	ErrInvalidCustomer       = errors.New("invalid_customer_name")
	ErrInvalidModel          = errors.New("invalid_model")
	ErrInvalidComponents     = errors.New("invalid_components")
	ErrComponentOverDiscount = errors.New("component_discount_exceeds_original")
	ErrDiscountExceedsTotal  = errors.New("discount_exceeds_total")
	ErrDuplicateComponent    = errors.New("duplicate_component_header")
	ErrNotFound              = errors.New("booking_not_found")
	ErrVersionConflict       = errors.New("booking_version_conflict")
	ErrInvalidActor          = errors.New("invalid_actor")
)
