package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Booking is the aggregate root for settlement. Every monetary
// movement against it goes through the ledger, and the stored
// received/balance pair is maintained in the same write scope as the
// ledger mutation.
type Booking struct {
	ID            snowflake.ID  `json:"id" gorm:"primaryKey"`
	BookingNumber string        `json:"booking_number" gorm:"type:text;not null;uniqueIndex"`
	CustomerName  string        `json:"customer_name" gorm:"type:text;not null"`
	ModelID       snowflake.ID  `json:"model_id" gorm:"not null;index"`
	SubdealerID   *snowflake.ID `json:"subdealer_id,omitempty" gorm:"index"`
	FinancerID    *snowflake.ID `json:"financer_id,omitempty" gorm:""`

	TotalAmount      decimal.Decimal `json:"total_amount" gorm:"type:numeric(14,2);not null"`
	DiscountedAmount decimal.Decimal `json:"discounted_amount" gorm:"type:numeric(14,2);not null"`
	ReceivedAmount   decimal.Decimal `json:"received_amount" gorm:"type:numeric(14,2);not null"`
	BalanceAmount    decimal.Decimal `json:"balance_amount" gorm:"type:numeric(14,2);not null"`

	// Version guards concurrent balance updates with an optimistic
	// check; every balance write bumps it.
	Version   int64     `json:"version" gorm:"not null;default:1"`
	CreatedBy string    `json:"created_by" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Booking) TableName() string { return "bookings" }

// PriceComponent is one priced line item (header) within the booking total.
type PriceComponent struct {
	ID              snowflake.ID     `json:"id" gorm:"primaryKey"`
	BookingID       snowflake.ID     `json:"booking_id" gorm:"not null;index"`
	HeaderID        snowflake.ID     `json:"header_id" gorm:"not null"`
	OriginalValue   decimal.Decimal  `json:"original_value" gorm:"type:numeric(14,2);not null"`
	DiscountedValue *decimal.Decimal `json:"discounted_value,omitempty" gorm:"type:numeric(14,2)"`
	IsDiscountable  bool             `json:"is_discountable" gorm:"not null;default:false"`
	IsMandatory     bool             `json:"is_mandatory" gorm:"not null;default:false"`
	Position        int              `json:"position" gorm:"not null;default:0"`
}

func (PriceComponent) TableName() string { return "booking_price_components" }

// EffectiveValue is the commissionable/payable base of the component:
// the discounted value when present, else the original value.
func (p PriceComponent) EffectiveValue() decimal.Decimal {
	if p.DiscountedValue != nil {
		return *p.DiscountedValue
	}
	return p.OriginalValue
}
