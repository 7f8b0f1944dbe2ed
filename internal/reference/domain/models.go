package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ProductType distinguishes the dealership's vehicle lines; price
// headers and models belong to exactly one.
type ProductType string

const (
	ProductTypeTwoWheeler   ProductType = "TWO_WHEELER"
	ProductTypeThreeWheeler ProductType = "THREE_WHEELER"
	ProductTypeFourWheeler  ProductType = "FOUR_WHEELER"
)

// CashLocation is a till/counter that can accept cash receipts.
type CashLocation struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	IsActive  bool         `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time    `json:"created_at,omitempty" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CashLocation) TableName() string { return "cash_locations" }

// Bank is a dealership bank account for bank/pay-order receipts.
type Bank struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	Name          string       `json:"name" gorm:"type:text;not null"`
	AccountNumber string       `json:"account_number,omitempty" gorm:"type:text"`
	IsActive      bool         `json:"is_active" gorm:"not null;default:true"`
	CreatedAt     time.Time    `json:"created_at,omitempty" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Bank) TableName() string { return "banks" }

// FinanceProvider is a financer that disburses loan amounts against bookings.
type FinanceProvider struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	IsActive  bool         `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time    `json:"created_at,omitempty" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (FinanceProvider) TableName() string { return "finance_providers" }

// Subdealer is a downstream dealer earning commission on bookings.
type Subdealer struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Code      string       `json:"code" gorm:"type:text;not null"`
	IsActive  bool         `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time    `json:"created_at,omitempty" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Subdealer) TableName() string { return "subdealers" }

// VehicleModel is a sellable model in the catalog.
type VehicleModel struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"type:text;not null"`
	ProductType ProductType  `json:"product_type" gorm:"type:text;not null"`
	IsActive    bool         `json:"is_active" gorm:"not null;default:true"`
	CreatedAt   time.Time    `json:"created_at,omitempty" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (VehicleModel) TableName() string { return "vehicle_models" }

// PriceHeader names one priced line item of a booking (ex-showroom,
// RTO, insurance, accessories and so on). Discount-only headers exist
// purely to carry discounts and never earn commission.
type PriceHeader struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	Name           string       `json:"name" gorm:"type:text;not null"`
	ProductType    ProductType  `json:"product_type" gorm:"type:text;not null"`
	IsDiscountOnly bool         `json:"is_discount_only" gorm:"not null;default:false"`
	IsMandatory    bool         `json:"is_mandatory" gorm:"not null;default:false"`
	IsActive       bool         `json:"is_active" gorm:"not null;default:true"`
	CreatedAt      time.Time    `json:"created_at,omitempty" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PriceHeader) TableName() string { return "price_headers" }
