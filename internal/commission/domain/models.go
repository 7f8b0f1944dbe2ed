package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// CommissionMaster is one dated rate card for a (subdealer, model)
// pair. Several masters may exist for the same pair with different
// applicability windows; resolution picks the latest applicable_from
// among the windows covering the asOf date.
type CommissionMaster struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	SubdealerID snowflake.ID `json:"subdealer_id" gorm:"not null;index:idx_commission_pair"`
	ModelID     snowflake.ID `json:"model_id" gorm:"not null;index:idx_commission_pair"`

	ApplicableFrom time.Time  `json:"applicable_from" gorm:"not null"`
	ApplicableTo   *time.Time `json:"applicable_to,omitempty" gorm:""`
	IsActive       bool       `json:"is_active" gorm:"not null;default:true"`

	CreatedBy string    `json:"created_by" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CommissionMaster) TableName() string { return "commission_masters" }

// Covers reports whether the master's window contains asOf. An open
// applicable_to means the card never expires.
func (m *CommissionMaster) Covers(asOf time.Time) bool {
	if asOf.Before(m.ApplicableFrom) {
		return false
	}
	if m.ApplicableTo != nil && asOf.After(*m.ApplicableTo) {
		return false
	}
	return true
}

// CommissionRate is the percentage payable on one price header under a
// master. Deactivated rates stay on the row for the history trail.
type CommissionRate struct {
	ID       snowflake.ID `json:"id" gorm:"primaryKey"`
	MasterID snowflake.ID `json:"master_id" gorm:"not null;index"`
	HeaderID snowflake.ID `json:"header_id" gorm:"not null"`

	Rate     decimal.Decimal `json:"rate" gorm:"type:numeric(5,2);not null"`
	IsActive bool            `json:"is_active" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CommissionRate) TableName() string { return "commission_rates" }

type RateChangeType string

const (
	RateChangeCreated     RateChangeType = "CREATED"
	RateChangeUpdated     RateChangeType = "UPDATED"
	RateChangeDeactivated RateChangeType = "DEACTIVATED"
)

// RateHistory is an append-only trail of rate card edits. All rows
// produced by one upsert share the same changed_at so a request can be
// replayed as a unit.
type RateHistory struct {
	ID       snowflake.ID `json:"id" gorm:"primaryKey"`
	MasterID snowflake.ID `json:"master_id" gorm:"not null;index"`
	HeaderID snowflake.ID `json:"header_id" gorm:"not null"`

	ChangeType RateChangeType   `json:"change_type" gorm:"type:text;not null"`
	OldRate    *decimal.Decimal `json:"old_rate,omitempty" gorm:"type:numeric(5,2)"`
	NewRate    *decimal.Decimal `json:"new_rate,omitempty" gorm:"type:numeric(5,2)"`

	// Window moves record the old and new effective dates. Rate edits
	// leave these nil, window moves leave the rate columns nil.
	OldFrom *time.Time `json:"old_applicable_from,omitempty" gorm:"column:old_applicable_from"`
	OldTo   *time.Time `json:"old_applicable_to,omitempty" gorm:"column:old_applicable_to"`
	NewFrom *time.Time `json:"new_applicable_from,omitempty" gorm:"column:new_applicable_from"`
	NewTo   *time.Time `json:"new_applicable_to,omitempty" gorm:"column:new_applicable_to"`

	ChangedBy string    `json:"changed_by" gorm:"type:text;not null"`
	ChangedAt time.Time `json:"changed_at" gorm:"not null"`
}

func (RateHistory) TableName() string { return "commission_rate_history" }
