package counter

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Well-known sequence names.
const (
	SeqBookingNumber = "booking_number"
	SeqReceiptNumber = "receipt_number"
)

var ErrInvalidName = errors.New("invalid_counter_name")

// Repository hands out monotonically increasing values from named
// counter records. Next must be called inside the caller's write scope
// so a rolled-back operation does not burn a number silently.
type Repository interface {
	Next(ctx context.Context, tx *gorm.DB, name string) (int64, error)
}

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) Next(ctx context.Context, tx *gorm.DB, name string) (int64, error) {
	if name == "" {
		return 0, ErrInvalidName
	}

	result := tx.WithContext(ctx).Exec(
		`UPDATE counters SET value = value + 1 WHERE name = ?`, name)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		if err := tx.WithContext(ctx).Exec(
			`INSERT INTO counters (name, value) VALUES (?, 1)`, name).Error; err != nil {
			return 0, err
		}
		return 1, nil
	}

	var value int64
	err := tx.WithContext(ctx).
		Raw(`SELECT value FROM counters WHERE name = ?`, name).
		Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}

// Format renders a sequence value as a padded document number.
func Format(prefix string, value int64) string {
	return fmt.Sprintf("%s-%06d", prefix, value)
}

var Module = fx.Module("counter.repository",
	fx.Provide(NewRepository),
)
