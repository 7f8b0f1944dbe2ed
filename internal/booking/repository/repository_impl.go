package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/dealerstack/vaahan/internal/booking/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() bookingdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, b *bookingdomain.Booking) error {
	return tx.WithContext(ctx).Exec(
		`INSERT INTO bookings (
			id, booking_number, customer_name, model_id, subdealer_id, financer_id,
			total_amount, discounted_amount, received_amount, balance_amount,
			version, created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID,
		b.BookingNumber,
		b.CustomerName,
		b.ModelID,
		b.SubdealerID,
		b.FinancerID,
		b.TotalAmount,
		b.DiscountedAmount,
		b.ReceivedAmount,
		b.BalanceAmount,
		b.Version,
		b.CreatedBy,
		b.CreatedAt,
		b.UpdatedAt,
	).Error
}

func (r *repo) InsertComponents(ctx context.Context, tx *gorm.DB, components []bookingdomain.PriceComponent) error {
	for _, c := range components {
		err := tx.WithContext(ctx).Exec(
			`INSERT INTO booking_price_components (
				id, booking_id, header_id, original_value, discounted_value,
				is_discountable, is_mandatory, position
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID,
			c.BookingID,
			c.HeaderID,
			c.OriginalValue,
			c.DiscountedValue,
			c.IsDiscountable,
			c.IsMandatory,
			c.Position,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*bookingdomain.Booking, error) {
	var b bookingdomain.Booking
	err := db.WithContext(ctx).Raw(
		`SELECT id, booking_number, customer_name, model_id, subdealer_id, financer_id,
		 total_amount, discounted_amount, received_amount, balance_amount,
		 version, created_by, created_at, updated_at
		 FROM bookings WHERE id = ?`, id,
	).Scan(&b).Error
	if err != nil {
		return nil, err
	}
	if b.ID == 0 {
		return nil, nil
	}
	return &b, nil
}

func (r *repo) ListComponents(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) ([]bookingdomain.PriceComponent, error) {
	var items []bookingdomain.PriceComponent
	err := db.WithContext(ctx).Raw(
		`SELECT id, booking_id, header_id, original_value, discounted_value,
		 is_discountable, is_mandatory, position
		 FROM booking_price_components WHERE booking_id = ? ORDER BY position ASC`, bookingID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateBalance(ctx context.Context, tx *gorm.DB, b *bookingdomain.Booking) error {
	result := tx.WithContext(ctx).Exec(
		`UPDATE bookings
		 SET received_amount = ?, balance_amount = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		b.ReceivedAmount,
		b.BalanceAmount,
		b.UpdatedAt,
		b.ID,
		b.Version,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return bookingdomain.ErrVersionConflict
	}
	b.Version++
	return nil
}

func (r *repo) ListBySubdealer(ctx context.Context, db *gorm.DB, subdealerID snowflake.ID, from, to *time.Time) ([]bookingdomain.Booking, error) {
	query := `SELECT id, booking_number, customer_name, model_id, subdealer_id, financer_id,
		 total_amount, discounted_amount, received_amount, balance_amount,
		 version, created_by, created_at, updated_at
		 FROM bookings WHERE subdealer_id = ?`
	args := []any{subdealerID}
	if from != nil {
		query += ` AND created_at >= ?`
		args = append(args, *from)
	}
	if to != nil {
		query += ` AND created_at <= ?`
		args = append(args, *to)
	}
	query += ` ORDER BY created_at ASC`

	var items []bookingdomain.Booking
	err := db.WithContext(ctx).Raw(query, args...).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
