package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	refdomain "github.com/dealerstack/vaahan/internal/reference/domain"
	"gorm.io/gorm"
)

// EnsureReferenceData seeds a minimal catalog so a fresh install can
// take bookings immediately. Existing rows are left alone; the seed is
// keyed on name and never overwrites operator edits.
func EnsureReferenceData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCashLocations(ctx, tx, node); err != nil {
			return err
		}
		if err := ensureBanks(ctx, tx, node); err != nil {
			return err
		}
		if err := ensureFinanceProviders(ctx, tx, node); err != nil {
			return err
		}
		return ensurePriceHeaders(ctx, tx, node)
	})
}

func ensureCashLocations(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	for _, name := range []string{"Main Counter", "Service Counter"} {
		exists, err := rowExists(ctx, tx, `SELECT COUNT(1) FROM cash_locations WHERE name = ?`, name)
		if err != nil || exists {
			if err != nil {
				return err
			}
			continue
		}
		if err := tx.WithContext(ctx).Exec(
			`INSERT INTO cash_locations (id, name, is_active) VALUES (?, ?, TRUE)`,
			node.Generate(), name,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureBanks(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	exists, err := rowExists(ctx, tx, `SELECT COUNT(1) FROM banks WHERE name = ?`, "Primary Current Account")
	if err != nil || exists {
		return err
	}
	return tx.WithContext(ctx).Exec(
		`INSERT INTO banks (id, name, account_number, is_active) VALUES (?, ?, ?, TRUE)`,
		node.Generate(), "Primary Current Account", "",
	).Error
}

func ensureFinanceProviders(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	exists, err := rowExists(ctx, tx, `SELECT COUNT(1) FROM finance_providers WHERE name = ?`, "In-house Finance")
	if err != nil || exists {
		return err
	}
	return tx.WithContext(ctx).Exec(
		`INSERT INTO finance_providers (id, name, is_active) VALUES (?, ?, TRUE)`,
		node.Generate(), "In-house Finance",
	).Error
}

func ensurePriceHeaders(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	headers := []struct {
		name           string
		productType    refdomain.ProductType
		isDiscountOnly bool
		isMandatory    bool
	}{
		{"Ex-Showroom Price", refdomain.ProductTypeTwoWheeler, false, true},
		{"RTO Registration", refdomain.ProductTypeTwoWheeler, false, true},
		{"Insurance", refdomain.ProductTypeTwoWheeler, false, true},
		{"Accessories", refdomain.ProductTypeTwoWheeler, false, false},
		{"Special Discount", refdomain.ProductTypeTwoWheeler, true, false},
	}
	for _, h := range headers {
		exists, err := rowExists(ctx, tx,
			`SELECT COUNT(1) FROM price_headers WHERE name = ? AND product_type = ?`,
			h.name, h.productType)
		if err != nil || exists {
			if err != nil {
				return err
			}
			continue
		}
		if err := tx.WithContext(ctx).Exec(
			`INSERT INTO price_headers (id, name, product_type, is_discount_only, is_mandatory, is_active)
			 VALUES (?, ?, ?, ?, ?, TRUE)`,
			node.Generate(), h.name, h.productType, h.isDiscountOnly, h.isMandatory,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func rowExists(ctx context.Context, tx *gorm.DB, query string, args ...any) (bool, error) {
	var count int64
	if err := tx.WithContext(ctx).Raw(query, args...).Scan(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
