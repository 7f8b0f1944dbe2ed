package reference

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/dealerstack/vaahan/internal/reference/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) FindCashLocation(ctx context.Context, id snowflake.ID) (*domain.CashLocation, error) {
	var item domain.CashLocation
	err := r.db.WithContext(ctx).
		Raw(`SELECT id, name, is_active, created_at FROM cash_locations WHERE id = ?`, id).
		Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repository) FindBank(ctx context.Context, id snowflake.ID) (*domain.Bank, error) {
	var item domain.Bank
	err := r.db.WithContext(ctx).
		Raw(`SELECT id, name, account_number, is_active, created_at FROM banks WHERE id = ?`, id).
		Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repository) FindFinanceProvider(ctx context.Context, id snowflake.ID) (*domain.FinanceProvider, error) {
	var item domain.FinanceProvider
	err := r.db.WithContext(ctx).
		Raw(`SELECT id, name, is_active, created_at FROM finance_providers WHERE id = ?`, id).
		Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repository) FindSubdealer(ctx context.Context, id snowflake.ID) (*domain.Subdealer, error) {
	var item domain.Subdealer
	err := r.db.WithContext(ctx).
		Raw(`SELECT id, name, code, is_active, created_at FROM subdealers WHERE id = ?`, id).
		Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repository) FindVehicleModel(ctx context.Context, id snowflake.ID) (*domain.VehicleModel, error) {
	var item domain.VehicleModel
	err := r.db.WithContext(ctx).
		Raw(`SELECT id, name, product_type, is_active, created_at FROM vehicle_models WHERE id = ?`, id).
		Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repository) FindPriceHeader(ctx context.Context, id snowflake.ID) (*domain.PriceHeader, error) {
	var item domain.PriceHeader
	err := r.db.WithContext(ctx).
		Raw(`SELECT id, name, product_type, is_discount_only, is_mandatory, is_active, created_at
		 FROM price_headers WHERE id = ?`, id).
		Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repository) ListCashLocations(ctx context.Context) ([]domain.CashLocation, error) {
	var items []domain.CashLocation
	err := r.db.WithContext(ctx).
		Raw(`SELECT id, name, is_active, created_at FROM cash_locations WHERE is_active = true ORDER BY name`).
		Scan(&items).Error
	return items, err
}

func (r *repository) ListBanks(ctx context.Context) ([]domain.Bank, error) {
	var items []domain.Bank
	err := r.db.WithContext(ctx).
		Raw(`SELECT id, name, account_number, is_active, created_at FROM banks WHERE is_active = true ORDER BY name`).
		Scan(&items).Error
	return items, err
}

func (r *repository) ListFinanceProviders(ctx context.Context) ([]domain.FinanceProvider, error) {
	var items []domain.FinanceProvider
	err := r.db.WithContext(ctx).
		Raw(`SELECT id, name, is_active, created_at FROM finance_providers WHERE is_active = true ORDER BY name`).
		Scan(&items).Error
	return items, err
}

func (r *repository) ListSubdealers(ctx context.Context) ([]domain.Subdealer, error) {
	var items []domain.Subdealer
	err := r.db.WithContext(ctx).
		Raw(`SELECT id, name, code, is_active, created_at FROM subdealers WHERE is_active = true ORDER BY name`).
		Scan(&items).Error
	return items, err
}

func (r *repository) ListVehicleModels(ctx context.Context) ([]domain.VehicleModel, error) {
	var items []domain.VehicleModel
	err := r.db.WithContext(ctx).
		Raw(`SELECT id, name, product_type, is_active, created_at FROM vehicle_models WHERE is_active = true ORDER BY name`).
		Scan(&items).Error
	return items, err
}

func (r *repository) ListPriceHeaders(ctx context.Context, productType domain.ProductType) ([]domain.PriceHeader, error) {
	var items []domain.PriceHeader
	err := r.db.WithContext(ctx).
		Raw(`SELECT id, name, product_type, is_discount_only, is_mandatory, is_active, created_at
		 FROM price_headers WHERE is_active = true AND product_type = ? ORDER BY name`, productType).
		Scan(&items).Error
	return items, err
}
