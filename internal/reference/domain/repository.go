package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	FindCashLocation(ctx context.Context, id snowflake.ID) (*CashLocation, error)
	FindBank(ctx context.Context, id snowflake.ID) (*Bank, error)
	FindFinanceProvider(ctx context.Context, id snowflake.ID) (*FinanceProvider, error)
	FindSubdealer(ctx context.Context, id snowflake.ID) (*Subdealer, error)
	FindVehicleModel(ctx context.Context, id snowflake.ID) (*VehicleModel, error)
	FindPriceHeader(ctx context.Context, id snowflake.ID) (*PriceHeader, error)

	ListCashLocations(ctx context.Context) ([]CashLocation, error)
	ListBanks(ctx context.Context) ([]Bank, error)
	ListFinanceProviders(ctx context.Context) ([]FinanceProvider, error)
	ListSubdealers(ctx context.Context) ([]Subdealer, error)
	ListVehicleModels(ctx context.Context) ([]VehicleModel, error)
	ListPriceHeaders(ctx context.Context, productType ProductType) ([]PriceHeader, error)
}

var (
	ErrCashLocationNotFound    = errors.New("cash_location_not_found")
	ErrBankNotFound            = errors.New("bank_not_found")
	ErrFinanceProviderNotFound = errors.New("finance_provider_not_found")
	ErrSubdealerNotFound       = errors.New("subdealer_not_found")
	ErrVehicleModelNotFound    = errors.New("vehicle_model_not_found")
	ErrPriceHeaderNotFound     = errors.New("price_header_not_found")
)
