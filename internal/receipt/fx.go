package receipt

import (
	"github.com/dealerstack/vaahan/internal/receipt/repository"
	"github.com/dealerstack/vaahan/internal/receipt/service"
	"go.uber.org/fx"
)

var Module = fx.Module("receipt.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
