package commission

import (
	"github.com/dealerstack/vaahan/internal/commission/repository"
	"github.com/dealerstack/vaahan/internal/commission/service"
	"go.uber.org/fx"
)

var Module = fx.Module("commission.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
