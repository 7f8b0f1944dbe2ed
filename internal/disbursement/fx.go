package disbursement

import (
	"github.com/dealerstack/vaahan/internal/disbursement/repository"
	"github.com/dealerstack/vaahan/internal/disbursement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("disbursement.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
