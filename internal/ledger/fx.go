package ledger

import (
	"github.com/dealerstack/vaahan/internal/ledger/repository"
	"github.com/dealerstack/vaahan/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
