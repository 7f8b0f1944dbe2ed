package audit

import (
	"github.com/dealerstack/vaahan/internal/audit/repository"
	"github.com/dealerstack/vaahan/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
