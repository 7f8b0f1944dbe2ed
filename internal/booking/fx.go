package booking

import (
	"github.com/dealerstack/vaahan/internal/booking/repository"
	"github.com/dealerstack/vaahan/internal/booking/service"
	"go.uber.org/fx"
)

var Module = fx.Module("booking.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
