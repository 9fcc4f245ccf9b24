package order

import (
	"github.com/tiketin/tiketin/internal/order/repository"
	"github.com/tiketin/tiketin/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
