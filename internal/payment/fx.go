package payment

import (
	"github.com/tiketin/tiketin/internal/payment/repository"
	"github.com/tiketin/tiketin/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
