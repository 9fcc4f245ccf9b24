package ticket

import (
	"github.com/tiketin/tiketin/internal/ticket/repository"
	"github.com/tiketin/tiketin/internal/ticket/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ticket.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
