package event

import (
	"github.com/tiketin/tiketin/internal/event/repository"
	"github.com/tiketin/tiketin/internal/event/service"
	"go.uber.org/fx"
)

var Module = fx.Module("event.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
