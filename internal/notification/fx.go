package notification

import (
	"github.com/tiketin/tiketin/internal/notification/repository"
	"github.com/tiketin/tiketin/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
