package user

import (
	"github.com/tiketin/tiketin/internal/user/repository"
	"github.com/tiketin/tiketin/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
