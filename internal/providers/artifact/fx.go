package artifact

import (
	"github.com/tiketin/tiketin/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.artifact",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config) (Generator, error) {
	return NewGenerator(cfg.UploadsDir)
}
