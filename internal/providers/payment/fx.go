package payment

import (
	"github.com/tiketin/tiketin/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.payment",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) Provider {
	if cfg.Xendit.APIKey == "" {
		log.Warn("no payment API key configured, using no-op invoice provider")
		return &NoOpProvider{}
	}
	return NewXendit(XenditConfig{
		BaseURL:         cfg.Xendit.BaseURL,
		APIKey:          cfg.Xendit.APIKey,
		InvoiceDuration: cfg.Xendit.InvoiceDuration,
	})
}
