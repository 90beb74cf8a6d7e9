package webhook

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/petrelhq/petrel/internal/app/service/eventlog"
	"github.com/petrelhq/petrel/internal/app/service/subscription"
	cfgpkg "github.com/petrelhq/petrel/pkg/config"
)

var Module = fx.Options(
	fx.Provide(func(cfg *cfgpkg.Config) *Verifier {
		return NewVerifier(cfg.Billing.WebhookSecret)
	}),
	fx.Provide(func(subs *subscription.Service, logs *eventlog.Service, log *zap.SugaredLogger) *Dispatcher {
		return NewDispatcher(subs, logs, log)
	}),
)
