package draft

import (
	"context"

	"github.com/smallbiznis/invoicedesk/internal/config"
	"github.com/smallbiznis/invoicedesk/internal/draft/service"
	"github.com/smallbiznis/invoicedesk/internal/draft/sweeper"
	"go.uber.org/fx"
)

var Module = fx.Module("draft.service",
	fx.Provide(service.NewStore),
	fx.Provide(service.NewService),
	fx.Provide(func(cfg config.Config) sweeper.Config {
		return sweeper.Config{
			MaxIdle:       cfg.Draft.MaxIdle,
			SweepInterval: cfg.Draft.SweepInterval,
		}
	}),
	fx.Provide(sweeper.NewWorker),
	fx.Invoke(runSweeper),
)

func runSweeper(lc fx.Lifecycle, worker *sweeper.Worker) {
	runCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go worker.RunForever(runCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return nil
		},
	})
}
