// Package sweeper discards draft sessions left idle past their retention.
package sweeper

import (
	"context"
	"time"

	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/draft/service"
	"github.com/smallbiznis/invoicedesk/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log    *zap.Logger
	Clock  clock.Clock
	Store  *service.Store
	Config Config `optional:"true"`
}

type Worker struct {
	log   *zap.Logger
	clock clock.Clock
	store *service.Store
	cfg   Config
}

func NewWorker(p Params) *Worker {
	return &Worker{
		log:   p.Log.Named("draft.sweeper"),
		clock: p.Clock,
		store: p.Store,
		cfg:   p.Config.withDefaults(),
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.RunOnce()
		}
	}
}

// RunOnce performs a single sweep.
func (w *Worker) RunOnce() int {
	removed := w.store.PurgeIdle(w.clock.Now(), w.cfg.MaxIdle)
	if removed > 0 {
		metrics.Submission().RecordPurged(removed)
		w.log.Info("idle drafts purged",
			zap.Int("removed", removed),
			zap.Int("remaining", w.store.Len()),
		)
	}
	metrics.Submission().SetActiveDrafts(w.store.Len())
	return removed
}
