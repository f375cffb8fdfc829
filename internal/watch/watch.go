// Package watch re-runs the fetch and rank pipeline on a schedule and
// pushes results through the notifier.
package watch

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"candlerank/internal/models"
)

// RunFunc executes one fetch and rank cycle.
type RunFunc func(ctx context.Context) (*models.RankRun, error)

// Notifier receives cycle results.
type Notifier interface {
	SendRank(ctx context.Context, run *models.RankRun, top int) error
	SendError(ctx context.Context, err error, context string) error
}

// Watcher schedules ranking cycles.
type Watcher struct {
	cron     *cron.Cron
	logger   zerolog.Logger
	notifier Notifier
	run      RunFunc
	top      int
	ctx      context.Context
}

// New creates a watcher. top limits how many entries each notification
// carries; 0 sends all.
func New(ctx context.Context, logger zerolog.Logger, notifier Notifier, run RunFunc, top int) *Watcher {
	return &Watcher{
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger,
		notifier: notifier,
		run:      run,
		top:      top,
		ctx:      ctx,
	}
}

// Register adds the ranking cycle under a seconds-granularity cron
// expression.
func (w *Watcher) Register(spec string) error {
	if _, err := w.cron.AddFunc(spec, w.cycle); err != nil {
		return fmt.Errorf("register watch schedule %q: %w", spec, err)
	}
	return nil
}

// Start starts the scheduler.
func (w *Watcher) Start() {
	w.cron.Start()
	w.logger.Info().Msg("watch scheduler started")
}

// Stop stops the scheduler and waits for a running cycle to finish.
func (w *Watcher) Stop() {
	<-w.cron.Stop().Done()
	w.logger.Info().Msg("watch scheduler stopped")
}

// RunNow executes one cycle immediately.
func (w *Watcher) RunNow() {
	w.cycle()
}

func (w *Watcher) cycle() {
	run, err := w.run(w.ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("watch cycle failed")
		if nerr := w.notifier.SendError(w.ctx, err, "watch cycle"); nerr != nil {
			w.logger.Error().Err(nerr).Msg("failed to send error notification")
		}
		return
	}

	w.logger.Info().
		Str("symbol", run.Symbol).
		Str("timeframe", run.Timeframe).
		Int("bars", run.Bars).
		Msg("watch cycle complete")

	if err := w.notifier.SendRank(w.ctx, run, w.top); err != nil {
		w.logger.Error().Err(err).Msg("failed to send rank notification")
	}
}
