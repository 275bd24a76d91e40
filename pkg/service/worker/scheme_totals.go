package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/robfig/cron/v3"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/utils/async"
	"github.com/salesdesk-io/salesdesk/pkg/utils/logging"
)

// DefaultSchedule reconciles scheme totals every 15 minutes
const DefaultSchedule = "*/15 * * * *"

// SchemeTotalsWorker periodically recomputes scheme totals from their claims
// and corrects any drift left by the incremental updates.
//
// Runs on every instance. RecomputeTotals is atomic, so overlapping runs on
// several instances only repeat work.
type SchemeTotalsWorker struct {
	repo     interfaces.Repository
	schedule string
	cron     *cron.Cron
}

// ReconcileResult summarizes one reconciliation cycle
type ReconcileResult struct {
	Schemes   int
	Corrected int
	Failed    int
}

// NewSchemeTotalsWorker creates a worker. An empty schedule uses DefaultSchedule.
func NewSchemeTotalsWorker(repo interfaces.Repository, schedule string) *SchemeTotalsWorker {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &SchemeTotalsWorker{
		repo:     repo,
		schedule: schedule,
	}
}

// Start validates the schedule, runs an initial reconciliation in the
// background and begins the cron loop. It does not block.
func (w *SchemeTotalsWorker) Start(ctx context.Context) error {
	logger := &cronLogger{logger: logging.From(ctx)}
	w.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	if _, err := w.cron.AddFunc(w.schedule, func() {
		if _, err := w.Reconcile(ctx); err != nil {
			logging.From(ctx).Error("Scheme totals reconciliation failed (will retry next schedule)",
				"error", err.Error())
		}
	}); err != nil {
		return goerr.Wrap(err, "invalid reconcile schedule", goerr.V("schedule", w.schedule))
	}

	logging.From(ctx).Info("Scheme totals worker starting", "schedule", w.schedule)

	async.Dispatch(ctx, func(ctx context.Context) error {
		_, err := w.Reconcile(ctx)
		return err
	})
	w.cron.Start()

	return nil
}

// Stop stops the cron loop and waits for a running reconciliation
func (w *SchemeTotalsWorker) Stop() {
	if w.cron == nil {
		return
	}
	logging.Default().Info("Scheme totals worker stopping")
	<-w.cron.Stop().Done()
	logging.Default().Info("Scheme totals worker stopped")
}

// Reconcile runs a single cycle over every scheme. A failing scheme is
// logged and skipped.
func (w *SchemeTotalsWorker) Reconcile(ctx context.Context) (*ReconcileResult, error) {
	startTime := time.Now()

	schemes, err := w.repo.Scheme().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list schemes")
	}

	result := &ReconcileResult{Schemes: len(schemes)}
	for _, s := range schemes {
		if ctx.Err() != nil {
			return result, goerr.Wrap(ctx.Err(), "reconciliation cancelled")
		}

		recomputed, err := w.repo.Scheme().RecomputeTotals(ctx, s.ID)
		if err != nil {
			result.Failed++
			logging.From(ctx).Warn("Failed to recompute scheme totals",
				"scheme_id", s.ID,
				"error", err.Error())
			continue
		}
		if recomputed.Totals != s.Totals {
			result.Corrected++
			logging.From(ctx).Warn("Scheme totals drift corrected",
				"scheme_id", s.ID,
				"before", s.Totals,
				"after", recomputed.Totals)
		}
	}

	logging.From(ctx).Info("Scheme totals reconciliation completed",
		"schemes", result.Schemes,
		"corrected", result.Corrected,
		"failed", result.Failed,
		"duration", time.Since(startTime).String())

	return result, nil
}

// cronLogger adapts slog to cron.Logger
type cronLogger struct {
	logger *slog.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
