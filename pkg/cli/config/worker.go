package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/robfig/cron/v3"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/service/worker"
	"github.com/urfave/cli/v3"
)

// Worker holds CLI flags for background jobs
type Worker struct {
	schedule string
}

func (x *Worker) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "reconcile-schedule",
			Usage:       "Cron schedule of the scheme totals reconciliation. Disabled when empty.",
			Category:    "Worker",
			Value:       worker.DefaultSchedule,
			Sources:     cli.EnvVars("SALESDESK_RECONCILE_SCHEDULE"),
			Destination: &x.schedule,
		},
	}
}

func (x Worker) LogValue() slog.Value {
	return slog.GroupValue(slog.String("schedule", x.schedule))
}

// Validate checks the cron expression
func (x *Worker) Validate() error {
	if x.schedule == "" {
		return nil
	}
	if _, err := cron.ParseStandard(x.schedule); err != nil {
		return goerr.Wrap(ErrInvalidConfig, "invalid reconcile schedule", goerr.V("schedule", x.schedule), goerr.V("reason", err.Error()))
	}
	return nil
}

// Configure returns the reconciliation worker, or nil when disabled
func (x *Worker) Configure(repo interfaces.Repository) (*worker.SchemeTotalsWorker, error) {
	if x.schedule == "" {
		return nil, nil
	}
	if err := x.Validate(); err != nil {
		return nil, err
	}
	return worker.NewSchemeTotalsWorker(repo, x.schedule), nil
}
