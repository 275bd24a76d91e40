package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/cli/config"
	"github.com/salesdesk-io/salesdesk/pkg/service/worker"
	"github.com/salesdesk-io/salesdesk/pkg/utils/logging"
	"github.com/salesdesk-io/salesdesk/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdReconcile() *cli.Command {
	var repoCfg config.Repository

	return &cli.Command{
		Name:  "reconcile",
		Usage: "Recompute every scheme's totals from its claims once and exit",
		Flags: repoCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			result, err := worker.NewSchemeTotalsWorker(repo, "").Reconcile(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to reconcile scheme totals")
			}
			if result.Failed > 0 {
				return goerr.New("some schemes could not be reconciled", goerr.V("failed", result.Failed))
			}
			logging.Default().Info("Reconciliation finished", "schemes", result.Schemes, "corrected", result.Corrected)
			return nil
		},
	}
}
