package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/cli/config"
	"github.com/salesdesk-io/salesdesk/pkg/domain/interfaces"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/utils/logging"
	"github.com/salesdesk-io/salesdesk/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	warnMark = color.New(color.FgYellow).SprintFunc()
	bold     = color.New(color.Bold).SprintFunc()
)

func cmdValidate() *cli.Command {
	var appCfg config.App
	var repoCfg config.Repository
	var checkDB bool

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "check-db",
		Usage:       "Also compare stored scheme totals with the totals derived from claims",
		Sources:     cli.EnvVars("SALESDESK_VALIDATE_CHECK_DB"),
		Destination: &checkDB,
	})

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the configuration file and optionally check DB consistency",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			w := c.Root().Writer
			if w == nil {
				w = os.Stdout
			}

			_, ws, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}
			printWorkspace(w, appCfg.Path(), ws)

			if !checkDB {
				return nil
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			drifted, err := checkSchemeTotals(ctx, w, repo)
			if err != nil {
				return goerr.Wrap(err, "DB consistency check failed")
			}
			if drifted > 0 {
				return goerr.New("scheme totals are inconsistent", goerr.V("schemes", drifted))
			}
			return nil
		},
	}
}

func printWorkspace(w io.Writer, path string, ws *config.Workspace) {
	source := path
	if source == "" {
		source = "built-in defaults"
	}
	fmt.Fprintf(w, "%s configuration %s\n", okMark("✔"), bold(source))

	for _, s := range ws.Registry.List() {
		fmt.Fprintf(w, "  %s %-16s %d fields, %d columns\n", okMark("✔"), s.Name, len(s.Fields), len(s.Columns))
	}

	nav := "built-in"
	if ws.Navigation != nil {
		nav = fmt.Sprintf("%d items", len(ws.Navigation))
	}
	fmt.Fprintf(w, "  navigation: %s\n", nav)

	contexts := make([]string, 0, len(ws.UploadPolicies))
	for name := range ws.UploadPolicies {
		contexts = append(contexts, name)
	}
	sort.Strings(contexts)
	fmt.Fprintf(w, "  upload contexts: %v\n", contexts)
}

// checkSchemeTotals reports every scheme whose stored totals differ from its
// claims and returns how many do
func checkSchemeTotals(ctx context.Context, w io.Writer, repo interfaces.Repository) (int, error) {
	schemes, err := repo.Scheme().List(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list schemes")
	}

	drifted := 0
	for _, s := range schemes {
		claims, err := repo.ExpenseClaim().List(ctx, interfaces.WithEqual("scheme_id", s.ID.String()))
		if err != nil {
			return drifted, goerr.Wrap(err, "failed to list scheme claims", goerr.V("scheme_id", s.ID))
		}
		computed := model.ComputeSchemeTotals(claims)
		if computed == s.Totals {
			continue
		}
		drifted++
		logging.From(ctx).Warn("Scheme totals drift",
			"scheme_id", s.ID,
			"stored", s.Totals,
			"computed", computed)
		fmt.Fprintf(w, "  %s scheme %s (%s): stored %+v, computed %+v\n",
			warnMark("✘"), s.ID, s.Name, s.Totals, computed)
	}

	if drifted == 0 {
		fmt.Fprintf(w, "%s %d scheme(s) consistent\n", okMark("✔"), len(schemes))
	}
	return drifted, nil
}
