package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/repository/firestore"
	"github.com/salesdesk-io/salesdesk/pkg/repository/postgres"
	"github.com/salesdesk-io/salesdesk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrate database schema or indexes",
		Commands: []*cli.Command{
			cmdMigrateFirestore(),
			cmdMigratePostgres(),
		},
	}
}

func cmdMigrateFirestore() *cli.Command {
	var projectID string
	var databaseID string
	var prefix string
	var dryRun bool

	return &cli.Command{
		Name:  "firestore",
		Usage: "Migrate Firestore composite indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID (required)",
				Required:    true,
				Sources:     cli.EnvVars("SALESDESK_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Sources:     cli.EnvVars("SALESDESK_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.StringFlag{
				Name:        "firestore-collection-prefix",
				Usage:       "Prefix added to every Firestore collection name",
				Sources:     cli.EnvVars("SALESDESK_FIRESTORE_COLLECTION_PREFIX"),
				Destination: &prefix,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			logger.Info("Migrate configuration",
				"projectID", projectID,
				"databaseID", databaseID,
				"prefix", prefix,
				"dryRun", dryRun)

			indexConfig := getIndexConfig(prefix)

			client, err := fireconf.NewClient(ctx, projectID, databaseID)
			if err != nil {
				return goerr.Wrap(err, "failed to create fireconf client")
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			if dryRun {
				logger.Info("Dry run mode - previewing changes")
				plan, err := client.GetMigrationPlan(ctx, indexConfig)
				if err != nil {
					return goerr.Wrap(err, "failed to create migration plan")
				}

				if len(plan.Steps) == 0 {
					logger.Info("No changes required")
					return nil
				}

				for _, step := range plan.Steps {
					logger.Info("Migration step",
						"collection", step.Collection,
						"operation", step.Operation,
						"description", step.Description,
						"destructive", step.Destructive)
				}
				return nil
			}

			logger.Info("Applying migrations")
			if err := client.Migrate(ctx, indexConfig); err != nil {
				return goerr.Wrap(err, "failed to apply migrations")
			}
			logger.Info("Migrations applied successfully")
			return nil
		},
	}
}

func cmdMigratePostgres() *cli.Command {
	var databaseURL string

	return &cli.Command{
		Name:  "postgres",
		Usage: "Apply pending PostgreSQL migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "postgres-url",
				Usage:       "PostgreSQL connection URL (required)",
				Required:    true,
				Sources:     cli.EnvVars("SALESDESK_POSTGRES_URL"),
				Destination: &databaseURL,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := postgres.New(ctx, databaseURL)
			if err != nil {
				return goerr.Wrap(err, "failed to connect to postgres")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close postgres", "error", err.Error())
				}
			}()

			if err := repo.Migrate(); err != nil {
				return goerr.Wrap(err, "failed to apply migrations")
			}
			logging.Default().Info("PostgreSQL migrations applied successfully")
			return nil
		},
	}
}

func equalityIndex(paths ...string) fireconf.Index {
	fields := make([]fireconf.IndexField, 0, len(paths))
	for _, p := range paths {
		fields = append(fields, fireconf.IndexField{Path: p, Order: fireconf.OrderAscending})
	}
	return fireconf.Index{Fields: fields}
}

// getIndexConfig returns the composite indexes behind the combined list
// filters of claims and targets
func getIndexConfig(prefix string) *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: firestore.CollectionName(prefix, "expense_claims"),
				Indexes: []fireconf.Index{
					equalityIndex("UserID", "Status"),
					equalityIndex("SchemeID", "Status"),
					equalityIndex("UserID", "SchemeID"),
				},
			},
			{
				Name: firestore.CollectionName(prefix, "targets"),
				Indexes: []fireconf.Index{
					equalityIndex("UserID", "Period"),
					equalityIndex("TerritoryID", "Period"),
				},
			},
		},
	}
}
