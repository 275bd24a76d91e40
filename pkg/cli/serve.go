package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/cli/config"
	gqlctrl "github.com/salesdesk-io/salesdesk/pkg/controller/graphql"
	httpctrl "github.com/salesdesk-io/salesdesk/pkg/controller/http"
	"github.com/salesdesk-io/salesdesk/pkg/service/worker"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
	"github.com/salesdesk-io/salesdesk/pkg/utils/logging"
	"github.com/salesdesk-io/salesdesk/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var maxUploadBytes int64
	var enableGraphiQL bool
	var appCfg config.App
	var repoCfg config.Repository
	var storageCfg config.Storage
	var authCfg config.Auth
	var eventsCfg config.Events
	var cacheCfg config.Cache
	var workerCfg config.Worker

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("SALESDESK_ADDR"),
			Destination: &addr,
		},
		&cli.Int64Flag{
			Name:        "max-upload-bytes",
			Usage:       "Maximum size of one multipart upload request",
			Value:       httpctrl.DefaultMaxUploadBytes,
			Sources:     cli.EnvVars("SALESDESK_MAX_UPLOAD_BYTES"),
			Destination: &maxUploadBytes,
		},
		&cli.BoolFlag{
			Name:        "graphiql",
			Usage:       "Enable GraphiQL playground",
			Sources:     cli.EnvVars("SALESDESK_GRAPHIQL"),
			Destination: &enableGraphiQL,
		},
	}

	// Add shared config flags
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)
	flags = append(flags, eventsCfg.Flags()...)
	flags = append(flags, cacheCfg.Flags()...)
	flags = append(flags, workerCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			ctx = logging.With(ctx, logger)

			_, ws, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load application configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			store, closeStore, err := storageCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize object storage")
			}
			defer closeStore()

			authUC, err := authCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}
			switch {
			case authCfg.IsNoAuthMode():
				logger.Warn("Running in no-auth mode (development only)", "auth", authCfg)
			case authUC == nil:
				logger.Warn("Authentication not configured, every request except health checks is rejected; use --no-auth for local development")
			default:
				logger.Info("Bearer token authentication enabled", "auth", authCfg)
			}

			bus, err := eventsCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure events")
			}
			defer safe.Close(ctx, bus)

			cache := cacheCfg.Configure(bus)
			if err := cache.Listen(ctx, bus); err != nil {
				return goerr.Wrap(err, "failed to listen for cache invalidations")
			}

			uc := usecase.New(repo,
				usecase.WithRegistry(ws.Registry),
				usecase.WithNavigation(ws.Navigation),
				usecase.WithUploadPolicies(ws.UploadPolicies),
				usecase.WithCache(cache),
				usecase.WithStorage(store),
				usecase.WithAuth(authUC),
			)

			var reconciler *worker.SchemeTotalsWorker
			if reconciler, err = workerCfg.Configure(repo); err != nil {
				return goerr.Wrap(err, "failed to configure worker")
			}
			if reconciler != nil {
				if err := reconciler.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start scheme totals worker")
				}
			}

			gqlHandler := gqlctrl.NewHandler(gqlctrl.NewResolver(uc))
			httpOpts := []httpctrl.Options{
				httpctrl.WithMaxUploadBytes(maxUploadBytes),
				httpctrl.WithGraphQL(gqlHandler),
				httpctrl.WithGraphiQL(enableGraphiQL),
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server",
					"addr", addr,
					"graphiql", enableGraphiQL,
					"repository", repoCfg,
					"storage", storageCfg,
					"events", eventsCfg,
					"cache", cacheCfg,
					"worker", workerCfg,
				)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", "signal", sig)

				if reconciler != nil {
					reconciler.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logger.Info("Server shutdown completed")
				return nil
			}
		},
	}
}
