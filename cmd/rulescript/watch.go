package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mercator-hq/rulescript/pkg/cli"
	"mercator-hq/rulescript/pkg/policy/manager"
	"mercator-hq/rulescript/pkg/server"
	"mercator-hq/rulescript/pkg/telemetry/health"
)

var watchFlags struct {
	dir    string
	listen string
	noAPI  bool
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep scripts compiled as files change",
	Long: `Compile every script in a directory, recompile scripts as their files
change, and serve health probes, metrics and the decision API.

A script that stops compiling keeps its last good rule set; the failure is
logged and /ready answers 503 until the script is fixed. Deleting a file
drops its rule set. When store.resync_schedule is set, every script is
reloaded on that cron schedule as well.

Endpoints:
  /health        liveness
  /ready         readiness (first load done, every script compiles)
  /version       build information
  /metrics       Prometheus metrics (telemetry.metrics.path)
  /v1/rules      effective rules   (GET ?org=&branch=&user=)
  /v1/evaluate   evaluate one rule (POST JSON)

Examples:
  rulescript watch --dir rules
  rulescript watch --dir rules --listen 0.0.0.0:9464 --no-api`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchFlags.dir, "dir", "d", "", "script directory (default: store.dir from config)")
	watchCmd.Flags().StringVarP(&watchFlags.listen, "listen", "l", "", "override server.listen_address")
	watchCmd.Flags().BoolVar(&watchFlags.noAPI, "no-api", false, "serve only probes and metrics")
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := newEnv(setupOptions{withMetrics: true})
	if err != nil {
		return err
	}
	defer e.close()

	if watchFlags.listen != "" {
		e.cfg.Server.ListenAddress = watchFlags.listen
	}
	if watchFlags.noAPI {
		e.cfg.Server.DisableAPI = true
	}

	dir, err := e.storeDir(watchFlags.dir)
	if err != nil {
		return err
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	m, _, err := e.loadDir(ctx, dir)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}

	srv := newWatchServer(e, m)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		return m.Watch(gctx)
	})
	g.Go(func() error {
		return manager.NewScheduler(m).Start(gctx)
	})

	e.logger.Info("watching scripts",
		"dir", dir,
		"address", e.cfg.Server.ListenAddress,
		"scopes", len(e.engine.Scopes()),
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return cli.NewCommandError("watch", err)
	}
	e.logger.Info("watch stopped")
	return nil
}

// newWatchServer mounts probes, metrics and the decision API.
func newWatchServer(e *env, m *manager.Manager) *server.Server {
	srv := server.New(server.FromServerConfig(e.cfg.Server), e.logger.Slog())

	checker := health.New(e.cfg.Server.HealthCheckTimeout)
	checker.RegisterCheck("load", health.LoadCheck(m))
	checker.RegisterCheck("scripts", health.ScriptsCheck(m))
	checker.Register(srv.Mux(), Version, GitCommit, BuildDate)

	if e.metrics != nil {
		srv.Handle(e.cfg.Telemetry.Metrics.Path, e.metrics.Handler())
	}
	if !e.cfg.Server.DisableAPI {
		server.NewAPI(e.engine, e.logger.Slog()).Register(srv.Mux())
	}
	return srv
}
