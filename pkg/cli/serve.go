package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/specdocs/pkg/auth"
	"github.com/getmockd/specdocs/pkg/config"
	"github.com/getmockd/specdocs/pkg/logging"
	"github.com/getmockd/specdocs/pkg/mcp"
	"github.com/getmockd/specdocs/pkg/metrics"
	"github.com/getmockd/specdocs/pkg/ratelimit"
	"github.com/getmockd/specdocs/pkg/spec"
)

func newServeCommand(o *options) *cobra.Command {
	var (
		listen string
		route  string
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve JSON-RPC over HTTP",
		Long: `Serve the JSON-RPC endpoint over HTTP until interrupted.

Requests are POSTed to the configured route (default /mcp) and must carry
"Authorization: Bearer <token>" unless auth.driver is "none".`,
		Example: `  # Serve ./openapi.yaml on the default address
  specdocs serve

  # Serve a remote document and reload a local one on change
  specdocs serve --openapi https://api.example.com/openapi.yaml
  specdocs serve --openapi ./api.yaml --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, o,
				flagBinding{"listen", "listen", func(c *config.Config) { c.Listen = listen }},
				flagBinding{"route", "route", func(c *config.Config) { c.Route = route }},
				flagBinding{"watch", "watch", func(c *config.Config) { c.Watch = watch }},
			)
			if err != nil {
				return err
			}
			return runServe(cmd, a)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", config.DefaultListen, "HTTP listen address")
	cmd.Flags().StringVar(&route, "route", config.DefaultRoute, "HTTP route of the JSON-RPC endpoint")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload the document when the file changes")
	return cmd
}

func runServe(cmd *cobra.Command, a *app) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	cfg := a.cfg

	var rpcMetrics *metrics.RPC
	if cfg.Metrics.Enabled {
		rpcMetrics = metrics.NewRPC(a.svc.Store().Loaded)
	}

	// The document is loaded lazily; an early read only surfaces problems.
	_, loadErr := a.svc.Store().Load(ctx)
	if loadErr != nil {
		a.log.Warn("OpenAPI document not loaded yet", "location", cfg.OpenAPI, "error", loadErr)
	}

	authenticator := auth.New(cfg.AuthConfig())
	switch {
	case authenticator.Driver() == auth.DriverToken && authenticator.TokenCount() == 0:
		a.log.Warn("auth driver is token but no tokens are configured; every request will fail")
	case authenticator.Driver() == auth.DriverNone:
		a.log.Warn("authentication is disabled")
	}

	dispatcher := mcp.NewDispatcher(a.svc, cfg.Server)
	dispatcher.SetLogger(logging.Component(a.log, "rpc"))

	opts := []mcp.ServerOption{mcp.WithAuthenticator(authenticator)}
	if rpcMetrics != nil {
		dispatcher.SetObserver(rpcMetrics)
		opts = append(opts, mcp.WithMetrics(cfg.Metrics.Path, rpcMetrics.Handler()))
	}
	if rlCfg, ok := cfg.RateLimitConfig(); ok {
		limiter := ratelimit.New(rlCfg)
		defer limiter.Stop()
		opts = append(opts, mcp.WithRateLimiter(limiter))
	}

	server := mcp.NewServer(cfg.MCPConfig(), dispatcher, opts...)
	server.SetLogger(logging.Component(a.log, "http"))

	if cfg.Watch {
		watcher, err := spec.NewWatcher(a.svc.Store())
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		watcher.SetLogger(logging.Component(a.log, "watch"))
		if rpcMetrics != nil {
			watcher.OnReload = func(_ *spec.Document, err error) { rpcMetrics.ObserveReload(err) }
		}
		watchErr := make(chan error, 1)
		go func() { watchErr <- watcher.Run(ctx) }()
		defer func() {
			cancel()
			if err := <-watchErr; err != nil {
				a.log.Error("watcher stopped", "error", err)
			}
		}()
	}

	if err := server.Start(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "specdocs listening on http://%s%s\n", server.Addr(), cfg.Route)

	<-ctx.Done()
	a.log.Info("shutting down")
	return server.Stop()
}
