package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/getmockd/specdocs/pkg/config"
	"github.com/getmockd/specdocs/pkg/logging"
	"github.com/getmockd/specdocs/pkg/mockgen"
	"github.com/getmockd/specdocs/pkg/query"
	"github.com/getmockd/specdocs/pkg/spec"
)

// app is the wiring shared by every command.
type app struct {
	cfg *config.Config
	log *slog.Logger
	svc *query.Service
}

// flagBinding maps a flag to the config key it overrides.
type flagBinding struct {
	flag  string
	key   string
	apply func(cfg *config.Config)
}

// loadApp resolves configuration (defaults, file, env, flags), validates it
// and builds the query service. Logs go to the command's stderr.
func loadApp(cmd *cobra.Command, o *options, extra ...flagBinding) (*app, error) {
	cfg, err := config.Load(o.configFile, o.environ)
	if err != nil {
		return nil, err
	}

	bindings := append([]flagBinding{
		{"openapi", "openapi", func(c *config.Config) { c.OpenAPI = o.openapi }},
		{"log-level", "log.level", func(c *config.Config) { c.Log.Level = o.logLevel }},
		{"log-format", "log.format", func(c *config.Config) { c.Log.Format = o.logFormat }},
	}, extra...)
	for _, b := range bindings {
		if cmd.Flags().Changed(b.flag) {
			b.apply(cfg)
			cfg.Sources[b.key] = config.SourceFlag
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := cfg.Logger(cmd.ErrOrStderr())
	store := spec.NewStore(spec.NewSource(cfg.OpenAPI))
	store.SetLogger(logging.Component(log, "spec"))
	svc := query.New(store, mockgen.New())
	svc.SetLogger(logging.Component(log, "query"))

	return &app{cfg: cfg, log: log, svc: svc}, nil
}
