package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// options holds the persistent flags and process environment shared by every
// command.
type options struct {
	configFile string
	openapi    string
	logLevel   string
	logFormat  string
	jsonOutput bool

	environ []string
}

// exitError carries a non-zero exit code without an extra message.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&options{environ: os.Environ()})
}

func newRootCommand(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "specdocs",
		Short: "Serve an OpenAPI document to LLM clients over JSON-RPC",
		Long: `specdocs exposes an OpenAPI document over JSON-RPC 2.0 and synthesizes
example ("mock") responses for any documented endpoint from its schema.

Configuration can be provided via flags, SPECDOCS_* environment variables,
or a configuration file (specdocs.yaml in the current directory by default).`,
		SilenceUsage:  true,
		SilenceErrors: true, // We handle errors in Execute()
	}

	root.PersistentFlags().StringVarP(&o.configFile, "config", "c", "", "Config file path (default: ./specdocs.yaml if present)")
	root.PersistentFlags().StringVar(&o.openapi, "openapi", "", "OpenAPI document path or URL")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&o.logFormat, "log-format", "", "Log format (text, json)")
	root.PersistentFlags().BoolVar(&o.jsonOutput, "json", false, "Output command results in JSON format")

	root.AddCommand(
		newServeCommand(o),
		newMCPCommand(o),
		newEndpointsCommand(o),
		newSchemaCommand(o),
		newMockCommand(o),
		newQueryCommand(o),
		newValidateCommand(o),
		newVersionCommand(o),
	)
	return root
}

// Execute runs the CLI and returns the process exit code. SIGINT and SIGTERM
// cancel the command context.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, NewRootCommand(), os.Stderr)
}

func run(ctx context.Context, root *cobra.Command, stderr io.Writer) int {
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintln(stderr, "Error:", err)
	return 1
}
