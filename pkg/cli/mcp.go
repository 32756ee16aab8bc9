package cli

import (
	"github.com/spf13/cobra"

	"github.com/getmockd/specdocs/pkg/logging"
	"github.com/getmockd/specdocs/pkg/mcp"
)

func newMCPCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve JSON-RPC over stdin/stdout",
		Long: `Serve JSON-RPC over stdin/stdout, one message per line.

This is what MCP clients spawn as a child process. Logs go to stderr.

  {
    "mcpServers": {
      "specdocs": {
        "command": "specdocs",
        "args": ["mcp", "--openapi", "/path/to/openapi.yaml"]
      }
    }
  }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, o)
			if err != nil {
				return err
			}

			dispatcher := mcp.NewDispatcher(a.svc, a.cfg.Server)
			dispatcher.SetLogger(logging.Component(a.log, "rpc"))

			server := mcp.NewStdioServer(dispatcher)
			server.SetLogger(logging.Component(a.log, "stdio"))
			server.SetIO(cmd.InOrStdin(), cmd.OutOrStdout())
			return server.Run(cmd.Context())
		},
	}
}
