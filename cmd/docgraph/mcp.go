package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scrypster/docgraph/internal/api/mcp"
	"github.com/scrypster/docgraph/internal/server"
)

func (c *cli) mcpCmd() *cobra.Command {
	var autoSave bool
	cmd := &cobra.Command{
		Use:     "mcp",
		GroupID: "views",
		Short:   "Serve the graph to MCP clients over stdio",
		Long: `Speak the Model Context Protocol on stdin and stdout so an assistant
can query and extend the graph. Logs go to stderr and the log file only.

Example client entry:
  {"command": "docgraph", "args": ["mcp", "--config", "/path/docgraph.yaml"]}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := mcp.NewServer(c.svc, mcp.WithAutoSave(autoSave), mcp.WithVersion(server.Version))
			return mcp.NewStdioTransport(srv, cmd.InOrStdin(), cmd.OutOrStdout()).Serve(ctx)
		},
	}
	cmd.Flags().BoolVar(&autoSave, "autosave", true, "save the graph after each ingested document")
	return cmd
}
