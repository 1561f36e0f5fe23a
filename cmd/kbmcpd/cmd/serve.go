package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/kbmcp/internal/mcpserver"
)

func newServeCmd() *cobra.Command {
	var transport string
	var listTools bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server, exposing the knowledge base to AI assistants
over the Model Context Protocol.

MCP requires stdout to carry JSON-RPC messages exclusively: no status
output is written to stdout before or during the session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, transport, listTools)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport to serve over (stdio)")
	cmd.Flags().BoolVar(&listTools, "list-tools", false, "List registered tools and exit, without starting the server")

	return cmd
}

func runServe(cmd *cobra.Command, transport string, listTools bool) error {
	kc, err := openContext()
	if err != nil {
		return err
	}
	defer func() { _ = kc.Close() }()
	defer saveVectorIndex(kc)

	srv, err := mcpserver.NewServer(kc)
	if err != nil {
		return fmt.Errorf("failed to build MCP server: %w", err)
	}

	if listTools {
		for _, t := range srv.ListTools() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", t.Name, t.Description)
		}
		return nil
	}

	return srv.Serve(cmd.Context(), transport)
}
