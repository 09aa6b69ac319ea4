package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfboard/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Start the MCP server",
	Long: `Open a document and expose its board to AI assistants over the Model
Context Protocol.

Tools submit queries, list and select chunks, link them and delete them with
confirmation. Resources expose the current page and the graph.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default)
  pdfboard mcp serve paper.pdf

  # HTTP mode (for MCP Inspector, remote access)
  pdfboard mcp serve paper.pdf --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "pdfboard": {
        "command": "/path/to/pdfboard",
        "args": ["mcp", "serve", "/path/to/paper.pdf"]
      }
    }
  }`,
	Args: cobra.ExactArgs(1),
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, args []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ctx := cmd.Context()
	board, err := openBoard(ctx, args[0])
	if err != nil {
		return err
	}
	defer board.Close()

	if err := watchDocument(ctx, board, args[0]); err != nil {
		return fmt.Errorf("watching %s: %w", args[0], err)
	}

	server, err := mcp.NewServer(&mcp.Ports{Board: board})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
