package cli

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfboard/internal/adapters/driving/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Serve the board over HTTP",
	Long: `Open a document and serve its board as a JSON HTTP API.

Routes live under /api/v1; /check/healthy reports liveness and /metrics
exposes request metrics in Prometheus format.

The document is reloaded when it changes on disk.

Examples:
  pdfboard serve paper.pdf
  pdfboard serve paper.pdf --addr 127.0.0.1:9000`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "127.0.0.1:8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
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

	var gatherer prometheus.Gatherer
	if registry != nil {
		gatherer = registry
	}
	server, err := httpapi.New(board, gatherer)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s\n", args[0], addr)
	return server.Run(ctx, addr)
}
