package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal [chunk-id]",
	Short: "Show the generation journal",
	Long: `Show recorded request lifecycle events, oldest first.

With a chunk id only that chunk's events are shown. The journal must be
enabled with 'pdfboard settings set journal.enabled true'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)
}

func runJournal(cmd *cobra.Command, args []string) error {
	if journal == nil {
		return errors.New("journal not enabled")
	}

	var chunkID string
	if len(args) == 1 {
		chunkID = args[0]
	}

	entries, err := journal.List(cmd.Context(), chunkID)
	if err != nil {
		return fmt.Errorf("listing journal: %w", err)
	}
	if len(entries) == 0 {
		cmd.Println("No journal entries.")
		return nil
	}

	for _, e := range entries {
		cmd.Printf("%s  %-9s %-5s %s  %q",
			e.Timestamp.Local().Format(time.DateTime), e.State, e.Kind, e.ChunkID, e.Query)
		if e.Detail != "" {
			cmd.Printf("  %s", e.Detail)
		}
		cmd.Println()
	}
	return nil
}
