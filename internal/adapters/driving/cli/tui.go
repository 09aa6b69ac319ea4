package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/pdfboard/internal/adapters/driving/tui"
)

// ErrNotTerminal is returned when the TUI is started without a terminal.
var ErrNotTerminal = errors.New("tui requires an interactive terminal")

// isTerminal reports whether stdout is a terminal. Tests replace it.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui [file]",
	Short: "Open a document on the interactive board",
	Long: `Open a document on the interactive terminal board.

Chunks are listed on the left and the current page on the right, with the
selected chunk's passage highlighted. The document is reloaded when it
changes on disk.

Controls:
  /        - Ask a question (tab switches to an image prompt)
  ↑/k, ↓/j - Move between chunks
  Enter    - Select a chunk and jump to its passage
  +/-      - Resize     [/]  - Font size     c - Colour
  e        - Link to another chunk
  d        - Delete
  ←/h, →/l - Change page
  Esc      - Cancel / clear selection
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if !isTerminal() {
		return ErrNotTerminal
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

	app, err := tui.NewApp(tui.NewPorts(board))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(ctx).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
