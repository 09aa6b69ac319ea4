package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driving"
)

var askCmd = &cobra.Command{
	Use:   "ask [file] [query]",
	Short: "Ask one question about a document",
	Long: `Open a document, ask a single question and print the answer.

The answer's reference page is printed with the supporting passage marked.
With --image the query is sent as an image prompt instead.

Examples:
  pdfboard ask paper.pdf "what is X?"
  pdfboard ask paper.pdf "a diagram of the pipeline" --image`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Bool("image", false, "generate an image instead of a text answer")
	askCmd.Flags().Duration("timeout", 3*time.Minute, "how long to wait for the answer")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	image, err := cmd.Flags().GetBool("image")
	if err != nil {
		return fmt.Errorf("getting image flag: %w", err)
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return fmt.Errorf("getting timeout flag: %w", err)
	}

	kind := domain.KindText
	if image {
		kind = domain.KindImage
	}

	ctx := cmd.Context()
	board, err := openBoard(ctx, args[0])
	if err != nil {
		return err
	}
	defer board.Close()

	ctx, cancel := contextWithTimeout(ctx, timeout)
	defer cancel()

	// Wait for the upload so the backend has the document before the query.
	if err := board.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for upload: %w", err)
	}
	status, err := board.UploadStatus(ctx)
	if err != nil {
		return err
	}
	if status.State == domain.UploadFailed {
		return fmt.Errorf("upload failed: %s", status.Error)
	}

	placeholder, err := board.Submit(ctx, args[1], kind)
	if err != nil {
		return err
	}
	chunk, err := board.AwaitChunk(ctx, placeholder.ID)
	if err != nil {
		return fmt.Errorf("waiting for answer: %w", err)
	}
	printChunk(cmd, "1", chunk)

	if chunk.Content.Status == domain.StatusFailed {
		return errors.New(strings.TrimPrefix(chunk.Content.Answer, domain.FailedAnswerPrefix))
	}
	if chunk.Content.Kind != domain.KindText || chunk.Reference.IsZero() {
		return nil
	}

	matches, err := board.Select(ctx, chunk.ID)
	if err != nil {
		return err
	}
	return printHighlights(cmd, board, matches)
}

func printChunk(cmd *cobra.Command, label string, c domain.Chunk) {
	cmd.Printf("[%s] %s (%s, %s)\n", label, c.Content.Query, c.Content.Kind, c.Content.Status)
	if c.Content.Answer != "" {
		cmd.Printf("    %s\n", c.Content.Answer)
	}
	if !c.Reference.IsZero() {
		cmd.Printf("    page %d: %q\n", c.Reference.Page, c.Reference.Text)
	}
}

// printHighlights prints the runs of the current page that carry a mark.
func printHighlights(cmd *cobra.Command, board driving.BoardService, matches int) error {
	page, runs, err := board.Surface(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Println()
	if matches == 0 {
		cmd.Printf("Passage not found on page %d.\n", page)
		return nil
	}
	cmd.Printf("Page %d (%d matches):\n", page, matches)
	for _, run := range runs {
		if run.Markup != domain.EscapeText(run.Text) {
			cmd.Printf("  %s\n", run.Markup)
		}
	}
	return nil
}

func contextWithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
