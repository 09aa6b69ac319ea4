// Package page renders the current document page with its highlights.
package page

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pdfboard/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pdfboard/internal/core/domain"
)

// markPattern matches the highlight marks written by the board.
var markPattern = regexp.MustCompile(`(?s)<mark style="background: ([^;"]*);?">(.*?)</mark>`)

// Panel shows the text runs of the current page.
type Panel struct {
	styles *styles.Styles
	view   domain.DocumentView
	runs   []domain.TextRun
	upload domain.UploadStatus
	width  int
	height int
}

// NewPanel creates a page panel.
func NewPanel(s *styles.Styles) *Panel {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Panel{
		styles: s,
		width:  60,
		height: 20,
	}
}

// SetPage replaces the page shown.
func (p *Panel) SetPage(view domain.DocumentView, runs []domain.TextRun) {
	p.view = view
	p.runs = runs
}

// SetUpload sets the document upload status shown in the header.
func (p *Panel) SetUpload(status domain.UploadStatus) {
	p.upload = status
}

// View renders the panel.
func (p *Panel) View() string {
	if !p.view.IsOpen() {
		return p.styles.Muted.Render("No document open")
	}

	header := p.styles.Subtitle.Render(fmt.Sprintf("Page %d of %d", p.view.CurrentPage, p.view.PageCount))
	if state := p.upload.State; state != "" && state != domain.UploadReady {
		header += "  " + p.uploadStyle().Render(state.Description())
	}

	lines := []string{header, ""}
	width := max(p.width-2, 20)
	for _, run := range p.runs {
		lines = append(lines, p.renderRun(run, width))
	}

	// Keep the first highlighted run in view.
	body := strings.Split(strings.Join(lines[2:], "\n"), "\n")
	limit := max(p.height-2, 1)
	if len(body) > limit {
		start := min(p.firstMarkedLine(width), len(body)-limit)
		body = body[start : start+limit]
	}
	return strings.Join(append(lines[:2], body...), "\n")
}

func (p *Panel) uploadStyle() lipgloss.Style {
	if p.upload.State == domain.UploadFailed {
		return p.styles.Error
	}
	return p.styles.Warning
}

// renderRun renders one run, colouring every marked passage.
func (p *Panel) renderRun(run domain.TextRun, width int) string {
	markup := run.Markup
	if markup == "" {
		markup = domain.EscapeText(run.Text)
	}

	var b strings.Builder
	last := 0
	for _, m := range markPattern.FindAllStringSubmatchIndex(markup, -1) {
		b.WriteString(p.styles.Normal.Render(html.UnescapeString(markup[last:m[0]])))
		color := markup[m[2]:m[3]]
		text := html.UnescapeString(markup[m[4]:m[5]])
		b.WriteString(p.styles.Mark(color).Render(text))
		last = m[1]
	}
	b.WriteString(p.styles.Normal.Render(html.UnescapeString(markup[last:])))

	return lipgloss.NewStyle().Width(width).Render(b.String())
}

// firstMarkedLine returns the rendered line index of the first highlight.
func (p *Panel) firstMarkedLine(width int) int {
	line := 0
	for _, run := range p.runs {
		if run.Highlighted() {
			return line
		}
		line += lipgloss.Height(p.renderRun(run, width))
	}
	return 0
}

// Marked reports whether any run on the page carries a highlight.
func (p *Panel) Marked() bool {
	for _, run := range p.runs {
		if run.Highlighted() {
			return true
		}
	}
	return false
}

// SetDimensions sets the component dimensions.
func (p *Panel) SetDimensions(width, height int) {
	p.width = width
	p.height = height
}
