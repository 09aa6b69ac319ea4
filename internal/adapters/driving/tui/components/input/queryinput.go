// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pdfboard/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pdfboard/internal/core/domain"
)

// QueryInput wraps a bubbles textinput with the kind of answer to ask for.
type QueryInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	kind      domain.ContentKind
	width     int
}

// NewQueryInput creates a new query input component. It starts blurred.
func NewQueryInput(s *styles.Styles) *QueryInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.CharLimit = 512
	ti.Width = 50

	q := &QueryInput{
		textinput: ti,
		styles:    s,
		kind:      domain.KindText,
		width:     50,
	}
	q.updatePlaceholder()
	return q
}

// Init initialises the query input.
func (q *QueryInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (q *QueryInput) Update(msg tea.Msg) (*QueryInput, tea.Cmd) {
	var cmd tea.Cmd
	q.textinput, cmd = q.textinput.Update(msg)
	return q, cmd
}

// View renders the query input.
func (q *QueryInput) View() string {
	label := q.styles.Title.Render("Ask: ")
	if q.kind == domain.KindImage {
		label = q.styles.Title.Render("Draw: ")
	}
	field := q.styles.InputField.Render(q.textinput.View())
	kind := q.styles.Muted.Render(" [" + q.kind.String() + "]")
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field, kind)
}

// ToggleKind switches between text and image queries.
func (q *QueryInput) ToggleKind() {
	if q.kind == domain.KindText {
		q.kind = domain.KindImage
	} else {
		q.kind = domain.KindText
	}
	q.updatePlaceholder()
}

// Kind returns the kind of answer the query asks for.
func (q *QueryInput) Kind() domain.ContentKind {
	return q.kind
}

func (q *QueryInput) updatePlaceholder() {
	if q.kind == domain.KindImage {
		q.textinput.Placeholder = "Describe an image..."
	} else {
		q.textinput.Placeholder = "Ask about the document..."
	}
}

// Value returns the current input value.
func (q *QueryInput) Value() string {
	return q.textinput.Value()
}

// SetValue sets the input value.
func (q *QueryInput) SetValue(value string) {
	q.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (q *QueryInput) Focus() tea.Cmd {
	return q.textinput.Focus()
}

// Blur removes focus from the input.
func (q *QueryInput) Blur() {
	q.textinput.Blur()
}

// Focused returns whether the input is focused.
func (q *QueryInput) Focused() bool {
	return q.textinput.Focused()
}

// SetWidth sets the width of the input.
func (q *QueryInput) SetWidth(width int) {
	q.width = width
	// Account for label, kind tag and padding
	inputWidth := width - 20
	if inputWidth < 20 {
		inputWidth = 20
	}
	q.textinput.Width = inputWidth
}

// Width returns the current width.
func (q *QueryInput) Width() int {
	return q.width
}

// Reset clears the input. The kind is kept.
func (q *QueryInput) Reset() {
	q.textinput.Reset()
}
