// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pdfboard/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pdfboard/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pdfboard/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pdfboard/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateReady State = "ready"
	StateBusy  State = "busy"
	StateError State = "error"
	StateInfo  State = "info"
)

// Bar displays application status and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	mode    messages.Mode
	message string
	view    domain.DocumentView
	upload  domain.UploadStatus
	pending int
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		mode:   messages.ModeBoard,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	if msg, ok := msg.(messages.ModeChanged); ok {
		s.mode = msg.Mode
	}
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the state, page and upload summary.
func (s *Bar) renderLeft() string {
	var parts []string

	switch s.state {
	case StateBusy:
		msg := s.message
		if msg == "" {
			msg = "Working..."
		}
		parts = append(parts, s.styles.Muted.Render(msg))
	case StateError:
		if s.message != "" {
			parts = append(parts, s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message)))
		} else {
			parts = append(parts, s.styles.Error.Render("Error"))
		}
	case StateInfo:
		parts = append(parts, s.styles.Normal.Render(s.message))
	default:
		parts = append(parts, s.styles.Muted.Render("Ready"))
	}

	if s.view.IsOpen() {
		parts = append(parts, s.styles.Normal.Render(fmt.Sprintf("p. %d/%d", s.view.CurrentPage, s.view.PageCount)))
	}
	if s.pending > 0 {
		parts = append(parts, s.styles.Warning.Render(fmt.Sprintf("%d pending", s.pending)))
	}
	if s.upload.State == domain.UploadUploading || s.upload.State == domain.UploadFailed {
		style := s.styles.Warning
		if s.upload.State == domain.UploadFailed {
			style = s.styles.Error
		}
		parts = append(parts, style.Render(s.upload.State.Description()))
	}

	return strings.Join(parts, s.styles.Muted.Render(" · "))
}

// renderRight renders keybinding hints for the current mode.
func (s *Bar) renderRight() string {
	var bindings []key.Binding
	switch s.mode {
	case messages.ModeInput:
		bindings = s.keymap.InputHelp()
	case messages.ModeLink:
		bindings = s.keymap.LinkHelp()
	case messages.ModeConfirmDelete:
		bindings = s.keymap.ConfirmHelp()
	case messages.ModeHelp:
		bindings = []key.Binding{s.keymap.Cancel, s.keymap.Quit}
	default:
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMode sets the mode whose keybindings are hinted.
func (s *Bar) SetMode(mode messages.Mode) {
	s.mode = mode
}

// Mode returns the hinted mode.
func (s *Bar) Mode() messages.Mode {
	return s.mode
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetDocument sets the page and upload state shown.
func (s *Bar) SetDocument(view domain.DocumentView, upload domain.UploadStatus) {
	s.view = view
	s.upload = upload
}

// SetPending sets the number of chunks awaiting an answer.
func (s *Bar) SetPending(count int) {
	s.pending = count
}

// Pending returns the number of chunks awaiting an answer.
func (s *Bar) Pending() int {
	return s.pending
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar state and message.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
}
