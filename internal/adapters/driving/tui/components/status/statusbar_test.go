package status

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfboard/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pdfboard/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pdfboard/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pdfboard/internal/core/domain"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, messages.ModeBoard, bar.Mode())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
	assert.Nil(t, bar.Init())
}

func TestStatusBar_Update_ModeChanged(t *testing.T) {
	bar := NewBar(nil, nil)

	updated, cmd := bar.Update(messages.ModeChanged{Mode: messages.ModeLink})

	assert.Equal(t, bar, updated)
	assert.Nil(t, cmd)
	assert.Equal(t, messages.ModeLink, bar.Mode())

	bar.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, messages.ModeLink, bar.Mode())
}

func TestStatusBar_View_States(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		message  string
		expected string
	}{
		{"ready", StateReady, "", "Ready"},
		{"busy default", StateBusy, "", "Working..."},
		{"busy message", StateBusy, "Asking...", "Asking..."},
		{"error", StateError, "", "Error"},
		{"error message", StateError, "backend down", "Error: backend down"},
		{"info", StateInfo, "2 passages highlighted", "2 passages highlighted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(200)
			bar.SetState(tt.state)
			bar.SetMessage(tt.message)

			assert.Contains(t, bar.View(), tt.expected)
		})
	}
}

func TestStatusBar_View_ModeHints(t *testing.T) {
	tests := []struct {
		mode     messages.Mode
		expected string
	}{
		{messages.ModeBoard, "/: ask"},
		{messages.ModeInput, "tab: text/image"},
		{messages.ModeLink, "esc: cancel"},
		{messages.ModeConfirmDelete, "n: keep"},
		{messages.ModeHelp, "q: quit"},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(200)
			bar.SetMode(tt.mode)

			assert.Contains(t, bar.View(), tt.expected)
		})
	}
}

func TestStatusBar_View_Document(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(200)

	assert.NotContains(t, bar.View(), "p. ")

	bar.SetDocument(
		domain.DocumentView{Path: "paper.pdf", PageCount: 12, CurrentPage: 4},
		domain.UploadStatus{State: domain.UploadUploading},
	)
	bar.SetPending(2)

	view := bar.View()
	assert.Contains(t, view, "p. 4/12")
	assert.Contains(t, view, "2 pending")
	assert.Contains(t, view, "Uploading document")
	assert.Equal(t, 2, bar.Pending())

	bar.SetDocument(
		domain.DocumentView{Path: "paper.pdf", PageCount: 12, CurrentPage: 4},
		domain.UploadStatus{State: domain.UploadReady},
	)
	assert.NotContains(t, bar.View(), "Document ready")
}

func TestStatusBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
}
