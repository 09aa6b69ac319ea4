package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMode_String(t *testing.T) {
	tests := []struct {
		mode     Mode
		expected string
	}{
		{ModeBoard, "board"},
		{ModeInput, "input"},
		{ModeLink, "link"},
		{ModeConfirmDelete, "confirm_delete"},
		{ModeHelp, "help"},
		{Mode(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.mode.String())
		})
	}
}

func TestMode_BoardIsZeroValue(t *testing.T) {
	var m Mode
	assert.Equal(t, ModeBoard, m)
}
