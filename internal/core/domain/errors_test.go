package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrEmptyQuery", ErrEmptyQuery},
		{"ErrUnsupportedKind", ErrUnsupportedKind},
		{"ErrPageOutOfRange", ErrPageOutOfRange},
		{"ErrNoDocument", ErrNoDocument},
		{"ErrBackendUnavailable", ErrBackendUnavailable},
		{"ErrNoPendingDelete", ErrNoPendingDelete},
		{"ErrUploadInProgress", ErrUploadInProgress},
		{"ErrBoardClosed", ErrBoardClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_Distinct(t *testing.T) {
	all := []error{
		ErrNotFound, ErrInvalidInput, ErrEmptyQuery, ErrUnsupportedKind,
		ErrPageOutOfRange, ErrNoDocument, ErrBackendUnavailable,
		ErrNoPendingDelete, ErrUploadInProgress, ErrBoardClosed,
	}
	for i, a := range all {
		for j, b := range all {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}

func TestErrors_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("go to page 9: %w", ErrPageOutOfRange)

	assert.True(t, errors.Is(wrapped, ErrPageOutOfRange))
	assert.Contains(t, wrapped.Error(), "page out of range")
}
