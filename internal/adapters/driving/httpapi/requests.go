package httpapi

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// SubmitRequest creates a chunk.
type SubmitRequest struct {
	Query string `json:"query" validate:"required"`
	Kind  string `json:"kind" validate:"omitempty,oneof=text image"`

	// Wait holds the response until the answer has arrived.
	Wait bool `json:"wait"`
}

// PositionRequest moves a chunk. Phase marks drag gestures; an empty phase
// is a programmatic move, which is ignored while the chunk is dragged.
type PositionRequest struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Phase string  `json:"phase" validate:"omitempty,oneof=begin drag end"`
}

// ResizeRequest grows (1) or shrinks (-1) a chunk.
type ResizeRequest struct {
	Direction int `json:"direction" validate:"required,oneof=-1 1"`
}

// FontRequest changes the font size by Delta.
type FontRequest struct {
	Delta int `json:"delta" validate:"required,ne=0"`
}

// ConnectRequest links two chunks.
type ConnectRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// PageRequest switches the rendered page.
type PageRequest struct {
	Page int `json:"page" validate:"required,gte=1"`
}

// OpenRequest opens a document from the server's file system.
type OpenRequest struct {
	Path string `json:"path" validate:"required"`
}

// validateRequest returns a field to message map, or nil if v is valid.
func validateRequest(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"request": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, e := range verrs {
		out[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
	}
	return out
}
