package tui

import "errors"

// ErrMissingBoardService is returned when the board service is not provided.
var ErrMissingBoardService = errors.New("tui: board service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
