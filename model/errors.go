package model

import (
	"errors"
	"fmt"
	"strings"
)

// User-visible texts. Details never reach the screen; they go to the debug log.
const (
	SolveFailureText = "Failed to generate solution. Please try again."
	ChatFailureText  = "Sorry, I encountered an error. Please try again."
)

var (
	// ErrEmptyInput is returned when neither prompt text nor an image was given.
	ErrEmptyInput = errors.New("prompt or image required")

	// ErrGeneration matches every failure of the solve path.
	ErrGeneration = errors.New("generation failed")

	// ErrBusy is returned when a solve is requested while one is in flight.
	ErrBusy = errors.New("a solve is already in progress")

	// ErrStreamClosed is returned when a fragment arrives after the stream ended.
	ErrStreamClosed = errors.New("stream already closed")
)

// GenerationError wraps a service, network or decoding failure on the solve path.
type GenerationError struct {
	Provider string
	Model    string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s (%s/%s): %v", ErrGeneration, e.Provider, e.Model, e.Err)
}

func (e *GenerationError) Unwrap() []error {
	return []error{ErrGeneration, e.Err}
}

// MalformedResponseError means the service returned JSON that does not have the
// requested shape.
type MalformedResponseError struct {
	Missing []string
}

func (e *MalformedResponseError) Error() string {
	return "malformed response: missing " + strings.Join(e.Missing, ", ")
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrGeneration
}

// FailureKind classifies a solve error for logs and API error codes.
func FailureKind(err error) string {
	var malformed *MalformedResponseError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.As(err, &malformed):
		return "malformed_response"
	case errors.Is(err, ErrGeneration):
		return "generation_failed"
	default:
		return "unknown"
	}
}
