package orchestrator

import (
	"errors"
	"fmt"
)

var (
	// ErrServiceUnavailable is returned before any upstream call when a
	// required service was not wired in.
	ErrServiceUnavailable = errors.New("orchestrator: required service unavailable")
	// ErrEmptyUtterance is returned when the utterance is empty or blank.
	ErrEmptyUtterance = errors.New("orchestrator: empty utterance")
)

// UpstreamError wraps a failure from a required pipeline stage.
type UpstreamError struct {
	Stage string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("orchestrator: %s stage failed: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
