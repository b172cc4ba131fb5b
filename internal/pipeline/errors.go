package pipeline

import (
	"errors"
	"fmt"
)

// ErrEmptyTopic rejects runs whose topic is empty after trimming. Checked
// before any network activity.
var ErrEmptyTopic = errors.New("topic is empty")

// ErrTopicTooLong rejects topics above the accepted ceiling.
var ErrTopicTooLong = errors.New("topic exceeds maximum length")

// ErrInsufficientSources indicates too few usable sources survived
// extraction and ranking for synthesis to be worthwhile.
var ErrInsufficientSources = errors.New("insufficient usable sources")

// StageError wraps a failure with the stage it occurred in, so callers can
// report where a run stopped while still unwrapping to the underlying cause
// with errors.Is and errors.As.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func (o *Orchestrator) fail(stage Stage, err error) error {
	o.emit(StageFailed, 0)
	return &StageError{Stage: stage, Err: err}
}
