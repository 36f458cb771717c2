package core

import (
	"errors"
	"fmt"
)

// ErrIllegalTransition signals a bug in the pipeline sequencing.
var ErrIllegalTransition = errors.New("illegal pipeline state transition")

// PipelineError reports which stage of which run failed. It unwraps to the
// stage's own error.
type PipelineError struct {
	Stage Stage
	State State
	RunID string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline %s failed in %s stage (%s): %v", e.RunID, e.Stage, e.State, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// TransitionError describes a rejected state change.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%v: %s -> %s", ErrIllegalTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}
