package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies why a run stopped.
type Kind string

const (
	KindConfig    Kind = "config"
	KindAuth      Kind = "auth"
	KindGate      Kind = "gate"
	KindFetch     Kind = "fetch"
	KindSchema    Kind = "schema"
	KindTransform Kind = "transform"
	KindWrite     Kind = "write"

	// KindCleanup is never fatal; it only appears on Outcome.CleanupWarning.
	KindCleanup Kind = "cleanup"
)

// StageError is the error produced by a failing stage.
type StageError struct {
	Kind  Kind
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// KindOf returns the Kind carried by err, or "" when err is not a StageError.
func KindOf(err error) Kind {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
