package eventloop

import (
	"fmt"

	"github.com/warpdl/knot/internal/tasks"
)

// Engine is the script engine driven by a Loop. Every method is called
// on the loop goroutine only.
type Engine interface {
	// CompileAndRun compiles source and runs it to completion.
	CompileAndRun(name, source string) error
	// Invoke calls fn with receiver as this and args in order.
	Invoke(fn tasks.Handle, receiver tasks.Value, args []tasks.Value) (tasks.Value, error)
	// Global returns the receiver used for timer callbacks.
	Global() tasks.Value
	// MicrotaskCheckpoint drains queued continuation jobs synchronously.
	MicrotaskCheckpoint()
}

// EngineError reports a script that threw while the loop dispatched it.
// It is fatal: Run returns it and does not dispatch anything further.
type EngineError struct {
	TaskID tasks.ID
	Kind   tasks.Kind
	// Diagnostic is the engine's formatted message, stack included.
	Diagnostic string
	Err        error
}

func newEngineError(id tasks.ID, kind tasks.Kind, err error) *EngineError {
	return &EngineError{TaskID: id, Kind: kind, Diagnostic: err.Error(), Err: err}
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s task %d: %s", e.Kind, e.TaskID, e.Diagnostic)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}
