package knot

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dop251/goja"

	"github.com/warpdl/knot/internal/eventloop"
	"github.com/warpdl/knot/internal/tasks"
)

var checkpointProgram = goja.MustCompile("<checkpoint>", "", false)

// CompileAndRun implements eventloop.Engine.
func (r *Runtime) CompileAndRun(name, source string) error {
	prg, err := goja.Compile(name, source, r.strict)
	if err != nil {
		return diagnose(err)
	}
	if _, err := r.RunProgram(prg); err != nil {
		return diagnose(err)
	}
	return nil
}

// Invoke implements eventloop.Engine. fn must be a goja.Callable and
// receiver and args goja values, as registered by the host functions.
func (r *Runtime) Invoke(fn tasks.Handle, receiver tasks.Value, args []tasks.Value) (tasks.Value, error) {
	callable, ok := fn.(goja.Callable)
	if !ok {
		return nil, fmt.Errorf("invoke: %T is not callable", fn)
	}
	this, _ := receiver.(goja.Value)
	if this == nil {
		this = goja.Undefined()
	}
	jsArgs := make([]goja.Value, len(args))
	for i, a := range args {
		v, ok := a.(goja.Value)
		if !ok {
			v = r.ToValue(a)
		}
		jsArgs[i] = v
	}
	v, err := callable(this, jsArgs...)
	if err != nil {
		return nil, diagnose(err)
	}
	return v, nil
}

// Global implements eventloop.Engine.
func (r *Runtime) Global() tasks.Value {
	return r.GlobalObject()
}

// MicrotaskCheckpoint implements eventloop.Engine. goja drains its job
// queue whenever the outermost run returns, so running an empty program
// flushes anything enqueued from host code. Rejections still unhandled
// afterwards are reported.
func (r *Runtime) MicrotaskCheckpoint() {
	if _, err := r.RunProgram(checkpointProgram); err != nil {
		r.l.Warning("microtask checkpoint: %v", err)
	}
	for _, reason := range r.rejections.drain() {
		r.l.Warning("Unhandled promise rejection: %s", reason)
	}
}

var _ eventloop.Engine = (*Runtime)(nil)

// diagnose turns an engine error into one carrying the formatted
// diagnostic: the exception with its stack for throws, the compiler
// message for syntax errors.
func diagnose(err error) error {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return &ScriptError{Message: ex.String(), err: err}
	}
	return &ScriptError{Message: err.Error(), err: err}
}

// ScriptError is returned by the engine methods when a script throws or
// fails to compile.
type ScriptError struct {
	Message string
	err     error
}

func (e *ScriptError) Error() string { return e.Message }
func (e *ScriptError) Unwrap() error { return e.err }

// rejectionTracker records promises rejected without a handler. goja
// reports a late handler with a second operation, so a promise is only
// reported if it is still unhandled at the next checkpoint.
type rejectionTracker struct {
	mu      sync.Mutex
	pending map[*goja.Promise]struct{}
	order   []*goja.Promise
}

func newRejectionTracker() *rejectionTracker {
	return &rejectionTracker{pending: make(map[*goja.Promise]struct{})}
}

func (t *rejectionTracker) track(p *goja.Promise, op goja.PromiseRejectionOperation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch op {
	case goja.PromiseRejectionReject:
		if _, ok := t.pending[p]; !ok {
			t.pending[p] = struct{}{}
			t.order = append(t.order, p)
		}
	case goja.PromiseRejectionHandle:
		delete(t.pending, p)
	}
}

func (t *rejectionTracker) drain() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for _, p := range t.order {
		if _, ok := t.pending[p]; !ok {
			continue
		}
		reason := "undefined"
		if res := p.Result(); res != nil {
			reason = res.String()
		}
		out = append(out, reason)
	}
	t.pending = make(map[*goja.Promise]struct{})
	t.order = t.order[:0]
	return out
}
