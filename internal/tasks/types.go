package tasks

import (
	"fmt"
	"time"
)

// ID is an opaque task handle. IDs are issued by a Table from a
// monotonically increasing counter starting at 1 and are never reused.
type ID int64

// Handle is an opaque reference to an engine function.
type Handle any

// Value is an opaque reference to an engine value.
type Value any

// Kind tags the shape of a Task.
type Kind uint8

const (
	KindOnce Kind = iota + 1
	KindPeriodic
	KindCallback
	KindScript
)

func (k Kind) String() string {
	switch k {
	case KindOnce:
		return "once"
	case KindPeriodic:
		return "periodic"
	case KindCallback:
		return "callback"
	case KindScript:
		return "script"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Once fires its callback a single time after Timeout.
type Once struct {
	Timeout  time.Duration
	Callback ID
}

// Periodic fires its callback every Interval until cancelled.
type Periodic struct {
	Interval time.Duration
	Callback ID
}

// Callback is a unit of work invoked inside the engine.
// Retain keeps the entry registered after it is dispatched; it is set
// for callbacks owned by a Periodic task.
type Callback struct {
	Handle Handle
	Args   []Value
	Retain bool
}

// Script is raw source compiled and run inside the engine.
type Script struct {
	Name   string
	Source string
}

// Task is a tagged variant. Exactly one of the payload pointers matching
// Kind is set; use the constructors below rather than building it by hand.
type Task struct {
	Kind     Kind
	Once     *Once
	Periodic *Periodic
	Callback *Callback
	Script   *Script
}

func NewOnce(timeout time.Duration, callback ID) Task {
	return Task{Kind: KindOnce, Once: &Once{Timeout: timeout, Callback: callback}}
}

func NewPeriodic(interval time.Duration, callback ID) Task {
	return Task{Kind: KindPeriodic, Periodic: &Periodic{Interval: interval, Callback: callback}}
}

func NewCallback(cb Callback) Task {
	return Task{Kind: KindCallback, Callback: &cb}
}

func NewScript(name, source string) Task {
	return Task{Kind: KindScript, Script: &Script{Name: name, Source: source}}
}

// clone returns a deep enough copy that the caller can use the task
// without holding the table lock. Engine references are shared.
func (t Task) clone() Task {
	out := Task{Kind: t.Kind}
	switch {
	case t.Once != nil:
		o := *t.Once
		out.Once = &o
	case t.Periodic != nil:
		p := *t.Periodic
		out.Periodic = &p
	case t.Callback != nil:
		c := *t.Callback
		c.Args = append([]Value(nil), t.Callback.Args...)
		out.Callback = &c
	case t.Script != nil:
		s := *t.Script
		out.Script = &s
	}
	return out
}

// detachOnClaim reports whether Claim removes the task from the table.
func (t Task) detachOnClaim() bool {
	switch t.Kind {
	case KindOnce, KindScript:
		return true
	case KindCallback:
		return !t.Callback.Retain
	}
	return false
}
