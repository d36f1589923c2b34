package knot

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/warpdl/knot/internal/scheduler"
	"github.com/warpdl/knot/internal/tasks"
)

// maxDelayMs keeps a millisecond delay representable as a time.Duration.
const maxDelayMs = float64(math.MaxInt64 / int64(time.Millisecond))

func (r *Runtime) installHostFunctions() error {
	knot := r.NewObject()
	members := map[string]func(goja.FunctionCall) goja.Value{
		"log":           r.log,
		"schedule_task": r.setTimeout,
		"setTimeout":    r.setTimeout,
		"setInterval":   r.setInterval,
		"clearTimeout":  r.clearTimer,
		"clearInterval": r.clearTimer,
		"queueScript":   r.queueScript,
		"cronDelay":     r.cronDelay,
		"pending":       r.pending,
	}
	for name, fn := range members {
		if err := knot.Set(name, fn); err != nil {
			return err
		}
	}
	if err := r.Set(GLOBAL_NAMESPACE, knot); err != nil {
		return err
	}
	for _, name := range []string{"setTimeout", "setInterval", "clearTimeout", "clearInterval"} {
		if err := r.Set(name, members[name]); err != nil {
			return err
		}
	}
	return nil
}

// log prints its arguments separated by a single space.
func (r *Runtime) log(call goja.FunctionCall) goja.Value {
	parts := make([]string, len(call.Arguments))
	for i, v := range call.Arguments {
		parts[i] = v.String()
	}
	fmt.Fprintln(r.stdout, strings.Join(parts, " "))
	return goja.Undefined()
}

func (r *Runtime) setTimeout(call goja.FunctionCall) goja.Value {
	cb, delay := r.timerArgs("setTimeout", call)
	return r.ToValue(int64(r.sched.ScheduleOnce(cb, delay)))
}

func (r *Runtime) setInterval(call goja.FunctionCall) goja.Value {
	cb, interval := r.timerArgs("setInterval", call)
	return r.ToValue(int64(r.sched.SchedulePeriodic(cb, interval)))
}

// clearTimer backs both clearTimeout and clearInterval. Anything that is
// not a number is ignored, matching browsers.
func (r *Runtime) clearTimer(call goja.FunctionCall) goja.Value {
	v := call.Argument(0)
	if !isNumber(v) {
		return goja.Undefined()
	}
	f := v.ToFloat()
	if math.IsNaN(f) || f < 1 {
		return goja.Undefined()
	}
	r.sched.CancelTimer(tasks.ID(int64(f)))
	return goja.Undefined()
}

// queueScript(source[, name]) runs source as its own task on a later
// loop turn and returns the task id.
func (r *Runtime) queueScript(call goja.FunctionCall) goja.Value {
	src := call.Argument(0)
	if !isString(src) {
		panic(r.NewTypeError("queueScript: source must be a string"))
	}
	name := DEF_QUEUED_SCRIPT_NAME
	if n := call.Argument(1); !goja.IsUndefined(n) && !goja.IsNull(n) {
		name = n.String()
	}
	return r.ToValue(int64(r.sched.ScheduleScript(name, src.String())))
}

// cronDelay(expr) returns the milliseconds until expr next fires.
func (r *Runtime) cronDelay(call goja.FunctionCall) goja.Value {
	expr := call.Argument(0)
	if !isString(expr) {
		panic(r.NewTypeError("cronDelay: expression must be a string"))
	}
	d, err := scheduler.NextCronDelay(expr.String(), time.Now())
	if err != nil {
		panic(r.NewTypeError(fmt.Sprintf("cronDelay: %v: %q", err, expr.String())))
	}
	return r.ToValue(d.Milliseconds())
}

func (r *Runtime) pending(call goja.FunctionCall) goja.Value {
	return r.ToValue(r.sched.HasPendingWork())
}

// timerArgs validates (callback, delay, ...args). A non-function callback
// or a non-numeric delay throws a TypeError; a missing, NaN or negative
// delay means zero.
func (r *Runtime) timerArgs(name string, call goja.FunctionCall) (tasks.Callback, time.Duration) {
	fn, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		panic(r.NewTypeError(name + ": callback must be a function"))
	}
	var delay time.Duration
	if v := call.Argument(1); !goja.IsUndefined(v) && !goja.IsNull(v) {
		if !isNumber(v) {
			panic(r.NewTypeError(name + ": delay must be a number"))
		}
		ms := v.ToFloat()
		switch {
		case math.IsNaN(ms), ms < 0:
		case ms >= maxDelayMs:
			delay = time.Duration(math.MaxInt64)
		default:
			delay = time.Duration(ms * float64(time.Millisecond))
		}
	}
	var args []tasks.Value
	if len(call.Arguments) > 2 {
		args = make([]tasks.Value, 0, len(call.Arguments)-2)
		for _, a := range call.Arguments[2:] {
			args = append(args, a)
		}
	}
	return tasks.Callback{Handle: fn, Args: args}, delay
}

func isNumber(v goja.Value) bool {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return false
	}
	t := v.ExportType()
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Int64, reflect.Float64:
		return true
	}
	return false
}

func isString(v goja.Value) bool {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return false
	}
	t := v.ExportType()
	return t != nil && t.Kind() == reflect.String
}
