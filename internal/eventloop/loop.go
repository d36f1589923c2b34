// Package eventloop drains a scheduler's ready queue on the single engine
// goroutine.
//
// The loop alternates between two states. While the ready queue holds IDs
// it pops and dispatches them one at a time. Once the queue is empty it
// runs a microtask checkpoint and asks the scheduler whether any work can
// still occur: queued IDs or sleeping timer workers. If not, Run returns;
// otherwise it waits for the next push.
package eventloop

import (
	"context"
	"sync/atomic"

	"github.com/warpdl/knot/internal/scheduler"
	"github.com/warpdl/knot/internal/tasks"
	"github.com/warpdl/knot/pkg/logger"
)

type Loop struct {
	s      *scheduler.Scheduler
	engine Engine
	l      logger.Logger
	// dispatched counts ids that resolved to a live task.
	dispatched atomic.Uint64
	// stale counts ids whose task was gone at dispatch time.
	stale atomic.Uint64
}

func New(s *scheduler.Scheduler, engine Engine, l logger.Logger) *Loop {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Loop{s: s, engine: engine, l: l}
}

// Run dispatches until no future work can occur, the context is done or
// the engine fails. An engine failure is returned as *EngineError.
// Run must be called from the goroutine that owns the engine.
func (lp *Loop) Run(ctx context.Context) error {
	q := lp.s.Queue()
	for {
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			id, ok := q.Pop()
			if !ok {
				break
			}
			if err := lp.dispatch(id); err != nil {
				return err
			}
		}
		lp.engine.MicrotaskCheckpoint()

		if !lp.s.HasPendingWork() {
			lp.l.Debug("loop idle: dispatched=%d stale=%d", lp.dispatched.Load(), lp.stale.Load())
			return nil
		}
		if q.Len() > 0 {
			// a callback or continuation queued more work
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.Ready():
		}
	}
}

func (lp *Loop) dispatch(id tasks.ID) error {
	task, ok := lp.s.Claim(id)
	if !ok {
		lp.stale.Add(1)
		lp.l.Debug("dispatch id=%d: no task, skipped", id)
		return nil
	}
	lp.dispatched.Add(1)
	lp.l.Debug("dispatch id=%d kind=%s", id, task.Kind)

	switch task.Kind {
	case tasks.KindOnce:
		lp.s.Enqueue(task.Once.Callback)
	case tasks.KindPeriodic:
		lp.s.Enqueue(task.Periodic.Callback)
		lp.s.Rearm(id, task.Periodic.Interval)
	case tasks.KindCallback:
		cb := task.Callback
		if _, err := lp.engine.Invoke(cb.Handle, lp.engine.Global(), cb.Args); err != nil {
			return newEngineError(id, task.Kind, err)
		}
	case tasks.KindScript:
		if err := lp.engine.CompileAndRun(task.Script.Name, task.Script.Source); err != nil {
			return newEngineError(id, task.Kind, err)
		}
	}
	return nil
}

// Dispatched returns how many queued ids resolved to a live task.
func (lp *Loop) Dispatched() uint64 {
	return lp.dispatched.Load()
}

// Stale returns how many queued ids were skipped because their task had
// been cancelled.
func (lp *Loop) Stale() uint64 {
	return lp.stale.Load()
}
