package scheduler

import (
	"sync"
	"time"

	"github.com/warpdl/knot/internal/tasks"
	"github.com/warpdl/knot/internal/timers"
	"github.com/warpdl/knot/pkg/logger"
)

// DefaultMinInterval is the floor applied to periodic intervals.
const DefaultMinInterval = time.Millisecond

// Options configures a Scheduler. The zero value is usable.
type Options struct {
	// MinInterval clamps periodic intervals from below. Zero means
	// DefaultMinInterval.
	MinInterval time.Duration
	Logger      logger.Logger
}

// Scheduler owns the task table and the ready queue and spawns the timer
// workers that feed the queue.
type Scheduler struct {
	table       *tasks.Table
	queue       *tasks.Queue
	workers     *timers.Group
	minInterval time.Duration
	l           logger.Logger

	// links maps a timer to its callback and back, so CancelTimer still
	// finds a callback whose Once entry was already claimed.
	linkMu  sync.Mutex
	timerCb map[tasks.ID]tasks.ID
	cbTimer map[tasks.ID]tasks.ID
}

// Stats is a point-in-time snapshot used for diagnostics.
type Stats struct {
	Registered int
	Queued     int
	Live       int64
}

func New(opts Options) *Scheduler {
	if opts.MinInterval <= 0 {
		opts.MinInterval = DefaultMinInterval
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}
	q := tasks.NewQueue()
	return &Scheduler{
		table:       tasks.NewTable(),
		queue:       q,
		workers:     timers.NewGroup(q),
		minInterval: opts.MinInterval,
		l:           opts.Logger,
		timerCb:     make(map[tasks.ID]tasks.ID),
		cbTimer:     make(map[tasks.ID]tasks.ID),
	}
}

func (s *Scheduler) link(timer, cb tasks.ID) {
	s.linkMu.Lock()
	s.timerCb[timer] = cb
	s.cbTimer[cb] = timer
	s.linkMu.Unlock()
}

func (s *Scheduler) unlinkTimer(timer tasks.ID) (tasks.ID, bool) {
	s.linkMu.Lock()
	defer s.linkMu.Unlock()
	cb, ok := s.timerCb[timer]
	if ok {
		delete(s.timerCb, timer)
		delete(s.cbTimer, cb)
	}
	return cb, ok
}

func (s *Scheduler) unlinkCallback(cb tasks.ID) {
	s.linkMu.Lock()
	if timer, ok := s.cbTimer[cb]; ok {
		delete(s.cbTimer, cb)
		delete(s.timerCb, timer)
	}
	s.linkMu.Unlock()
}

// ScheduleOnce registers cb and a Once timer referencing it, arms one
// worker and returns the timer's ID.
func (s *Scheduler) ScheduleOnce(cb tasks.Callback, timeout time.Duration) tasks.ID {
	if timeout < 0 {
		timeout = 0
	}
	cb.Retain = false
	cbID := s.table.Register(tasks.NewCallback(cb))
	id := s.table.Register(tasks.NewOnce(timeout, cbID))
	s.link(id, cbID)
	s.workers.Spawn(id, timeout)
	s.l.Debug("scheduled once id=%d callback=%d timeout=%s", id, cbID, timeout)
	return id
}

// SchedulePeriodic registers cb and a Periodic timer referencing it and
// arms the first worker. The loop re-arms the timer each time it fires.
func (s *Scheduler) SchedulePeriodic(cb tasks.Callback, interval time.Duration) tasks.ID {
	if interval < s.minInterval {
		s.l.Debug("periodic interval %s raised to %s", interval, s.minInterval)
		interval = s.minInterval
	}
	cb.Retain = true
	cbID := s.table.Register(tasks.NewCallback(cb))
	id := s.table.Register(tasks.NewPeriodic(interval, cbID))
	s.link(id, cbID)
	s.workers.Spawn(id, interval)
	s.l.Debug("scheduled periodic id=%d callback=%d interval=%s", id, cbID, interval)
	return id
}

// ScheduleScript registers source as a Script task and queues it for the
// next drain.
func (s *Scheduler) ScheduleScript(name, source string) tasks.ID {
	id := s.table.Register(tasks.NewScript(name, source))
	s.queue.Push(id)
	s.l.Debug("queued script id=%d name=%s", id, name)
	return id
}

// Cancel removes exactly id from the table. Ids that already fired, were
// already cancelled or were never issued are ignored.
func (s *Scheduler) Cancel(id tasks.ID) {
	s.table.Cancel(id)
}

// CancelTimer cancels a Once or Periodic timer together with the callback
// it references, so a callback whose timer entry has already fired but
// which is still queued never runs. Other ids behave as in Cancel.
func (s *Scheduler) CancelTimer(id tasks.ID) {
	s.table.Cancel(id)
	if cb, ok := s.unlinkTimer(id); ok {
		s.table.Cancel(cb)
		s.l.Debug("cancelled timer id=%d callback=%d", id, cb)
	}
}

// Claim is the dispatch-time lookup used by the event loop; see
// tasks.Table.Claim. Claiming a one-shot callback drops its timer link.
func (s *Scheduler) Claim(id tasks.ID) (tasks.Task, bool) {
	task, ok := s.table.Claim(id)
	if ok && task.Kind == tasks.KindCallback && !task.Callback.Retain {
		s.unlinkCallback(id)
	}
	return task, ok
}

// HasPendingWork reports whether the ready queue holds an ID or a timer
// worker is still sleeping.
func (s *Scheduler) HasPendingWork() bool {
	// live first: a worker pushes before it releases its token, so once
	// live reads zero every expiry it carried is visible in the queue
	if s.workers.Live() > 0 {
		return true
	}
	return s.queue.Len() > 0
}

// Enqueue pushes id onto the ready queue for immediate dispatch.
func (s *Scheduler) Enqueue(id tasks.ID) {
	s.queue.Push(id)
}

// Rearm spawns a fresh worker for an already registered timer.
func (s *Scheduler) Rearm(id tasks.ID, d time.Duration) {
	s.workers.Spawn(id, d)
}

func (s *Scheduler) Table() *tasks.Table { return s.table }
func (s *Scheduler) Queue() *tasks.Queue { return s.queue }

func (s *Scheduler) Stats() Stats {
	return Stats{
		Registered: s.table.Len(),
		Queued:     s.queue.Len(),
		Live:       s.workers.Live(),
	}
}

// Wait blocks until every timer worker spawned so far has published.
// Workers of cancelled timers are included.
func (s *Scheduler) Wait() {
	s.workers.Wait()
}
