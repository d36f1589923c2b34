// Package timers spawns the background workers that compute timer expiry.
//
// Each armed timer gets its own goroutine which sleeps for the configured
// duration, publishes the timer's ID to the ready queue and exits. Nothing
// is ever delivered to a sleeping worker: a cancelled timer still wakes and
// still publishes, and the dispatcher discards the stale ID.
package timers

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/warpdl/knot/internal/tasks"
)

// Publisher receives expired timer IDs. *tasks.Queue satisfies it.
type Publisher interface {
	Push(id tasks.ID)
}

// Group tracks the workers spawned for one scheduler.
type Group struct {
	out Publisher
	// live counts workers holding a token, i.e. still sleeping or about
	// to publish.
	live atomic.Int64
	wg   sync.WaitGroup
	// sleep is replaced in tests.
	sleep func(time.Duration)
}

func NewGroup(out Publisher) *Group {
	return &Group{out: out, sleep: time.Sleep}
}

// Spawn starts a worker that publishes id after d. Negative durations
// are treated as zero.
func (g *Group) Spawn(id tasks.ID, d time.Duration) {
	if d < 0 {
		d = 0
	}
	// take the token before the goroutine starts so a caller checking
	// Live right after Spawn never misses this worker
	g.live.Add(1)
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		g.sleep(d)
		// publish before releasing: queue length and live count must
		// never both read zero while an expiry is in transit
		g.out.Push(id)
		g.live.Add(-1)
	}()
}

// Live returns the number of workers that have not yet published.
func (g *Group) Live() int64 {
	return g.live.Load()
}

// Wait blocks until every spawned worker has published.
func (g *Group) Wait() {
	g.wg.Wait()
}
