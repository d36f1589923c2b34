// Package scheduler is the public façade over a knot runtime's task
// table, ready queue and timer workers.
//
// Host functions call into a Scheduler to register timers and cancel
// them; the event loop uses it to claim tasks, re-arm periodic timers and
// decide whether any future work can still occur. Registration spawns one
// timer goroutine per armed timer. Cancellation only removes the table
// entry: the worker still wakes and publishes, and the loop discards the
// stale ID. The scheduler does not persist state.
package scheduler
