// Package tasks holds the task descriptors of a knot runtime and the two
// shared structures built around them: the Table, which owns every
// registered task keyed by a generated ID, and the Queue, a FIFO of IDs
// whose time has come and that wait to be dispatched on the loop goroutine.
//
// The Queue only ever carries IDs. A queued ID is a claim, not a guarantee:
// the Table entry may have been cancelled between enqueue and dequeue, and
// the Table lookup at dispatch time is authoritative.
package tasks
