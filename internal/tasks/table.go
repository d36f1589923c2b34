package tasks

import "sync"

// Table owns all registered tasks. It is safe for concurrent use; every
// method holds the lock only for a single map operation.
type Table struct {
	mu     sync.Mutex
	tasks  map[ID]Task
	nextID ID
}

func NewTable() *Table {
	return &Table{tasks: make(map[ID]Task)}
}

// Register inserts task and returns its freshly issued ID.
func (t *Table) Register(task Task) ID {
	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.tasks[id] = task
	t.mu.Unlock()
	return id
}

// LookupAndRemove detaches and returns the task stored under id.
func (t *Table) LookupAndRemove(id ID) (Task, bool) {
	t.mu.Lock()
	task, ok := t.tasks[id]
	if ok {
		delete(t.tasks, id)
	}
	t.mu.Unlock()
	return task, ok
}

// LookupClone returns a copy of the task stored under id, leaving it
// registered.
func (t *Table) LookupClone(id ID) (Task, bool) {
	t.mu.Lock()
	task, ok := t.tasks[id]
	t.mu.Unlock()
	if !ok {
		return Task{}, false
	}
	return task.clone(), true
}

// Claim is the dispatch-time lookup. One-shot tasks (Once, Script and
// callbacks without Retain) are detached; Periodic tasks and retained
// callbacks are cloned and stay registered.
func (t *Table) Claim(id ID) (Task, bool) {
	t.mu.Lock()
	task, ok := t.tasks[id]
	if ok && task.detachOnClaim() {
		delete(t.tasks, id)
	}
	t.mu.Unlock()
	if !ok {
		return Task{}, false
	}
	return task.clone(), true
}

// Cancel removes id. Unknown ids are ignored.
func (t *Table) Cancel(id ID) {
	t.mu.Lock()
	delete(t.tasks, id)
	t.mu.Unlock()
}

func (t *Table) Contains(id ID) bool {
	t.mu.Lock()
	_, ok := t.tasks[id]
	t.mu.Unlock()
	return ok
}

func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tasks)
}
