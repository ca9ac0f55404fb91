package sequencer

// taskQueue holds work deferred until the current tick has issued all of
// its triggers. Tasks run in the order they were deferred.
type taskQueue struct {
	tasks []func()
}

func (q *taskQueue) Defer(fn func()) {
	q.tasks = append(q.tasks, fn)
}

// Flush runs every queued task. Tasks deferred while flushing run in the
// same flush.
func (q *taskQueue) Flush() {
	for i := 0; i < len(q.tasks); i++ {
		q.tasks[i]()
	}
	clear(q.tasks)
	q.tasks = q.tasks[:0]
}

func (q *taskQueue) Len() int {
	return len(q.tasks)
}
