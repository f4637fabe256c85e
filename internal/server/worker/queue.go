// Package worker runs the asynchronous side of the pipeline: an in-process
// task queue consumed by a fixed pool of goroutines, plus a sweeper that
// re-enqueues notes stuck in PROCESSING. Tasks carry only the note id;
// duplicate delivery is safe because status transitions are guarded by the
// repository's optimistic check.
package worker

// Queue is a bounded in-process task queue of note ids.
type Queue struct {
	tasks chan string
}

func NewQueue(size int) *Queue {
	return &Queue{tasks: make(chan string, size)}
}

// Enqueue schedules noteID without blocking. It returns false when the queue
// is full; the caller may rely on the sweeper to pick the note up later.
func (q *Queue) Enqueue(noteID string) bool {
	select {
	case q.tasks <- noteID:
		return true
	default:
		return false
	}
}
