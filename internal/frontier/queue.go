package frontier

import "sync"

// Queue is the FIFO task frontier shared by the dispatcher and workers.
type Queue struct {
	totalQueued int
	elements    []Task
	mu          sync.Mutex
}

func NewQueue() *Queue {
	return &Queue{
		elements: make([]Task, 0),
	}
}

func (q *Queue) Enqueue(t Task) {
	q.mu.Lock()
	q.elements = append(q.elements, t)
	q.totalQueued++
	q.mu.Unlock()
}

// Pop removes and returns the oldest task.
func (q *Queue) Pop() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.elements) == 0 {
		return Task{}, false
	}
	t := q.elements[0]
	q.elements = q.elements[1:]
	return t, true
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.elements)
}

// TotalQueued counts every task ever enqueued, including ones already popped.
func (q *Queue) TotalQueued() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.totalQueued
}
