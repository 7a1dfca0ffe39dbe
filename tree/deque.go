package tree

import "sync"

// deque is a double ended queue of tasks. The owning worker uses the bottom
// end, thieves use the top end. Contention is low: thieves only show up
// when they ran out of work.
type deque struct {
	mu    sync.Mutex
	tasks []Task
	head  int // index of the top element
}

func (d *deque) pushBottom(t Task) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.head > 0 && d.head == len(d.tasks) { // empty: re-use the buffer
		d.tasks = d.tasks[:0]
		d.head = 0
	}
	d.tasks = append(d.tasks, t)
}

func (d *deque) popBottom() Task {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.tasks) == d.head {
		return nil
	}
	t := d.tasks[len(d.tasks)-1]
	d.tasks[len(d.tasks)-1] = nil
	d.tasks = d.tasks[:len(d.tasks)-1]
	return t
}

func (d *deque) popTop() Task {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.tasks) == d.head {
		return nil
	}
	t := d.tasks[d.head]
	d.tasks[d.head] = nil
	d.head++
	return t
}

func (d *deque) size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks) - d.head
}
