package tree

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// Tree operations will be carried out by concurrent worker goroutines.
// Every worker owns a deque of tasks. The owner pushes and pops tasks at
// the bottom of its deque, other workers steal from the top. Tasks
// submitted from outside of the pool go to an injector queue, from where
// any worker may take them.
//
// Tasks are structured as fork-join: a task spawns sub-tasks against a
// Join and waits for the Join before returning. Waiting means helping:
// the waiting worker executes its own tasks or steals tasks from others
// until the Join is complete.

// Minimum and maximum number of concurrent workers of a pool.
const (
	minWorkerCount int = 1
	maxWorkerCount int = 64
)

// ErrPoolClosed is returned if a client submits work to a pool which has
// already been closed.
var ErrPoolClosed = errors.New("worker pool is closed")

// WorkerCount returns the number of workers a pool will start for a
// requested count of n. For n ≤ 0 the number of CPUs is used. The result
// is clamped to a sane range.
func WorkerCount(n int) int {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > maxWorkerCount {
		n = maxWorkerCount
	} else if n < minWorkerCount {
		n = minWorkerCount
	}
	return n
}

// Task is a unit of work, executed by a worker.
type Task func(w *Worker)

// Pool is a fixed-size pool of work-stealing workers.
type Pool struct {
	workers []*Worker
	inject  deque         // tasks submitted from outside the pool
	wakeup  chan struct{} // signals idle workers that new tasks are available
	quit    chan struct{}
	running sync.WaitGroup
	closed  atomic.Bool
}

// NewPool creates a pool and starts its workers. See WorkerCount for the
// interpretation of n. Clients must call Close to stop the workers.
func NewPool(n int) *Pool {
	n = WorkerCount(n)
	p := &Pool{
		workers: make([]*Worker, n),
		wakeup:  make(chan struct{}, n),
		quit:    make(chan struct{}),
	}
	for i := 0; i < n; i++ {
		p.workers[i] = &Worker{id: i, pool: p, seed: uint32(i)*2654435761 + 1}
	}
	p.running.Add(n)
	for _, w := range p.workers {
		go w.loop()
	}
	tracer().Debugf("started worker pool with %d workers", n)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	if p == nil {
		return 0
	}
	return len(p.workers)
}

// Close stops all workers and waits for them to terminate. Tasks still
// queued are dropped. Close may be called more than once.
func (p *Pool) Close() {
	if p == nil || !p.closed.CompareAndSwap(false, true) {
		return
	}
	close(p.quit)
	p.running.Wait()
	tracer().Debugf("worker pool stopped")
}

// Run submits a task to the pool and blocks until it has finished.
// A panic within task is recovered and returned as a *TaskError.
func (p *Pool) Run(task Task) error {
	if p == nil || p.closed.Load() {
		return ErrPoolClosed
	}
	done := make(chan error, 1)
	p.inject.pushBottom(func(w *Worker) {
		done <- protect(func() error {
			task(w)
			return nil
		})
	})
	p.signal()
	select {
	case err := <-done:
		return err
	case <-p.quit:
		return ErrPoolClosed
	}
}

// signal wakes up an idle worker, if any. It never blocks.
func (p *Pool) signal() {
	select {
	case p.wakeup <- struct{}{}:
	default: // enough signals pending
	}
}

// --- Workers ---------------------------------------------------------------

// Worker is a goroutine of a pool. Tasks receive the worker executing them
// and use it to fork sub-tasks.
type Worker struct {
	id    int
	pool  *Pool
	tasks deque
	seed  uint32 // state for choosing a victim to steal from
}

// ID returns the number of a worker within its pool, starting at 0.
// It is useful for indexing worker-local data.
func (w *Worker) ID() int {
	if w == nil {
		return 0
	}
	return w.id
}

func (w *Worker) loop() {
	defer w.pool.running.Done()
	for {
		if t := w.find(true); t != nil {
			t(w)
			continue
		}
		select {
		case <-w.pool.wakeup:
		case <-w.pool.quit:
			return
		}
	}
}

// find looks for a task: first in the worker's own deque, then (optionally)
// in the injector queue, then in other workers' deques.
func (w *Worker) find(fromInjector bool) Task {
	if t := w.tasks.popBottom(); t != nil {
		return t
	}
	if fromInjector {
		if t := w.pool.inject.popTop(); t != nil {
			return t
		}
	}
	return w.steal()
}

func (w *Worker) steal() Task {
	n := len(w.pool.workers)
	if n < 2 {
		return nil
	}
	w.seed ^= w.seed << 13 // xorshift
	w.seed ^= w.seed >> 17
	w.seed ^= w.seed << 5
	start := int(w.seed % uint32(n))
	for i := 0; i < n; i++ {
		victim := w.pool.workers[(start+i)%n]
		if victim == w {
			continue
		}
		if t := victim.tasks.popTop(); t != nil {
			return t
		}
	}
	return nil
}

// Spawn forks a task. The task is registered with join j and may be
// executed by any worker of the pool. A panic within t is recovered and
// recorded as the error of j.
//
// With w == nil, t is executed immediately on the calling goroutine.
func (w *Worker) Spawn(j *Join, t Task) {
	j.pending.Add(1)
	wrapped := func(x *Worker) {
		defer j.pending.Add(-1)
		if err := protect(func() error { t(x); return nil }); err != nil {
			j.fail(err)
		}
	}
	if w == nil {
		wrapped(nil)
		return
	}
	w.tasks.pushBottom(wrapped)
	w.pool.signal()
}

// Wait blocks until all tasks spawned against j have completed. While
// waiting, the worker executes tasks of its own deque or steals tasks from
// other workers. Wait returns the first error recorded with j.
func (w *Worker) Wait(j *Join) error {
	spins := 0
	for j.pending.Load() > 0 {
		if w != nil {
			if t := w.find(false); t != nil {
				t(w)
				spins = 0
				continue
			}
		}
		if spins++; spins > 64 {
			runtime.Gosched()
		}
	}
	return j.Err()
}

// Join is a synchronization point for a group of spawned tasks.
// The zero value is ready to use. A Join must not be copied after first use.
type Join struct {
	pending atomic.Int64
	mu      sync.Mutex
	err     error
}

func (j *Join) fail(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err == nil {
		j.err = err
	}
}

// Err returns the first error of a task of the join, if any.
func (j *Join) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// --- Errors ----------------------------------------------------------------

// TaskError reports a panic which occurred within a task.
type TaskError struct {
	Value any    // the value given to panic
	Stack []byte // stack of the panicking goroutine
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// protect calls f and converts a panic into a *TaskError.
func protect(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if te, ok := r.(*TaskError); ok { // re-raised by ForkJoin
				err = te
				return
			}
			err = &TaskError{Value: r, Stack: debug.Stack()}
		}
	}()
	return f()
}
