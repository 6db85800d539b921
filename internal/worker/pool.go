package worker

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Task is a unit of work. The worker id is passed for diagnostics.
type Task func(workerID int) error

// Pool runs tasks on a fixed number of goroutines. Submitters preallocate
// result slots and have each task write only its own slot, so no shared
// state is written concurrently.
type Pool struct {
	NumWorkers  int
	tasks       chan Task
	wg          sync.WaitGroup // workers
	taskWG      sync.WaitGroup // in-flight tasks
	activeTasks int64
}

// NewPool creates a pool with the given number of workers. The task channel
// is buffered so bursts of submissions do not block the producer.
func NewPool(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	bufferSize := numWorkers * 10
	if bufferSize < 64 {
		bufferSize = 64
	}
	return &Pool{
		NumWorkers: numWorkers,
		tasks:      make(chan Task, bufferSize),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.NumWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for task := range p.tasks {
		atomic.AddInt64(&p.activeTasks, 1)
		if err := task(id); err != nil {
			slog.Debug("worker task failed", "worker", id, "error", err)
		}
		atomic.AddInt64(&p.activeTasks, -1)
		p.taskWG.Done()
	}
}

// Submit adds a task to the pool.
func (p *Pool) Submit(t Task) {
	p.taskWG.Add(1)
	p.tasks <- t
}

// Wait blocks until every submitted task has completed.
func (p *Pool) Wait() {
	p.taskWG.Wait()
}

// Stop closes the task channel and waits for the workers to exit. No task
// may be submitted afterwards.
func (p *Pool) Stop() {
	close(p.tasks)
	p.wg.Wait()
}

// ActiveCount returns the number of currently executing tasks.
func (p *Pool) ActiveCount() int {
	return int(atomic.LoadInt64(&p.activeTasks))
}
