package minirun

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gammazero/deque"
	"github.com/hashicorp/go-hclog"
)

// workerPool owns a fixed set of worker goroutines and the FIFO ready
// queue they drain. Tasks always execute with the queue lock released, so
// a running task may submit and enqueue successors freely.
type workerPool struct {
	mu    spinLock
	ready deque.Deque[*task]
	stop  atomic.Bool
	wg    sync.WaitGroup
	log   hclog.Logger
}

func newWorkerPool(workers int, log hclog.Logger) *workerPool {
	p := &workerPool{log: log}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}
	return p
}

func (p *workerPool) worker(id int) {
	defer p.wg.Done()
	p.log.Trace("worker started", "worker", id)

	for !p.stop.Load() {
		if !p.tryRunOne() {
			runtime.Gosched()
		}
	}

	p.log.Trace("worker stopped", "worker", id)
}

// enqueue appends a task whose countdown reached zero, or an async task
// yielding back to the queue tail.
func (p *workerPool) enqueue(t *task) {
	p.mu.lock()
	p.ready.PushBack(t)
	p.mu.unlock()
}

// tryRunOne pops and runs at most one ready task. Callable from any
// thread; Taskwait uses it to participate in execution instead of
// spinning idle. Reports whether a task ran.
func (p *workerPool) tryRunOne() bool {
	p.mu.lock()
	if p.ready.Len() == 0 {
		p.mu.unlock()
		return false
	}
	t := p.ready.PopFront()
	p.mu.unlock()

	t.execute()
	return true
}

// shutdown signals the workers and joins them. The caller must have
// drained all work first; queued tasks left behind would never run.
func (p *workerPool) shutdown() {
	p.stop.Store(true)
	p.wg.Wait()
}
