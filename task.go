package minirun

// Probe reports whether an async-completion task's external work has
// finished. Probes must be cheap and non-blocking; workers call them on
// every dequeue of the owning task.
type Probe func() bool

type task struct {
	run *Run

	fn      func()
	probeFn func() Probe
	probe   Probe
	started bool

	group Group

	mu        spinLock
	countdown int
	finished  bool

	decrease []*sentinel
	emit     []*sentinel
}

func newTask(r *Run) *task {
	return &task{
		run:      r,
		decrease: make([]*sentinel, 0, 10),
		emit:     make([]*sentinel, 0, 10),
	}
}

// prepare reinitializes a recycled task for one submission. The countdown
// starts at one: the activation ticket, released by activate once every
// dependency has been wired.
func (t *task) prepare(fn func(), probeFn func() Probe, probe Probe, group Group) *task {
	t.fn = fn
	t.probeFn = probeFn
	t.probe = probe
	t.started = false
	t.group = group
	t.finished = false
	t.countdown = 1
	t.decrease = t.decrease[:0]
	t.emit = t.emit[:0]
	return t
}

func (t *task) onFinishDecrease(s *sentinel) {
	t.decrease = append(t.decrease, s)
}

func (t *task) onFinishEmit(s *sentinel) {
	t.emit = append(t.emit, s)
}

func (t *task) increaseCountdown() {
	t.mu.lock()
	t.countdown++
	t.mu.unlock()
}

// decreaseCountdown releases one pending dependency. Holding the task
// lock across the decrement-and-test means the countdown reaches zero in
// exactly one caller, which is the one that enqueues.
func (t *task) decreaseCountdown() {
	t.mu.lock()
	t.countdown--
	ready := t.countdown == 0
	t.mu.unlock()

	if ready {
		t.run.pool.enqueue(t)
	}
}

// activate releases the activation ticket taken by prepare.
func (t *task) activate() {
	t.decreaseCountdown()
}

// execute runs the task on the calling worker. A synchronous task runs
// its closure and finalizes. An async-completion task runs the closure on
// first dequeue only, then polls the probe on every dequeue, yielding
// back to the queue tail while the probe reports not-done.
func (t *task) execute() {
	if !t.started {
		t.started = true
		if t.probeFn != nil {
			t.probe = t.probeFn()
		} else {
			t.fn()
		}
	}

	if t.probe != nil && !t.probe() {
		t.run.pool.enqueue(t)
		return
	}

	t.finalize()
}

// finalize retires the task: sentinels recorded during submission are
// advanced, the object returns to the free-list, and the running
// counters drop. The task must not be touched after releaseTask; a
// concurrent submission may already be reusing it.
func (t *task) finalize() {
	t.mu.lock()
	t.finished = true
	t.mu.unlock()

	for _, s := range t.decrease {
		s.decreaseIn()
	}
	for _, s := range t.emit {
		s.emitOut()
	}

	r := t.run
	group := t.group
	r.releaseTask(t)
	r.decreaseRunning(group)
}
