package minirun

import (
	"math"
	"os"
	"runtime"
	"slices"
	"sync/atomic"

	"github.com/gammazero/deque"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
)

// Group partitions dependency tracking. Dependencies and running-task
// counts are scoped strictly per group; tasks in different groups are
// unordered even when they declare the same key.
type Group uint32

// Dep is an opaque identifier for a memory region, typically the address
// of the data it covers. Equality defines "same region"; the runtime does
// no aliasing analysis between distinct keys.
type Dep uintptr

// DepList is a set of dependency keys, usually built with Deps.
type DepList []Dep

const (
	// GroupDefault is the group used when a submission names none.
	GroupDefault Group = 0

	// GroupEphemeral is reserved for the bulk helpers: ParallelFor and
	// the ForEach variants submit into it by default and wait on it
	// before returning.
	GroupEphemeral Group = math.MaxUint32
)

// DisableEnv is the environment variable that, when set at construction,
// disables parallelism for the new Run: submissions execute inline on
// the calling thread and no workers are spawned.
const DisableEnv = "DISABLE_MINIRUN"

const taskAllocBatch = 100

// Config carries the runtime's construction knobs.
type Config struct {
	// Workers is the worker pool size. Zero selects the hardware
	// default, one fewer than the number of CPUs. Negative is an error.
	Workers int

	// Logger receives debug- and trace-level runtime diagnostics. Nil disables
	// logging.
	Logger hclog.Logger

	// Disable forces inline execution, equivalently to DisableEnv.
	Disable bool
}

// Run is one runtime instance: a worker pool, the per-group dependency
// registries, and the recycled task objects. Instances are independent;
// a program may own several. All methods are safe for concurrent use.
// The Run's lifetime must strictly enclose all submissions: Close drains
// pending work, and submitting after Close is not allowed.
type Run struct {
	pool   *workerPool
	reg    *registry
	global atomic.Int64
	freeMu spinLock
	free   deque.Deque[*task]
	log    hclog.Logger
	inline bool
}

// New constructs a runtime with the hardware-default worker count.
func New() *Run {
	r, err := NewWithConfig(Config{})
	if err != nil {
		panic(err)
	}
	return r
}

// NewWorkers constructs a runtime with an explicit worker count.
func NewWorkers(workers int) *Run {
	r, err := NewWithConfig(Config{Workers: workers})
	if err != nil {
		panic(err)
	}
	return r
}

// NewWithConfig constructs a runtime from cfg.
func NewWithConfig(cfg Config) (*Run, error) {
	if cfg.Workers < 0 {
		return nil, errors.Errorf("minirun: negative worker count %d", cfg.Workers)
	}

	log := cfg.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU() - 1
		if workers < 1 {
			workers = 1
		}
	}

	r := &Run{
		reg: newRegistry(),
		log: log,
	}

	if cfg.Disable || os.Getenv(DisableEnv) != "" {
		r.inline = true
		r.log.Debug("runtime constructed inline", "reason", DisableEnv)
		return r, nil
	}

	r.pool = newWorkerPool(workers, log)
	r.log.Debug("runtime constructed", "workers", workers)
	return r, nil
}

// CreateTask submits a closure with no dependencies.
func (r *Run) CreateTask(fn func(), group ...Group) {
	r.submit(fn, nil, nil, nil, nil, pick(group, GroupDefault))
}

// CreateTaskDeps submits a closure that reads the regions named by in
// and writes the regions named by out. Either list may be nil.
func (r *Run) CreateTaskDeps(fn func(), in, out DepList, group ...Group) {
	r.submit(fn, nil, nil, in, out, pick(group, GroupDefault))
}

// CreateAsyncTask submits a closure whose completion is asynchronous:
// the closure runs once, then the task stays live until probe reports
// true. Dependencies held by the task release only at that point.
func (r *Run) CreateAsyncTask(fn func(), probe Probe, group ...Group) {
	r.submit(fn, nil, probe, nil, nil, pick(group, GroupDefault))
}

// CreateAsyncTaskDeps is CreateAsyncTask with dependency lists.
func (r *Run) CreateAsyncTaskDeps(fn func(), probe Probe, in, out DepList, group ...Group) {
	r.submit(fn, nil, probe, in, out, pick(group, GroupDefault))
}

// CreateProbeTask submits a closure whose return value is the task's
// completion probe, letting the closure capture async state (a stream or
// request handle) created at first run.
func (r *Run) CreateProbeTask(fn func() Probe, group ...Group) {
	r.submit(nil, fn, nil, nil, nil, pick(group, GroupDefault))
}

// CreateProbeTaskDeps is CreateProbeTask with dependency lists.
func (r *Run) CreateProbeTaskDeps(fn func() Probe, in, out DepList, group ...Group) {
	r.submit(nil, fn, nil, in, out, pick(group, GroupDefault))
}

func (r *Run) submit(fn func(), probeFn func() Probe, probe Probe, in, out DepList, group Group) {
	if r.inline {
		runInline(fn, probeFn, probe)
		return
	}

	r.increaseRunning(group)

	t := r.acquireTask().prepare(fn, probeFn, probe, group)

	gl := r.reg.groupLock(group)
	gl.lock()
	for _, k := range in {
		// A key also declared as output is covered by the write, which
		// already waits out every earlier reader and writer; registering
		// the read as well would park the write behind the task itself.
		if slices.Contains(out, k) {
			continue
		}
		r.reg.sentinel(group, k).addDep(t, accessRead)
	}
	for _, k := range out {
		r.reg.sentinel(group, k).addDep(t, accessWrite)
	}
	gl.unlock()

	t.activate()
}

func runInline(fn func(), probeFn func() Probe, probe Probe) {
	if probeFn != nil {
		probe = probeFn()
	} else {
		fn()
	}
	for probe != nil && !probe() {
		runtime.Gosched()
	}
}

// Taskwait returns once every task submitted to this runtime before the
// call has finalized. The calling thread participates by running ready
// tasks. A task that calls Taskwait counts itself as running, so
// Taskwait from inside a task never returns; a task waits on other work
// with TaskwaitGroup on a group it does not belong to.
func (r *Run) Taskwait() {
	for r.global.Load() != 0 {
		if !r.pool.tryRunOne() {
			runtime.Gosched()
		}
	}
}

// TaskwaitGroup is Taskwait scoped to one group; tasks in other groups
// may still be in flight when it returns.
func (r *Run) TaskwaitGroup(group Group) {
	c := r.reg.counter(group)
	for c.Load() != 0 {
		if !r.pool.tryRunOne() {
			runtime.Gosched()
		}
	}
}

// Close drains all pending work, then stops and joins the workers. The
// runtime must not be used afterwards.
func (r *Run) Close() {
	r.Taskwait()
	if r.pool != nil {
		r.pool.shutdown()
	}
	r.log.Debug("runtime closed")
}

func (r *Run) increaseRunning(group Group) {
	r.global.Add(1)
	r.reg.counter(group).Add(1)
}

func (r *Run) decreaseRunning(group Group) {
	r.reg.counter(group).Add(-1)
	r.global.Add(-1)
}

func (r *Run) acquireTask() *task {
	r.freeMu.lock()
	if r.free.Len() == 0 {
		for i := 0; i < taskAllocBatch; i++ {
			r.free.PushBack(newTask(r))
		}
	}
	t := r.free.PopFront()
	r.freeMu.unlock()
	return t
}

func (r *Run) releaseTask(t *task) {
	r.freeMu.lock()
	r.free.PushBack(t)
	r.freeMu.unlock()
}

func pick(group []Group, def Group) Group {
	if len(group) == 0 {
		return def
	}
	return group[0]
}
