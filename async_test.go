package minirun

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAsyncProbeCompletesOnNthPoll(t *testing.T) {
	r := require.New(t)

	rt := NewWorkers(4)
	defer rt.Close()

	const needed = 5

	var (
		polls atomic.Int32
		value int
		got   int
	)

	rt.CreateAsyncTaskDeps(func() { value = 42 }, func() bool {
		return polls.Add(1) >= needed
	}, nil, Deps(&value))

	rt.CreateTaskDeps(func() { got = value }, Deps(&value), nil)

	rt.Taskwait()

	r.Equal(42, got)
	r.GreaterOrEqual(polls.Load(), int32(needed))
}

func TestAsyncProbeImmediatelyDone(t *testing.T) {
	r := require.New(t)

	rt := NewWorkers(2)
	defer rt.Close()

	ran := false
	rt.CreateAsyncTaskDeps(func() { ran = true }, func() bool { return true }, nil, Deps(&ran))
	rt.Taskwait()

	r.True(ran)
}

func TestProbeTaskCapturesAsyncState(t *testing.T) {
	r := require.New(t)

	rt := NewWorkers(4)
	defer rt.Close()

	var (
		value int
		got   int
	)

	// The closure stands in for work that starts an offloaded operation
	// and hands back the handle to poll, the way a device stream would.
	rt.CreateProbeTaskDeps(func() Probe {
		value = 7
		remaining := 3
		return func() bool {
			remaining--
			return remaining <= 0
		}
	}, nil, Deps(&value))

	rt.CreateTaskDeps(func() { got = value }, Deps(&value), nil)

	rt.Taskwait()
	r.Equal(7, got)
}

func TestAsyncChainOrdersThroughProbes(t *testing.T) {
	r := require.New(t)

	rt := NewWorkers(4)
	defer rt.Close()

	var (
		cell  int
		polls atomic.Int32
	)

	rt.CreateAsyncTaskDeps(func() { cell = 1 }, func() bool {
		return polls.Add(1) >= 10
	}, nil, Deps(&cell))
	rt.CreateTaskDeps(func() { cell *= 2 }, nil, Deps(&cell))

	rt.Taskwait()
	r.Equal(2, cell)
}

func TestInlineAsyncLoopsProbe(t *testing.T) {
	r := require.New(t)

	rt, err := NewWithConfig(Config{Disable: true})
	r.NoError(err)
	defer rt.Close()

	polls := 0
	ran := false
	rt.CreateAsyncTask(func() { ran = true }, func() bool {
		polls++
		return polls >= 4
	})

	r.True(ran)
	r.Equal(4, polls)
}

func TestInlineProbeTask(t *testing.T) {
	r := require.New(t)

	rt, err := NewWithConfig(Config{Disable: true})
	r.NoError(err)
	defer rt.Close()

	polls := 0
	rt.CreateProbeTask(func() Probe {
		return func() bool {
			polls++
			return polls >= 2
		}
	})

	r.Equal(2, polls)
}
