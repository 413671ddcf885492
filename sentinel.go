package minirun

import "github.com/gammazero/deque"

type accessMode int

const (
	accessRead accessMode = iota
	accessWrite
)

// block is one epoch in a sentinel's FIFO: the writer that opened the
// epoch (nil for the initial epoch) and the readers admitted after it.
// Readers admitted while an earlier epoch is still in flight are parked
// in blocked until their epoch's opening writer departs.
type block struct {
	writer          *task
	pendingReaders  uint64
	blocked         deque.Deque[*task]
	writerSatisfied bool
}

// sentinel serializes accesses to one dependency key. Writes are ordered
// against everything; reads are ordered against writes and concurrent
// with each other. All four operations are atomic under the sentinel
// lock, which is never held while a task body runs.
type sentinel struct {
	mu     spinLock
	blocks deque.Deque[*block]
}

// addDep wires one declared dependency of a task being submitted. The
// caller still holds the task's activation ticket, so a countdown touched
// here cannot reach zero before the submission completes.
func (s *sentinel) addDep(t *task, mode accessMode) {
	s.mu.lock()

	if s.blocks.Len() == 0 {
		s.blocks.PushBack(new(block))
	}

	switch mode {
	case accessRead:
		t.onFinishDecrease(s)
		tail := s.blocks.Back()
		tail.pendingReaders++
		if s.blocks.Len() > 1 {
			// A writer is queued ahead; park until it departs.
			t.increaseCountdown()
			tail.blocked.PushBack(t)
		}

	case accessWrite:
		s.blocks.PushBack(&block{writer: t})
		t.increaseCountdown()
		t.onFinishEmit(s)
	}

	s.tryAdvance()
	s.mu.unlock()
}

// decreaseIn retires one finished reader of the head epoch.
func (s *sentinel) decreaseIn() {
	s.mu.lock()
	s.blocks.Front().pendingReaders--
	s.tryAdvance()
	s.mu.unlock()
}

// emitOut retires a finished writer. The head block at this point is the
// epoch the writer waited out; popping it promotes the writer's own block
// to the head, whose parked readers are released and whose writer slot is
// cleared to mark the departure.
func (s *sentinel) emitOut() {
	s.mu.lock()

	head := s.blocks.PopFront()
	if head.pendingReaders != 0 {
		panic("minirun: sentinel block retired with pending readers")
	}

	next := s.blocks.Front()
	for next.blocked.Len() > 0 {
		next.blocked.PopFront().decreaseCountdown()
	}
	next.writer = nil

	s.tryAdvance()
	s.mu.unlock()
}

// tryAdvance promotes the next queued writer when the head epoch has
// fully drained: no readers in flight and no writer still occupying the
// head. Satisfaction happens exactly once per block.
func (s *sentinel) tryAdvance() {
	if s.blocks.Len() < 2 {
		return
	}

	head := s.blocks.Front()
	if head.pendingReaders != 0 || head.writer != nil {
		return
	}

	next := s.blocks.At(1)
	if next.writerSatisfied {
		return
	}
	next.writerSatisfied = true
	next.writer.decreaseCountdown()
}
