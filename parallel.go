package minirun

// ParallelFor submits one task per index in [begin, end) with the given
// stride and, when running in GroupEphemeral (the default), waits for the
// whole batch before returning. Iterations must be independent; no
// dependency keys are declared on their behalf. A non-positive step
// panics.
func (r *Run) ParallelFor(begin, end, step int, fn func(int), group ...Group) {
	if step <= 0 {
		panic("minirun: ParallelFor step must be positive")
	}

	g := pick(group, GroupEphemeral)
	for i := begin; i < end; i += step {
		i := i
		r.CreateTask(func() { fn(i) }, g)
	}
	if g == GroupEphemeral {
		r.TaskwaitGroup(GroupEphemeral)
	}
}

// ForEach submits one task per element of items, passing each closure a
// pointer to its element so it may mutate in place. Semantics otherwise
// match ParallelFor.
func ForEach[E any](r *Run, items []E, fn func(*E), group ...Group) {
	g := pick(group, GroupEphemeral)
	for i := range items {
		e := &items[i]
		r.CreateTask(func() { fn(e) }, g)
	}
	if g == GroupEphemeral {
		r.TaskwaitGroup(GroupEphemeral)
	}
}

// ForEachChunk splits items into chunks of at most chunk elements and
// submits one task per chunk. Amortizes per-task overhead when the
// per-element work is small. A non-positive chunk panics.
func ForEachChunk[E any](r *Run, items []E, chunk int, fn func([]E), group ...Group) {
	if chunk <= 0 {
		panic("minirun: ForEachChunk size must be positive")
	}

	g := pick(group, GroupEphemeral)
	for lo := 0; lo < len(items); lo += chunk {
		hi := lo + chunk
		if hi > len(items) {
			hi = len(items)
		}
		part := items[lo:hi:hi]
		r.CreateTask(func() { fn(part) }, g)
	}
	if g == GroupEphemeral {
		r.TaskwaitGroup(GroupEphemeral)
	}
}
