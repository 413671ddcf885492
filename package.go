// Package minirun provides an in-process runtime for data-driven task
// parallelism. Callers submit closures together with the sets of memory
// regions the closure reads and writes, and the runtime executes them on
// a worker pool while preserving the ordering those declarations imply:
// writers on a region run in submission order, readers submitted between
// two writers run after the first and before the second, and readers with
// no intervening writer may run concurrently.
//
// Key components:
//
//   - Run: The runtime instance. It owns the worker pool, the per-region
//     dependency trackers, and the recycled task objects. Multiple Run
//     instances may coexist; nothing is process-global.
//
//   - CreateTask and variants: Fire-and-forget submission of a closure
//     with optional input/output dependency lists and an optional group
//     tag scoping those dependencies.
//
//   - Async-completion tasks: Tasks whose closure starts external work
//     (a device transfer, a remote call) and whose completion is gated on
//     a user-supplied probe. Workers poll the probe and yield the task
//     back to the queue while it reports not-done, so a worker is never
//     parked on offloaded work.
//
//   - Deps: Helper building dependency key lists from pointers or plain
//     integer identifiers.
//
//   - Taskwait: Cooperative barrier. The waiting thread helps drain the
//     ready queue instead of blocking, so a task can wait on a group it
//     does not belong to without deadlocking the pool. A task waiting on
//     its own group, or on all tasks, never returns.
//
//   - ParallelFor / ForEach: Bulk helpers that submit one task per index,
//     element or chunk, and wait for the batch when run in the ephemeral
//     group.
//
// Setting the DISABLE_MINIRUN environment variable before constructing a
// Run disables parallelism entirely: submissions execute inline on the
// calling thread and no workers are spawned. This is the debugging
// fallback; program results must be identical either way.
package minirun
