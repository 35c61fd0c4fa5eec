// Package poll is a library for cooperative asynchronous programming.
//
// The central abstraction is [AsyncComputation], a poll-driven, cancellable
// unit of asynchronous work. Unlike a goroutine, an AsyncComputation does
// not push its result anywhere; a driver repeatedly calls its Poll method,
// each call returning either a final value or a pending signal. When a
// computation returns pending, it is responsible for arranging a wakeup
// (via the [Waker] carried in the [Context] it was given) for whenever
// further progress might be possible.
//
// # Futures vs. Computations
//
// A [Future] is a factory: calling RunComputation on it produces a fresh,
// independent [AsyncComputation]. Futures are reusable; the computations
// they produce are not — each one is driven exactly once, from Empty
// through Pending (any number of times) to a single, final Ready.
//
// # Composing Computations
//
// [Bind], [Map], [Merge], [First] and friends build larger computations out
// of smaller ones. Every combinator owns the children it wraps: it cancels
// them when it itself is cancelled, and releases them as soon as they
// produce a value, so that resources held by a child (a timer, a queued
// waiter) unwind as early as possible.
//
// # Driving a Computation
//
// The simplest driver is [RunSync], which blocks the calling goroutine until
// a computation completes. A more capable driver is [Executor], a
// single-threaded [Scheduler] that owns spawned computations and polls them
// whenever something wakes them, modeled on the run-queue-plus-autorun
// pattern of every cooperative scheduler in its lineage: spawning or waking
// a task enqueues it, and an autorun hook decides when the queue actually
// gets drained.
//
// # Synchronization
//
// [OnceVar] is the minimal rendezvous primitive: a single-assignment cell
// that is itself an AsyncComputation. [Notify], [Mutex], [RwLock],
// [Semaphore], [Barrier] and [Cond] are all built on top of it, combined
// with an intrusive waiter queue so that waiting never allocates beyond the
// waiter itself.
package poll
