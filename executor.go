package poll

import (
	"sync"

	"github.com/rs/zerolog"
)

// erasedTask is the type-erased view of a spawned task that the Executor's
// run queue and priority ordering operate on, without needing to know the
// task's result type.
type erasedTask interface {
	pollOnce(ctx *Context) (done bool)
	sequence() uint64
	setSequence(seq uint64)
	less(other erasedTask) bool
	cancel()
}

// An Executor is a [Scheduler]: a task spawner and task runner.
//
// When a task is spawned or woken, it is added to an internal queue. The
// Run method then pops and runs each of them from the queue until the
// queue is emptied. This happens in a single-threaded manner: if one task's
// Poll blocks, no other task runs until it returns. Tasks should never
// block.
//
// The internal queue is a priority queue ordered by a sequence number that
// is assigned each time a task is spawned or woken, so tasks run in the
// order they were last scheduled — a plain FIFO run queue, expressed with a
// head/tail-slice priority queue.
//
// Manually calling Run is unusual; more often Autorun is used to arrange
// for Run to be called automatically whenever a task is spawned or woken.
// The Executor never calls the autorun function twice at the same time.
type Executor struct {
	mu      sync.Mutex
	pq      priorityQueue[erasedTask]
	running bool
	autorun func()
	nextSeq uint64
	shut    bool
	log     zerolog.Logger
}

// NewExecutor returns a new, empty [Executor]. The zero value of Executor
// is also ready to use; NewExecutor additionally attaches a logger used to
// report task panics.
func NewExecutor(log zerolog.Logger) *Executor {
	return &Executor{log: log}
}

// Autorun sets up f to be called automatically whenever a task is spawned
// or woken and the Executor is not already running. One must pass a
// function that itself calls Run. If f blocks, scheduleTask — and so Spawn
// and a task's Waker — may block too; the best practice is not to block.
func (e *Executor) Autorun(f func()) {
	e.autorun = f
}

// Run pops and runs every task in the queue until the queue is emptied.
// Run must not be called twice at the same time.
func (e *Executor) Run() {
	e.mu.Lock()
	e.running = true

	for !e.pq.Empty() {
		t := e.pq.Pop()
		e.mu.Unlock()

		ctx := NewContext(WakerFunc(func() { e.scheduleTask(t) })).WithScheduler(e)
		t.pollOnce(ctx)

		e.mu.Lock()
	}

	e.running = false
	e.mu.Unlock()
}

// scheduleTask implements [Scheduler]. It adds t to the run queue, starting
// Run via the autorun function if the Executor is idle and one is set.
func (e *Executor) scheduleTask(t erasedTask) {
	var autorun func()

	e.mu.Lock()
	if e.shut {
		e.mu.Unlock()
		t.cancel()
		return
	}

	if !e.running && e.autorun != nil {
		e.running = true
		autorun = e.autorun
	}

	e.nextSeq++
	t.setSequence(e.nextSeq)
	e.pq.Push(t)
	e.mu.Unlock()

	if autorun != nil {
		autorun()
	}
}

// Shutdown marks e as shut down: any task still queued, or spawned
// afterward, is cancelled instead of run. Shutdown does not wait for
// already-running or already-dispatched tasks to observe the cancellation.
func (e *Executor) Shutdown() {
	e.mu.Lock()
	e.shut = true
	var pending []erasedTask
	for !e.pq.Empty() {
		pending = append(pending, e.pq.Pop())
	}
	e.mu.Unlock()

	for _, t := range pending {
		t.cancel()
	}
}

type execTask[T any] struct {
	seq    uint64
	ex     *Executor
	comp   AsyncComputation[T]
	waker  Waker
	result *OnceVar[Result[T]]
	done   bool
}

func (t *execTask[T]) sequence() uint64 { return t.seq }

func (t *execTask[T]) setSequence(seq uint64) { t.seq = seq }

func (t *execTask[T]) less(other erasedTask) bool { return t.seq < other.sequence() }

func (t *execTask[T]) pollOnce(ctx *Context) (done bool) {
	if t.done {
		return true
	}

	innerCtx := NewContext(t.waker).WithScheduler(ctx.Scheduler())

	p, err := recoverPoll(func() (Poll[T], error) { return t.comp.Poll(innerCtx) })
	if err != nil {
		if pe, ok := err.(*panicError); ok && t.ex != nil {
			t.ex.log.Error().Err(pe).Uint64("task_seq", t.seq).Msg("poll: task panicked")
		}
		t.finish(Result[T]{Err: err})
		return true
	}
	if !p.Ready {
		return false
	}

	t.finish(Result[T]{Value: p.Value})
	return true
}

func (t *execTask[T]) finish(r Result[T]) {
	if t.done {
		return
	}
	t.done = true
	t.comp = nil
	t.result.TryWrite(r)
}

func (t *execTask[T]) cancel() {
	if t.done {
		return
	}
	if t.comp != nil {
		t.comp.Cancel()
	}
	t.finish(Result[T]{Err: ErrFutureCancelled})
}
