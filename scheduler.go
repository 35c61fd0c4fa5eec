package poll

// Scheduler is the capability a [Context] carries for spawning further
// work onto whatever is driving the current computation. It is deliberately
// minimal: Go methods cannot be generic, so Scheduler itself only exposes
// enough to let the package-level [Spawn] function hand it a task: the
// actual spawning API that callers use.
type Scheduler interface {
	scheduleTask(t erasedTask)
}

// JoinHandle is returned by [Spawn]. It is itself a [Future] of the
// spawned computation's result, so it composes with every other combinator
// ([Merge], [All], [First], ...); Cancel additionally lets the caller give
// up on the spawned work without waiting for it.
type JoinHandle[T any] interface {
	Future[T]
	// Cancel cancels the spawned computation. It does not cancel a Poll of
	// this handle itself; it cancels the task running in the background.
	Cancel()
}

// Spawn schedules f to run on s, returning a [JoinHandle] for its result.
// The spawned computation is driven independently of whether or when the
// returned handle is ever polled.
func Spawn[T any](s Scheduler, f Future[T]) JoinHandle[T] {
	t := &execTask[T]{
		comp:   f.RunComputation(),
		result: NewOnceVar[Result[T]](),
	}
	if ex, ok := s.(*Executor); ok {
		t.ex = ex
	}
	t.waker = WakerFunc(func() { s.scheduleTask(t) })
	s.scheduleTask(t)

	return &joinHandle[T]{task: t}
}

// SpawnComputation is [Spawn] for callers that already have an
// [AsyncComputation] rather than a [Future] factory.
func SpawnComputation[T any](s Scheduler, c AsyncComputation[T]) JoinHandle[T] {
	return Spawn(s, FutureFunc[T](func() AsyncComputation[T] { return c }))
}

type joinHandle[T any] struct {
	task *execTask[T]
}

// RunComputation implements [Future].
func (h *joinHandle[T]) RunComputation() AsyncComputation[T] {
	return &joinHandleComputation[T]{cell: h.task.result}
}

// Cancel implements [JoinHandle].
func (h *joinHandle[T]) Cancel() {
	h.task.cancel()
}

type joinHandleComputation[T any] struct {
	cell      *OnceVar[Result[T]]
	cancelled bool
}

func (c *joinHandleComputation[T]) Poll(ctx *Context) (Poll[T], error) {
	if c.cancelled {
		return Poll[T]{}, ErrFutureCancelled
	}
	p, err := c.cell.Poll(ctx)
	if err != nil {
		return Poll[T]{}, err
	}
	if !p.Ready {
		return Poll[T]{}, nil
	}
	if !p.Value.Ok() {
		return Poll[T]{}, p.Value.Err
	}
	return ReadyPoll(p.Value.Value), nil
}

// Cancel implements [AsyncComputation]. It only withdraws this particular
// poll of the join handle's result; it does not cancel the spawned task —
// use [JoinHandle.Cancel] for that.
func (c *joinHandleComputation[T]) Cancel() {
	c.cancelled = true
}

// JoinAll returns a [Future] that completes with every handle's result, in
// order, once all of them have completed. It is [All] specialized to
// [JoinHandle]s.
func JoinAll[T any](handles ...JoinHandle[T]) Future[[]T] {
	fs := make([]Future[T], len(handles))
	for i, h := range handles {
		fs[i] = h
	}
	return All(fs...)
}

// JoinAny returns a [Future] that completes with the first handle's result
// to become available, cancelling the rest. It is [Any] specialized to
// [JoinHandle]s; cancelling the losers this way stops their Poll chain but
// leaves the underlying spawned tasks running to completion in the
// background, since only [JoinHandle.Cancel] reaches those.
func JoinAny[T any](handles ...JoinHandle[T]) Future[T] {
	fs := make([]Future[T], len(handles))
	for i, h := range handles {
		fs[i] = h
	}
	return Any(fs...)
}
