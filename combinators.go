package poll

// Ready returns a [Future] whose computation is immediately Ready(v);
// Cancel on it is a no-op.
func Ready[T any](v T) Future[T] {
	return FutureFunc[T](func() AsyncComputation[T] {
		return &readyComputation[T]{value: v}
	})
}

type readyComputation[T any] struct{ value T }

func (c *readyComputation[T]) Poll(*Context) (Poll[T], error) { return ReadyPoll(c.value), nil }
func (c *readyComputation[T]) Cancel()                        {}

// Unit is the Ready(struct{}{}) singleton future.
var Unit Future[struct{}] = Ready(struct{}{})

// Never returns a [Future] whose computation always reports Pending.
// Cancel on it is a no-op. Used for test scaffolding.
func Never[T any]() Future[T] {
	return FutureFunc[T](func() AsyncComputation[T] {
		return neverComputation[T]{}
	})
}

type neverComputation[T any] struct{}

func (neverComputation[T]) Poll(*Context) (Poll[T], error) { return Poll[T]{}, nil }
func (neverComputation[T]) Cancel()                        {}

// Lazy returns a [Future] whose computation evaluates f on its first poll,
// memoizes the result, and returns Ready(result) on every poll thereafter.
//
// If f panics, the panic propagates out of Poll unchanged; Lazy does not
// recover it.
func Lazy[T any](f func() T) Future[T] {
	return FutureFunc[T](func() AsyncComputation[T] {
		return &lazyComputation[T]{f: f}
	})
}

type lazyComputation[T any] struct {
	f     func() T
	done  bool
	value T
}

func (c *lazyComputation[T]) Poll(*Context) (Poll[T], error) {
	if !c.done {
		c.value = c.f()
		c.done = true
		c.f = nil
	}
	return ReadyPoll(c.value), nil
}

func (c *lazyComputation[T]) Cancel() {}

// Delay returns a [Future] whose computation, on its first poll, calls
// creator to build the inner computation, then forwards every poll to it.
// Cancel is a no-op until the inner computation exists, after which it
// forwards to it.
func Delay[T any](creator func() AsyncComputation[T]) Future[T] {
	return FutureFunc[T](func() AsyncComputation[T] {
		return &delayComputation[T]{creator: creator}
	})
}

type delayComputation[T any] struct {
	creator  func() AsyncComputation[T]
	inner    AsyncComputation[T]
	canceled bool
}

func (c *delayComputation[T]) Poll(ctx *Context) (Poll[T], error) {
	if c.inner == nil {
		c.inner = c.creator()
		c.creator = nil
		if c.canceled {
			c.inner.Cancel()
		}
	}
	return c.inner.Poll(ctx)
}

func (c *delayComputation[T]) Cancel() {
	if c.canceled {
		return
	}
	c.canceled = true
	if c.inner != nil {
		c.inner.Cancel()
	}
}

// Bind returns a [Future] whose computation polls source; on Ready(a), it
// computes next = binder(a), drops source, and polls next from then on.
//
// Cancel forwards to whichever of source or next is currently held.
func Bind[A, B any](source Future[A], binder func(A) Future[B]) Future[B] {
	return FutureFunc[B](func() AsyncComputation[B] {
		return &bindComputation[A, B]{source: source.RunComputation(), binder: binder}
	})
}

type bindComputation[A, B any] struct {
	source   AsyncComputation[A]
	binder   func(A) Future[B]
	next     AsyncComputation[B]
	canceled bool
}

func (c *bindComputation[A, B]) Poll(ctx *Context) (Poll[B], error) {
	if c.next == nil {
		p, err := c.source.Poll(ctx)
		if err != nil || !p.Ready {
			return Poll[B]{}, err
		}

		binder, value := c.binder, p.Value
		c.source, c.binder = nil, nil

		c.next = binder(value).RunComputation()
		if c.canceled {
			c.next.Cancel()
		}
	}

	return c.next.Poll(ctx)
}

func (c *bindComputation[A, B]) Cancel() {
	if c.canceled {
		return
	}
	c.canceled = true
	switch {
	case c.next != nil:
		c.next.Cancel()
	case c.source != nil:
		c.source.Cancel()
	}
}

// Map returns a [Future] whose computation polls source and, on Ready(a),
// returns Ready(f(a)); the mapped value is memoized.
func Map[A, B any](source Future[A], f func(A) B) Future[B] {
	return FutureFunc[B](func() AsyncComputation[B] {
		return &mapComputation[A, B]{source: source.RunComputation(), f: f}
	})
}

type mapComputation[A, B any] struct {
	source AsyncComputation[A]
	f      func(A) B
	done   bool
	value  B
}

func (c *mapComputation[A, B]) Poll(ctx *Context) (Poll[B], error) {
	if c.done {
		return ReadyPoll(c.value), nil
	}

	p, err := c.source.Poll(ctx)
	if err != nil || !p.Ready {
		return Poll[B]{}, err
	}

	c.value = c.f(p.Value)
	c.done = true
	c.source, c.f = nil, nil

	return ReadyPoll(c.value), nil
}

func (c *mapComputation[A, B]) Cancel() {
	if !c.done && c.source != nil {
		c.source.Cancel()
	}
}

// Apply returns a [Future] whose computation polls both fF and vF on every
// call; once both have produced a value, it returns Ready(f(v)). The
// result is memoized, since fF and vF may become ready on different polls.
func Apply[A, B any](fF Future[func(A) B], vF Future[A]) Future[B] {
	return FutureFunc[B](func() AsyncComputation[B] {
		return &applyComputation[A, B]{fc: fF.RunComputation(), vc: vF.RunComputation()}
	})
}

type applyComputation[A, B any] struct {
	fc       AsyncComputation[func(A) B]
	vc       AsyncComputation[A]
	fDone    bool
	fValue   func(A) B
	vDone    bool
	vValue   A
	done     bool
	value    B
	canceled bool
}

func (c *applyComputation[A, B]) Poll(ctx *Context) (Poll[B], error) {
	if c.done {
		return ReadyPoll(c.value), nil
	}

	if !c.fDone {
		p, err := c.fc.Poll(ctx)
		if err != nil {
			c.cancelSiblingOnError(fSide)
			return Poll[B]{}, err
		}
		if p.Ready {
			c.fDone, c.fValue, c.fc = true, p.Value, nil
		}
	}

	if !c.vDone {
		p, err := c.vc.Poll(ctx)
		if err != nil {
			c.cancelSiblingOnError(vSide)
			return Poll[B]{}, err
		}
		if p.Ready {
			c.vDone, c.vValue, c.vc = true, p.Value, nil
		}
	}

	if !c.fDone || !c.vDone {
		return Poll[B]{}, nil
	}

	c.value = c.fValue(c.vValue)
	c.done = true

	return ReadyPoll(c.value), nil
}

type applySide int

const (
	fSide applySide = iota
	vSide
)

func (c *applyComputation[A, B]) cancelSiblingOnError(failed applySide) {
	if failed == fSide && c.vc != nil {
		c.vc.Cancel()
		c.vc = nil
	}
	if failed == vSide && c.fc != nil {
		c.fc.Cancel()
		c.fc = nil
	}
}

func (c *applyComputation[A, B]) Cancel() {
	if c.canceled {
		return
	}
	c.canceled = true
	if !c.fDone && c.fc != nil {
		c.fc.Cancel()
	}
	if !c.vDone && c.vc != nil {
		c.vc.Cancel()
	}
}

// JoinComputation returns a [Future] whose computation polls source; on
// Ready(inner), it drops source and polls inner from then on. Named
// JoinComputation rather than the plain "Join" to avoid clashing with the
// scheduler's structured-concurrency join handles.
func JoinComputation[T any](source Future[AsyncComputation[T]]) Future[T] {
	return FutureFunc[T](func() AsyncComputation[T] {
		return &joinComputation[T]{source: source.RunComputation()}
	})
}

type joinComputation[T any] struct {
	source   AsyncComputation[AsyncComputation[T]]
	inner    AsyncComputation[T]
	canceled bool
}

func (c *joinComputation[T]) Poll(ctx *Context) (Poll[T], error) {
	if c.inner == nil {
		p, err := c.source.Poll(ctx)
		if err != nil || !p.Ready {
			return Poll[T]{}, err
		}
		c.inner, c.source = p.Value, nil
		if c.canceled {
			c.inner.Cancel()
		}
	}
	return c.inner.Poll(ctx)
}

func (c *joinComputation[T]) Cancel() {
	if c.canceled {
		return
	}
	c.canceled = true
	switch {
	case c.inner != nil:
		c.inner.Cancel()
	case c.source != nil:
		c.source.Cancel()
	}
}

// Result is the Ok/Err sum type produced by [Catch].
type Result[T any] struct {
	Value T
	Err   error
}

// Ok reports whether r carries a value rather than an error.
func (r Result[T]) Ok() bool { return r.Err == nil }

// Catch returns a [Future] whose computation polls source and turns its
// outcome into Ready(Result), converting any error from source's Poll into
// a Result carrying that error instead of propagating it. Cancellation is
// forwarded to source.
func Catch[T any](source Future[T]) Future[Result[T]] {
	return FutureFunc[Result[T]](func() AsyncComputation[Result[T]] {
		return &catchComputation[T]{source: source.RunComputation()}
	})
}

type catchComputation[T any] struct {
	source AsyncComputation[T]
}

func (c *catchComputation[T]) Poll(ctx *Context) (Poll[Result[T]], error) {
	p, err := c.source.Poll(ctx)
	if err != nil {
		return ReadyPoll(Result[T]{Err: err}), nil
	}
	if !p.Ready {
		return Poll[Result[T]]{}, nil
	}
	return ReadyPoll(Result[T]{Value: p.Value}), nil
}

func (c *catchComputation[T]) Cancel() { c.source.Cancel() }

// Ignore returns a [Future] whose computation maps any Ready(_) from source
// to Ready(struct{}{}). Cancel is forwarded.
func Ignore[T any](source Future[T]) Future[struct{}] {
	return Map(source, func(T) struct{} { return struct{}{} })
}

// Yield returns a [Future] whose computation returns Pending on its first
// poll (after immediately waking ctx, so the driver re-polls it promptly),
// then Ready(struct{}{}) on the second. Used to break up long synchronous
// runs and give a scheduler a chance to run other work.
func Yield() Future[struct{}] {
	return FutureFunc[struct{}](func() AsyncComputation[struct{}] {
		return &yieldComputation{}
	})
}

type yieldComputation struct {
	yielded bool
}

func (c *yieldComputation) Poll(ctx *Context) (Poll[struct{}], error) {
	if !c.yielded {
		c.yielded = true
		ctx.Wake()
		return Poll[struct{}]{}, nil
	}
	return ReadyPoll(struct{}{}), nil
}

func (c *yieldComputation) Cancel() {}
