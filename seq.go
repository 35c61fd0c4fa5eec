package poll

import "iter"

// SeqIter returns a [Future] whose computation drives body(x) to Ready for
// each x from seq, in order. On any Pending from the current body
// computation, it returns Pending and resumes exactly where it left off on
// the next poll, rather than restarting the sequence.
//
// Cancellation is sticky: once cancelled, the computation cancels whatever
// body computation is in flight, stops the sequence, and every subsequent
// poll reports [ErrFutureCancelled].
func SeqIter[X any](seq iter.Seq[X], body func(X) Future[struct{}]) Future[struct{}] {
	return FutureFunc[struct{}](func() AsyncComputation[struct{}] {
		next, stop := iter.Pull(seq)
		return &seqIterComputation[X]{next: next, stop: stop, body: body}
	})
}

type seqIterComputation[X any] struct {
	next      func() (X, bool)
	stop      func()
	body      func(X) Future[struct{}]
	current   AsyncComputation[struct{}]
	cancelled bool
}

func (c *seqIterComputation[X]) Poll(ctx *Context) (Poll[struct{}], error) {
	if c.cancelled {
		return Poll[struct{}]{}, ErrFutureCancelled
	}

	for {
		if c.current == nil {
			x, ok := c.next()
			if !ok {
				c.stop()
				return ReadyPoll(struct{}{}), nil
			}
			c.current = c.body(x).RunComputation()
		}

		p, err := c.current.Poll(ctx)
		if err != nil {
			c.stop()
			return Poll[struct{}]{}, err
		}
		if !p.Ready {
			return Poll[struct{}]{}, nil
		}

		c.current = nil
	}
}

func (c *seqIterComputation[X]) Cancel() {
	if c.cancelled {
		return
	}
	c.cancelled = true
	if c.current != nil {
		c.current.Cancel()
	}
	c.stop()
}

// FromSeq returns a [Future] whose computation runs each computation
// produced by seq to completion, one after another, collecting their
// results in order, then reports Ready with the collected slice.
//
// Caveat: seq is driven with [iter.Pull], which spawns a goroutine behind
// the scenes. That goroutine, and this computation, leak if the returned
// computation is dropped without ever being driven to completion or
// cancelled.
func FromSeq[T any](seq iter.Seq[Future[T]]) Future[[]T] {
	return FutureFunc[[]T](func() AsyncComputation[[]T] {
		next, stop := iter.Pull(seq)
		return &fromSeqComputation[T]{next: next, stop: stop}
	})
}

type fromSeqComputation[T any] struct {
	next      func() (Future[T], bool)
	stop      func()
	current   AsyncComputation[T]
	results   []T
	cancelled bool
}

func (c *fromSeqComputation[T]) Poll(ctx *Context) (Poll[[]T], error) {
	if c.cancelled {
		return Poll[[]T]{}, ErrFutureCancelled
	}

	for {
		if c.current == nil {
			f, ok := c.next()
			if !ok {
				c.stop()
				return ReadyPoll(c.results), nil
			}
			c.current = f.RunComputation()
		}

		p, err := c.current.Poll(ctx)
		if err != nil {
			c.stop()
			return Poll[[]T]{}, err
		}
		if !p.Ready {
			return Poll[[]T]{}, nil
		}

		c.results = append(c.results, p.Value)
		c.current = nil
	}
}

func (c *fromSeqComputation[T]) Cancel() {
	if c.cancelled {
		return
	}
	c.cancelled = true
	if c.current != nil {
		c.current.Cancel()
	}
	c.stop()
}

// MergeSeq returns a [Future] whose computation runs up to concurrency
// computations produced by seq at the same time, collecting their results
// (in completion order) until seq is exhausted and every in-flight
// computation has completed, then reports Ready with the collected slice.
//
// If concurrency is zero, MergeSeq never ends. There is no upper bound
// check; passing a negative concurrency is treated as unbounded.
//
// Caveat: as with [FromSeq], seq is driven with [iter.Pull], which spawns a
// goroutine that leaks if the returned computation is dropped without
// running to completion or being cancelled.
func MergeSeq[T any](concurrency int, seq iter.Seq[Future[T]]) Future[[]T] {
	return FutureFunc[[]T](func() AsyncComputation[[]T] {
		next, stop := iter.Pull(seq)
		return &mergeSeqComputation[T]{next: next, stop: stop, concurrency: concurrency}
	})
}

type mergeSeqComputation[T any] struct {
	next        func() (Future[T], bool)
	stop        func()
	concurrency int
	inFlight    []AsyncComputation[T]
	exhausted   bool
	results     []T
	cancelled   bool
}

func (c *mergeSeqComputation[T]) Poll(ctx *Context) (Poll[[]T], error) {
	if c.cancelled {
		return Poll[[]T]{}, ErrFutureCancelled
	}

	if !c.exhausted {
		for c.concurrency < 0 || len(c.inFlight) < c.concurrency {
			f, ok := c.next()
			if !ok {
				c.exhausted = true
				c.stop()
				break
			}
			c.inFlight = append(c.inFlight, f.RunComputation())
		}
	}

	live := c.inFlight[:0]
	for _, child := range c.inFlight {
		p, err := child.Poll(ctx)
		if err != nil {
			c.latch(err, live)
			return Poll[[]T]{}, err
		}
		if p.Ready {
			c.results = append(c.results, p.Value)
			continue
		}
		live = append(live, child)
	}
	c.inFlight = live

	if c.exhausted && len(c.inFlight) == 0 {
		return ReadyPoll(c.results), nil
	}

	return Poll[[]T]{}, nil
}

func (c *mergeSeqComputation[T]) latch(err error, stillLive []AsyncComputation[T]) {
	for _, child := range stillLive {
		child.Cancel()
	}
	c.inFlight = nil
	if !c.exhausted {
		c.stop()
		c.exhausted = true
	}
}

func (c *mergeSeqComputation[T]) Cancel() {
	if c.cancelled {
		return
	}
	c.cancelled = true
	for _, child := range c.inFlight {
		child.Cancel()
	}
	if !c.exhausted {
		c.stop()
	}
}

// Retry returns a [Future] whose computation runs f() and, if it reports an
// error, builds and runs f() again, up to n times in total, returning the
// first successful value or the last error once retries are exhausted.
//
// Retry is a standard addition to any future-combinator vocabulary; built
// entirely from [Catch] and plain control flow.
func Retry[T any](n int, f func() Future[T]) Future[T] {
	return FutureFunc[T](func() AsyncComputation[T] {
		return &retryComputation[T]{f: f, remaining: n}
	})
}

type retryComputation[T any] struct {
	f         func() Future[T]
	remaining int
	current   AsyncComputation[Result[T]]
}

func (c *retryComputation[T]) Poll(ctx *Context) (Poll[T], error) {
	for {
		if c.current == nil {
			c.current = Catch(c.f()).RunComputation()
		}

		p, err := c.current.Poll(ctx)
		if err != nil {
			// Catch never reports an error from Poll itself.
			return Poll[T]{}, err
		}
		if !p.Ready {
			return Poll[T]{}, nil
		}

		if p.Value.Ok() {
			return ReadyPoll(p.Value.Value), nil
		}

		if c.remaining <= 0 {
			return Poll[T]{}, p.Value.Err
		}

		c.remaining--
		c.current = nil
	}
}

func (c *retryComputation[T]) Cancel() {
	if c.current != nil {
		c.current.Cancel()
	}
}
