package poll

// An AsyncComputation is a resource-holding, poll-driven, cancellable unit
// of asynchronous work.
//
// Poll attempts to resolve the computation to a final value, registering
// ctx's [Waker] to be woken once the computation can make further progress,
// if it isn't ready yet. An implementation of Poll should return quickly,
// and must never block; offload genuinely slow work to a goroutine and
// rendezvous with it through an [OnceVar].
//
// Cancel releases whatever the computation holds and, where the
// implementation supports it, arranges for a subsequent Poll to report
// [ErrFutureCancelled]. Cancel is idempotent and safe to call from any
// goroutine, concurrently with an in-flight Poll.
//
// Once Poll has returned a [Poll] with Ready set, every later Poll of the
// same computation must report the same value (see [Poll]). [Apply] and
// [Merge] cache each child's value and do not poll a child again after it
// became ready, but combinators such as [Bind] and [Delay] forward a
// repeated poll to their current child, so a well-behaved implementation
// memoizes.
type AsyncComputation[T any] interface {
	Poll(ctx *Context) (Poll[T], error)
	Cancel()
}

// A Future is a factory that produces a fresh, independent
// [AsyncComputation] each time it is run. Futures are reusable; the
// computations they produce are not.
type Future[T any] interface {
	RunComputation() AsyncComputation[T]
}

// FutureFunc adapts an ordinary func() AsyncComputation[T] into a [Future].
type FutureFunc[T any] func() AsyncComputation[T]

// RunComputation implements [Future].
func (f FutureFunc[T]) RunComputation() AsyncComputation[T] {
	return f()
}

// pollFunc is the concrete AsyncComputation built by [FromPollFunc] and
// [FromPollFuncMemo].
type pollFunc[T any] struct {
	poll   func(ctx *Context) (Poll[T], error)
	cancel func()
	memo   bool
	done   bool
	result Poll[T]
	err    error
}

// Poll implements [AsyncComputation].
func (c *pollFunc[T]) Poll(ctx *Context) (Poll[T], error) {
	if c.memo && c.done {
		return c.result, c.err
	}

	p, err := c.poll(ctx)

	if c.memo && (p.Ready || err != nil) {
		c.done = true
		c.result, c.err = p, err
	}

	return p, err
}

// Cancel implements [AsyncComputation].
func (c *pollFunc[T]) Cancel() {
	if c.cancel != nil {
		c.cancel()
	}
}

// FromPollFunc builds an [AsyncComputation] directly from a poll closure and
// a cancel closure (cancel may be nil, meaning Cancel is a no-op; poll must
// not be nil). It does not memoize; use [FromPollFuncMemo] for computations
// that may be polled again after returning Ready.
func FromPollFunc[T any](poll func(ctx *Context) (Poll[T], error), cancel func()) AsyncComputation[T] {
	return &pollFunc[T]{poll: poll, cancel: cancel}
}

// FromPollFuncMemo is like [FromPollFunc], but caches the first Ready
// result (or error) and serves every later Poll call from that cache
// instead of calling poll again.
func FromPollFuncMemo[T any](poll func(ctx *Context) (Poll[T], error), cancel func()) AsyncComputation[T] {
	return &pollFunc[T]{poll: poll, cancel: cancel, memo: true}
}
