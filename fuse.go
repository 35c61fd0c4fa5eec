package poll

// WithCancellationFuse wraps c so that, once Cancel has been called, every
// subsequent Poll deterministically reports [ErrFutureCancelled] instead of
// forwarding to c.
//
// This is opt-in: most combinators tolerate a Poll racing with a Cancel by
// letting the inner computation's own next Poll surface the cancellation on
// its own terms (or not at all, if it simply unwinds). The fuse exists for
// debugging and for callers that want "polled after cancelled" to be a
// hard, well-defined error rather than implementation-defined behavior.
func WithCancellationFuse[T any](c AsyncComputation[T]) AsyncComputation[T] {
	return &cancellationFuse[T]{inner: c}
}

type cancellationFuse[T any] struct {
	inner     AsyncComputation[T]
	cancelled bool
}

// Poll implements [AsyncComputation].
func (f *cancellationFuse[T]) Poll(ctx *Context) (Poll[T], error) {
	if f.cancelled {
		return Poll[T]{}, ErrFutureCancelled
	}
	return f.inner.Poll(ctx)
}

// Cancel implements [AsyncComputation].
func (f *cancellationFuse[T]) Cancel() {
	if f.cancelled {
		return
	}
	f.cancelled = true
	f.inner.Cancel()
}
