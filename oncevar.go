package poll

import "sync"

type onceVarState uint8

const (
	onceVarEmpty onceVarState = iota
	onceVarWaiting
	onceVarHasValue
	onceVarCancelled
	onceVarCancelledWithValue
)

// OnceVar is a single-assignment asynchronous cell: the minimal rendezvous
// primitive. It is itself an [AsyncComputation][T], single-consumer by
// construction (at most one waiter at a time — a later Poll simply
// overwrites the stored waker of an earlier one), and every operation is
// safe to call concurrently from any goroutine. Its stored waker is always
// invoked outside the lock, so waking a waiter can never reenter a writer
// still holding it.
type OnceVar[T any] struct {
	mu    sync.Mutex
	state onceVarState
	value T
	waker Waker
}

// NewOnceVar returns an empty [OnceVar].
func NewOnceVar[T any]() *OnceVar[T] {
	return &OnceVar[T]{}
}

// TryWrite places value into v if the cell is Empty, Waiting or Cancelled,
// waking any stored waiter, and reports true. If the cell already holds a
// value (HasValue or CancelledWithValue), it reports false without
// modifying the cell.
func (v *OnceVar[T]) TryWrite(value T) bool {
	v.mu.Lock()

	switch v.state {
	case onceVarEmpty:
		v.state, v.value = onceVarHasValue, value
		v.mu.Unlock()
		return true

	case onceVarWaiting:
		w := v.waker
		v.waker = nil
		v.state, v.value = onceVarHasValue, value
		v.mu.Unlock()
		if w != nil {
			w.Wake()
		}
		return true

	case onceVarCancelled:
		v.state, v.value = onceVarCancelledWithValue, value
		v.mu.Unlock()
		return true

	default: // onceVarHasValue, onceVarCancelledWithValue
		v.mu.Unlock()
		return false
	}
}

// Write is TryWrite, except that a second write reports
// [ErrOnceVarDoubleWrite] instead of silently failing.
func (v *OnceVar[T]) Write(value T) error {
	if !v.TryWrite(value) {
		return ErrOnceVarDoubleWrite
	}
	return nil
}

// TryRead is a non-blocking peek: it reports the value if the cell carries
// one (HasValue or CancelledWithValue), or None otherwise.
func (v *OnceVar[T]) TryRead() Option[T] {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch v.state {
	case onceVarHasValue, onceVarCancelledWithValue:
		return Some(v.value)
	default:
		return None[T]()
	}
}

// Poll implements [AsyncComputation]. If the cell carries a value, it
// reports Ready with it. If the cell is Cancelled (and carries no value),
// it reports [ErrFutureCancelled]. Otherwise it stores ctx's waker as the
// single waiter, replacing any earlier one, and reports Pending.
func (v *OnceVar[T]) Poll(ctx *Context) (Poll[T], error) {
	v.mu.Lock()

	switch v.state {
	case onceVarHasValue, onceVarCancelledWithValue:
		value := v.value
		v.mu.Unlock()
		return ReadyPoll(value), nil

	case onceVarCancelled:
		v.mu.Unlock()
		return Poll[T]{}, ErrFutureCancelled

	default: // onceVarEmpty, onceVarWaiting
		v.state = onceVarWaiting
		v.waker = ctx.Waker()
		v.mu.Unlock()
		return Poll[T]{}, nil
	}
}

// Cancel implements [AsyncComputation]. Empty or Waiting transitions to
// Cancelled; HasValue transitions to CancelledWithValue, preserving the
// value for anyone who already has it through TryRead. Already-cancelled
// states are a no-op. Any stored waiter is woken, outside the lock, so a
// polling driver observes the cancellation promptly.
func (v *OnceVar[T]) Cancel() {
	v.mu.Lock()

	switch v.state {
	case onceVarEmpty:
		v.state = onceVarCancelled
		v.mu.Unlock()

	case onceVarWaiting:
		w := v.waker
		v.waker = nil
		v.state = onceVarCancelled
		v.mu.Unlock()
		if w != nil {
			w.Wake()
		}

	case onceVarHasValue:
		v.state = onceVarCancelledWithValue
		v.mu.Unlock()

	default: // onceVarCancelled, onceVarCancelledWithValue
		v.mu.Unlock()
	}
}
