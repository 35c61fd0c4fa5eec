package poll

// A Poll is the result of one attempt to drive a computation forward.
//
// A Poll is immutable; the zero value is Pending. Once a computation
// returns a Poll with Ready set to true, every subsequent poll of the same
// computation must return a Poll with the same Value (value equality is
// structural).
type Poll[T any] struct {
	Value T
	Ready bool
}

// ReadyPoll returns a [Poll] carrying v, with Ready set.
func ReadyPoll[T any](v T) Poll[T] {
	return Poll[T]{Value: v, Ready: true}
}

// PendingPoll returns a [Poll] with Ready unset.
func PendingPoll[T any]() Poll[T] {
	return Poll[T]{}
}

// A Waker is a callback token: calling it signals "poll me again, progress
// may be possible." It must be safe to call concurrently, any number of
// times, from any goroutine, and it must be safe to drop without ever being
// called.
//
// Spurious wakes — a Wake call that does not actually correspond to
// progress being possible — are permitted; a driver must always re-poll and
// tolerate a Pending result.
type Waker interface {
	Wake()
}

// WakerFunc adapts an ordinary func() into a [Waker].
type WakerFunc func()

// Wake implements [Waker].
func (f WakerFunc) Wake() {
	if f != nil {
		f()
	}
}

type nopWaker struct{}

func (nopWaker) Wake() {}

// NopWaker is a [Waker] that does nothing. It is useful as a placeholder
// value, e.g. for polling a computation once just to see whether it
// completes synchronously, without caring about a later wakeup.
var NopWaker Waker = nopWaker{}

// A Context is passed into each call to [AsyncComputation.Poll]. It carries
// the [Waker] to arrange a wakeup with, and, when the poll is happening
// under a [Scheduler], a handle to that Scheduler.
//
// A Context is borrowed for the duration of one poll call; a computation
// must not retain the Context itself past that call. It may retain the
// Waker it reads from the Context — that Waker remains valid until either
// it fires or the computation is cancelled.
type Context struct {
	waker     Waker
	scheduler Scheduler
}

// NewContext returns a [Context] wrapping w, with no attached scheduler.
func NewContext(w Waker) *Context {
	return &Context{waker: w}
}

// WithScheduler returns a shallow copy of ctx with its scheduler set to s.
func (ctx *Context) WithScheduler(s Scheduler) *Context {
	cp := *ctx
	cp.scheduler = s
	return &cp
}

// Waker returns the [Waker] carried by ctx.
func (ctx *Context) Waker() Waker {
	return ctx.waker
}

// Wake is shorthand for ctx.Waker().Wake().
func (ctx *Context) Wake() {
	ctx.waker.Wake()
}

// Scheduler returns the [Scheduler] attached to ctx, or nil if ctx was not
// constructed under one (as is the case for [RunSync]).
func (ctx *Context) Scheduler() Scheduler {
	return ctx.scheduler
}
