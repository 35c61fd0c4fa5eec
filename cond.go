package poll

// Cond is a condition variable associated with a [Mutex]. A caller holding
// the mutex's [Guard] calls Wait to atomically release the guard and begin
// waiting for a Signal or Broadcast; once woken, Wait reacquires the mutex
// before completing, handing back a fresh [Guard].
type Cond[T any] struct {
	m *Mutex[T]
	n *Notify
}

// NewCond returns a new [Cond] associated with m.
func NewCond[T any](m *Mutex[T]) *Cond[T] {
	return &Cond[T]{m: m, n: NewNotify()}
}

// Signal wakes one waiter blocked in Wait, if any.
func (c *Cond[T]) Signal() {
	c.n.NotifyOne()
}

// Broadcast wakes every waiter currently blocked in Wait.
func (c *Cond[T]) Broadcast() {
	c.n.NotifyAll()
}

// Wait returns a [Future] that releases guard, waits for a Signal or
// Broadcast, then reacquires the mutex and completes with the new [Guard].
// guard must not be used again after calling Wait.
func (c *Cond[T]) Wait(guard *Guard[T]) Future[*Guard[T]] {
	return FutureFunc[*Guard[T]](func() AsyncComputation[*Guard[T]] {
		return &condWaitComputation[T]{c: c, guard: guard}
	})
}

type condWaitComputation[T any] struct {
	c        *Cond[T]
	guard    *Guard[T]
	released bool
	wait     AsyncComputation[struct{}]
	relock   AsyncComputation[*Guard[T]]
}

func (c *condWaitComputation[T]) Poll(ctx *Context) (Poll[*Guard[T]], error) {
	if !c.released {
		c.released = true
		// Register as a waiter before releasing the guard, so a Signal sent
		// right after the release cannot be missed.
		c.wait = c.c.n.Wait().RunComputation()
		if _, err := c.wait.Poll(ctx); err != nil {
			c.guard.Release()
			return Poll[*Guard[T]]{}, err
		}
		c.guard.Release()
	}

	if c.relock == nil {
		p, err := c.wait.Poll(ctx)
		if err != nil {
			return Poll[*Guard[T]]{}, err
		}
		if !p.Ready {
			return Poll[*Guard[T]]{}, nil
		}
		c.wait = nil
		c.relock = c.c.m.Lock().RunComputation()
	}

	return c.relock.Poll(ctx)
}

// Cancel abandons a pending Wait. The mutex was already released when Wait
// started, so Cancel only needs to withdraw from whichever of the
// notification wait or the relock attempt is in flight; the caller does not
// re-acquire the mutex.
func (c *condWaitComputation[T]) Cancel() {
	if c.wait != nil {
		c.wait.Cancel()
	}
	if c.relock != nil {
		c.relock.Cancel()
	}
}
