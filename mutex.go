package poll

import "sync"

// Mutex guards a value of type T, granting access to exactly one holder at
// a time through a [Guard].
type Mutex[T any] struct {
	mu      sync.Mutex
	locked  bool
	value   T
	waiters waiterQueue[*OnceVar[struct{}]]
}

// NewMutex returns a new, unlocked [Mutex] guarding the initial value v.
func NewMutex[T any](v T) *Mutex[T] {
	return &Mutex[T]{value: v}
}

// Lock returns a [Future] that completes with a [Guard] once the mutex can
// be acquired.
func (m *Mutex[T]) Lock() Future[*Guard[T]] {
	return FutureFunc[*Guard[T]](func() AsyncComputation[*Guard[T]] {
		return &mutexLockComputation[T]{m: m}
	})
}

func (m *Mutex[T]) wakeNextOrUnlock() {
	cell, ok := m.waiters.PopFront()
	if !ok {
		m.locked = false
		return
	}
	cell.TryWrite(struct{}{})
}

// A Guard is the token returned by a successful [Mutex.Lock], granting
// access to the guarded value until Release is called.
type Guard[T any] struct {
	m        *Mutex[T]
	released bool
}

// Value returns a pointer to the value guarded by g's [Mutex]. Valid until
// Release is called.
func (g *Guard[T]) Value() *T {
	return &g.m.value
}

// Release releases the mutex, waking the next waiter in line if there is
// one. Calling Release more than once is a no-op after the first call.
func (g *Guard[T]) Release() {
	if g.released {
		return
	}
	g.released = true

	g.m.mu.Lock()
	g.m.wakeNextOrUnlock()
	g.m.mu.Unlock()
}

type mutexLockComputation[T any] struct {
	m        *Mutex[T]
	cell     *OnceVar[struct{}]
	node     *waiterNode[*OnceVar[struct{}]]
	acquired bool
}

func (c *mutexLockComputation[T]) Poll(ctx *Context) (Poll[*Guard[T]], error) {
	if c.acquired {
		return ReadyPoll(&Guard[T]{m: c.m}), nil
	}

	if c.cell == nil {
		c.m.mu.Lock()
		if !c.m.locked {
			c.m.locked = true
			c.m.mu.Unlock()
			c.acquired = true
			return ReadyPoll(&Guard[T]{m: c.m}), nil
		}
		c.cell = NewOnceVar[struct{}]()
		c.node = c.m.waiters.PushBack(c.cell)
		c.m.mu.Unlock()
	}

	p, err := c.cell.Poll(ctx)
	if err != nil {
		return Poll[*Guard[T]]{}, err
	}
	if !p.Ready {
		return Poll[*Guard[T]]{}, nil
	}

	c.acquired = true
	return ReadyPoll(&Guard[T]{m: c.m}), nil
}

// Cancel abandons a pending Lock. If the lock had already been granted to
// this waiter (the cell carries a value) but the caller gave up before
// taking it, the lock is handed to the next waiter, or released entirely,
// instead of being leaked.
func (c *mutexLockComputation[T]) Cancel() {
	if c.acquired || c.cell == nil {
		return
	}

	c.m.mu.Lock()
	if _, already := c.cell.TryRead().Get(); already {
		c.m.wakeNextOrUnlock()
	} else {
		c.m.waiters.Remove(c.node)
	}
	c.m.mu.Unlock()

	c.cell.Cancel()
}
