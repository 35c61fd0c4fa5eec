package poll

import "sync"

// Semaphore bounds asynchronous access to a resource: callers request
// access with a given weight, and release it later. A cancelled waiter
// that had already been granted its weight hands that weight to the next
// waiter instead of leaking it.
type Semaphore struct {
	mu      sync.Mutex
	size    int64
	cur     int64
	waiters waiterQueue[*semaWaiter]
}

type semaWaiter struct {
	cell *OnceVar[struct{}]
	n    int64
}

// NewSemaphore returns a new weighted [Semaphore] with the given maximum
// combined weight.
func NewSemaphore(n int64) *Semaphore {
	return &Semaphore{size: n}
}

// Acquire returns a [Future] that completes once a weight of n has been
// acquired from the semaphore. Acquire panics if n is negative.
func (s *Semaphore) Acquire(n int64) Future[struct{}] {
	if n < 0 {
		panic("poll: Semaphore.Acquire: negative weight")
	}
	return FutureFunc[struct{}](func() AsyncComputation[struct{}] {
		return &semaAcquireComputation{s: s, n: n}
	})
}

// Release releases the semaphore with a weight of n, waking as many queued
// waiters as now fit. Release panics if n is negative or exceeds the
// weight currently held.
func (s *Semaphore) Release(n int64) {
	if n < 0 {
		panic("poll: Semaphore.Release: negative weight")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur -= n
	if s.cur < 0 {
		panic("poll: Semaphore.Release: released more than held")
	}
	s.notifyWaitersLocked()
}

func (s *Semaphore) notifyWaitersLocked() {
	for {
		w, ok := s.waiters.Front()
		if !ok || s.size-s.cur < w.n {
			return
		}
		s.waiters.PopFront()
		s.cur += w.n
		w.cell.TryWrite(struct{}{})
	}
}

type semaAcquireComputation struct {
	s        *Semaphore
	n        int64
	w        *semaWaiter
	node     *waiterNode[*semaWaiter]
	acquired bool
}

func (c *semaAcquireComputation) Poll(ctx *Context) (Poll[struct{}], error) {
	if c.acquired {
		return ReadyPoll(struct{}{}), nil
	}

	if c.w == nil {
		c.s.mu.Lock()
		if c.s.size-c.s.cur >= c.n {
			c.s.cur += c.n
			c.s.mu.Unlock()
			c.acquired = true
			return ReadyPoll(struct{}{}), nil
		}
		c.w = &semaWaiter{cell: NewOnceVar[struct{}](), n: c.n}
		c.node = c.s.waiters.PushBack(c.w)
		c.s.mu.Unlock()
	}

	p, err := c.w.cell.Poll(ctx)
	if err != nil {
		return Poll[struct{}]{}, err
	}
	if !p.Ready {
		return Poll[struct{}]{}, nil
	}

	c.acquired = true
	return ReadyPoll(struct{}{}), nil
}

// Cancel abandons a pending Acquire. If the weight had already been
// granted to this waiter but not yet observed, it is returned to the
// semaphore and any now-fitting waiters are woken.
func (c *semaAcquireComputation) Cancel() {
	if c.acquired || c.w == nil {
		return
	}

	c.s.mu.Lock()
	if _, already := c.w.cell.TryRead().Get(); already {
		c.s.cur -= c.w.n
		c.s.notifyWaitersLocked()
	} else {
		c.s.waiters.Remove(c.node)
	}
	c.s.mu.Unlock()

	c.w.cell.Cancel()
}
