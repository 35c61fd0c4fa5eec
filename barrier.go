package poll

import "sync"

// Barrier lets n parties synchronize: the n-th arrival releases all of
// them simultaneously, including itself.
type Barrier struct {
	mu      sync.Mutex
	n       int
	waiting int
	waiters waiterQueue[*OnceVar[struct{}]]
}

// NewBarrier returns a new [Barrier] for n parties. NewBarrier panics if n
// is not positive.
func NewBarrier(n int) *Barrier {
	if n <= 0 {
		panic("poll: NewBarrier: n must be positive")
	}
	return &Barrier{n: n}
}

// Arrive returns a [Future] that completes once n parties, including this
// one, have called Arrive.
func (b *Barrier) Arrive() Future[struct{}] {
	return FutureFunc[struct{}](func() AsyncComputation[struct{}] {
		return &barrierArriveComputation{b: b}
	})
}

type barrierArriveComputation struct {
	b        *Barrier
	cell     *OnceVar[struct{}]
	node     *waiterNode[*OnceVar[struct{}]]
	arrived  bool
	released bool
}

func (c *barrierArriveComputation) Poll(ctx *Context) (Poll[struct{}], error) {
	if c.released {
		return ReadyPoll(struct{}{}), nil
	}

	if !c.arrived {
		c.arrived = true

		c.b.mu.Lock()
		c.b.waiting++
		if c.b.waiting == c.b.n {
			c.b.waiting = 0
			c.b.waiters.DrainInto(func(cell *OnceVar[struct{}]) { cell.TryWrite(struct{}{}) })
			c.b.mu.Unlock()
			c.released = true
			return ReadyPoll(struct{}{}), nil
		}
		c.cell = NewOnceVar[struct{}]()
		c.node = c.b.waiters.PushBack(c.cell)
		c.b.mu.Unlock()
	}

	p, err := c.cell.Poll(ctx)
	if err != nil {
		return Poll[struct{}]{}, err
	}
	if !p.Ready {
		return Poll[struct{}]{}, nil
	}

	c.released = true
	return ReadyPoll(struct{}{}), nil
}

// Cancel withdraws a not-yet-released arrival, giving its slot back to the
// barrier. If the barrier had already released this waiter (the round
// completed) cancelling it has no effect on the other parties, which have
// already been released.
func (c *barrierArriveComputation) Cancel() {
	if c.released || !c.arrived {
		return
	}

	c.b.mu.Lock()
	if _, already := c.cell.TryRead().Get(); !already {
		c.b.waiters.Remove(c.node)
		c.b.waiting--
	}
	c.b.mu.Unlock()

	c.cell.Cancel()
}
