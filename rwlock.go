package poll

import "sync"

// RwLock guards a value of type T, granting either any number of
// simultaneous readers or exactly one writer. Once a writer is queued, new
// readers queue behind it instead of jumping ahead, so that a steady stream
// of readers cannot starve a writer.
type RwLock[T any] struct {
	mu           sync.Mutex
	value        T
	readers      int
	writing      bool
	readWaiters  waiterQueue[*OnceVar[struct{}]]
	writeWaiters waiterQueue[*OnceVar[struct{}]]
}

// NewRwLock returns a new, unlocked [RwLock] guarding the initial value v.
func NewRwLock[T any](v T) *RwLock[T] {
	return &RwLock[T]{value: v}
}

// RLock returns a [Future] that completes with an [RGuard] once a read
// lock can be acquired.
func (rw *RwLock[T]) RLock() Future[*RGuard[T]] {
	return FutureFunc[*RGuard[T]](func() AsyncComputation[*RGuard[T]] {
		return &rwlockRLockComputation[T]{rw: rw}
	})
}

// Lock returns a [Future] that completes with a [WGuard] once the write
// lock can be acquired.
func (rw *RwLock[T]) Lock() Future[*WGuard[T]] {
	return FutureFunc[*WGuard[T]](func() AsyncComputation[*WGuard[T]] {
		return &rwlockLockComputation[T]{rw: rw}
	})
}

func (rw *RwLock[T]) wakeNextWriterLocked() bool {
	cell, ok := rw.writeWaiters.PopFront()
	if !ok {
		return false
	}
	rw.writing = true
	cell.TryWrite(struct{}{})
	return true
}

func (rw *RwLock[T]) wakeReadersLocked() {
	rw.readWaiters.DrainInto(func(cell *OnceVar[struct{}]) {
		rw.readers++
		cell.TryWrite(struct{}{})
	})
}

func (rw *RwLock[T]) runlock() {
	rw.mu.Lock()
	rw.readers--
	if rw.readers == 0 {
		rw.wakeNextWriterLocked()
	}
	rw.mu.Unlock()
}

func (rw *RwLock[T]) wunlock() {
	rw.mu.Lock()
	rw.writing = false
	if !rw.wakeNextWriterLocked() {
		rw.wakeReadersLocked()
	}
	rw.mu.Unlock()
}

// RGuard is the token returned by a successful [RwLock.RLock].
type RGuard[T any] struct {
	rw       *RwLock[T]
	released bool
}

// Value returns the value guarded by g's [RwLock].
func (g *RGuard[T]) Value() T {
	return g.rw.value
}

// Release releases the read lock. Calling Release more than once is a
// no-op after the first call.
func (g *RGuard[T]) Release() {
	if g.released {
		return
	}
	g.released = true
	g.rw.runlock()
}

// WGuard is the token returned by a successful [RwLock.Lock].
type WGuard[T any] struct {
	rw       *RwLock[T]
	released bool
}

// Value returns a pointer to the value guarded by g's [RwLock].
func (g *WGuard[T]) Value() *T {
	return &g.rw.value
}

// Release releases the write lock. Calling Release more than once is a
// no-op after the first call.
func (g *WGuard[T]) Release() {
	if g.released {
		return
	}
	g.released = true
	g.rw.wunlock()
}

type rwlockRLockComputation[T any] struct {
	rw       *RwLock[T]
	cell     *OnceVar[struct{}]
	node     *waiterNode[*OnceVar[struct{}]]
	acquired bool
}

func (c *rwlockRLockComputation[T]) Poll(ctx *Context) (Poll[*RGuard[T]], error) {
	if c.acquired {
		return ReadyPoll(&RGuard[T]{rw: c.rw}), nil
	}

	if c.cell == nil {
		c.rw.mu.Lock()
		if !c.rw.writing && c.rw.writeWaiters.Empty() {
			c.rw.readers++
			c.rw.mu.Unlock()
			c.acquired = true
			return ReadyPoll(&RGuard[T]{rw: c.rw}), nil
		}
		c.cell = NewOnceVar[struct{}]()
		c.node = c.rw.readWaiters.PushBack(c.cell)
		c.rw.mu.Unlock()
	}

	p, err := c.cell.Poll(ctx)
	if err != nil {
		return Poll[*RGuard[T]]{}, err
	}
	if !p.Ready {
		return Poll[*RGuard[T]]{}, nil
	}

	c.acquired = true
	return ReadyPoll(&RGuard[T]{rw: c.rw}), nil
}

func (c *rwlockRLockComputation[T]) Cancel() {
	if c.acquired || c.cell == nil {
		return
	}

	c.rw.mu.Lock()
	if _, already := c.cell.TryRead().Get(); already {
		c.rw.readers--
		if c.rw.readers == 0 {
			c.rw.wakeNextWriterLocked()
		}
	} else {
		c.rw.readWaiters.Remove(c.node)
	}
	c.rw.mu.Unlock()

	c.cell.Cancel()
}

type rwlockLockComputation[T any] struct {
	rw       *RwLock[T]
	cell     *OnceVar[struct{}]
	node     *waiterNode[*OnceVar[struct{}]]
	acquired bool
}

func (c *rwlockLockComputation[T]) Poll(ctx *Context) (Poll[*WGuard[T]], error) {
	if c.acquired {
		return ReadyPoll(&WGuard[T]{rw: c.rw}), nil
	}

	if c.cell == nil {
		c.rw.mu.Lock()
		if !c.rw.writing && c.rw.readers == 0 {
			c.rw.writing = true
			c.rw.mu.Unlock()
			c.acquired = true
			return ReadyPoll(&WGuard[T]{rw: c.rw}), nil
		}
		c.cell = NewOnceVar[struct{}]()
		c.node = c.rw.writeWaiters.PushBack(c.cell)
		c.rw.mu.Unlock()
	}

	p, err := c.cell.Poll(ctx)
	if err != nil {
		return Poll[*WGuard[T]]{}, err
	}
	if !p.Ready {
		return Poll[*WGuard[T]]{}, nil
	}

	c.acquired = true
	return ReadyPoll(&WGuard[T]{rw: c.rw}), nil
}

func (c *rwlockLockComputation[T]) Cancel() {
	if c.acquired || c.cell == nil {
		return
	}

	c.rw.mu.Lock()
	if _, already := c.cell.TryRead().Get(); already {
		c.rw.writing = false
		if !c.rw.wakeNextWriterLocked() {
			c.rw.wakeReadersLocked()
		}
	} else {
		c.rw.writeWaiters.Remove(c.node)
	}
	c.rw.mu.Unlock()

	c.cell.Cancel()
}
