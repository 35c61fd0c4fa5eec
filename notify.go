package poll

import "sync"

// Notify is a signal that can wake one waiter at a time or all of them at
// once. Each waiter is a [OnceVar] awaited by the caller; NotifyOne pops the
// front waiter and writes unit into its cell, NotifyAll drains the whole
// queue the same way.
type Notify struct {
	mu      sync.Mutex
	waiters waiterQueue[*OnceVar[struct{}]]
}

// NewNotify returns a new, empty [Notify].
func NewNotify() *Notify {
	return &Notify{}
}

// NotifyOne wakes the longest-waiting [Notify.Wait] caller, if any.
func (n *Notify) NotifyOne() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.wakeOneLocked()
}

// NotifyAll wakes every current [Notify.Wait] caller.
func (n *Notify) NotifyAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for n.wakeOneLocked() {
	}
}

func (n *Notify) wakeOneLocked() bool {
	cell, ok := n.waiters.PopFront()
	if !ok {
		return false
	}
	cell.TryWrite(struct{}{})
	return true
}

// Wait returns a [Future] that completes the next time n is notified, by
// either NotifyOne or NotifyAll.
func (n *Notify) Wait() Future[struct{}] {
	return FutureFunc[struct{}](func() AsyncComputation[struct{}] {
		return &notifyWaitComputation{n: n}
	})
}

type notifyWaitComputation struct {
	n    *Notify
	cell *OnceVar[struct{}]
	node *waiterNode[*OnceVar[struct{}]]
	done bool
}

func (c *notifyWaitComputation) Poll(ctx *Context) (Poll[struct{}], error) {
	if c.done {
		return ReadyPoll(struct{}{}), nil
	}

	if c.cell == nil {
		c.cell = NewOnceVar[struct{}]()
		c.n.mu.Lock()
		c.node = c.n.waiters.PushBack(c.cell)
		c.n.mu.Unlock()
	}

	p, err := c.cell.Poll(ctx)
	if err != nil {
		return Poll[struct{}]{}, err
	}
	if !p.Ready {
		return Poll[struct{}]{}, nil
	}

	c.done = true
	return ReadyPoll(struct{}{}), nil
}

// Cancel removes the waiter from the queue. If it was already woken (the
// cell already carries a value) when cancellation happens, the wakeup is
// not simply dropped: it is passed on to the next waiter in line, so a
// NotifyOne call is never silently absorbed by a waiter that gives up
// before observing it.
func (c *notifyWaitComputation) Cancel() {
	if c.done || c.cell == nil {
		return
	}

	c.n.mu.Lock()
	if _, already := c.cell.TryRead().Get(); already {
		c.n.wakeOneLocked()
	} else {
		c.n.waiters.Remove(c.node)
	}
	c.n.mu.Unlock()

	c.cell.Cancel()
}
