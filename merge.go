package poll

// Pair is the result type of [Merge].
type Pair[A, B any] struct {
	First  A
	Second B
}

// Merge returns a [Future] whose computation polls a and b on every call,
// independently; once both have produced a value, it returns Ready of the
// pair. Both sides are polled on every outer poll, left first, then right;
// neither is favored.
//
// If either side's Poll reports an error, the other side is cancelled and
// the same error is propagated from every subsequent poll.
func Merge[A, B any](a Future[A], b Future[B]) Future[Pair[A, B]] {
	return FutureFunc[Pair[A, B]](func() AsyncComputation[Pair[A, B]] {
		return &mergeComputation[A, B]{ac: a.RunComputation(), bc: b.RunComputation()}
	})
}

type mergeComputation[A, B any] struct {
	ac       AsyncComputation[A]
	bc       AsyncComputation[B]
	aDone    bool
	aValue   A
	bDone    bool
	bValue   B
	latched  error
	canceled bool
}

func (c *mergeComputation[A, B]) Poll(ctx *Context) (Poll[Pair[A, B]], error) {
	if c.latched != nil {
		return Poll[Pair[A, B]]{}, c.latched
	}

	if !c.aDone {
		p, err := c.ac.Poll(ctx)
		if err != nil {
			c.latch(err)
			return Poll[Pair[A, B]]{}, err
		}
		if p.Ready {
			c.aDone, c.aValue, c.ac = true, p.Value, nil
		}
	}

	if !c.bDone {
		p, err := c.bc.Poll(ctx)
		if err != nil {
			c.latch(err)
			return Poll[Pair[A, B]]{}, err
		}
		if p.Ready {
			c.bDone, c.bValue, c.bc = true, p.Value, nil
		}
	}

	if !c.aDone || !c.bDone {
		return Poll[Pair[A, B]]{}, nil
	}

	return ReadyPoll(Pair[A, B]{First: c.aValue, Second: c.bValue}), nil
}

func (c *mergeComputation[A, B]) latch(err error) {
	c.latched = err
	if !c.aDone && c.ac != nil {
		c.ac.Cancel()
		c.ac = nil
	}
	if !c.bDone && c.bc != nil {
		c.bc.Cancel()
		c.bc = nil
	}
}

func (c *mergeComputation[A, B]) Cancel() {
	if c.canceled {
		return
	}
	c.canceled = true
	if !c.aDone && c.ac != nil {
		c.ac.Cancel()
	}
	if !c.bDone && c.bc != nil {
		c.bc.Cancel()
	}
}

// First returns a [Future] whose computation polls a, then b, on every
// call; on the first Ready from either side it cancels the other and
// returns that Ready. a is polled first; ties favor a.
//
// If either side's Poll reports an error before a winner is decided, the
// other side is cancelled and the same error is propagated from every
// subsequent poll.
func First[T any](a, b Future[T]) Future[T] {
	return FutureFunc[T](func() AsyncComputation[T] {
		return &firstComputation[T]{ac: a.RunComputation(), bc: b.RunComputation()}
	})
}

type firstComputation[T any] struct {
	ac, bc   AsyncComputation[T]
	done     bool
	value    T
	latched  error
	canceled bool
}

func (c *firstComputation[T]) Poll(ctx *Context) (Poll[T], error) {
	if c.done {
		return ReadyPoll(c.value), nil
	}
	if c.latched != nil {
		return Poll[T]{}, c.latched
	}

	if p, err := c.ac.Poll(ctx); err != nil {
		c.latch(err, c.bc)
		return Poll[T]{}, err
	} else if p.Ready {
		return c.win(p.Value, c.bc), nil
	}

	if p, err := c.bc.Poll(ctx); err != nil {
		c.latch(err, c.ac)
		return Poll[T]{}, err
	} else if p.Ready {
		return c.win(p.Value, c.ac), nil
	}

	return Poll[T]{}, nil
}

func (c *firstComputation[T]) win(v T, loser AsyncComputation[T]) Poll[T] {
	c.done, c.value = true, v
	c.ac, c.bc = nil, nil
	if loser != nil {
		loser.Cancel()
	}
	return ReadyPoll(v)
}

func (c *firstComputation[T]) latch(err error, other AsyncComputation[T]) {
	c.latched = err
	c.ac, c.bc = nil, nil
	if other != nil {
		other.Cancel()
	}
}

func (c *firstComputation[T]) Cancel() {
	if c.canceled || c.done {
		return
	}
	c.canceled = true
	if c.ac != nil {
		c.ac.Cancel()
	}
	if c.bc != nil {
		c.bc.Cancel()
	}
}

// All is the n-ary generalization of [Merge]: it returns a [Future] whose
// computation polls every input on every call and collects the results, in
// input order, once all of them are ready.
//
// If any input's Poll reports an error, every other input is cancelled and
// the same error is propagated from every subsequent poll.
func All[T any](cs ...Future[T]) Future[[]T] {
	return FutureFunc[[]T](func() AsyncComputation[[]T] {
		children := make([]AsyncComputation[T], len(cs))
		for i, c := range cs {
			children[i] = c.RunComputation()
		}
		return &allComputation[T]{
			children: children,
			done:     make([]bool, len(cs)),
			results:  make([]T, len(cs)),
		}
	})
}

type allComputation[T any] struct {
	children []AsyncComputation[T]
	done     []bool
	results  []T
	left     int
	latched  error
	canceled bool
}

func (c *allComputation[T]) Poll(ctx *Context) (Poll[[]T], error) {
	if c.latched != nil {
		return Poll[[]T]{}, c.latched
	}

	remaining := 0
	for i, child := range c.children {
		if c.done[i] {
			continue
		}
		p, err := child.Poll(ctx)
		if err != nil {
			c.latch(err)
			return Poll[[]T]{}, err
		}
		if p.Ready {
			c.done[i], c.results[i] = true, p.Value
			continue
		}
		remaining++
	}

	if remaining != 0 {
		return Poll[[]T]{}, nil
	}

	return ReadyPoll(c.results), nil
}

func (c *allComputation[T]) latch(err error) {
	c.latched = err
	for i, child := range c.children {
		if !c.done[i] && child != nil {
			child.Cancel()
		}
	}
	c.children = nil
}

func (c *allComputation[T]) Cancel() {
	if c.canceled {
		return
	}
	c.canceled = true
	for i, child := range c.children {
		if !c.done[i] && child != nil {
			child.Cancel()
		}
	}
}

// Any is the n-ary generalization of [First]: it returns a [Future] whose
// computation polls every input, left to right, on every call, and returns
// the first Ready it finds, cancelling the rest. Ties favor the
// left-most input.
func Any[T any](cs ...Future[T]) Future[T] {
	return FutureFunc[T](func() AsyncComputation[T] {
		children := make([]AsyncComputation[T], len(cs))
		for i, c := range cs {
			children[i] = c.RunComputation()
		}
		return &anyComputation[T]{children: children}
	})
}

type anyComputation[T any] struct {
	children []AsyncComputation[T]
	done     bool
	value    T
	latched  error
	canceled bool
}

func (c *anyComputation[T]) Poll(ctx *Context) (Poll[T], error) {
	if c.done {
		return ReadyPoll(c.value), nil
	}
	if c.latched != nil {
		return Poll[T]{}, c.latched
	}

	for i, child := range c.children {
		p, err := child.Poll(ctx)
		if err != nil {
			c.latched = err
			c.cancelAllExcept(-1)
			return Poll[T]{}, err
		}
		if p.Ready {
			c.done, c.value = true, p.Value
			c.cancelAllExcept(i)
			return ReadyPoll(p.Value), nil
		}
	}

	return Poll[T]{}, nil
}

func (c *anyComputation[T]) cancelAllExcept(winner int) {
	for i, child := range c.children {
		if i != winner && child != nil {
			child.Cancel()
		}
	}
	c.children = nil
}

func (c *anyComputation[T]) Cancel() {
	if c.canceled || c.done {
		return
	}
	c.canceled = true
	for _, child := range c.children {
		if child != nil {
			child.Cancel()
		}
	}
}
