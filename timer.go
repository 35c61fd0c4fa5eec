package poll

import (
	"time"

	"fortio.org/safecast"
)

// Sleep returns a [Future] that becomes Ready after d has elapsed on clk.
// Cancelling it before it fires stops the underlying timer.
func Sleep(clk Clock, d time.Duration) Future[struct{}] {
	return After(clk, clk.Now().Add(d))
}

// SleepMs is [Sleep] for callers carrying a duration as an unsigned
// millisecond count, as is common when that count arrives from an external
// source (a config value, a wire message). The conversion to a
// [time.Duration] is bounds-checked rather than silently wrapping on an
// oversized value.
func SleepMs(clk Clock, ms uint64) Future[struct{}] {
	maxMillis := int64(time.Duration(1<<63-1) / time.Millisecond)
	millis, err := safecast.Conv[int64](ms)
	if err != nil || millis > maxMillis {
		millis = maxMillis
	}
	return Sleep(clk, time.Duration(millis)*time.Millisecond)
}

// After returns a [Future] that becomes Ready once clk's current time
// reaches deadline. If deadline has already passed, the returned
// computation is Ready on its very first poll.
func After(clk Clock, deadline time.Time) Future[struct{}] {
	return FutureFunc[struct{}](func() AsyncComputation[struct{}] {
		return &timerComputation{clk: clk, deadline: deadline}
	})
}

type timerComputation struct {
	clk      Clock
	deadline time.Time
	cell     *OnceVar[struct{}]
	stop     StopFunc
}

func (c *timerComputation) Poll(ctx *Context) (Poll[struct{}], error) {
	if c.cell == nil {
		if !c.clk.Now().Before(c.deadline) {
			return ReadyPoll(struct{}{}), nil
		}
		c.cell = NewOnceVar[struct{}]()
		d := c.deadline.Sub(c.clk.Now())
		cell := c.cell
		c.stop = c.clk.AfterFunc(d, func() { cell.TryWrite(struct{}{}) })
	}

	return c.cell.Poll(ctx)
}

func (c *timerComputation) Cancel() {
	if c.stop != nil {
		c.stop()
	}
	if c.cell != nil {
		c.cell.Cancel()
	}
}
