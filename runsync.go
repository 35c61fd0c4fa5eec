package poll

import (
	"sync"

	"github.com/rs/zerolog"
)

// RunSyncOption configures [RunSync].
type RunSyncOption func(*runSyncConfig)

type runSyncConfig struct {
	log zerolog.Logger
}

// WithLogger attaches a logger to [RunSync], used to report a panic
// recovered from f's own Poll.
func WithLogger(log zerolog.Logger) RunSyncOption {
	return func(c *runSyncConfig) { c.log = log }
}

// RunSync drives f to completion on the calling goroutine: it polls the
// computation, and whenever it reports Pending, blocks until the
// computation's own Waker fires before polling again. There is no
// concurrency and no queue; this is the minimal driver for code that just
// wants the result of one computation without setting up an [Executor].
//
// If f's computation never becomes Ready and never wakes the caller, RunSync
// blocks forever; cancel through a context passed into f's own construction
// rather than expecting RunSync to time out on its own.
func RunSync[T any](f Future[T], opts ...RunSyncOption) (T, error) {
	cfg := runSyncConfig{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	comp := f.RunComputation()

	w := &syncWaker{}
	ctx := NewContext(w)

	for {
		p, err := recoverPoll(func() (Poll[T], error) { return comp.Poll(ctx) })
		if err != nil {
			if pe, ok := err.(*panicError); ok {
				cfg.log.Error().Err(pe).Msg("poll: RunSync computation panicked")
			}
			var zero T
			return zero, err
		}
		if p.Ready {
			return p.Value, nil
		}
		w.wait()
	}
}

// syncWaker is an auto-reset wait handle: Wake arms it (or, if somebody is
// already blocked in wait, releases them immediately), and wait blocks
// until the next Wake after it was called, then disarms automatically.
// Calling Wake when nobody is waiting, or calling it multiple times before
// the next wait, is safe and collapses to a single pending wakeup.
type syncWaker struct {
	mu      sync.Mutex
	cond    sync.Cond
	pending bool
}

func (w *syncWaker) Wake() {
	w.mu.Lock()
	if w.cond.L == nil {
		w.cond.L = &w.mu
	}
	w.pending = true
	w.cond.Signal()
	w.mu.Unlock()
}

func (w *syncWaker) wait() {
	w.mu.Lock()
	if w.cond.L == nil {
		w.cond.L = &w.mu
	}
	for !w.pending {
		w.cond.Wait()
	}
	w.pending = false
	w.mu.Unlock()
}
