package poll

import "errors"

// ErrFutureCancelled is reported by a [Poll] of a computation that has been
// cancelled. Whether an internal poll reports it, as opposed to simply
// unwinding quietly, depends on the combinator — see [WithCancellationFuse]
// for a wrapper that makes it deterministic.
var ErrFutureCancelled = errors.New("poll: future cancelled")

// ErrOnceVarDoubleWrite is reported by [OnceVar.Write] when the cell already
// holds a value. [OnceVar.TryWrite] reports the same condition as a false
// return instead of an error.
var ErrOnceVarDoubleWrite = errors.New("poll: oncevar already written")
