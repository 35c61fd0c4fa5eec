package poll_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollkit/poll"
)

func drive[T any](t *testing.T, f poll.Future[T]) (T, error) {
	t.Helper()
	return poll.RunSync(f)
}

func TestLazyEvaluatesOnceAndMemoizes(t *testing.T) {
	calls := 0
	f := poll.Lazy(func() int {
		calls++
		return calls
	})

	comp := f.RunComputation()
	ctx := poll.NewContext(poll.NopWaker)

	p1, _ := comp.Poll(ctx)
	p2, _ := comp.Poll(ctx)

	assert.Equal(t, 1, calls)
	assert.Equal(t, p1, p2)
}

func TestMapTransformsReadyValue(t *testing.T) {
	v, err := drive(t, poll.Map(poll.Ready(3), func(n int) int { return n * 2 }))
	require.NoError(t, err)
	assert.Equal(t, 6, v)
}

func TestMapFusionAssociativity(t *testing.T) {
	double := func(n int) int { return n * 2 }
	inc := func(n int) int { return n + 1 }

	fused := poll.Map(poll.Ready(5), func(n int) int { return inc(double(n)) })
	chained := poll.Map(poll.Map(poll.Ready(5), double), inc)

	a, errA := drive(t, fused)
	b, errB := drive(t, chained)

	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.True(t, cmp.Equal(a, b))
}

func TestBindChainsComputations(t *testing.T) {
	result := poll.Bind(poll.Ready(2), func(n int) poll.Future[int] {
		return poll.Bind(poll.Ready(n*10), func(m int) poll.Future[int] {
			return poll.Ready(m + 1)
		})
	})

	v, err := drive(t, result)
	require.NoError(t, err)
	assert.Equal(t, 21, v)
}

func TestBindAssociativity(t *testing.T) {
	f := func(n int) poll.Future[int] { return poll.Ready(n + 1) }
	g := func(n int) poll.Future[int] { return poll.Ready(n * 2) }

	left := poll.Bind(poll.Bind(poll.Ready(3), f), g)
	right := poll.Bind(poll.Ready(3), func(n int) poll.Future[int] {
		return poll.Bind(f(n), g)
	})

	a, errA := drive(t, left)
	b, errB := drive(t, right)

	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, a, b)
}

func TestApplyCombinesBothSidesOnceBothReady(t *testing.T) {
	fF := poll.Ready(func(n int) int { return n + 100 })
	vF := poll.Ready(21)

	v, err := drive(t, poll.Apply(fF, vF))
	require.NoError(t, err)
	assert.Equal(t, 121, v)
}

var errBoom = errors.New("boom")

func TestCatchConvertsErrorToResult(t *testing.T) {
	failing := poll.FutureFunc[int](func() poll.AsyncComputation[int] {
		return poll.FromPollFunc(
			func(*poll.Context) (poll.Poll[int], error) { return poll.Poll[int]{}, errBoom },
			func() {},
		)
	})

	r, err := drive(t, poll.Catch(failing))
	require.NoError(t, err)
	assert.False(t, r.Ok())
	assert.ErrorIs(t, r.Err, errBoom)
}

func TestIgnoreDropsValue(t *testing.T) {
	_, err := drive(t, poll.Ignore(poll.Ready(123)))
	require.NoError(t, err)
}

func TestYieldCompletesOnSecondPoll(t *testing.T) {
	comp := poll.Yield().RunComputation()

	woke := 0
	ctx := poll.NewContext(poll.WakerFunc(func() { woke++ }))

	p1, err1 := comp.Poll(ctx)
	require.NoError(t, err1)
	assert.False(t, p1.Ready)
	assert.Equal(t, 1, woke)

	p2, err2 := comp.Poll(ctx)
	require.NoError(t, err2)
	assert.True(t, p2.Ready)
}

func TestRetryRetriesUpToN(t *testing.T) {
	attempts := 0
	f := func() poll.Future[int] {
		attempts++
		if attempts < 3 {
			return poll.FutureFunc[int](func() poll.AsyncComputation[int] {
				return poll.FromPollFunc(
					func(*poll.Context) (poll.Poll[int], error) { return poll.Poll[int]{}, errBoom },
					func() {},
				)
			})
		}
		return poll.Ready(attempts)
	}

	v, err := drive(t, poll.Retry(5, f))
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, 3, attempts)
}

func TestRetryExhaustsAndReturnsLastError(t *testing.T) {
	f := func() poll.Future[int] {
		return poll.FutureFunc[int](func() poll.AsyncComputation[int] {
			return poll.FromPollFunc(
				func(*poll.Context) (poll.Poll[int], error) { return poll.Poll[int]{}, errBoom },
				func() {},
			)
		})
	}

	_, err := drive(t, poll.Retry(2, f))
	assert.ErrorIs(t, err, errBoom)
}

func TestWithCancellationFuseReportsDeterministicErrorAfterCancel(t *testing.T) {
	comp := poll.WithCancellationFuse[int](poll.Never[int]().RunComputation())
	comp.Cancel()

	_, err := comp.Poll(poll.NewContext(poll.NopWaker))
	assert.ErrorIs(t, err, poll.ErrFutureCancelled)
}
