package poll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollkit/poll"
)

func TestExecutorRunsSpawnedTaskToCompletion(t *testing.T) {
	ex := poll.NewExecutor(noopLogger())
	h := poll.Spawn[int](ex, poll.Ready(42))
	ex.Run()

	v, err := poll.RunSync[int](h)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestExecutorAutorunDrivesSpawnAutomatically(t *testing.T) {
	ex := poll.NewExecutor(noopLogger())
	ex.Autorun(ex.Run)

	h := poll.Spawn[int](ex, poll.Ready(7))

	v, err := poll.RunSync[int](h)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestExecutorWakesAndReRunsAPendingTask(t *testing.T) {
	ex := poll.NewExecutor(noopLogger())
	n := poll.NewNotify()

	h := poll.Spawn[struct{}](ex, n.Wait())
	ex.Run()

	comp := h.RunComputation()
	p, err := comp.Poll(poll.NewContext(poll.NopWaker))
	require.NoError(t, err)
	assert.False(t, p.Ready) // still waiting on the notification

	n.NotifyOne()
	ex.Run()

	_, err = poll.RunSync[struct{}](h)
	require.NoError(t, err)
}

func TestJoinHandleCancelStopsTheSpawnedTask(t *testing.T) {
	ex := poll.NewExecutor(noopLogger())
	h := poll.SpawnComputation[struct{}](ex, poll.Never[struct{}]().RunComputation())
	ex.Run()

	h.Cancel()

	_, err := poll.RunSync[struct{}](h)
	assert.ErrorIs(t, err, poll.ErrFutureCancelled)
}

func TestExecutorTaskPanicBecomesAnErrorInsteadOfCrashing(t *testing.T) {
	ex := poll.NewExecutor(noopLogger())
	panicking := poll.FutureFunc[int](func() poll.AsyncComputation[int] {
		return poll.FromPollFunc(
			func(*poll.Context) (poll.Poll[int], error) { panic(errBoom) },
			func() {},
		)
	})

	h := poll.Spawn[int](ex, panicking)
	ex.Run()

	_, err := poll.RunSync[int](h)
	assert.ErrorIs(t, err, errBoom)
}

func TestExecutorShutdownCancelsQueuedTasks(t *testing.T) {
	ex := poll.NewExecutor(noopLogger())
	ex.Shutdown()

	// Spawning after shutdown cancels the task instead of queuing it.
	h := poll.SpawnComputation[struct{}](ex, poll.Never[struct{}]().RunComputation())
	_, err := poll.RunSync[struct{}](h)
	assert.ErrorIs(t, err, poll.ErrFutureCancelled)
}

func TestJoinAllWaitsForEveryHandle(t *testing.T) {
	ex := poll.NewExecutor(noopLogger())
	ex.Autorun(ex.Run)

	h1 := poll.Spawn[int](ex, poll.Ready(1))
	h2 := poll.Spawn[int](ex, poll.Ready(2))

	v, err := poll.RunSync(poll.JoinAll(h1, h2))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, v)
}

func TestJoinAnyReturnsFirstAndCancelsPollOfTheRest(t *testing.T) {
	ex := poll.NewExecutor(noopLogger())
	ex.Autorun(ex.Run)

	h1 := poll.Spawn[int](ex, poll.Ready(1))
	h2 := poll.SpawnComputation[int](ex, poll.Never[int]().RunComputation())

	v, err := poll.RunSync(poll.JoinAny(h1, h2))
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}
