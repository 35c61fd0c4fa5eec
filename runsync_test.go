package poll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollkit/poll"
)

func TestRunSyncReturnsReadyValueWithoutBlocking(t *testing.T) {
	v, err := poll.RunSync(poll.Ready(9))
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}

func TestRunSyncWaitsForAWakeBeforePollingAgain(t *testing.T) {
	f, c := pendingOnce("done")

	v, err := poll.RunSync(f)
	require.NoError(t, err)
	assert.Equal(t, "done", v)
	assert.True(t, c.polled)
}

func TestRunSyncPropagatesAComputationsError(t *testing.T) {
	failing := poll.FutureFunc[int](func() poll.AsyncComputation[int] {
		return poll.FromPollFunc(
			func(*poll.Context) (poll.Poll[int], error) { return poll.Poll[int]{}, errBoom },
			func() {},
		)
	})

	_, err := poll.RunSync(failing)
	assert.ErrorIs(t, err, errBoom)
}

func TestRunSyncRecoversAPanicIntoAnError(t *testing.T) {
	panicking := poll.FutureFunc[int](func() poll.AsyncComputation[int] {
		return poll.FromPollFunc(
			func(*poll.Context) (poll.Poll[int], error) { panic(errBoom) },
			func() {},
		)
	})

	_, err := poll.RunSync(panicking, poll.WithLogger(noopLogger()))
	assert.ErrorIs(t, err, errBoom)
}
