package poll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollkit/poll"
)

func TestNotifyOneWakesExactlyOneWaiter(t *testing.T) {
	n := poll.NewNotify()
	ex := poll.NewExecutor(noopLogger())

	h1 := poll.Spawn[struct{}](ex, n.Wait())
	h2 := poll.Spawn[struct{}](ex, n.Wait())
	ex.Run()

	n.NotifyOne()
	ex.Run()

	_, err1 := poll.RunSync[struct{}](h1)
	assert.NoError(t, err1)

	// h2 should still be pending; poll it once via RunSync would block
	// forever, so instead drive it manually for one step.
	comp := h2.RunComputation()
	p, err2 := comp.Poll(poll.NewContext(poll.NopWaker))
	require.NoError(t, err2)
	assert.False(t, p.Ready)
}

func TestNotifyAllWakesEveryWaiter(t *testing.T) {
	n := poll.NewNotify()
	ex := poll.NewExecutor(noopLogger())

	h1 := poll.Spawn[struct{}](ex, n.Wait())
	h2 := poll.Spawn[struct{}](ex, n.Wait())
	ex.Run()

	n.NotifyAll()
	ex.Run()

	_, err1 := poll.RunSync[struct{}](h1)
	_, err2 := poll.RunSync[struct{}](h2)
	assert.NoError(t, err1)
	assert.NoError(t, err2)
}

func TestNotifyCancelPassesWakeupForward(t *testing.T) {
	n := poll.NewNotify()

	first := n.Wait().RunComputation()
	second := n.Wait().RunComputation()

	ctx := poll.NewContext(poll.NopWaker)
	_, _ = first.Poll(ctx)
	_, _ = second.Poll(ctx)

	n.NotifyOne() // grants to first

	// first gives up without observing the grant; it must pass to second.
	first.Cancel()

	p, err := second.Poll(ctx)
	require.NoError(t, err)
	assert.True(t, p.Ready)
}
