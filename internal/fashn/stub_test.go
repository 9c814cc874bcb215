package fashn

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubClient_ReplaysScript(t *testing.T) {
	ctx := context.Background()
	stub := NewStubClient(Queued(), Processing(), Completed("X"))

	id, err := stub.Submit(ctx, SubmitRequest{PersonImage: "p"})
	require.NoError(t, err)
	assert.Equal(t, "stub-1", id)

	states := []State{}
	for i := 0; i < 4; i++ {
		status, err := stub.Poll(ctx, id)
		require.NoError(t, err)
		states = append(states, status.State)
	}

	// the last step repeats
	assert.Equal(t, []State{StateQueued, StateProcessing, StateCompleted, StateCompleted}, states)
	assert.Equal(t, 4, stub.Polls())
	require.Len(t, stub.Submits(), 1)
	assert.Equal(t, "p", stub.Submits()[0].PersonImage)
}

func TestStubClient_TransientStep(t *testing.T) {
	stub := NewStubClient(Transient(), Completed("X"))

	_, err := stub.Poll(context.Background(), "id")
	assert.ErrorIs(t, err, ErrRemoteUnavailable)

	status, err := stub.Poll(context.Background(), "id")
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, status.Outputs)
}

func TestStubClient_SubmitError(t *testing.T) {
	stub := NewStubClient()
	stub.SubmitErr = ErrRemoteUnavailable

	_, err := stub.Submit(context.Background(), SubmitRequest{})
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}

func TestDemoClient_CompletesOnThirdPoll(t *testing.T) {
	ctx := context.Background()
	demo := NewDemoClient()

	id, err := demo.Submit(ctx, SubmitRequest{})
	require.NoError(t, err)

	first, err := demo.Poll(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StateQueued, first.State)

	second, err := demo.Poll(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StateProcessing, second.State)

	third, err := demo.Poll(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, third.State)
	require.Len(t, third.Outputs, 1)

	gone, err := demo.Poll(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, gone.State)
}

func TestDemoClient_DropsAbandonedJobs(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	demo := NewDemoClient()
	demo.now = func() time.Time { return now }

	abandoned, err := demo.Submit(ctx, SubmitRequest{})
	require.NoError(t, err)
	_, err = demo.Submit(ctx, SubmitRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, demo.Pending())

	now = now.Add(demoJobTTL + time.Second)

	fresh, err := demo.Submit(ctx, SubmitRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, demo.Pending())

	status, err := demo.Poll(ctx, abandoned)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, status.State)

	status, err = demo.Poll(ctx, fresh)
	require.NoError(t, err)
	assert.Equal(t, StateQueued, status.State)
}

func TestDemoClient_CompletedJobsAreForgotten(t *testing.T) {
	ctx := context.Background()
	demo := NewDemoClient()

	id, err := demo.Submit(ctx, SubmitRequest{})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := demo.Poll(ctx, id)
		require.NoError(t, err)
	}

	assert.Zero(t, demo.Pending())
}
