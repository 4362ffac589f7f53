package swarm

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hupe1980/agentswarm/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoundRobin_EmptyRoster(t *testing.T) {
	_, err := NewRoundRobin("rr", nil)
	assert.ErrorIs(t, err, core.ErrNoAgents)
}

func TestRoundRobin_DispatchOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string
	mkAgent := func(id string) *stubAgent {
		return newStubAgent(id, func(_ context.Context, task core.Task) (string, error) {
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
			return id + " done", nil
		})
	}
	a0, a1, a2 := mkAgent("a0"), mkAgent("a1"), mkAgent("a2")

	s, err := NewRoundRobin("rr", roster(a0, a1, a2), func(o *RoundRobinOptions) {
		o.MaxLoops = 2
		o.RetryPolicy = core.NoRetry()
	})
	require.NoError(t, err)

	conv, err := s.Run(context.Background(), core.NewTask("t"))
	require.NoError(t, err)

	// k-th dispatch hits agent k mod N for every k in 0..N*M-1.
	want := []string{"a0", "a1", "a2", "a0", "a1", "a2"}
	assert.Equal(t, want, order)

	records := conv.Records()
	require.Len(t, records, 6)
	for k, rec := range records {
		assert.Equal(t, want[k], rec.AgentName)
		assert.False(t, rec.Failed())
	}
	assert.True(t, conv.Finalized())
}

func TestRoundRobin_RetrySameAgentThenAdvance(t *testing.T) {
	sentinel := errors.New("backend down")
	good := newStubAgent("good", nil)
	bad := newStubAgent("bad", func(context.Context, core.Task) (string, error) {
		return "", sentinel
	})
	tail := newStubAgent("tail", nil)

	s, err := NewRoundRobin("rr", roster(good, bad, tail), func(o *RoundRobinOptions) {
		o.RetryPolicy = core.ConstantBackoff(3, 0)
	})
	require.NoError(t, err)

	conv, err := s.Run(context.Background(), core.NewTask("t"))
	require.NoError(t, err)

	// The failing agent is retried in place, then the cycle advances.
	assert.Equal(t, 1, good.Calls())
	assert.Equal(t, 3, bad.Calls())
	assert.Equal(t, 1, tail.Calls())

	records := conv.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "bad", records[1].AgentName)
	assert.Equal(t, 3, records[1].Attempts)
	assert.ErrorIs(t, records[1].Err, sentinel)
	assert.False(t, records[2].Failed())
}

func TestRoundRobin_AdvanceNextAgentPolicy(t *testing.T) {
	bad := newStubAgent("bad", func(context.Context, core.Task) (string, error) {
		return "", errors.New("boom")
	})
	good := newStubAgent("good", nil)

	s, err := NewRoundRobin("rr", roster(bad, good), func(o *RoundRobinOptions) {
		o.RetryPolicy = core.ConstantBackoff(5, 0)
		o.FailurePolicy = AdvanceNextAgent
	})
	require.NoError(t, err)

	conv, err := s.Run(context.Background(), core.NewTask("t"))
	require.NoError(t, err)

	// A single attempt per agent regardless of the retry budget.
	assert.Equal(t, 1, bad.Calls())
	assert.Equal(t, 1, good.Calls())
	assert.Len(t, conv.Records(), 2)
}

func TestRoundRobin_NoLoops(t *testing.T) {
	ag := newStubAgent("a", nil)
	s, err := NewRoundRobin("rr", roster(ag), func(o *RoundRobinOptions) {
		o.MaxLoops = -1
	})
	require.NoError(t, err)

	conv, err := s.Run(context.Background(), core.NewTask("t"))
	require.NoError(t, err)
	assert.Zero(t, conv.Len())
	assert.Zero(t, ag.Calls())
	assert.True(t, conv.Finalized())
}

func TestRoundRobin_CallBudget(t *testing.T) {
	a0, a1, a2 := newStubAgent("a0", nil), newStubAgent("a1", nil), newStubAgent("a2", nil)

	s, err := NewRoundRobin("rr", roster(a0, a1, a2), func(o *RoundRobinOptions) {
		o.RetryPolicy = core.NoRetry()
		o.MaxCalls = 2
	})
	require.NoError(t, err)

	conv, err := s.Run(context.Background(), core.NewTask("t"))
	require.NoError(t, err)

	records := conv.Records()
	require.Len(t, records, 3)
	assert.False(t, records[0].Failed())
	assert.False(t, records[1].Failed())
	assert.ErrorIs(t, records[2].Err, core.ErrLimitExceeded)
	assert.Zero(t, a2.Calls())
}

func TestRoundRobin_ContextCancelled(t *testing.T) {
	ag := newStubAgent("a", nil)
	s, err := NewRoundRobin("rr", roster(ag))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conv, err := s.Run(ctx, core.NewTask("t"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, conv.Len())
	assert.Zero(t, ag.Calls())
}
