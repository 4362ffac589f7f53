package swarm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/hupe1980/agentswarm/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// layerStub produces a unique output per invocation ("<id>-<call>") and
// keeps every prompt it received, so tests can inspect exactly what each
// layer saw.
type layerStub struct {
	id string
	mu      sync.Mutex
	calls   int
	prompts []string
}

func newLayerStub(id string) *layerStub { return &layerStub{id: id} }

func (a *layerStub) ID() string          { return a.id }
func (a *layerStub) Name() string        { return a.id }
func (a *layerStub) Description() string { return "layer stub " + a.id }

func (a *layerStub) Run(_ context.Context, task core.Task) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	a.prompts = append(a.prompts, task.Description)
	return fmt.Sprintf("%s-%d", a.id, a.calls), nil
}

func (a *layerStub) Prompts() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.prompts))
	copy(out, a.prompts)
	return out
}

func TestNewMixture_Validation(t *testing.T) {
	agg := newStubAgent("agg", nil)

	_, err := NewMixture("m", nil, agg)
	assert.ErrorIs(t, err, core.ErrNoAgents)

	_, err = NewMixture("m", roster(newStubAgent("a", nil)), nil)
	assert.ErrorIs(t, err, core.ErrNoAggregator)

	_, err = NewMixture("m", roster(newStubAgent("a", nil)), agg, func(o *MixtureOptions) {
		o.Layers = 0
	})
	assert.ErrorIs(t, err, core.ErrInvalidLayers)
}

func TestMixture_SingleLayerAggregatorInput(t *testing.T) {
	mkAgent := func(id, out string) *stubAgent {
		return newStubAgent(id, func(context.Context, core.Task) (string, error) {
			return out, nil
		})
	}
	a1 := mkAgent("a1", "alpha")
	a2 := mkAgent("a2", "beta")
	a3 := mkAgent("a3", "gamma")
	agg := newStubAgent("agg", func(context.Context, core.Task) (string, error) {
		return "final answer", nil
	})

	s, err := NewMixture("m", roster(a1, a2, a3), agg)
	require.NoError(t, err)

	conv, err := s.Run(context.Background(), core.NewTask("the task"))
	require.NoError(t, err)

	// One fan-out plus a single aggregation shot, nothing more.
	assert.Equal(t, 1, a1.Calls())
	assert.Equal(t, 1, a2.Calls())
	assert.Equal(t, 1, a3.Calls())
	require.Equal(t, 1, agg.Calls())

	want := "the task\n\nResponses from the previous round:\n1. alpha\n2. beta\n3. gamma"
	assert.Equal(t, want, agg.Tasks()[0].Description)

	require.Equal(t, 4, conv.Len())
	assert.Equal(t, "final answer", conv.Final())
}

func TestMixture_ThreeLayers_LayerSeesOnlyPreviousLayer(t *testing.T) {
	a1 := newLayerStub("a1")
	a2 := newLayerStub("a2")
	a3 := newLayerStub("a3")
	agg := newStubAgent("agg", nil)

	s, err := NewMixture("m", []core.Agent{a1, a2, a3}, agg, func(o *MixtureOptions) {
		o.Layers = 3
	})
	require.NoError(t, err)

	_, err = s.Run(context.Background(), core.NewTask("the task"))
	require.NoError(t, err)

	for _, ag := range []*layerStub{a1, a2, a3} {
		prompts := ag.Prompts()
		require.Len(t, prompts, 3)

		// Layer 0 sees the raw task only.
		assert.Equal(t, "the task", prompts[0])

		// Layer 1 sees every layer-0 output.
		for _, other := range []string{"a1-1", "a2-1", "a3-1"} {
			assert.Contains(t, prompts[1], other)
		}

		// Layer 2 sees every layer-1 output and nothing from layer 0:
		// siblings within a layer stay invisible to each other.
		for _, other := range []string{"a1-2", "a2-2", "a3-2"} {
			assert.Contains(t, prompts[2], other)
		}
		for _, stale := range []string{"a1-1", "a2-1", "a3-1"} {
			assert.NotContains(t, prompts[2], stale)
		}
	}

	// The aggregator sees exactly the last layer.
	aggPrompt := agg.Tasks()[0].Description
	for _, last := range []string{"a1-3", "a2-3", "a3-3"} {
		assert.Contains(t, aggPrompt, last)
	}
	assert.NotContains(t, aggPrompt, "a1-2")
}

func TestMixture_FailedSlotKeepsArity(t *testing.T) {
	sentinel := errors.New("backend down")
	ok1 := newStubAgent("ok1", func(context.Context, core.Task) (string, error) {
		return "fine", nil
	})
	broken := newStubAgent("broken", func(context.Context, core.Task) (string, error) {
		return "", sentinel
	})
	ok2 := newStubAgent("ok2", func(context.Context, core.Task) (string, error) {
		return "also fine", nil
	})
	agg := newStubAgent("agg", nil)

	s, err := NewMixture("m", roster(ok1, broken, ok2), agg, func(o *MixtureOptions) {
		o.Layers = 2
	})
	require.NoError(t, err)

	conv, err := s.Run(context.Background(), core.NewTask("t"))
	require.NoError(t, err)

	// Layer 1 prompts still carry three numbered slots, the failed one as
	// an explicit marker.
	secondPrompt := ok1.Tasks()[1].Description
	assert.Contains(t, secondPrompt, "1. fine")
	assert.Contains(t, secondPrompt, "2. [agent broken failed:")
	assert.Contains(t, secondPrompt, "3. also fine")

	// 2 layers x 3 agents + aggregator.
	assert.Equal(t, 7, conv.Len())
	assert.Len(t, conv.Failures(), 2)
}

func TestMixture_AggregatorFailurePropagates(t *testing.T) {
	sentinel := errors.New("agg down")
	ag := newStubAgent("a", nil)
	agg := newStubAgent("agg", func(context.Context, core.Task) (string, error) {
		return "", sentinel
	})

	s, err := NewMixture("m", roster(ag), agg)
	require.NoError(t, err)

	conv, err := s.Run(context.Background(), core.NewTask("t"))
	assert.ErrorIs(t, err, sentinel)
	require.NotNil(t, conv)
	assert.True(t, conv.Finalized())
	assert.True(t, strings.HasPrefix(conv.Records()[0].Output, "a:"))
}
