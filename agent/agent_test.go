package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/model"
)

func TestModelAgentRun(t *testing.T) {
	llm := model.NewMockModel("test-model", "mock")
	llm.AddResponse("write a haiku", "An old silent pond")

	ag := New("poet", llm)

	out, err := ag.Run(context.Background(), core.NewTask("write a haiku"))
	require.NoError(t, err)
	assert.Equal(t, "An old silent pond", out)
	assert.Equal(t, 1, llm.Calls())
}

func TestModelAgentDefaults(t *testing.T) {
	ag := New("poet", model.NewMockModel("test-model", "mock"))

	assert.NotEmpty(t, ag.ID())
	assert.Equal(t, "poet", ag.Name())
	assert.Equal(t, "Agent poet", ag.Description())
}

func TestModelAgentOptions(t *testing.T) {
	ag := New("poet", model.NewMockModel("test-model", "mock"), func(o *Options) {
		o.ID = "poet-1"
		o.Description = "Writes verse"
	})

	assert.Equal(t, "poet-1", ag.ID())
	assert.Equal(t, "Writes verse", ag.Description())
}

func TestModelAgentWrapsBackendError(t *testing.T) {
	llm := model.NewMockModel("test-model", "mock")
	backendErr := errors.New("backend unavailable")
	llm.FailWith(backendErr)

	ag := New("poet", llm)

	_, err := ag.Run(context.Background(), core.NewTask("write a haiku"))
	require.Error(t, err)
	assert.ErrorIs(t, err, backendErr)
	assert.Contains(t, err.Error(), "agent poet")
}

func TestModelAgentHistory(t *testing.T) {
	llm := model.NewMockModel("test-model", "mock")
	ag := New("poet", llm)

	for i := 0; i < 3; i++ {
		_, err := ag.Run(context.Background(), core.NewTask(fmt.Sprintf("task %d", i)))
		require.NoError(t, err)
	}

	history := ag.History()
	require.Len(t, history, 3)
	assert.Equal(t, "task 0", history[0].Prompt)
	assert.Equal(t, "task 2", history[2].Prompt)
	assert.Equal(t, "Mock response to: task 0", history[0].Output)
}

func TestModelAgentHistoryBounded(t *testing.T) {
	llm := model.NewMockModel("test-model", "mock")
	ag := New("poet", llm, func(o *Options) {
		o.MaxHistory = 2
	})

	for i := 0; i < 5; i++ {
		_, err := ag.Run(context.Background(), core.NewTask(fmt.Sprintf("task %d", i)))
		require.NoError(t, err)
	}

	history := ag.History()
	require.Len(t, history, 2)
	assert.Equal(t, "task 3", history[0].Prompt)
	assert.Equal(t, "task 4", history[1].Prompt)
}

func TestModelAgentHistoryDisabled(t *testing.T) {
	llm := model.NewMockModel("test-model", "mock")
	ag := New("poet", llm, func(o *Options) {
		o.MaxHistory = 0
	})

	_, err := ag.Run(context.Background(), core.NewTask("task"))
	require.NoError(t, err)
	assert.Empty(t, ag.History())
}

func TestModelAgentFailedRunNotRecorded(t *testing.T) {
	llm := model.NewMockModel("test-model", "mock")
	llm.FailWith(errors.New("boom"))
	ag := New("poet", llm)

	_, err := ag.Run(context.Background(), core.NewTask("task"))
	require.Error(t, err)
	assert.Empty(t, ag.History())
}

func TestModelAgentConcurrentRuns(t *testing.T) {
	llm := model.NewMockModel("test-model", "mock")
	ag := New("poet", llm, func(o *Options) {
		o.MaxHistory = 100
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := ag.Run(context.Background(), core.NewTask(fmt.Sprintf("task %d", i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, llm.Calls())
	assert.Len(t, ag.History(), 10)
}
