package convergence

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockObserver records events for assertions.
type mockObserver struct {
	events   []Event
	messages []string
}

func (m *mockObserver) Printf(format string, v ...interface{}) {
	m.messages = append(m.messages, fmt.Sprintf(format, v...))
}

func (m *mockObserver) Event(event Event) {
	m.events = append(m.events, event)
}

func (m *mockObserver) eventTypes() []EventType {
	types := make([]EventType, 0, len(m.events))
	for _, e := range m.events {
		types = append(types, e.Type)
	}
	return types
}

func testContext() (*Context, *mockObserver) {
	obs := &mockObserver{}
	return &Context{
		Context:  context.Background(),
		State:    &State{},
		Observer: obs,
	}, obs
}

func TestNewPipeline(t *testing.T) {
	t.Parallel()
	p := NewPipeline("foundation",
		StepFunc{StepName: "project", Fn: func(*Context) error { return nil }},
		StepFunc{StepName: "billing", Fn: func(*Context) error { return nil }},
	)

	require.NotNil(t, p)
	assert.Equal(t, "foundation", p.Name)
	assert.Len(t, p.Steps, 2)
	assert.Equal(t, "project", p.Steps[0].Name())
}

func TestPipeline_Run_Sequential(t *testing.T) {
	t.Parallel()
	executed := make([]string, 0)

	p := NewPipeline("deployment",
		StepFunc{StepName: "registry", Fn: func(*Context) error { executed = append(executed, "registry"); return nil }},
		StepFunc{StepName: "address", Fn: func(*Context) error { executed = append(executed, "address"); return nil }},
		StepFunc{StepName: "release", Fn: func(*Context) error { executed = append(executed, "release"); return nil }},
	)

	ctx, _ := testContext()
	err := p.Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, []string{"registry", "address", "release"}, executed)
}

func TestPipeline_Run_StopsOnFirstFailure(t *testing.T) {
	t.Parallel()
	executed := make([]string, 0)

	p := NewPipeline("foundation",
		StepFunc{StepName: "project", Fn: func(*Context) error { executed = append(executed, "project"); return nil }},
		StepFunc{StepName: "billing", Fn: func(*Context) error { return fmt.Errorf("no billing account available") }},
		StepFunc{StepName: "cluster", Fn: func(*Context) error { executed = append(executed, "cluster"); return nil }},
	)

	ctx, obs := testContext()
	err := p.Run(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "billing step failed")
	assert.Contains(t, err.Error(), "no billing account available")
	// cluster must NOT run after the billing failure.
	assert.Equal(t, []string{"project"}, executed)
	assert.Contains(t, obs.eventTypes(), EventStepFailed)
}

func TestPipeline_Run_Empty(t *testing.T) {
	t.Parallel()
	p := NewPipeline("empty")
	ctx, _ := testContext()

	require.NoError(t, p.Run(ctx))
}

func TestPipeline_Run_EmitsStepEvents(t *testing.T) {
	t.Parallel()
	p := NewPipeline("foundation",
		StepFunc{StepName: "project", Fn: func(*Context) error { return nil }},
	)

	ctx, obs := testContext()
	require.NoError(t, p.Run(ctx))

	assert.Equal(t, []EventType{EventStepStarted, EventStepCompleted}, obs.eventTypes())
	assert.Equal(t, "project", obs.events[0].Step)
}
