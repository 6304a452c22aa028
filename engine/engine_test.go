package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/groundctl/errors"
)

// fakeComponent records lifecycle calls into a shared trace.
type fakeComponent struct {
	name     string
	trace    *[]string
	startErr error
	stopErr  error
}

func (f *fakeComponent) Name() string { return f.name }

func (f *fakeComponent) Initialize() error {
	*f.trace = append(*f.trace, "init:"+f.name)
	return nil
}

func (f *fakeComponent) Start(context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	*f.trace = append(*f.trace, "start:"+f.name)
	return nil
}

func (f *fakeComponent) Stop(time.Duration) error {
	if f.stopErr != nil {
		return f.stopErr
	}
	*f.trace = append(*f.trace, "stop:"+f.name)
	return nil
}

func TestStartOrderAndReverseStop(t *testing.T) {
	var trace []string
	e := New(nil)
	e.Add(&fakeComponent{name: "a", trace: &trace})
	e.Add(&fakeComponent{name: "b", trace: &trace})
	e.Add(&fakeComponent{name: "c", trace: &trace})

	require.NoError(t, e.Initialize())
	require.NoError(t, e.Start(context.Background()))
	require.NoError(t, e.Stop(time.Second))

	assert.Equal(t, []string{
		"init:a", "init:b", "init:c",
		"start:a", "start:b", "start:c",
		"stop:c", "stop:b", "stop:a",
	}, trace)
}

func TestStartFailureRollsBackStartedComponents(t *testing.T) {
	var trace []string
	e := New(nil)
	e.Add(&fakeComponent{name: "a", trace: &trace})
	e.Add(&fakeComponent{name: "b", trace: &trace, startErr: errors.New("bind failed")})
	e.Add(&fakeComponent{name: "c", trace: &trace})

	require.NoError(t, e.Initialize())
	err := e.Start(context.Background())
	require.Error(t, err)

	assert.Equal(t, []string{
		"init:a", "init:b", "init:c",
		"start:a",
		"stop:a",
	}, trace, "only started components are rolled back, in reverse")
}

func TestStopContinuesPastFailures(t *testing.T) {
	var trace []string
	e := New(nil)
	e.Add(&fakeComponent{name: "a", trace: &trace})
	e.Add(&fakeComponent{name: "b", trace: &trace, stopErr: errors.New("stuck")})
	e.Add(&fakeComponent{name: "c", trace: &trace})

	require.NoError(t, e.Start(context.Background()))
	err := e.Stop(time.Second)
	require.Error(t, err)

	assert.Contains(t, trace, "stop:a", "later components still stop after one fails")
	assert.Contains(t, trace, "stop:c")
}

func TestDoubleStartRejected(t *testing.T) {
	var trace []string
	e := New(nil)
	e.Add(&fakeComponent{name: "a", trace: &trace})

	require.NoError(t, e.Start(context.Background()))
	err := e.Start(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrAlreadyStarted))
}
