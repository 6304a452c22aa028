package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	base := New("mailbox full")
	err := Wrap(base, "SecurityHub", "route", "forward to renderer")
	require.Error(t, err)
	assert.Equal(t, "SecurityHub.route: forward to renderer failed: mailbox full", err.Error())
	assert.True(t, Is(err, base))

	assert.NoError(t, Wrap(nil, "SecurityHub", "route", "forward"))
}

func TestClassifiedWrappers(t *testing.T) {
	base := New("boom")

	tests := []struct {
		name  string
		wrap  func(error, string, string, string) error
		class ErrorClass
	}{
		{"transient", WrapTransient, ErrorTransient},
		{"invalid", WrapInvalid, ErrorInvalid},
		{"fatal", WrapFatal, ErrorFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.wrap(base, "Comp", "Method", "action")
			require.Error(t, err)

			var ce *ClassifiedError
			require.True(t, As(err, &ce))
			assert.Equal(t, tt.class, ce.Class)
			assert.Equal(t, "Comp", ce.Component)
			assert.True(t, Is(err, base))
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ErrorInvalid, Classify(ErrPermissionDenied))
	assert.Equal(t, ErrorInvalid, Classify(ErrInvalidArgument))
	assert.Equal(t, ErrorFatal, Classify(ErrProgramSyntax))
	assert.Equal(t, ErrorFatal, Classify(ErrInvalidConfig))
	assert.Equal(t, ErrorTransient, Classify(ErrStorageUnavailable))
	assert.Equal(t, ErrorTransient, Classify(New("something else")))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.True(t, IsTransient(fmt.Errorf("dial: connection timeout")))
	assert.True(t, IsTransient(WrapTransient(New("x"), "C", "M", "a")))
	assert.False(t, IsTransient(ErrPermissionDenied))
	assert.False(t, IsTransient(nil))
}

func TestIsInvalid(t *testing.T) {
	assert.True(t, IsInvalid(ErrInvalidData))
	assert.True(t, IsInvalid(WrapInvalid(New("x"), "C", "M", "a")))
	assert.False(t, IsInvalid(nil))
	assert.False(t, IsInvalid(ErrStorageUnavailable))
}

func TestClassifiedErrorMessage(t *testing.T) {
	err := WrapInvalid(New("bad interval"), "OpticsControl", "setInterval", "bounds check")
	assert.Contains(t, err.Error(), "OpticsControl.setInterval")
	assert.Contains(t, err.Error(), "bad interval")
}
