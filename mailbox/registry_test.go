package mailbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/groundctl/errors"
	"github.com/c360/groundctl/message"
)

func TestRegistryRegisterLookup(t *testing.T) {
	reg := NewRegistry()

	mb := NewMailbox()
	reg.Register("optics_control", mb)

	got, ok := reg.Lookup("optics_control")
	require.True(t, ok)
	assert.Same(t, mb, got)

	_, ok = reg.Lookup("camera")
	assert.False(t, ok, "unregistered name yields absent")
}

func TestRegistryLastWriterWins(t *testing.T) {
	reg := NewRegistry()

	first := NewMailbox()
	second := NewMailbox()
	reg.Register("camera", first)
	reg.Register("camera", second)

	got, ok := reg.Lookup("camera")
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestRegistrySend(t *testing.T) {
	reg := NewRegistry()
	mb := NewMailbox()
	reg.Register("security_monitor", mb)

	msg := message.New("client_alice", "security_monitor", message.OpRequestPhoto, nil)
	require.NoError(t, reg.Send(msg))
	assert.Equal(t, 1, mb.Len())

	orphan := message.New("client_alice", "nowhere", message.OpRequestPhoto, nil)
	assert.ErrorIs(t, reg.Send(orphan), errors.ErrMailboxNotFound)
}

func TestRegistryControl(t *testing.T) {
	reg := NewRegistry()
	cb := NewControlMailbox()
	reg.RegisterControl("optics_control", cb)

	require.NoError(t, reg.SendControl("optics_control", message.ControlMessage{Op: message.ControlPause}))
	assert.Equal(t, 1, cb.Len())

	err := reg.SendControl("missing", message.ControlMessage{Op: message.ControlStop})
	assert.ErrorIs(t, err, errors.ErrMailboxNotFound)
}

func TestRegistryNames(t *testing.T) {
	reg := NewRegistry()
	reg.Register("a", NewMailbox())
	reg.Register("b", NewMailbox())

	assert.ElementsMatch(t, []string{"a", "b"}, reg.Names())
}
