package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/groundctl/component"
	"github.com/c360/groundctl/config"
	"github.com/c360/groundctl/mailbox"
	"github.com/c360/groundctl/message"
)

func TestSaveRequestRoutedToArchive(t *testing.T) {
	registry := mailbox.NewRegistry()
	archive := mailbox.NewMailbox()
	registry.Register(config.ArchiveName, archive)

	d := NewDispatcher(component.Dependencies{Registry: registry})

	require.NoError(t, d.HandleMessage(
		message.New(config.OpticsControlName, d.Name(), message.OpSavePhoto,
			&message.PhotoPoint{Lat: 48.85, Lon: 2.35})))

	out, ok := archive.TryGet()
	require.True(t, ok)
	assert.Equal(t, message.OpAddPhoto, out.Operation)
	assert.Equal(t, config.ArchiveName, out.Destination)
	point, ok := out.Params.(*message.PhotoPoint)
	require.True(t, ok)
	assert.Equal(t, 48.85, point.Lat)
	assert.Equal(t, 2.35, point.Lon)
}

func TestSaveRequestWithMissingArchiveIsDropped(t *testing.T) {
	d := NewDispatcher(component.Dependencies{Registry: mailbox.NewRegistry()})

	require.NoError(t, d.HandleMessage(
		message.New("x", d.Name(), message.OpSavePhoto, &message.PhotoPoint{Lat: 1, Lon: 1})))
}

func TestAcknowledgedOperationsAreDropped(t *testing.T) {
	registry := mailbox.NewRegistry()
	archive := mailbox.NewMailbox()
	registry.Register(config.ArchiveName, archive)

	d := NewDispatcher(component.Dependencies{Registry: registry})

	require.NoError(t, d.HandleMessage(
		message.New("x", d.Name(), message.OpChangeOrbit, &message.OrbitChange{Altitude: 200000})))
	require.NoError(t, d.HandleMessage(
		message.New("x", d.Name(), message.OpStatusReport, &message.StatusReport{})))

	assert.Zero(t, archive.Len())
}
