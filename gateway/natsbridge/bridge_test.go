package natsbridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/groundctl/component"
	"github.com/c360/groundctl/config"
	"github.com/c360/groundctl/mailbox"
	"github.com/c360/groundctl/message"
)

func TestBridgeRunsDisabledWithoutConnection(t *testing.T) {
	registry := mailbox.NewRegistry()
	deps := component.Dependencies{Registry: registry, TickInterval: time.Millisecond}

	bridge := NewBridge(deps, config.Default(), nil)
	require.NoError(t, bridge.Initialize())
	require.NoError(t, bridge.Start(context.Background()))

	// Messages to the bridge mailbox are consumed without error.
	require.NoError(t, registry.Send(
		message.New("hub", bridge.Name(), message.OpUpdatePhotoMap,
			&message.PhotoPoint{Lat: 1, Lon: 2})))

	assert.Eventually(t, func() bool {
		mb, _ := registry.Lookup(bridge.Name())
		return mb.Len() == 0
	}, time.Second, time.Millisecond)

	require.NoError(t, bridge.Stop(time.Second))
}

func TestBridgeRequiresConfig(t *testing.T) {
	deps := component.Dependencies{Registry: mailbox.NewRegistry()}
	bridge := NewBridge(deps, nil, nil)
	require.Error(t, bridge.Initialize())
}

func TestGateForReusesSessions(t *testing.T) {
	registry := mailbox.NewRegistry()
	registry.Register(config.SecurityMonitorName, mailbox.NewMailbox())
	deps := component.Dependencies{Registry: registry}

	bridge := NewBridge(deps, config.Default(), nil)

	g1 := bridge.gateFor("alice", config.RoleAdmin)
	g2 := bridge.gateFor("alice", config.RoleAdmin)
	g3 := bridge.gateFor("bob", config.RoleClient)

	assert.Same(t, g1, g2, "one gate per user session")
	assert.NotSame(t, g1, g3)
}
