package message

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	msg := New("optics_control", "camera", OpRequestPhoto, &CaptureRequest{},
		WithExtra(map[string]string{"priority": "3", "user": "alice"}),
		WithSignature("photo_alice_0"))

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "optics_control", msg.Source)
	assert.Equal(t, "camera", msg.Destination)
	assert.Equal(t, OpRequestPhoto, msg.Operation)
	assert.Equal(t, "photo_alice_0", msg.Signature)
	assert.NoError(t, msg.Validate())
}

func TestMessageValidate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr error
	}{
		{
			name:    "missing source",
			msg:     Message{Destination: "d", Operation: OpGetStatus},
			wantErr: ErrMissingSource,
		},
		{
			name:    "missing destination",
			msg:     Message{Source: "s", Operation: OpGetStatus},
			wantErr: ErrMissingDestination,
		},
		{
			name:    "missing operation",
			msg:     Message{Source: "s", Destination: "d"},
			wantErr: ErrMissingOperation,
		},
		{
			name: "nil params allowed",
			msg:  Message{Source: "s", Destination: "d", Operation: OpRequestPhoto},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMessagePriority(t *testing.T) {
	msg := New("s", "d", OpRequestPhoto, nil)
	p, ok := msg.Priority()
	assert.Equal(t, 1, p, "absent priority defaults to 1")
	assert.True(t, ok, "absent priority is not malformed")

	msg = New("s", "d", OpRequestPhoto, nil, WithExtra(map[string]string{"priority": "5"}))
	p, ok = msg.Priority()
	assert.Equal(t, 5, p)
	assert.True(t, ok)

	msg = New("s", "d", OpRequestPhoto, nil, WithExtra(map[string]string{"priority": "05"}))
	p, ok = msg.Priority()
	assert.Equal(t, 5, p, "non-canonical numerics parse")
	assert.True(t, ok)

	msg = New("s", "d", OpRequestPhoto, nil, WithExtra(map[string]string{"priority": "urgent"}))
	p, ok = msg.Priority()
	assert.Equal(t, 1, p, "malformed priority defaults to 1")
	assert.False(t, ok)
}

func TestMessageUser(t *testing.T) {
	msg := New("s", "d", OpUpdatePhotoMap, &PhotoPoint{})
	assert.Equal(t, "unknown", msg.User())

	msg = New("s", "d", OpUpdatePhotoMap, &PhotoPoint{}, WithExtra(map[string]string{"user": "bob"}))
	assert.Equal(t, "bob", msg.User())
}

func TestMessageWireRoundTrip(t *testing.T) {
	original := New("client_alice", "security_monitor", OpAddZone,
		&ZoneSpec{ID: 1001, LatMin: -40, LonMin: -30, LatMax: -10, LonMax: -10, SeverityLevel: 2},
		WithExtra(map[string]string{"user": "alice"}),
		WithSignature("addzone_alice_2"))

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, original.ID, decoded.ID)
	assert.Equal(t, original.Source, decoded.Source)
	assert.Equal(t, original.Destination, decoded.Destination)
	assert.Equal(t, original.Operation, decoded.Operation)
	assert.Equal(t, original.Signature, decoded.Signature)
	assert.Equal(t, original.Extra, decoded.Extra)

	zone, ok := decoded.Params.(*ZoneSpec)
	require.True(t, ok, "payload should decode to *ZoneSpec")
	assert.Equal(t, 1001, zone.ID)
	assert.Equal(t, -40.0, zone.LatMin)
}

func TestMessageWireUnknownOperation(t *testing.T) {
	raw := `{"id":"x","source":"s","destination":"d","operation":"warp_drive","params":{"x":1}}`
	var decoded Message
	err := json.Unmarshal([]byte(raw), &decoded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown operation")
}

func TestMessageWireNilParams(t *testing.T) {
	raw := `{"id":"x","source":"s","destination":"d","operation":"request_photo"}`
	var decoded Message
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Nil(t, decoded.Params)
}
