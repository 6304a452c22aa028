package message

import (
	"encoding/json"
	"fmt"

	"github.com/c360/groundctl/errors"
)

// wireFormat is the JSON shape of a Message on external transports
// (the NATS bridge). Params is decoded into the typed payload registered
// for the operation.
type wireFormat struct {
	ID          string            `json:"id"`
	Source      string            `json:"source"`
	Destination string            `json:"destination"`
	Operation   Operation         `json:"operation"`
	Params      json.RawMessage   `json:"params,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
	Signature   string            `json:"signature,omitempty"`
}

// MarshalJSON implements json.Marshaler for Message.
func (m Message) MarshalJSON() ([]byte, error) {
	wire := wireFormat{
		ID:          m.ID,
		Source:      m.Source,
		Destination: m.Destination,
		Operation:   m.Operation,
		Extra:       m.Extra,
		Signature:   m.Signature,
	}

	if m.Params != nil {
		data, err := json.Marshal(m.Params)
		if err != nil {
			return nil, errors.WrapInvalid(err, "Message", "MarshalJSON", "payload marshaling")
		}
		wire.Params = data
	}

	return json.Marshal(wire)
}

// UnmarshalJSON implements json.Unmarshaler for Message. The payload type is
// selected by the operation tag; unknown operations are rejected so a
// malformed external message degrades into one decode error, not a typeless
// envelope loose in the system.
func (m *Message) UnmarshalJSON(data []byte) error {
	var wire wireFormat
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.WrapInvalid(err, "Message", "UnmarshalJSON", "wire format decoding")
	}

	m.ID = wire.ID
	m.Source = wire.Source
	m.Destination = wire.Destination
	m.Operation = wire.Operation
	m.Extra = wire.Extra
	m.Signature = wire.Signature
	m.Params = nil

	if len(wire.Params) == 0 || string(wire.Params) == "null" {
		return nil
	}

	payload := PayloadFor(wire.Operation)
	if payload == nil {
		return errors.WrapInvalid(
			fmt.Errorf("unknown operation %q", wire.Operation),
			"Message", "UnmarshalJSON", "payload type lookup")
	}
	if err := json.Unmarshal(wire.Params, payload); err != nil {
		return errors.WrapInvalid(err, "Message", "UnmarshalJSON", "payload decoding")
	}
	m.Params = payload

	return nil
}
