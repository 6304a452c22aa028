// Package message defines the typed message envelope exchanged between
// groundctl components, the closed set of operations, and their payload
// schemas. Messages are immutable after construction; ownership transfers
// to the receiving mailbox when sent.
package message

import (
	"strconv"

	"github.com/google/uuid"
)

// Operation identifies the kind of a data-plane message. The set is closed:
// every operation has exactly one payload schema (see PayloadFor).
type Operation string

// Data-plane operations.
const (
	// OpRequestPhoto asks the optics controller (or, downstream, the camera)
	// to schedule a capture.
	OpRequestPhoto Operation = "request_photo"
	// OpPostPhoto carries a captured point from the camera back to optics.
	OpPostPhoto Operation = "post_photo"
	// OpSetPhotoInterval changes the minimum inter-capture interval.
	OpSetPhotoInterval Operation = "set_photo_interval"
	// OpGetStatus requests an OpStatusReport reply to the sender's mailbox.
	OpGetStatus Operation = "get_status"
	// OpStatusReport is the reply to OpGetStatus.
	OpStatusReport Operation = "optics_status"
	// OpAddZone upserts a restricted zone in the security hub.
	OpAddZone Operation = "add_restricted_zone"
	// OpRemoveZone deletes a restricted zone from the security hub.
	OpRemoveZone Operation = "remove_restricted_zone"
	// OpDrawZone tells the renderer to draw a restricted zone.
	OpDrawZone Operation = "draw_restricted_zone"
	// OpClearZone tells the renderer to erase a restricted zone.
	OpClearZone Operation = "clear_restricted_zone"
	// OpUpdatePhotoMap tells the renderer to plot a captured point. This is
	// the hop the hub's geofence check inspects.
	OpUpdatePhotoMap Operation = "update_photo_map"
	// OpSavePhoto asks the dispatcher to persist a captured point.
	OpSavePhoto Operation = "req_add_photo_to_data_base"
	// OpAddPhoto is the dispatcher-to-archive storage write.
	OpAddPhoto Operation = "add_photo"
	// OpChangeOrbit requests an orbit change from the orbit collaborator.
	OpChangeOrbit Operation = "change_orbit"
)

// ControlOp identifies a control-plane lifecycle command. Control messages
// travel on a separate mailbox so a saturated data mailbox cannot block them.
type ControlOp string

// Control-plane operations.
const (
	ControlStop       ControlOp = "stop"
	ControlPause      ControlOp = "pause"
	ControlResume     ControlOp = "resume"
	ControlClearQueue ControlOp = "clear_queue"
)

// ControlMessage is a control-plane lifecycle command.
type ControlMessage struct {
	Op ControlOp
}

// Message is the data-plane envelope. Params carries the operation-specific
// payload; Extra carries auxiliary key/value pairs (user attribution,
// priority); Signature is an opaque correlation token.
type Message struct {
	ID          string
	Source      string
	Destination string
	Operation   Operation
	Params      Payload
	Extra       map[string]string
	Signature   string
}

// Option configures a Message during construction.
type Option func(*Message)

// WithExtra attaches auxiliary parameters to the message.
func WithExtra(extra map[string]string) Option {
	return func(m *Message) {
		m.Extra = extra
	}
}

// WithSignature attaches a correlation signature to the message.
func WithSignature(sig string) Option {
	return func(m *Message) {
		m.Signature = sig
	}
}

// WithID overrides the generated envelope ID. Used when re-routing a message
// whose identity must be preserved across hops.
func WithID(id string) Option {
	return func(m *Message) {
		m.ID = id
	}
}

// New constructs a Message with a fresh envelope ID.
func New(source, destination string, op Operation, params Payload, opts ...Option) Message {
	m := Message{
		ID:          uuid.New().String(),
		Source:      source,
		Destination: destination,
		Operation:   op,
		Params:      params,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// User returns the attributed user from Extra, defaulting to "unknown".
func (m Message) User() string {
	if u, ok := m.Extra["user"]; ok && u != "" {
		return u
	}
	return "unknown"
}

// Priority returns the capture priority from Extra. An absent value is the
// default 1 (normal priority) and reports ok; a value that fails to parse
// also defaults to 1 but reports !ok so callers can log it.
func (m Message) Priority() (int, bool) {
	raw, ok := m.Extra["priority"]
	if !ok {
		return 1, true
	}
	p, err := strconv.Atoi(raw)
	if err != nil {
		return 1, false
	}
	return p, true
}

// Validate checks the envelope and its payload.
func (m Message) Validate() error {
	if m.Source == "" {
		return ErrMissingSource
	}
	if m.Destination == "" {
		return ErrMissingDestination
	}
	if m.Operation == "" {
		return ErrMissingOperation
	}
	if m.Params != nil {
		if err := m.Params.Validate(); err != nil {
			return err
		}
	}
	return nil
}
