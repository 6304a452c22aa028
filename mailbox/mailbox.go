// Package mailbox provides the named, unbounded, FIFO message channels that
// are the only synchronization primitive between groundctl components, plus
// the registry that resolves component names to mailboxes.
package mailbox

import (
	"sync"

	"github.com/c360/groundctl/errors"
	"github.com/c360/groundctl/message"
)

// Mailbox is an unbounded FIFO channel for data-plane messages. Any number
// of producers may Put concurrently; the owning component is the single
// consumer and observes messages in send order.
//
// Mailboxes are deliberately unbounded: a slow consumer grows its mailbox
// rather than blocking producers.
type Mailbox struct {
	mu     sync.Mutex
	queue  []message.Message
	closed bool
}

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{}
}

// Put appends a message. Returns ErrMailboxClosed after Close.
func (m *Mailbox) Put(msg message.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.ErrMailboxClosed
	}
	m.queue = append(m.queue, msg)
	return nil
}

// TryGet removes and returns the oldest message without blocking.
// The second result is false when the mailbox is empty.
func (m *Mailbox) TryGet() (message.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return message.Message{}, false
	}
	msg := m.queue[0]
	m.queue = m.queue[1:]
	if len(m.queue) == 0 {
		m.queue = nil // release backing array once drained
	}
	return msg, true
}

// Len returns the number of pending messages.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Close marks the mailbox closed. Pending messages remain readable;
// further Puts fail.
func (m *Mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

// ControlMailbox is the control-plane counterpart of Mailbox. It is kept
// separate so a saturated data mailbox can never delay a lifecycle command.
type ControlMailbox struct {
	mu     sync.Mutex
	queue  []message.ControlMessage
	closed bool
}

// NewControlMailbox creates an empty control mailbox.
func NewControlMailbox() *ControlMailbox {
	return &ControlMailbox{}
}

// Put appends a control message. Returns ErrMailboxClosed after Close.
func (m *ControlMailbox) Put(msg message.ControlMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.ErrMailboxClosed
	}
	m.queue = append(m.queue, msg)
	return nil
}

// TryGet removes and returns the oldest control message without blocking.
func (m *ControlMailbox) TryGet() (message.ControlMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return message.ControlMessage{}, false
	}
	msg := m.queue[0]
	m.queue = m.queue[1:]
	if len(m.queue) == 0 {
		m.queue = nil
	}
	return msg, true
}

// Len returns the number of pending control messages.
func (m *ControlMailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Close marks the control mailbox closed.
func (m *ControlMailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}
