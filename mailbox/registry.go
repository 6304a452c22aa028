package mailbox

import (
	"sync"

	"github.com/c360/groundctl/errors"
	"github.com/c360/groundctl/message"
)

// Registry is the name-to-mailbox directory. It is a pure lookup service:
// it owns no ordering or delivery guarantees beyond resolving identity to
// channel. Components may start in any order, so a failed Lookup is a soft
// failure for callers (log and drop), never a crash.
type Registry struct {
	mu        sync.RWMutex
	mailboxes map[string]*Mailbox
	controls  map[string]*ControlMailbox
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		mailboxes: make(map[string]*Mailbox),
		controls:  make(map[string]*ControlMailbox),
	}
}

// Register binds a name to a data mailbox. Re-registration is idempotent:
// the last writer wins.
func (r *Registry) Register(name string, mb *Mailbox) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mailboxes[name] = mb
}

// Lookup resolves a name to its data mailbox.
func (r *Registry) Lookup(name string) (*Mailbox, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mb, ok := r.mailboxes[name]
	return mb, ok
}

// RegisterControl binds a name to a control mailbox, last writer wins.
func (r *Registry) RegisterControl(name string, mb *ControlMailbox) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.controls[name] = mb
}

// LookupControl resolves a name to its control mailbox.
func (r *Registry) LookupControl(name string) (*ControlMailbox, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mb, ok := r.controls[name]
	return mb, ok
}

// Names returns the currently registered data mailbox names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.mailboxes))
	for name := range r.mailboxes {
		names = append(names, name)
	}
	return names
}

// Send delivers a message to the mailbox registered under its destination.
// Returns ErrMailboxNotFound when the destination is not registered.
func (r *Registry) Send(msg message.Message) error {
	mb, ok := r.Lookup(msg.Destination)
	if !ok {
		return errors.ErrMailboxNotFound
	}
	return mb.Put(msg)
}

// SendControl delivers a control message to the named component.
func (r *Registry) SendControl(name string, msg message.ControlMessage) error {
	mb, ok := r.LookupControl(name)
	if !ok {
		return errors.ErrMailboxNotFound
	}
	return mb.Put(msg)
}
