// Package projection builds local journals from observed list events.
// Does not mutate the tree or emit events.
package projection

import (
	"contact-lab/domain/event"
	"context"
	"fmt"
	"sync"
	"time"
)

const DefaultChangelogCapacity = 1024

// Entry is one journaled list event.
type Entry struct {
	Seq     uint64
	At      time.Time
	Kind    event.Kind
	Subject string
	Detail  string
}

// Changelog keeps the latest list events, oldest first. Once full, the
// oldest entries are dropped.
type Changelog struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
	seq      uint64
	now      func() time.Time
}

func NewChangelog(capacity int) *Changelog {
	if capacity <= 0 {
		capacity = DefaultChangelogCapacity
	}
	return &Changelog{capacity: capacity, now: time.Now}
}

func (c *Changelog) Consume(_ context.Context, e event.ListEvent) error {
	subject, detail := describe(e)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.entries = append(c.entries, Entry{
		Seq:     c.seq,
		At:      c.now().UTC(),
		Kind:    e.Kind(),
		Subject: subject,
		Detail:  detail,
	})
	if over := len(c.entries) - c.capacity; over > 0 {
		c.entries = append(c.entries[:0], c.entries[over:]...)
	}
	return nil
}

func (c *Changelog) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Entry(nil), c.entries...)
}

// Since returns the entries after seq.
func (c *Changelog) Since(seq uint64) []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i, entry := range c.entries {
		if entry.Seq > seq {
			return append([]Entry(nil), c.entries[i:]...)
		}
	}
	return nil
}

func (c *Changelog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func describe(e event.ListEvent) (string, string) {
	switch evt := e.(type) {
	case event.GroupAdded:
		return evt.Group.Name(), ""
	case event.GroupModified:
		if evt.OldValue != "" || evt.NewValue != "" {
			return evt.Group.Name(), fmt.Sprintf("%s: %s -> %s", evt.Change, evt.OldValue, evt.NewValue)
		}
		return evt.Group.Name(), string(evt.Change)
	case event.GroupRemoved:
		return evt.Group.Name(), ""
	case event.ContactAdded:
		return evt.Contact.DisplayName(), evt.Parent.Name()
	case event.ContactRemoved:
		return evt.Contact.DisplayName(), evt.Parent.Name()
	case event.ContactMoved:
		return evt.Contact.DisplayName(), fmt.Sprintf("%s -> %s", evt.OldParent.Name(), evt.NewParent.Name())
	case event.ContactRenamed:
		return evt.NewName, fmt.Sprintf("was %s", evt.OldName)
	case event.ContactModified:
		return evt.Contact.DisplayName(), fmt.Sprintf("%s: %s -> %s", evt.Name, evt.OldValue, evt.NewValue)
	case event.ContactAvatarUpdated:
		return evt.Contact.DisplayName(), evt.MIMEType
	case event.ProtoContactAdded:
		return evt.Contact.DisplayName(), evt.ProtoContact.Address()
	case event.ProtoContactRemoved:
		return evt.Contact.DisplayName(), evt.ProtoContact.Address()
	case event.ProtoContactMoved:
		return evt.ProtoContact.Address(), fmt.Sprintf("%s -> %s", evt.OldContact.ID(), evt.NewContact.ID())
	case event.ProtoContactRenamed:
		return evt.ProtoContact.Address(), fmt.Sprintf("%s -> %s", evt.OldName, evt.NewName)
	case event.ProtoContactModified:
		return evt.ProtoContact.Address(), evt.Property
	default:
		return "", ""
	}
}
