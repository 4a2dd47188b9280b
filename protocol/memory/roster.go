package memory

import (
	"contact-lab/domain"
	"slices"
	"sync"
)

// Contact is a roster entry of the in-memory provider.
type Contact struct {
	mu             sync.RWMutex
	address        string
	accountID      string
	displayName    string
	presence       domain.PresenceStatus
	parent         *Group
	persistentData string
	resolved       bool
}

func (c *Contact) Address() string   { return c.address }
func (c *Contact) AccountID() string { return c.accountID }

func (c *Contact) DisplayName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.displayName
}

func (c *Contact) PresenceStatus() domain.PresenceStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.presence
}

func (c *Contact) ParentGroup() domain.ProtoGroup {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.parent == nil {
		return nil
	}
	return c.parent
}

func (c *Contact) PersistentData() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.persistentData
}

func (c *Contact) IsPersistent() bool { return true }

func (c *Contact) IsResolved() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resolved
}

func (c *Contact) setParent(g *Group) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parent = g
}

func (c *Contact) parentGroup() *Group {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.parent
}

// Group is a roster group of the in-memory provider.
type Group struct {
	mu             sync.RWMutex
	uid            string
	name           string
	accountID      string
	parent         *Group
	persistent     bool
	resolved       bool
	persistentData string
	subgroups      []*Group
	contacts       []*Contact
}

func (g *Group) UID() string       { return g.uid }
func (g *Group) AccountID() string { return g.accountID }

func (g *Group) Name() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.name
}

func (g *Group) Parent() domain.ProtoGroup {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.parent == nil {
		return nil
	}
	return g.parent
}

func (g *Group) PersistentData() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.persistentData
}

func (g *Group) IsPersistent() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.persistent
}

func (g *Group) IsResolved() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.resolved
}

func (g *Group) Subgroups() []domain.ProtoGroup {
	g.mu.RLock()
	defer g.mu.RUnlock()
	res := make([]domain.ProtoGroup, 0, len(g.subgroups))
	for _, sub := range g.subgroups {
		res = append(res, sub)
	}
	return res
}

func (g *Group) Contacts() []domain.ProtoContact {
	g.mu.RLock()
	defer g.mu.RUnlock()
	res := make([]domain.ProtoContact, 0, len(g.contacts))
	for _, c := range g.contacts {
		res = append(res, c)
	}
	return res
}

func (g *Group) subgroup(name string) *Group {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, sub := range g.subgroups {
		if sub.Name() == name {
			return sub
		}
	}
	return nil
}

func (g *Group) addSubgroup(sub *Group) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sub.parent = g
	g.subgroups = append(g.subgroups, sub)
}

func (g *Group) removeSubgroup(sub *Group) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.subgroups = slices.DeleteFunc(g.subgroups, func(item *Group) bool { return item == sub })
}

func (g *Group) addContact(c *Contact) {
	g.mu.Lock()
	g.contacts = append(g.contacts, c)
	g.mu.Unlock()
	c.setParent(g)
}

func (g *Group) removeContact(c *Contact) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.contacts = slices.DeleteFunc(g.contacts, func(item *Contact) bool { return item == c })
}

// walk visits g and its descendants.
func (g *Group) walk(fn func(*Group)) {
	fn(g)
	g.mu.RLock()
	subs := slices.Clone(g.subgroups)
	g.mu.RUnlock()
	for _, sub := range subs {
		sub.walk(fn)
	}
}

func (g *Group) contactsSnapshot() []*Contact {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.contacts)
}
