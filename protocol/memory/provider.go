// Package memory implements an in-process protocol provider whose server
// roster lives in memory. Remote operations are applied immediately and
// acknowledged asynchronously by the Run loop, like a real roster server.
package memory

import (
	"contact-lab/domain"
	"contact-lab/protocol"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const RootGroupUID = "root"

type Op string

const (
	OpSubscribe      Op = "subscribe"
	OpUnsubscribe    Op = "unsubscribe"
	OpCreateGroup    Op = "create-group"
	OpRenameGroup    Op = "rename-group"
	OpRemoveGroup    Op = "remove-group"
	OpMoveContact    Op = "move-contact"
	OpSetDisplayName Op = "set-display-name"
)

type Provider struct {
	mu        sync.Mutex
	log       *slog.Logger
	accountID string
	root      *Group

	failures map[Op]error
	dropped  map[Op]bool

	qmu    sync.Mutex
	queue  []func()
	signal chan struct{}

	lmu                   sync.RWMutex
	subscriptionListeners []protocol.SubscriptionListener
	groupListeners        []protocol.GroupListener
	presenceListeners     []protocol.PresenceListener
	capabilitiesListeners []protocol.CapabilitiesListener
}

func NewProvider(log *slog.Logger, accountID string) *Provider {
	return &Provider{
		log:       log,
		accountID: accountID,
		root: &Group{
			uid:        RootGroupUID,
			name:       "Root",
			accountID:  accountID,
			persistent: true,
			resolved:   true,
		},
		failures: make(map[Op]error),
		dropped:  make(map[Op]bool),
		signal:   make(chan struct{}, 1),
	}
}

func (p *Provider) AccountID() string { return p.accountID }

func (p *Provider) RootGroup() domain.ProtoGroup { return p.root }

// Run delivers queued notifications to listeners until ctx is done.
func (p *Provider) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			p.log.Debug("Context done, stopping notification delivery", "account", p.accountID)
			return nil
		case <-p.signal:
			for _, deliver := range p.drain() {
				deliver()
			}
		}
	}
}

// Sync blocks until every notification queued before the call was delivered.
func (p *Provider) Sync(ctx context.Context) error {
	done := make(chan struct{})
	p.enqueue(func() { close(done) })
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FailNext makes the next call of op return err.
func (p *Provider) FailNext(op Op, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[op] = err
}

// DropConfirmations makes op succeed synchronously without ever being
// applied or acknowledged.
func (p *Provider) DropConfirmations(op Op, drop bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dropped[op] = drop
}

// Seed adds a resolved contact to the server roster under the group path,
// creating groups on the way. No notification is emitted.
func (p *Provider) Seed(path []string, address, displayName string, status domain.PresenceStatus) *Contact {
	p.mu.Lock()
	defer p.mu.Unlock()
	parent := p.ensurePath(path)
	c := p.newContact(address, displayName, true)
	c.presence = status
	parent.addContact(c)
	return c
}

// SeedGroup adds a resolved group to the server roster without notification.
func (p *Provider) SeedGroup(path []string) *Group {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ensurePath(path)
}

func (p *Provider) ensurePath(path []string) *Group {
	current := p.root
	for _, name := range path {
		sub := current.subgroup(name)
		if sub == nil {
			sub = p.newGroup(name, uuid.NewString(), true)
			current.addSubgroup(sub)
		}
		current = sub
	}
	return current
}

func (p *Provider) newContact(address, displayName string, resolved bool) *Contact {
	if displayName == "" {
		displayName = address
	}
	return &Contact{
		address:     address,
		accountID:   p.accountID,
		displayName: displayName,
		presence:    domain.Offline,
		resolved:    resolved,
	}
}

func (p *Provider) newGroup(name, uid string, resolved bool) *Group {
	return &Group{
		uid:        uid,
		name:       name,
		accountID:  p.accountID,
		persistent: true,
		resolved:   resolved,
	}
}

// Find returns the roster contact with the given address.
func (p *Provider) Find(address string) *Contact {
	var found *Contact
	p.root.walk(func(g *Group) {
		if found != nil {
			return
		}
		for _, c := range g.contactsSnapshot() {
			if c.address == address {
				found = c
				return
			}
		}
	})
	return found
}

// FindGroup returns the roster group with the given uid.
func (p *Provider) FindGroup(uid string) *Group {
	var found *Group
	p.root.walk(func(g *Group) {
		if found == nil && g.uid == uid {
			found = g
		}
	})
	return found
}

// FindGroupByName returns the first roster group with the given name.
func (p *Provider) FindGroupByName(name string) *Group {
	var found *Group
	p.root.walk(func(g *Group) {
		if found == nil && g != p.root && g.Name() == name {
			found = g
		}
	})
	return found
}

// check consumes an injected failure for op and reports whether the call
// must be silently dropped.
func (p *Provider) check(op Op) (bool, error) {
	if err, ok := p.failures[op]; ok {
		delete(p.failures, op)
		return false, err
	}
	return p.dropped[op], nil
}

func (p *Provider) Subscribe(_ context.Context, parent domain.ProtoGroup, address string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if drop, err := p.check(OpSubscribe); err != nil || drop {
		return err
	}
	group, err := p.group(parent)
	if err != nil {
		return err
	}
	if existing := p.Find(address); existing != nil {
		if existing.IsResolved() {
			return protocol.Failed(protocol.CodeSubscriptionAlreadyExists, "%s already in roster", address)
		}
		existing.mu.Lock()
		existing.resolved = true
		existing.mu.Unlock()
		p.notifySubscription(protocol.SubscriptionEvent{
			Kind: protocol.SubscriptionCreated, Contact: existing, ParentGroup: existing.parentGroup(),
		})
		return nil
	}
	c := p.newContact(address, "", true)
	group.addContact(c)
	p.notifySubscription(protocol.SubscriptionEvent{
		Kind: protocol.SubscriptionCreated, Contact: c, ParentGroup: group,
	})
	return nil
}

func (p *Provider) Unsubscribe(_ context.Context, contact domain.ProtoContact) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if drop, err := p.check(OpUnsubscribe); err != nil || drop {
		return err
	}
	c := p.Find(contact.Address())
	if c == nil {
		return protocol.Failed(protocol.CodeIllegalArgument, "%s not in roster", contact.Address())
	}
	parent := c.parentGroup()
	parent.removeContact(c)
	p.notifySubscription(protocol.SubscriptionEvent{
		Kind: protocol.SubscriptionRemoved, Contact: c, ParentGroup: parent,
	})
	return nil
}

func (p *Provider) CreateGroup(_ context.Context, parent domain.ProtoGroup, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if drop, err := p.check(OpCreateGroup); err != nil || drop {
		return err
	}
	group, err := p.group(parent)
	if err != nil {
		return err
	}
	if group.subgroup(name) != nil {
		return protocol.Failed(protocol.CodeGeneral, "group %s already exists", name)
	}
	sub := p.newGroup(name, uuid.NewString(), true)
	group.addSubgroup(sub)
	p.notifyGroup(protocol.GroupEvent{Kind: protocol.GroupCreated, Group: sub})
	return nil
}

func (p *Provider) RenameGroup(_ context.Context, g domain.ProtoGroup, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if drop, err := p.check(OpRenameGroup); err != nil || drop {
		return err
	}
	group, err := p.group(g)
	if err != nil {
		return err
	}
	group.mu.Lock()
	old := group.name
	group.name = name
	group.mu.Unlock()
	p.notifyGroup(protocol.GroupEvent{Kind: protocol.GroupRenamed, Group: group, OldName: old})
	return nil
}

func (p *Provider) RemoveGroup(_ context.Context, g domain.ProtoGroup) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if drop, err := p.check(OpRemoveGroup); err != nil || drop {
		return err
	}
	group, err := p.group(g)
	if err != nil {
		return err
	}
	if group == p.root {
		return protocol.Failed(protocol.CodeNotSupported, "root group cannot be removed")
	}
	group.parent.removeSubgroup(group)
	p.notifyGroup(protocol.GroupEvent{Kind: protocol.GroupRemoved, Group: group})
	return nil
}

func (p *Provider) MoveContact(_ context.Context, contact domain.ProtoContact, g domain.ProtoGroup) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if drop, err := p.check(OpMoveContact); err != nil || drop {
		return err
	}
	group, err := p.group(g)
	if err != nil {
		return err
	}
	c := p.Find(contact.Address())
	if c == nil {
		return protocol.Failed(protocol.CodeIllegalArgument, "%s not in roster", contact.Address())
	}
	old := c.parentGroup()
	old.removeContact(c)
	group.addContact(c)
	p.notifySubscription(protocol.SubscriptionEvent{
		Kind: protocol.SubscriptionMoved, Contact: c, ParentGroup: group, OldParent: old,
	})
	return nil
}

func (p *Provider) SetDisplayName(_ context.Context, contact domain.ProtoContact, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if drop, err := p.check(OpSetDisplayName); err != nil || drop {
		return err
	}
	c := p.Find(contact.Address())
	if c == nil {
		return protocol.Failed(protocol.CodeIllegalArgument, "%s not in roster", contact.Address())
	}
	c.mu.Lock()
	old := c.displayName
	c.displayName = name
	c.mu.Unlock()
	p.notifySubscription(protocol.SubscriptionEvent{
		Kind: protocol.ContactPropertyChanged, Contact: c, ParentGroup: c.parentGroup(),
		Property: protocol.PropertyDisplayName, OldValue: old, NewValue: name,
	})
	return nil
}

func (p *Provider) CreateUnresolvedContact(parent domain.ProtoGroup, address, persistentData string) domain.ProtoContact {
	p.mu.Lock()
	defer p.mu.Unlock()
	if existing := p.Find(address); existing != nil {
		return existing
	}
	group, err := p.group(parent)
	if err != nil {
		group = p.root
	}
	c := p.newContact(address, "", false)
	c.persistentData = persistentData
	group.addContact(c)
	return c
}

func (p *Provider) CreateUnresolvedGroup(parent domain.ProtoGroup, uid, persistentData string) domain.ProtoGroup {
	p.mu.Lock()
	defer p.mu.Unlock()
	if existing := p.FindGroup(uid); existing != nil {
		return existing
	}
	group, err := p.group(parent)
	if err != nil {
		group = p.root
	}
	sub := p.newGroup(uid, uid, false)
	sub.persistentData = persistentData
	group.addSubgroup(sub)
	return sub
}

// ResolveAll marks every placeholder as confirmed by the server and notifies
// listeners.
func (p *Provider) ResolveAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.root.walk(func(g *Group) {
		g.mu.Lock()
		wasResolved := g.resolved
		g.resolved = true
		g.mu.Unlock()
		if !wasResolved {
			p.notifyGroup(protocol.GroupEvent{Kind: protocol.GroupResolved, Group: g})
		}
		for _, c := range g.contactsSnapshot() {
			c.mu.Lock()
			wasResolved := c.resolved
			c.resolved = true
			c.mu.Unlock()
			if !wasResolved {
				p.notifySubscription(protocol.SubscriptionEvent{
					Kind: protocol.SubscriptionResolved, Contact: c, ParentGroup: g,
				})
			}
		}
	})
}

// PushContact simulates a contact added to the roster from another client.
func (p *Provider) PushContact(path []string, address, displayName string) *Contact {
	p.mu.Lock()
	defer p.mu.Unlock()
	parent := p.ensurePath(path)
	c := p.newContact(address, displayName, true)
	parent.addContact(c)
	p.notifySubscription(protocol.SubscriptionEvent{
		Kind: protocol.SubscriptionCreated, Contact: c, ParentGroup: parent,
	})
	return c
}

// PushRemoveContact simulates a contact removed from another client.
func (p *Provider) PushRemoveContact(address string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := p.Find(address)
	if c == nil {
		return
	}
	parent := c.parentGroup()
	parent.removeContact(c)
	p.notifySubscription(protocol.SubscriptionEvent{
		Kind: protocol.SubscriptionRemoved, Contact: c, ParentGroup: parent,
	})
}

// PushDisplayName simulates a server side nickname change.
func (p *Provider) PushDisplayName(address, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := p.Find(address)
	if c == nil {
		return
	}
	c.mu.Lock()
	old := c.displayName
	c.displayName = name
	c.mu.Unlock()
	p.notifySubscription(protocol.SubscriptionEvent{
		Kind: protocol.ContactPropertyChanged, Contact: c, ParentGroup: c.parentGroup(),
		Property: protocol.PropertyDisplayName, OldValue: old, NewValue: name,
	})
}

// PushImage simulates a new avatar published by the contact.
func (p *Provider) PushImage(address string, image []byte) {
	c := p.Find(address)
	if c == nil {
		return
	}
	p.notifySubscription(protocol.SubscriptionEvent{
		Kind: protocol.ContactPropertyChanged, Contact: c, ParentGroup: c.parentGroup(),
		Property: protocol.PropertyImage, Image: slices.Clone(image),
	})
}

// PushGroup simulates a group created from another client, optionally
// holding contacts.
func (p *Provider) PushGroup(path []string, addresses ...string) *Group {
	p.mu.Lock()
	defer p.mu.Unlock()
	parent := p.ensurePath(path[:len(path)-1])
	sub := p.newGroup(path[len(path)-1], uuid.NewString(), true)
	for _, address := range addresses {
		sub.addContact(p.newContact(address, "", true))
	}
	parent.addSubgroup(sub)
	p.notifyGroup(protocol.GroupEvent{Kind: protocol.GroupCreated, Group: sub})
	return sub
}

// PushRemoveGroup simulates a group removed from another client.
func (p *Provider) PushRemoveGroup(uid string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	g := p.FindGroup(uid)
	if g == nil || g == p.root {
		return
	}
	g.parent.removeSubgroup(g)
	p.notifyGroup(protocol.GroupEvent{Kind: protocol.GroupRemoved, Group: g})
}

// SetPresence changes a contact's presence and notifies presence listeners.
func (p *Provider) SetPresence(address string, status domain.PresenceStatus) {
	c := p.Find(address)
	if c == nil {
		return
	}
	c.mu.Lock()
	old := c.presence
	c.presence = status
	c.mu.Unlock()
	evt := protocol.PresenceEvent{Contact: c, OldStatus: old, NewStatus: status}
	p.enqueue(func() {
		p.lmu.RLock()
		listeners := slices.Clone(p.presenceListeners)
		p.lmu.RUnlock()
		for _, l := range listeners {
			l.OnPresenceEvent(evt)
		}
	})
}

// SetCapabilities publishes the capabilities of one resource of a contact.
func (p *Provider) SetCapabilities(address, resourceID string, capabilities ...string) {
	c := p.Find(address)
	if c == nil {
		return
	}
	evt := protocol.CapabilitiesEvent{Contact: c, ResourceID: resourceID, Capabilities: capabilities}
	p.enqueue(func() {
		p.lmu.RLock()
		listeners := slices.Clone(p.capabilitiesListeners)
		p.lmu.RUnlock()
		for _, l := range listeners {
			l.OnCapabilitiesEvent(evt)
		}
	})
}

func (p *Provider) group(g domain.ProtoGroup) (*Group, error) {
	if g == nil {
		return p.root, nil
	}
	group, ok := g.(*Group)
	if !ok || group.accountID != p.accountID {
		return nil, protocol.Failed(protocol.CodeIllegalArgument, "foreign group %s", g.UID())
	}
	return group, nil
}

func (p *Provider) notifySubscription(evt protocol.SubscriptionEvent) {
	p.enqueue(func() {
		p.lmu.RLock()
		listeners := slices.Clone(p.subscriptionListeners)
		p.lmu.RUnlock()
		for _, l := range listeners {
			l.OnSubscriptionEvent(evt)
		}
	})
}

func (p *Provider) notifyGroup(evt protocol.GroupEvent) {
	p.enqueue(func() {
		p.lmu.RLock()
		listeners := slices.Clone(p.groupListeners)
		p.lmu.RUnlock()
		for _, l := range listeners {
			l.OnGroupEvent(evt)
		}
	})
}

func (p *Provider) enqueue(deliver func()) {
	p.qmu.Lock()
	p.queue = append(p.queue, deliver)
	p.qmu.Unlock()
	select {
	case p.signal <- struct{}{}:
	default:
	}
}

func (p *Provider) drain() []func() {
	p.qmu.Lock()
	defer p.qmu.Unlock()
	res := p.queue
	p.queue = nil
	return res
}

func (p *Provider) AddSubscriptionListener(l protocol.SubscriptionListener) {
	p.lmu.Lock()
	defer p.lmu.Unlock()
	p.subscriptionListeners = append(p.subscriptionListeners, l)
}

func (p *Provider) RemoveSubscriptionListener(l protocol.SubscriptionListener) {
	p.lmu.Lock()
	defer p.lmu.Unlock()
	p.subscriptionListeners = slices.DeleteFunc(p.subscriptionListeners, func(item protocol.SubscriptionListener) bool {
		return item == l
	})
}

func (p *Provider) AddGroupListener(l protocol.GroupListener) {
	p.lmu.Lock()
	defer p.lmu.Unlock()
	p.groupListeners = append(p.groupListeners, l)
}

func (p *Provider) RemoveGroupListener(l protocol.GroupListener) {
	p.lmu.Lock()
	defer p.lmu.Unlock()
	p.groupListeners = slices.DeleteFunc(p.groupListeners, func(item protocol.GroupListener) bool {
		return item == l
	})
}

func (p *Provider) AddPresenceListener(l protocol.PresenceListener) {
	p.lmu.Lock()
	defer p.lmu.Unlock()
	p.presenceListeners = append(p.presenceListeners, l)
}

func (p *Provider) RemovePresenceListener(l protocol.PresenceListener) {
	p.lmu.Lock()
	defer p.lmu.Unlock()
	p.presenceListeners = slices.DeleteFunc(p.presenceListeners, func(item protocol.PresenceListener) bool {
		return item == l
	})
}

func (p *Provider) AddCapabilitiesListener(l protocol.CapabilitiesListener) {
	p.lmu.Lock()
	defer p.lmu.Unlock()
	p.capabilitiesListeners = append(p.capabilitiesListeners, l)
}

func (p *Provider) RemoveCapabilitiesListener(l protocol.CapabilitiesListener) {
	p.lmu.Lock()
	defer p.lmu.Unlock()
	p.capabilitiesListeners = slices.DeleteFunc(p.capabilitiesListeners, func(item protocol.CapabilitiesListener) bool {
		return item == l
	})
}

func (p *Provider) String() string {
	return fmt.Sprintf("memory.Provider[%s]", strings.TrimSpace(p.accountID))
}
