// Package runtime keeps the meta contact list consistent with the protocol
// providers and the store. It owns every mutation of the tree: CRUD calls,
// remote notifications and replay all go through the Orchestrator.
package runtime

import (
	"contact-lab/contract"
	"contact-lab/domain"
	"contact-lab/domain/event"
	"contact-lab/errors"
	"contact-lab/protocol"
	"contact-lab/repositories"
	"contact-lab/repositories/storage"
	"contact-lab/runtime/workers"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const DefaultConfirmationTimeout = 10 * time.Second

type Orchestrator struct {
	log         *slog.Logger
	root        *domain.MetaContactGroup
	registry    contract.IProviderRegistry
	accounts    contract.IAccountRegistry
	fanout      *workers.EventFanout
	persistence *storage.ContactListSink
	ignore      *IgnoreList
	locks       *keyedMutex
	paths       singleflight.Group
	timeout     time.Duration
	handler     *remoteHandler
}

// NewOrchestrator builds an orchestrator around an empty tree. When repository
// is not nil, the persistence sink is registered as the first listener and
// replays stored rows whenever a provider is attached.
func NewOrchestrator(log *slog.Logger, registry contract.IProviderRegistry,
	accounts contract.IAccountRegistry, repository repositories.IContactListRepository,
	timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultConfirmationTimeout
	}
	o := &Orchestrator{
		log:      log,
		root:     domain.NewRootGroup(),
		registry: registry,
		accounts: accounts,
		fanout:   workers.NewEventFanout(log),
		ignore:   NewIgnoreList(),
		locks:    newKeyedMutex(),
		timeout:  timeout,
	}
	o.handler = &remoteHandler{o: o}
	if repository != nil {
		o.persistence = storage.NewContactListSink(repository, o, log)
		o.fanout.Add(o.persistence)
	}
	return o
}

func (o *Orchestrator) Root() *domain.MetaContactGroup { return o.root }

// AddListener registers a sink after the ones already present.
func (o *Orchestrator) AddListener(sink contract.EventSink) {
	if !o.fanout.Add(sink) {
		o.log.Debug(fmt.Sprintf("Listener %T already registered", sink))
	}
}

func (o *Orchestrator) RemoveListener(sink contract.EventSink) {
	o.fanout.Remove(sink)
}

func (o *Orchestrator) fire(ctx context.Context, evt event.ListEvent) {
	o.fanout.Fanout(ctx, evt)
}

// Start attaches every provider. Stored rows of all accounts are replayed
// first, one account after the other, then the providers go live
// concurrently.
func (o *Orchestrator) Start(ctx context.Context, providers ...protocol.Provider) error {
	registered := lo.Filter(providers, func(p protocol.Provider, _ int) bool {
		return o.register(ctx, p)
	})
	g, ctx := errgroup.WithContext(ctx)
	for _, p := range registered {
		g.Go(func() error {
			return o.goLive(ctx, p)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	o.log.Info(fmt.Sprintf("%d protocol providers attached", len(registered)))
	return nil
}

// AttachProvider replays the stored rows of the provider's account, then
// listens to its notifications and merges its live roster into the tree.
func (o *Orchestrator) AttachProvider(ctx context.Context, provider protocol.Provider) error {
	if !o.register(ctx, provider) {
		return nil
	}
	return o.goLive(ctx, provider)
}

func (o *Orchestrator) register(ctx context.Context, provider protocol.Provider) bool {
	if !o.registry.Register(provider) {
		o.log.Warn("Provider already attached", "account", provider.AccountID())
		return false
	}
	if o.persistence != nil {
		if err := o.persistence.LoadAccount(ctx, provider.AccountID()); err != nil {
			o.log.Error("Unable to replay stored contact list", "account", provider.AccountID(), "error", err)
		}
	}
	return true
}

func (o *Orchestrator) goLive(ctx context.Context, provider protocol.Provider) error {
	provider.AddSubscriptionListener(o.handler)
	provider.AddGroupListener(o.handler)
	if err := o.synchronize(ctx, provider); err != nil {
		return err
	}
	provider.AddPresenceListener(o.handler)
	provider.AddCapabilitiesListener(o.handler)
	o.log.Info("Provider attached", "account", provider.AccountID())
	return nil
}

// synchronize merges the provider's server-stored roster into the tree.
func (o *Orchestrator) synchronize(ctx context.Context, provider protocol.Provider) error {
	root := provider.RootGroup()
	if root == nil {
		return errors.Wrap(errors.ErrUnknown, "synchronize", provider.AccountID(),
			fmt.Errorf("provider has no root group"))
	}
	if o.root.AddProtoGroup(root) {
		o.fire(ctx, event.GroupModified{Group: o.root, Change: event.ProtoGroupAdded, ProtoGroup: root})
	}
	o.mergeProtoGroup(ctx, o.root, root)
	return ctx.Err()
}

func (o *Orchestrator) mergeProtoGroup(ctx context.Context, g *domain.MetaContactGroup, pg domain.ProtoGroup) {
	for _, c := range pg.Contacts() {
		o.addLiveContact(ctx, g, c)
	}
	for _, sub := range pg.Subgroups() {
		o.mergeSubgroup(ctx, g, sub)
	}
}

// mergeSubgroup binds pg to the meta group already bound to it, to a sibling
// with the same name, or to a new group, then merges its content.
func (o *Orchestrator) mergeSubgroup(ctx context.Context, parent *domain.MetaContactGroup, pg domain.ProtoGroup) {
	g := o.root.FindGroupByProtoGroup(pg)
	switch {
	case g != nil:
		g.AddProtoGroup(pg)
	case parent.Subgroup(pg.Name()) != nil:
		g = parent.Subgroup(pg.Name())
		if g.AddProtoGroup(pg) {
			o.fire(ctx, event.GroupModified{Group: g, Change: event.ProtoGroupAdded, ProtoGroup: pg})
		}
	default:
		created := domain.NewMetaContactGroup(pg.Name())
		created.AddProtoGroup(pg)
		existing, added := parent.AddSubgroupIfAbsent(created)
		if added {
			g = created
			o.fire(ctx, event.GroupAdded{Group: g, Parent: parent})
		} else {
			g = existing
			if g.AddProtoGroup(pg) {
				o.fire(ctx, event.GroupModified{Group: g, Change: event.ProtoGroupAdded, ProtoGroup: pg})
			}
		}
	}
	o.mergeProtoGroup(ctx, g, pg)
}

// addLiveContact creates a meta contact for a roster entry the tree does not
// hold yet, or refreshes the handle of the one that does.
func (o *Orchestrator) addLiveContact(ctx context.Context, g *domain.MetaContactGroup, c domain.ProtoContact) {
	if o.ignore.IsContactIgnored(c.Address(), c.AccountID()) {
		return
	}
	unlock := o.locks.Lock(contactLockKey(c.AccountID(), c.Address()))
	defer unlock()
	if o.ignore.IsContactIgnored(c.Address(), c.AccountID()) {
		return
	}
	if mc := o.root.FindContactByProto(c.Address(), c.AccountID()); mc != nil {
		mc.RefreshProtoContact(c)
		return
	}
	mc := domain.NewMetaContact()
	mc.AddProtoContact(c)
	g.AddChild(mc)
	o.fire(ctx, event.ContactAdded{Contact: mc, Parent: g})
}

// DetachProvider stops listening to a provider. Unless its account is still
// configured, every node it contributed is removed from the tree.
func (o *Orchestrator) DetachProvider(ctx context.Context, accountID string) error {
	provider, ok := o.registry.Unregister(accountID)
	if !ok {
		o.log.Warn("Provider already detached", "account", accountID)
		return nil
	}
	o.removeListeners(provider)
	if o.accounts != nil && o.accounts.IsStored(accountID) {
		o.log.Info("Provider detached for reconfiguration, keeping its contacts", "account", accountID)
		return nil
	}
	o.purgeAccount(ctx, o.root, accountID)
	o.log.Info("Provider removed with its contacts", "account", accountID)
	return nil
}

// Stop removes the listeners of every attached provider. The tree is kept.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	for _, provider := range o.registry.All() {
		o.removeListeners(provider)
	}
}

func (o *Orchestrator) removeListeners(provider protocol.Provider) {
	provider.RemoveSubscriptionListener(o.handler)
	provider.RemoveGroupListener(o.handler)
	provider.RemovePresenceListener(o.handler)
	provider.RemoveCapabilitiesListener(o.handler)
}

// purgeAccount removes the account's contacts and bindings bottom-up and
// drops the groups that only existed for it.
func (o *Orchestrator) purgeAccount(ctx context.Context, g *domain.MetaContactGroup, accountID string) {
	for _, sub := range g.Subgroups() {
		o.purgeAccount(ctx, sub, accountID)
	}
	for _, mc := range g.Children() {
		removed := mc.RemoveContactsForAccount(accountID)
		if len(removed) == 0 {
			continue
		}
		if mc.ContactCount() == 0 {
			if g.RemoveChild(mc) {
				o.fire(ctx, event.ContactRemoved{Contact: mc, Parent: g})
			}
			continue
		}
		for _, c := range removed {
			o.fire(ctx, event.ProtoContactRemoved{Contact: mc, ProtoContact: c})
		}
	}
	unbound := g.RemoveProtoGroupsForAccount(accountID)
	for _, pg := range unbound {
		o.fire(ctx, event.GroupModified{Group: g, Change: event.ProtoGroupRemoved, ProtoGroup: pg})
	}
	if len(unbound) > 0 {
		o.removeIfEmpty(ctx, g)
	}
}

func (o *Orchestrator) removeIfEmpty(ctx context.Context, g *domain.MetaContactGroup) {
	parent := g.Parent()
	if g.IsRoot() || parent == nil || !g.IsEmpty() {
		return
	}
	if parent.RemoveSubgroup(g) {
		o.fire(ctx, event.GroupRemoved{Group: g, Parent: parent})
	}
}

// detachProtoContact removes c from mc, and mc from the tree once it holds
// no contact anymore.
func (o *Orchestrator) detachProtoContact(ctx context.Context, mc *domain.MetaContact, c domain.ProtoContact) {
	if !mc.RemoveProtoContact(c) {
		return
	}
	if mc.ContactCount() > 0 {
		o.fire(ctx, event.ProtoContactRemoved{Contact: mc, ProtoContact: c})
		return
	}
	if parent := mc.ParentGroup(); parent != nil && parent.RemoveChild(mc) {
		o.fire(ctx, event.ContactRemoved{Contact: mc, Parent: parent})
	}
}

// relocate applies a confirmed move of c into dst. A meta contact holding
// only c moves as a whole, otherwise c is split into a new meta contact.
func (o *Orchestrator) relocate(ctx context.Context, mc *domain.MetaContact, c domain.ProtoContact, dst *domain.MetaContactGroup) {
	if mc.ContactCount() == 1 {
		old := mc.ParentGroup()
		if old == dst {
			return
		}
		mc.MoveTo(dst)
		o.fire(ctx, event.ContactMoved{Contact: mc, OldParent: old, NewParent: dst})
		return
	}
	if !mc.RemoveProtoContact(c) {
		return
	}
	moved := domain.NewMetaContact()
	moved.AddProtoContact(c)
	dst.AddChild(moved)
	o.fire(ctx, event.ContactAdded{Contact: moved, Parent: dst})
	o.fire(ctx, event.ProtoContactMoved{OldContact: mc, NewContact: moved, ProtoContact: c})
}

func (o *Orchestrator) provider(op, subject, accountID string) (protocol.Provider, error) {
	provider, ok := o.registry.Get(accountID)
	if !ok {
		return nil, errors.Wrap(errors.ErrUnknown, op, subject,
			fmt.Errorf("%w: %s", errors.ErrProviderNotFound, accountID))
	}
	return provider, nil
}

// metaGroupFor returns the meta group bound to pg, the root for a provider
// root group.
func (o *Orchestrator) metaGroupFor(pg domain.ProtoGroup) *domain.MetaContactGroup {
	if pg == nil {
		return nil
	}
	return o.root.FindGroupByProtoGroup(pg)
}

func (o *Orchestrator) FindMetaContactByID(id string) *domain.MetaContact {
	return o.root.FindContactByID(id)
}

func (o *Orchestrator) FindMetaContactByContact(c domain.ProtoContact) *domain.MetaContact {
	return o.root.FindContactByProto(c.Address(), c.AccountID())
}

func (o *Orchestrator) FindMetaContactByAddress(address, accountID string) *domain.MetaContact {
	return o.root.FindContactByProto(address, accountID)
}

func (o *Orchestrator) FindAllMetaContactsForAccount(accountID string) []*domain.MetaContact {
	return o.root.Contacts(func(mc *domain.MetaContact) bool {
		return len(mc.ContactsForAccount(accountID)) > 0
	})
}

// FindAllMetaContactsForAddress searches every account.
func (o *Orchestrator) FindAllMetaContactsForAddress(address string) []*domain.MetaContact {
	return o.root.Contacts(func(mc *domain.MetaContact) bool {
		return mc.Contact(address, "") != nil
	})
}

func (o *Orchestrator) FindMetaContactGroupByID(id string) *domain.MetaContactGroup {
	return o.root.FindGroupByID(id)
}

func (o *Orchestrator) FindMetaContactGroupByProtoGroup(pg domain.ProtoGroup) *domain.MetaContactGroup {
	return o.metaGroupFor(pg)
}

func (o *Orchestrator) FindParentGroup(mc *domain.MetaContact) *domain.MetaContactGroup {
	return mc.ParentGroup()
}
