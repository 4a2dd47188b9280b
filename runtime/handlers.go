package runtime

import (
	"contact-lab/domain"
	"contact-lab/domain/event"
	"contact-lab/protocol"
	"context"
	"strings"
)

// remoteHandler applies the notifications of attached providers to the
// tree. Notifications caused by an operation in flight are in the ignore
// list and skipped before any lock is taken: the operation is waiting for
// the same delivery goroutine to confirm it.
type remoteHandler struct {
	o *Orchestrator
}

func (h *remoteHandler) OnSubscriptionEvent(evt protocol.SubscriptionEvent) {
	c := evt.Contact
	if c == nil {
		return
	}
	if h.o.ignore.IsContactIgnored(c.Address(), c.AccountID()) {
		h.o.log.Debug("Ignoring subscription event of operation in flight",
			"kind", evt.Kind, "account", c.AccountID(), "address", c.Address())
		return
	}
	ctx := context.Background()
	switch evt.Kind {
	case protocol.SubscriptionCreated:
		h.subscriptionCreated(ctx, evt)
	case protocol.SubscriptionMoved:
		h.subscriptionMoved(ctx, evt)
	case protocol.SubscriptionRemoved:
		h.subscriptionRemoved(ctx, evt)
	case protocol.SubscriptionResolved:
		h.subscriptionResolved(ctx, evt)
	case protocol.SubscriptionFailed:
		h.o.log.Warn("Subscription failed", "account", c.AccountID(), "address", c.Address(), "reason", evt.Reason)
	case protocol.ContactPropertyChanged:
		h.propertyChanged(ctx, evt)
	}
}

func (h *remoteHandler) subscriptionCreated(ctx context.Context, evt protocol.SubscriptionEvent) {
	parentProto := evt.ParentGroup
	if parentProto == nil {
		parentProto = evt.Contact.ParentGroup()
	}
	parent := h.o.metaGroupFor(parentProto)
	if parent == nil {
		h.o.log.Warn("Subscription created in an unknown group",
			"account", evt.Contact.AccountID(), "address", evt.Contact.Address())
		return
	}
	h.o.addLiveContact(ctx, parent, evt.Contact)
}

func (h *remoteHandler) subscriptionMoved(ctx context.Context, evt protocol.SubscriptionEvent) {
	c := evt.Contact
	unlock := h.o.locks.Lock(contactLockKey(c.AccountID(), c.Address()))
	defer unlock()
	mc := h.o.root.FindContactByProto(c.Address(), c.AccountID())
	if mc == nil {
		h.o.log.Warn("Moved contact is not in the list", "account", c.AccountID(), "address", c.Address())
		return
	}
	// The handle's current parent wins over the event's: a notification can
	// be delivered after a later move of the same contact, or its rollback.
	parent := c.ParentGroup()
	if parent == nil {
		parent = evt.ParentGroup
	}
	dst := h.o.metaGroupFor(parent)
	if dst == nil {
		h.o.log.Warn("Contact moved to an unknown group", "account", c.AccountID(), "address", c.Address())
		return
	}
	if mc.ParentGroup() == dst {
		return
	}
	h.o.relocate(ctx, mc, c, dst)
}

func (h *remoteHandler) subscriptionRemoved(ctx context.Context, evt protocol.SubscriptionEvent) {
	c := evt.Contact
	unlock := h.o.locks.Lock(contactLockKey(c.AccountID(), c.Address()))
	defer unlock()
	mc := h.o.root.FindContactByProto(c.Address(), c.AccountID())
	if mc == nil {
		h.o.log.Debug("Removed contact already gone", "account", c.AccountID(), "address", c.Address())
		return
	}
	h.o.detachProtoContact(ctx, mc, c)
}

func (h *remoteHandler) subscriptionResolved(ctx context.Context, evt protocol.SubscriptionEvent) {
	c := evt.Contact
	mc := h.o.root.FindContactByProto(c.Address(), c.AccountID())
	if mc == nil {
		return
	}
	mc.RefreshProtoContact(c)
	h.o.fire(ctx, event.ProtoContactModified{
		Contact:      mc,
		ProtoContact: c,
		Property:     event.PropertyPersistentData,
		NewValue:     c.PersistentData(),
	})
}

func (h *remoteHandler) propertyChanged(ctx context.Context, evt protocol.SubscriptionEvent) {
	c := evt.Contact
	mc := h.o.root.FindContactByProto(c.Address(), c.AccountID())
	if mc == nil {
		return
	}
	switch evt.Property {
	case protocol.PropertyDisplayName:
		h.o.fire(ctx, event.ProtoContactRenamed{Contact: mc, ProtoContact: c, OldName: evt.OldValue, NewName: evt.NewValue})
		if mc.ContactCount() != 1 || mc.IsDisplayNameUserDefined() {
			return
		}
		if old, changed := mc.SetDisplayName(evt.NewValue, false); changed {
			h.o.fire(ctx, event.ContactRenamed{Contact: mc, OldName: old, NewName: evt.NewValue})
		}
	case protocol.PropertyImage:
		h.o.ChangeMetaContactAvatar(ctx, mc, c, evt.Image)
	case protocol.PropertyPersistentData:
		h.o.fire(ctx, event.ProtoContactModified{
			Contact:      mc,
			ProtoContact: c,
			Property:     event.PropertyPersistentData,
			OldValue:     evt.OldValue,
			NewValue:     evt.NewValue,
		})
	}
}

func (h *remoteHandler) OnGroupEvent(evt protocol.GroupEvent) {
	pg := evt.Group
	if pg == nil {
		return
	}
	ctx := context.Background()
	switch evt.Kind {
	case protocol.GroupCreated:
		if h.o.ignore.IsGroupNameIgnored(pg.Name(), pg.AccountID()) {
			return
		}
		parent := h.o.metaGroupFor(pg.Parent())
		if parent == nil {
			h.o.log.Warn("Group created below an unknown group", "account", pg.AccountID(), "group", pg.Name())
			return
		}
		h.o.mergeSubgroup(ctx, parent, pg)
	case protocol.GroupRemoved:
		if h.o.ignore.IsGroupUIDIgnored(pg.UID(), pg.AccountID()) {
			return
		}
		g := h.o.metaGroupFor(pg)
		if g == nil {
			h.o.log.Debug("Removed group already gone", "account", pg.AccountID(), "group", pg.UID())
			return
		}
		h.groupRemoved(ctx, g, pg)
	case protocol.GroupRenamed:
		if h.o.ignore.IsGroupUIDIgnored(pg.UID(), pg.AccountID()) {
			return
		}
		if g := h.o.metaGroupFor(pg); g != nil {
			h.groupRenamed(ctx, g, pg, evt.OldName)
		}
	case protocol.GroupResolved:
		if g := h.o.metaGroupFor(pg); g != nil {
			g.AddProtoGroup(pg)
			h.o.log.Debug("Group resolved", "account", pg.AccountID(), "group", g.Name())
		}
	}
}

// groupRemoved drops the contacts and bindings the server removed with pg,
// then the meta group once nothing is left in it.
func (h *remoteHandler) groupRemoved(ctx context.Context, g *domain.MetaContactGroup, pg domain.ProtoGroup) {
	for _, sub := range g.Subgroups() {
		for _, subProto := range sub.ProtoGroupsForAccount(pg.AccountID()) {
			h.groupRemoved(ctx, sub, subProto)
		}
	}
	for _, mc := range g.Children() {
		removed := mc.RemoveContactsForGroup(pg)
		if len(removed) == 0 {
			continue
		}
		if mc.ContactCount() == 0 {
			if g.RemoveChild(mc) {
				h.o.fire(ctx, event.ContactRemoved{Contact: mc, Parent: g})
			}
			continue
		}
		for _, c := range removed {
			h.o.fire(ctx, event.ProtoContactRemoved{Contact: mc, ProtoContact: c})
		}
	}
	if g.RemoveProtoGroup(pg) {
		h.o.fire(ctx, event.GroupModified{Group: g, Change: event.ProtoGroupRemoved, ProtoGroup: pg})
	}
	if g.CountProtoGroups() == 0 {
		h.o.removeIfEmpty(ctx, g)
	}
}

// groupRenamed follows a server rename only when pg is the single binding
// of the meta group and no sibling already uses the name.
func (h *remoteHandler) groupRenamed(ctx context.Context, g *domain.MetaContactGroup, pg domain.ProtoGroup, oldName string) {
	h.o.fire(ctx, event.GroupModified{
		Group:      g,
		Change:     event.ProtoGroupRenamed,
		ProtoGroup: pg,
		OldValue:   oldName,
		NewValue:   pg.Name(),
	})
	if g.CountProtoGroups() != 1 || g.Name() == pg.Name() {
		return
	}
	if parent := g.Parent(); parent != nil {
		if sibling := parent.Subgroup(pg.Name()); sibling != nil && sibling != g {
			h.o.log.Warn("Server rename clashes with a sibling group, keeping local name",
				"account", pg.AccountID(), "group", g.Name(), "name", pg.Name())
			return
		}
	}
	old := g.Rename(pg.Name())
	h.o.fire(ctx, event.GroupModified{Group: g, Change: event.MetaGroupRenamed, OldValue: old, NewValue: pg.Name()})
}

func (h *remoteHandler) OnPresenceEvent(evt protocol.PresenceEvent) {
	c := evt.Contact
	if c == nil {
		return
	}
	mc := h.o.root.FindContactByProto(c.Address(), c.AccountID())
	if mc == nil {
		return
	}
	parent := mc.ParentGroup()
	before := -1
	if parent != nil {
		before = parent.IndexOfContact(mc)
	}
	if after := mc.Reevaluate(); parent != nil && after != before {
		h.o.fire(context.Background(), event.GroupModified{Group: parent, Change: event.ChildContactsReordered})
	}
}

func (h *remoteHandler) OnCapabilitiesEvent(evt protocol.CapabilitiesEvent) {
	c := evt.Contact
	if c == nil {
		return
	}
	mc := h.o.root.FindContactByProto(c.Address(), c.AccountID())
	if mc == nil {
		return
	}
	mc.UpdateCapabilities(c, evt.ResourceID, evt.Capabilities)
	h.o.fire(context.Background(), event.ProtoContactModified{
		Contact:      mc,
		ProtoContact: c,
		Property:     event.PropertyCapabilities,
		NewValue:     strings.Join(evt.Capabilities, ","),
	})
}
