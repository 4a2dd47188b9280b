package runtime

import (
	"contact-lab/contract"
	"contact-lab/domain"
	"contact-lab/domain/event"
	"contact-lab/errors"
	"context"
	"fmt"
)

// The methods below form the load-time API used by the persistence sink to
// rebuild the tree. Proto bindings are unresolved placeholders until the
// provider confirms them. Their events are fired as a replay.

// LoadStoredGroup returns the group with the given id, creating it below
// parent when the tree does not hold it yet.
func (o *Orchestrator) LoadStoredGroup(parent *domain.MetaContactGroup, id, name string) *domain.MetaContactGroup {
	if g := o.root.FindGroupByID(id); g != nil {
		return g
	}
	g := domain.NewMetaContactGroupWithID(id, name)
	existing, added := parent.AddSubgroupIfAbsent(g)
	if !added {
		o.log.Warn("Stored group merged into a sibling with the same name", "group", id, "name", name)
		return existing
	}
	o.fire(event.WithReplay(context.Background()), event.GroupAdded{Group: g, Parent: parent})
	return g
}

// LoadStoredProtoGroup binds a placeholder proto group of the account to
// group. The root is bound to the provider's root group.
func (o *Orchestrator) LoadStoredProtoGroup(group *domain.MetaContactGroup, accountID string,
	parent domain.ProtoGroup, uid, persistentData string) (domain.ProtoGroup, error) {
	provider, err := o.provider("load stored group", uid, accountID)
	if err != nil {
		return nil, err
	}
	var pg domain.ProtoGroup
	if group.IsRoot() {
		pg = provider.RootGroup()
	} else {
		pg = provider.CreateUnresolvedGroup(parent, uid, persistentData)
	}
	if group.AddProtoGroup(pg) {
		o.fire(event.WithReplay(context.Background()), event.GroupModified{Group: group, Change: event.ProtoGroupAdded, ProtoGroup: pg})
	}
	return pg, nil
}

// LoadStoredContact restores a meta contact, or completes the one already
// restored from another account. Addresses already present in the tree are
// skipped. A new meta contact left without any proto contact is rejected.
func (o *Orchestrator) LoadStoredContact(parent *domain.MetaContactGroup,
	stored contract.StoredMetaContact) (*domain.MetaContact, error) {
	provider, err := o.provider("load stored contact", stored.ID, stored.AccountID)
	if err != nil {
		return nil, err
	}
	ctx := event.WithReplay(context.Background())
	mc := o.root.FindContactByID(stored.ID)
	isNew := mc == nil
	if isNew {
		mc = domain.NewMetaContactWithID(stored.ID, stored.Details)
		if stored.DisplayName != "" {
			mc.SetDisplayName(stored.DisplayName, stored.UserDefined)
		}
	}

	var added []domain.ProtoContact
	for _, sc := range stored.Contacts {
		if other := o.root.FindContactByProto(sc.Address, stored.AccountID); other != nil {
			o.log.Warn("Stored contact already in the list, skipping",
				"account", stored.AccountID, "address", sc.Address, "meta_contact", other.ID())
			continue
		}
		c := provider.CreateUnresolvedContact(sc.Parent, sc.Address, sc.PersistentData)
		if mc.AddProtoContact(c) {
			added = append(added, c)
		}
	}

	if !isNew {
		for _, c := range added {
			o.fire(ctx, event.ProtoContactAdded{Contact: mc, ProtoContact: c})
		}
		return mc, nil
	}
	if mc.ContactCount() == 0 {
		return nil, fmt.Errorf("%w: %s", errors.ErrNoProtoContact, stored.ID)
	}
	parent.AddChild(mc)
	o.fire(ctx, event.ContactAdded{Contact: mc, Parent: parent})
	return mc, nil
}
