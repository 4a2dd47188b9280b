package runtime

import (
	"contact-lab/domain"
	"contact-lab/domain/event"
	"contact-lab/domain/mimetypes"
	"contact-lab/errors"
	"contact-lab/protocol"
	"context"
	"fmt"

	"github.com/samber/lo"
)

// claimContacts puts the contacts in the ignore list, then takes their
// operation locks. The ignore entries come first so the delivery goroutine
// drops their notifications instead of waiting on a lock whose holder is
// waiting on that same goroutine for a confirmation. The returned function
// releases the locks before the ignore entries.
func (o *Orchestrator) claimContacts(keys ...domain.ContactKey) func() {
	releases := lo.Map(keys, func(k domain.ContactKey, _ int) func() {
		return o.ignore.IgnoreContact(k.Address, k.AccountID)
	})
	unlock := o.locks.Lock(lo.Map(keys, func(k domain.ContactKey, _ int) string {
		return contactLockKey(k.AccountID, k.Address)
	})...)
	return func() {
		unlock()
		for _, release := range releases {
			release()
		}
	}
}

// CreateMetaContact subscribes to address on the account and, once the
// server confirmed it, adds a new meta contact holding it below parent.
func (o *Orchestrator) CreateMetaContact(ctx context.Context, accountID string,
	parent *domain.MetaContactGroup, address string) (*domain.MetaContact, error) {
	const op = "create meta contact"
	if err := validateInput(op, address, contactInput{AccountID: accountID, Address: address}); err != nil {
		return nil, err
	}
	provider, err := o.provider(op, address, accountID)
	if err != nil {
		return nil, err
	}
	release := o.claimContacts(domain.ContactKey{AccountID: accountID, Address: address})
	defer release()
	if existing := o.root.FindContactByProto(address, accountID); existing != nil {
		return nil, errors.Wrap(errors.ErrContactAlreadyExists, op, address, nil)
	}

	var created *domain.MetaContact
	if err := o.subscribe(ctx, provider, parent, address, func(c domain.ProtoContact) {
		created = domain.NewMetaContact()
		created.AddProtoContact(c)
		parent.AddChild(created)
	}); err != nil {
		return nil, err
	}
	o.fire(ctx, event.ContactAdded{Contact: created, Parent: parent})
	return created, nil
}

// AddNewContactToMetaContact subscribes to address and merges the confirmed
// contact into an existing meta contact.
func (o *Orchestrator) AddNewContactToMetaContact(ctx context.Context, accountID string,
	mc *domain.MetaContact, address string) error {
	const op = "add contact to meta contact"
	if err := validateInput(op, address, contactInput{AccountID: accountID, Address: address}); err != nil {
		return err
	}
	provider, err := o.provider(op, address, accountID)
	if err != nil {
		return err
	}
	parent := mc.ParentGroup()
	if parent == nil {
		panic(fmt.Sprintf("%s is not part of the contact list", mc))
	}
	release := o.claimContacts(domain.ContactKey{AccountID: accountID, Address: address})
	defer release()
	if existing := o.root.FindContactByProto(address, accountID); existing != nil {
		return errors.Wrap(errors.ErrContactAlreadyExists, op, address, nil)
	}

	var added domain.ProtoContact
	if err := o.subscribe(ctx, provider, parent, address, func(c domain.ProtoContact) {
		if mc.AddProtoContact(c) {
			added = c
		}
	}); err != nil {
		return err
	}
	if added != nil {
		o.fire(ctx, event.ProtoContactAdded{Contact: mc, ProtoContact: added})
	}
	return nil
}

// subscribe runs the blocking confirmation protocol for a new subscription.
// The caller holds the claim on address; apply runs with the confirmed
// contact before it is released.
func (o *Orchestrator) subscribe(ctx context.Context, provider protocol.Provider,
	group *domain.MetaContactGroup, address string, apply func(domain.ProtoContact)) error {
	const op = "subscribe"
	parentProto, err := o.resolveProtoPath(ctx, provider, group)
	if err != nil {
		return err
	}

	pending := newPendingOp(o.log, op, address, provider.AccountID(), subscriptionConfirmation(address))
	provider.AddSubscriptionListener(pending)
	defer provider.RemoveSubscriptionListener(pending)
	provider.AddGroupListener(pending)
	defer provider.RemoveGroupListener(pending)

	if err := provider.Subscribe(ctx, parentProto, address); err != nil {
		pending.transition(OpFailed)
		return remoteFailure(op, address, err)
	}
	confirmed, err := pending.await(ctx, o.timeout)
	switch {
	case errors.Is(err, errors.ErrSubscriptionFailed):
		return errors.Wrap(errors.ErrUnknown, op, address, err)
	case err != nil:
		return errors.Wrap(errors.ErrNetwork, op, address, err)
	}
	apply(confirmed.contact)
	return nil
}

// resolveProtoPath returns the proto group bound to group for the provider,
// creating the missing ones from the root down. The root maps to the
// provider's root group without any remote call.
func (o *Orchestrator) resolveProtoPath(ctx context.Context, provider protocol.Provider,
	group *domain.MetaContactGroup) (domain.ProtoGroup, error) {
	if group.IsRoot() {
		return provider.RootGroup(), nil
	}
	if pg := group.ProtoGroup(provider.AccountID()); pg != nil {
		return pg, nil
	}
	parent := group.Parent()
	if parent == nil {
		panic(fmt.Sprintf("%s is not attached to the contact list", group))
	}
	parentProto, err := o.resolveProtoPath(ctx, provider, parent)
	if err != nil {
		return nil, err
	}

	res, err, _ := o.paths.Do(provider.AccountID()+"/"+group.ID(), func() (any, error) {
		if pg := group.ProtoGroup(provider.AccountID()); pg != nil {
			return pg, nil
		}
		pg, err := o.createProtoGroup(ctx, provider, parentProto, group.Name())
		if err != nil {
			return nil, err
		}
		if group.AddProtoGroup(pg) {
			o.fire(ctx, event.GroupModified{Group: group, Change: event.ProtoGroupAdded, ProtoGroup: pg})
		}
		return pg, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(domain.ProtoGroup), nil
}

// createProtoGroup reuses a server group with the same name or creates one
// and waits for its confirmation.
func (o *Orchestrator) createProtoGroup(ctx context.Context, provider protocol.Provider,
	parent domain.ProtoGroup, name string) (domain.ProtoGroup, error) {
	const op = "create proto group"
	if existing, ok := lo.Find(parent.Subgroups(), func(pg domain.ProtoGroup) bool {
		return pg.Name() == name
	}); ok {
		return existing, nil
	}

	pending := newPendingOp(o.log, op, name, provider.AccountID(), groupConfirmation(parent, name))
	provider.AddGroupListener(pending)
	defer provider.RemoveGroupListener(pending)
	release := o.ignore.IgnoreGroupName(name, provider.AccountID())
	defer release()

	if err := provider.CreateGroup(ctx, parent, name); err != nil {
		pending.transition(OpFailed)
		return nil, remoteFailure(op, name, err)
	}
	confirmed, err := pending.await(ctx, o.timeout)
	if err != nil {
		return nil, errors.Wrap(errors.ErrNetwork, op, name, err)
	}
	return confirmed.group, nil
}

// remoteFailure maps a synchronous provider failure to an error kind.
func remoteFailure(op, subject string, err error) error {
	var failed *protocol.OperationFailedError
	if errors.As(err, &failed) {
		switch failed.Code {
		case protocol.CodeSubscriptionAlreadyExists:
			return errors.Wrap(errors.ErrContactAlreadyExists, op, subject, err)
		case protocol.CodeNotSupported:
			return errors.Wrap(errors.ErrUnsupportedOperation, op, subject, err)
		}
	}
	return errors.Wrap(errors.ErrNetwork, op, subject, err)
}

// CreateMetaContactGroup adds an empty local group. Proto groups are created
// lazily, when the first contact of an account is placed in it. Sibling names
// are unique regardless of case.
func (o *Orchestrator) CreateMetaContactGroup(ctx context.Context, parent *domain.MetaContactGroup,
	name string) (*domain.MetaContactGroup, error) {
	const op = "create group"
	if err := validateInput(op, name, groupInput{Name: name}); err != nil {
		return nil, err
	}
	g := domain.NewMetaContactGroup(name)
	if _, added := parent.AddSubgroupIfAbsent(g); !added {
		return nil, errors.Wrap(errors.ErrGroupAlreadyExists, op, name, nil)
	}
	o.fire(ctx, event.GroupAdded{Group: g, Parent: parent})
	return g, nil
}

// RenameMetaContactGroup renames every bound proto group, then the meta
// group. Proto groups already renamed are restored when one rename fails.
func (o *Orchestrator) RenameMetaContactGroup(ctx context.Context, g *domain.MetaContactGroup, name string) error {
	const op = "rename group"
	if g.IsRoot() {
		return errors.Wrap(errors.ErrUnsupportedOperation, op, g.ID(), nil)
	}
	if err := validateInput(op, name, groupInput{Name: name}); err != nil {
		return err
	}
	if parent := g.Parent(); parent != nil {
		if sibling := parent.Subgroup(name); sibling != nil && sibling != g {
			return errors.Wrap(errors.ErrGroupAlreadyExists, op, name, nil)
		}
	}

	type renamed struct {
		provider protocol.Provider
		group    domain.ProtoGroup
		oldName  string
	}
	var done []renamed
	for _, pg := range g.ProtoGroups() {
		provider, ok := o.registry.Get(pg.AccountID())
		if !ok {
			o.log.Warn("No provider for bound group, skipping remote rename", "account", pg.AccountID(), "group", pg.UID())
			continue
		}
		release := o.ignore.IgnoreGroupUID(pg.UID(), pg.AccountID())
		defer release()
		oldName := pg.Name()
		if err := provider.RenameGroup(ctx, pg, name); err != nil {
			for _, r := range done {
				if rbErr := r.provider.RenameGroup(ctx, r.group, r.oldName); rbErr != nil {
					o.log.Error("Unable to restore group name", "account", r.group.AccountID(), "group", r.group.UID(), "error", rbErr)
				}
			}
			return errors.Wrap(errors.ErrNetwork, op, name, err)
		}
		done = append(done, renamed{provider: provider, group: pg, oldName: oldName})
	}

	old := g.Rename(name)
	o.fire(ctx, event.GroupModified{Group: g, Change: event.MetaGroupRenamed, OldValue: old, NewValue: name})
	return nil
}

// MoveMetaContactGroup re-parents a group that is not bound to any proto
// group yet. Providers cannot re-parent server groups.
func (o *Orchestrator) MoveMetaContactGroup(ctx context.Context, g, dst *domain.MetaContactGroup) error {
	const op = "move group"
	if g.IsRoot() || g == dst || g.IsAncestorOf(dst) {
		return errors.Wrap(errors.ErrUnsupportedOperation, op, g.ID(), nil)
	}
	bound := false
	g.Walk(func(sub *domain.MetaContactGroup) bool {
		bound = bound || sub.CountProtoGroups() > 0
		return !bound
	})
	if bound {
		return errors.Wrap(errors.ErrUnsupportedOperation, op, g.ID(),
			fmt.Errorf("group is bound to server groups"))
	}
	old := g.Parent()
	if old == dst {
		return nil
	}
	if sibling := dst.Subgroup(g.Name()); sibling != nil {
		return errors.Wrap(errors.ErrGroupAlreadyExists, op, g.Name(), nil)
	}
	if old != nil && old.RemoveSubgroup(g) {
		o.fire(ctx, event.GroupRemoved{Group: g, Parent: old})
	}
	dst.AddSubgroup(g)
	o.fire(ctx, event.GroupAdded{Group: g, Parent: dst})
	return nil
}

// RemoveMetaContactGroup removes every bound proto group on the server, then
// the meta group with its whole subtree.
func (o *Orchestrator) RemoveMetaContactGroup(ctx context.Context, g *domain.MetaContactGroup) error {
	const op = "remove group"
	if g.IsRoot() {
		return errors.Wrap(errors.ErrUnsupportedOperation, op, g.ID(), nil)
	}
	for _, pg := range g.ProtoGroups() {
		provider, ok := o.registry.Get(pg.AccountID())
		if !ok {
			o.log.Warn("No provider for bound group, dropping binding", "account", pg.AccountID(), "group", pg.UID())
			continue
		}
		release := o.ignore.IgnoreGroupUID(pg.UID(), pg.AccountID())
		defer release()
		if err := provider.RemoveGroup(ctx, pg); err != nil {
			return errors.Wrap(errors.ErrRemoveGroupFailed, op, g.Name(), err)
		}
		if g.RemoveProtoGroup(pg) {
			o.fire(ctx, event.GroupModified{Group: g, Change: event.ProtoGroupRemoved, ProtoGroup: pg})
		}
	}
	parent := g.Parent()
	if parent == nil || !parent.RemoveSubgroup(g) {
		o.log.Debug("Group already removed", "group", g.ID())
		return nil
	}
	o.fire(ctx, event.GroupRemoved{Group: g, Parent: parent})
	return nil
}

// RenameMetaContact sets a user-defined display name, pushing it to every
// proto contact first. Remote names already changed are restored on failure.
func (o *Orchestrator) RenameMetaContact(ctx context.Context, mc *domain.MetaContact, name string) error {
	const op = "rename contact"
	if err := validateInput(op, mc.ID(), displayNameInput{Name: name}); err != nil {
		return err
	}
	type renamed struct {
		provider protocol.Provider
		contact  domain.ProtoContact
		oldName  string
	}
	var done []renamed
	for _, c := range mc.Contacts() {
		provider, ok := o.registry.Get(c.AccountID())
		if !ok {
			continue
		}
		oldName := c.DisplayName()
		if err := provider.SetDisplayName(ctx, c, name); err != nil {
			for _, r := range done {
				if rbErr := r.provider.SetDisplayName(ctx, r.contact, r.oldName); rbErr != nil {
					o.log.Error("Unable to restore contact name", "account", r.contact.AccountID(), "address", r.contact.Address(), "error", rbErr)
				}
			}
			return remoteFailure(op, c.Address(), err)
		}
		done = append(done, renamed{provider: provider, contact: c, oldName: oldName})
	}
	old, _ := mc.SetDisplayName(name, true)
	o.fire(ctx, event.ContactRenamed{Contact: mc, OldName: old, NewName: name})
	return nil
}

// ClearUserDefinedDisplayName falls back to the default contact's name.
func (o *Orchestrator) ClearUserDefinedDisplayName(ctx context.Context, mc *domain.MetaContact) {
	if !mc.IsDisplayNameUserDefined() {
		return
	}
	old, name, _ := mc.ClearUserDefinedDisplayName()
	o.fire(ctx, event.ContactRenamed{Contact: mc, OldName: old, NewName: name})
}

// MoveContact moves one proto contact into dst. The remote move happens
// first; the tree is left untouched when it fails.
func (o *Orchestrator) MoveContact(ctx context.Context, c domain.ProtoContact, dst *domain.MetaContactGroup) error {
	const op = "move contact"
	provider, err := o.provider(op, c.Address(), c.AccountID())
	if err != nil {
		return err
	}
	release := o.claimContacts(domain.KeyOf(c))
	defer release()
	mc := o.root.FindContactByProto(c.Address(), c.AccountID())
	if mc == nil {
		return errors.Wrap(errors.ErrMoveFailed, op, c.Address(), fmt.Errorf("contact is not in the list"))
	}
	if mc.ParentGroup() == dst && mc.ContactCount() == 1 {
		return nil
	}
	if err := o.moveRemote(ctx, provider, c, dst); err != nil {
		return errors.Wrap(errors.ErrMoveFailed, op, c.Address(), err)
	}
	o.relocate(ctx, mc, c, dst)
	return nil
}

// MoveContactToMetaContact moves one proto contact into another meta
// contact, removing the source meta contact once it is empty.
func (o *Orchestrator) MoveContactToMetaContact(ctx context.Context, c domain.ProtoContact, target *domain.MetaContact) error {
	const op = "move contact to meta contact"
	provider, err := o.provider(op, c.Address(), c.AccountID())
	if err != nil {
		return err
	}
	dst := target.ParentGroup()
	if dst == nil {
		panic(fmt.Sprintf("%s is not part of the contact list", target))
	}
	release := o.claimContacts(domain.KeyOf(c))
	defer release()
	mc := o.root.FindContactByProto(c.Address(), c.AccountID())
	if mc == nil {
		return errors.Wrap(errors.ErrMoveFailed, op, c.Address(), fmt.Errorf("contact is not in the list"))
	}
	if mc == target {
		return nil
	}
	if err := o.moveRemote(ctx, provider, c, dst); err != nil {
		return errors.Wrap(errors.ErrMoveFailed, op, c.Address(), err)
	}

	if !mc.RemoveProtoContact(c) {
		return nil
	}
	target.AddProtoContact(c)
	o.fire(ctx, event.ProtoContactMoved{OldContact: mc, NewContact: target, ProtoContact: c})
	if mc.ContactCount() == 0 {
		if parent := mc.ParentGroup(); parent != nil && parent.RemoveChild(mc) {
			o.fire(ctx, event.ContactRemoved{Contact: mc, Parent: parent})
		}
	}
	return nil
}

// MoveMetaContact moves a meta contact with all its proto contacts. Remote
// moves already done are reverted when one fails.
func (o *Orchestrator) MoveMetaContact(ctx context.Context, mc *domain.MetaContact, dst *domain.MetaContactGroup) error {
	const op = "move meta contact"
	old := mc.ParentGroup()
	if old == dst {
		return nil
	}
	contacts := mc.Contacts()
	release := o.claimContacts(lo.Map(contacts, func(c domain.ProtoContact, _ int) domain.ContactKey {
		return domain.KeyOf(c)
	})...)
	defer release()

	type moved struct {
		provider protocol.Provider
		contact  domain.ProtoContact
		from     domain.ProtoGroup
	}
	var done []moved
	rollback := func() {
		for _, m := range done {
			if err := m.provider.MoveContact(ctx, m.contact, m.from); err != nil {
				o.log.Error("Unable to revert contact move", "account", m.contact.AccountID(), "address", m.contact.Address(), "error", err)
			}
		}
	}
	for _, c := range contacts {
		provider, err := o.provider(op, c.Address(), c.AccountID())
		if err != nil {
			rollback()
			return errors.Wrap(errors.ErrMoveFailed, op, mc.ID(), err)
		}
		from := c.ParentGroup()
		if err := o.moveRemote(ctx, provider, c, dst); err != nil {
			rollback()
			return errors.Wrap(errors.ErrMoveFailed, op, mc.ID(), err)
		}
		done = append(done, moved{provider: provider, contact: c, from: from})
	}

	mc.MoveTo(dst)
	o.fire(ctx, event.ContactMoved{Contact: mc, OldParent: old, NewParent: dst})
	return nil
}

// moveRemote issues the server move of c into the proto group bound to dst
// for c's account.
func (o *Orchestrator) moveRemote(ctx context.Context, provider protocol.Provider,
	c domain.ProtoContact, dst *domain.MetaContactGroup) error {
	target, err := o.resolveProtoPath(ctx, provider, dst)
	if err != nil {
		return err
	}
	if domain.SameGroup(c.ParentGroup(), target) {
		return nil
	}
	if err := provider.MoveContact(ctx, c, target); err != nil {
		return remoteFailure("move", c.Address(), err)
	}
	return nil
}

// RemoveContact unsubscribes from c, then removes it from its meta contact.
// The meta contact itself goes away with its last contact.
func (o *Orchestrator) RemoveContact(ctx context.Context, c domain.ProtoContact) error {
	const op = "remove contact"
	provider, err := o.provider(op, c.Address(), c.AccountID())
	if err != nil {
		return err
	}
	release := o.claimContacts(domain.KeyOf(c))
	defer release()
	mc := o.root.FindContactByProto(c.Address(), c.AccountID())
	if mc == nil {
		o.log.Debug("Contact already removed", "account", c.AccountID(), "address", c.Address())
		return nil
	}
	if err := provider.Unsubscribe(ctx, c); err != nil {
		return remoteFailure(op, c.Address(), err)
	}
	o.detachProtoContact(ctx, mc, c)
	return nil
}

// RemoveMetaContact removes every proto contact of mc. It stops at the first
// failure, leaving the contacts not processed yet in place.
func (o *Orchestrator) RemoveMetaContact(ctx context.Context, mc *domain.MetaContact) error {
	for _, c := range mc.Contacts() {
		if err := o.RemoveContact(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) AddMetaContactDetail(ctx context.Context, mc *domain.MetaContact, name, value string) {
	mc.AddDetail(name, value)
	o.fire(ctx, event.ContactModified{Contact: mc, Name: name, NewValue: value})
}

func (o *Orchestrator) RemoveMetaContactDetail(ctx context.Context, mc *domain.MetaContact, name, value string) {
	if mc.RemoveDetail(name, value) {
		o.fire(ctx, event.ContactModified{Contact: mc, Name: name, OldValue: value})
	}
}

// RemoveMetaContactDetails drops every value of name, one event per value.
func (o *Orchestrator) RemoveMetaContactDetails(ctx context.Context, mc *domain.MetaContact, name string) {
	for _, value := range mc.RemoveDetails(name) {
		o.fire(ctx, event.ContactModified{Contact: mc, Name: name, OldValue: value})
	}
}

func (o *Orchestrator) ChangeMetaContactDetail(ctx context.Context, mc *domain.MetaContact, name, oldValue, newValue string) {
	if mc.ChangeDetail(name, oldValue, newValue) {
		o.fire(ctx, event.ContactModified{Contact: mc, Name: name, OldValue: oldValue, NewValue: newValue})
	}
}

// ChangeMetaContactAvatar caches the avatar published by c. Empty bytes
// clear it; data that is not a supported image is ignored.
func (o *Orchestrator) ChangeMetaContactAvatar(ctx context.Context, mc *domain.MetaContact,
	c domain.ProtoContact, avatar []byte) {
	var mimeType string
	if len(avatar) > 0 {
		detected, ok := mimetypes.DetectAvatar(avatar)
		if !ok {
			o.log.Warn("Ignoring avatar that is not a supported image",
				"account", c.AccountID(), "address", c.Address(), "size", len(avatar))
			return
		}
		mimeType = string(detected)
	}
	mc.SetAvatar(avatar)
	o.fire(ctx, event.ContactAvatarUpdated{
		Contact:      mc,
		ProtoContact: c,
		Avatar:       avatar,
		MIMEType:     mimeType,
	})
}
