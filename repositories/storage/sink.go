package storage

import (
	"contact-lab/contract"
	"contact-lab/domain"
	"contact-lab/domain/event"
	"contact-lab/errors"
	"contact-lab/repositories"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/samber/lo"
)

// ContactListSink mirrors list events into the row store and replays the
// stored rows of an account through the loader.
type ContactListSink struct {
	mu         sync.Mutex
	repository repositories.IContactListRepository
	loader     contract.IListLoader
	log        *slog.Logger
}

func NewContactListSink(repository repositories.IContactListRepository,
	loader contract.IListLoader, log *slog.Logger) *ContactListSink {
	return &ContactListSink{repository: repository, loader: loader, log: log}
}

// Consume skips replayed events: they describe rows already stored.
func (s *ContactListSink) Consume(ctx context.Context, e event.ListEvent) error {
	if event.IsReplay(ctx) {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch evt := e.(type) {
	case event.GroupAdded:
		return s.storeGroupTree(evt.Group)
	case event.GroupModified:
		return s.groupModified(evt)
	case event.GroupRemoved:
		return s.deleteGroupTree(evt.Group)
	case event.ContactAdded:
		return s.storeMetaContact(evt.Contact)
	case event.ContactMoved:
		return s.storeMetaContact(evt.Contact)
	case event.ContactRemoved:
		return s.repository.DeleteMetaContact(evt.Contact.ID())
	case event.ContactRenamed:
		userDefined := evt.Contact.IsDisplayNameUserDefined()
		return s.repository.UpdateContacts(evt.Contact.ID(), func(row *repositories.ContactRow) bool {
			row.DisplayName = evt.NewName
			row.UserDefined = userDefined
			return true
		})
	case event.ContactModified:
		details := evt.Contact.Details()
		return s.repository.UpdateContacts(evt.Contact.ID(), func(row *repositories.ContactRow) bool {
			row.Details = details
			return true
		})
	case event.ProtoContactAdded:
		return s.storeProtoContact(evt.Contact, evt.ProtoContact)
	case event.ProtoContactRemoved:
		return s.repository.DeleteContact(evt.Contact.ID(), evt.ProtoContact.AccountID(), evt.ProtoContact.Address())
	case event.ProtoContactMoved:
		c := evt.ProtoContact
		if err := s.repository.DeleteContact(evt.OldContact.ID(), c.AccountID(), c.Address()); err != nil {
			return err
		}
		return s.storeProtoContact(evt.NewContact, c)
	case event.ProtoContactRenamed:
		return s.updateProtoContact(evt.Contact, evt.ProtoContact, func(row *repositories.ContactRow) {
			row.ServerDisplayName = evt.NewName
		})
	case event.ProtoContactModified:
		if evt.Property != event.PropertyPersistentData {
			return nil
		}
		return s.updateProtoContact(evt.Contact, evt.ProtoContact, func(row *repositories.ContactRow) {
			row.PersistentData = evt.ProtoContact.PersistentData()
		})
	default:
		s.log.Debug(fmt.Sprintf("Not persisted event : %v", e.Kind()))
		return nil
	}
}

func (s *ContactListSink) groupModified(evt event.GroupModified) error {
	g := evt.Group
	switch evt.Change {
	case event.ProtoGroupAdded:
		if g.IsRoot() || !evt.ProtoGroup.IsPersistent() {
			return nil
		}
		return s.repository.StoreGroup(toGroupRow(g, evt.ProtoGroup))
	case event.ProtoGroupRemoved:
		return s.repository.DeleteGroup(g.ID(), evt.ProtoGroup.AccountID())
	case event.ProtoGroupRenamed:
		pg := evt.ProtoGroup
		return s.repository.UpdateGroups(g.ID(), func(row *repositories.GroupRow) bool {
			if row.AccountID != pg.AccountID() {
				return false
			}
			row.ProtoGroupUID = pg.UID()
			row.PersistentData = pg.PersistentData()
			return true
		})
	case event.MetaGroupRenamed:
		return s.repository.UpdateGroups(g.ID(), func(row *repositories.GroupRow) bool {
			row.GroupName = evt.NewValue
			return true
		})
	default:
		return nil
	}
}

// storeGroupTree writes the rows of g and of everything below it. Groups
// without a persistent binding have no row.
func (s *ContactListSink) storeGroupTree(root *domain.MetaContactGroup) error {
	var err error
	root.Walk(func(g *domain.MetaContactGroup) bool {
		if err != nil {
			return false
		}
		if !g.IsRoot() {
			for _, pg := range g.ProtoGroups() {
				if !pg.IsPersistent() {
					continue
				}
				if err = s.repository.StoreGroup(toGroupRow(g, pg)); err != nil {
					return false
				}
			}
		}
		for _, mc := range g.Children() {
			if err = s.storeMetaContact(mc); err != nil {
				return false
			}
		}
		return true
	})
	return err
}

func (s *ContactListSink) deleteGroupTree(root *domain.MetaContactGroup) error {
	var err error
	root.Walk(func(g *domain.MetaContactGroup) bool {
		if err != nil {
			return false
		}
		if err = s.repository.DeleteGroupRows(g.ID()); err != nil {
			return false
		}
		for _, mc := range g.Children() {
			if err = s.repository.DeleteMetaContact(mc.ID()); err != nil {
				return false
			}
		}
		return true
	})
	return err
}

// storeMetaContact replaces every row of mc with its current state.
func (s *ContactListSink) storeMetaContact(mc *domain.MetaContact) error {
	parent := mc.ParentGroup()
	if parent == nil || !parent.IsPersistent() {
		s.log.Debug("Meta contact not persisted", "meta_contact", mc.ID())
		return nil
	}
	rows := lo.FilterMap(mc.Contacts(), func(c domain.ProtoContact, _ int) (repositories.ContactRow, bool) {
		return toContactRow(mc, parent, c), c.IsPersistent()
	})
	return s.repository.ReplaceMetaContact(mc.ID(), rows)
}

func (s *ContactListSink) storeProtoContact(mc *domain.MetaContact, c domain.ProtoContact) error {
	parent := mc.ParentGroup()
	if parent == nil || !parent.IsPersistent() || !c.IsPersistent() {
		return nil
	}
	return s.repository.StoreContact(toContactRow(mc, parent, c))
}

func (s *ContactListSink) updateProtoContact(mc *domain.MetaContact, c domain.ProtoContact,
	fn func(row *repositories.ContactRow)) error {
	return s.repository.UpdateContacts(mc.ID(), func(row *repositories.ContactRow) bool {
		if row.AccountID != c.AccountID() || row.Address != c.Address() {
			return false
		}
		fn(row)
		return true
	})
}

func toGroupRow(g *domain.MetaContactGroup, pg domain.ProtoGroup) repositories.GroupRow {
	row := repositories.GroupRow{
		AccountID:      pg.AccountID(),
		GroupID:        g.ID(),
		GroupName:      g.Name(),
		ProtoGroupUID:  pg.UID(),
		PersistentData: pg.PersistentData(),
	}
	if parent := g.Parent(); parent != nil {
		row.ParentGroupID = parent.ID()
	}
	if parentProto := pg.Parent(); parentProto != nil {
		row.ParentProtoGroupUID = parentProto.UID()
	}
	return row
}

func toContactRow(mc *domain.MetaContact, parent *domain.MetaContactGroup, c domain.ProtoContact) repositories.ContactRow {
	row := repositories.ContactRow{
		MetaContactID:     mc.ID(),
		AccountID:         c.AccountID(),
		Address:           c.Address(),
		MetaGroupID:       parent.ID(),
		DisplayName:       mc.DisplayName(),
		UserDefined:       mc.IsDisplayNameUserDefined(),
		Details:           mc.Details(),
		PersistentData:    c.PersistentData(),
		ServerDisplayName: c.DisplayName(),
	}
	if pg := c.ParentGroup(); pg != nil {
		row.ProtoGroupUID = pg.UID()
	}
	return row
}

// LoadAccount replays the stored rows of an account into the tree. The
// loader fires the replay as such, so it is not written back while live
// events of other accounts still are. Rows that cannot be restored are
// deleted and the replay goes on.
func (s *ContactListSink) LoadAccount(ctx context.Context, accountID string) error {
	groups, err := s.repository.GetGroups(accountID)
	if err != nil {
		return err
	}
	root := s.loader.Root()
	rootProto, err := s.loader.LoadStoredProtoGroup(root, accountID, nil, "", "")
	if err != nil {
		return err
	}
	loaded := map[string]*domain.MetaContactGroup{root.ID(): root}
	protoGroups := map[string]domain.ProtoGroup{root.ID(): rootProto}

	for _, row := range groups {
		if err := ctx.Err(); err != nil {
			return err
		}
		parent, ok := loaded[row.ParentGroupID]
		if !ok {
			s.log.Warn("Dropping stored group with unknown parent",
				"account", accountID, "group", row.GroupID, "parent", row.ParentGroupID)
			s.drop(s.repository.DeleteGroup(row.GroupID, accountID))
			continue
		}
		g := s.loader.LoadStoredGroup(parent, row.GroupID, row.GroupName)
		pg, err := s.loader.LoadStoredProtoGroup(g, accountID, protoGroups[parent.ID()], row.ProtoGroupUID, row.PersistentData)
		if err != nil {
			s.log.Warn("Dropping stored group", "account", accountID, "group", row.GroupID, "error", err)
			continue
		}
		loaded[row.GroupID] = g
		protoGroups[row.GroupID] = pg
	}

	contacts, err := s.repository.GetContacts(accountID)
	if err != nil {
		return err
	}
	byMetaContact := lo.GroupBy(contacts, func(row repositories.ContactRow) string { return row.MetaContactID })
	order := lo.Uniq(lo.Map(contacts, func(row repositories.ContactRow, _ int) string { return row.MetaContactID }))
	restored := 0
	for _, id := range order {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows := byMetaContact[id]
		if err := s.loadMetaContact(accountID, rows, loaded, protoGroups); err != nil {
			s.log.Warn("Dropping stored meta contact", "account", accountID, "meta_contact", id, "error", err)
			for _, row := range rows {
				s.drop(s.repository.DeleteContact(row.MetaContactID, row.AccountID, row.Address))
			}
			continue
		}
		restored++
	}
	s.log.Info(fmt.Sprintf("%d groups and %d meta contacts restored", len(loaded)-1, restored), "account", accountID)
	return nil
}

func (s *ContactListSink) loadMetaContact(accountID string, rows []repositories.ContactRow,
	loaded map[string]*domain.MetaContactGroup, protoGroups map[string]domain.ProtoGroup) error {
	first := rows[0]
	parent, ok := loaded[first.MetaGroupID]
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownGroup, first.MetaGroupID)
	}
	stored := contract.StoredMetaContact{
		ID:          first.MetaContactID,
		AccountID:   accountID,
		DisplayName: first.DisplayName,
		UserDefined: first.UserDefined,
		Details:     first.Details,
		Contacts: lo.Map(rows, func(row repositories.ContactRow, _ int) contract.StoredProtoContact {
			return contract.StoredProtoContact{
				Address:        row.Address,
				PersistentData: row.PersistentData,
				Parent:         protoGroups[parent.ID()],
			}
		}),
	}
	_, err := s.loader.LoadStoredContact(parent, stored)
	return err
}

func (s *ContactListSink) drop(err error) {
	if err != nil {
		s.log.Error("Unable to delete stored row", "error", err)
	}
}
