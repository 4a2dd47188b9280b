//go:generate go run go.uber.org/mock/mockgen -source=contact_list.go -destination=../mocks/mock_contact_list_repository.go -package=mocks
package repositories

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

type IContactListRepository interface {
	StoreGroup(row GroupRow) error
	DeleteGroup(groupID, accountID string) error
	DeleteGroupRows(groupID string) error
	GetGroupRows(groupID string) ([]GroupRow, error)
	UpdateGroups(groupID string, fn func(row *GroupRow) bool) error
	GetGroups(accountID string) ([]GroupRow, error)
	StoreContact(row ContactRow) error
	DeleteContact(metaContactID, accountID, address string) error
	DeleteMetaContact(metaContactID string) error
	ReplaceMetaContact(metaContactID string, rows []ContactRow) error
	GetMetaContactRows(metaContactID string) ([]ContactRow, error)
	UpdateContacts(metaContactID string, fn func(row *ContactRow) bool) error
	GetContacts(accountID string) ([]ContactRow, error)
	DeleteAccount(accountID string) error
	AllGroups() ([]GroupRow, error)
	AllContacts() ([]ContactRow, error)
}

// GroupRow binds a meta group to the proto group of one account.
type GroupRow struct {
	AccountID           string
	GroupID             string
	GroupName           string
	ParentGroupID       string
	ProtoGroupUID       string
	ParentProtoGroupUID string
	PersistentData      string
}

// ContactRow binds a meta contact to one proto contact.
type ContactRow struct {
	MetaContactID     string
	AccountID         string
	Address           string
	MetaGroupID       string
	ProtoGroupUID     string
	DisplayName       string
	UserDefined       bool
	Details           map[string][]string
	PersistentData    string
	ServerDisplayName string
}

type ContactListRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewContactListRepository(db *badger.DB, log *slog.Logger) ContactListRepository {
	return ContactListRepository{db: db, log: log}
}

const (
	groupPrefix        = "grp:"
	contactPrefix      = "mc:"
	accountGroupIndex  = "idx:acct-grp:"
	accountContactIdx  = "idx:acct-mc:"
	keySeparatorSuffix = ":"
)

// Keys:
//
//	grp:{groupID}:{accountID}                     -> GroupRow
//	idx:acct-grp:{accountID}:{groupID}            -> primary key
//	mc:{metaContactID}:{accountID}:{address}      -> ContactRow
//	idx:acct-mc:{accountID}:{metaContactID}:{address} -> primary key
//
// Identifiers may contain ':' so prefix scans re-check the decoded row.
func groupKey(groupID, accountID string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", groupPrefix, groupID, accountID))
}

func groupAccountIndexKey(accountID, groupID string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", accountGroupIndex, accountID, groupID))
}

func contactKey(metaContactID, accountID, address string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s:%s", contactPrefix, metaContactID, accountID, address))
}

func contactAccountIndexKey(accountID, metaContactID, address string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s:%s", accountContactIdx, accountID, metaContactID, address))
}

// StoreGroup upserts a group row and its account index entry.
func (r ContactListRepository) StoreGroup(row GroupRow) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return putGroup(txn, row)
	})
}

func putGroup(txn *badger.Txn, row GroupRow) error {
	key := groupKey(row.GroupID, row.AccountID)
	bytes, err := marshalGroup(row)
	if err != nil {
		return err
	}
	if err := txn.Set(key, bytes); err != nil {
		return err
	}
	return txn.Set(groupAccountIndexKey(row.AccountID, row.GroupID), key)
}

func (r ContactListRepository) DeleteGroup(groupID, accountID string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return deleteGroup(txn, groupID, accountID)
	})
}

func deleteGroup(txn *badger.Txn, groupID, accountID string) error {
	if err := txn.Delete(groupKey(groupID, accountID)); err != nil {
		return err
	}
	return txn.Delete(groupAccountIndexKey(accountID, groupID))
}

// DeleteGroupRows deletes the rows of a group for every account.
func (r ContactListRepository) DeleteGroupRows(groupID string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		rows, err := scanGroups(txn, []byte(groupPrefix+groupID+keySeparatorSuffix))
		if err != nil {
			return err
		}
		for _, row := range rows {
			if row.GroupID != groupID {
				continue
			}
			if err := deleteGroup(txn, row.GroupID, row.AccountID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r ContactListRepository) GetGroupRows(groupID string) ([]GroupRow, error) {
	var rows []GroupRow
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		rows, err = scanGroups(txn, []byte(groupPrefix+groupID+keySeparatorSuffix))
		return err
	})
	return lo.Filter(rows, func(row GroupRow, _ int) bool { return row.GroupID == groupID }), err
}

// UpdateGroups applies fn to every row of a group inside one transaction.
// Rows for which fn returns false are left untouched.
func (r ContactListRepository) UpdateGroups(groupID string, fn func(row *GroupRow) bool) error {
	return r.db.Update(func(txn *badger.Txn) error {
		rows, err := scanGroups(txn, []byte(groupPrefix+groupID+keySeparatorSuffix))
		if err != nil {
			return err
		}
		for _, row := range rows {
			if row.GroupID != groupID || !fn(&row) {
				continue
			}
			if err := putGroup(txn, row); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetGroups returns the group rows of an account, parents before children.
func (r ContactListRepository) GetGroups(accountID string) ([]GroupRow, error) {
	var rows []GroupRow
	err := r.db.View(func(txn *badger.Txn) error {
		keys, err := scanIndex(txn, []byte(accountGroupIndex+accountID+keySeparatorSuffix))
		if err != nil {
			return err
		}
		for _, key := range keys {
			item, err := txn.Get(key)
			if err == badger.ErrKeyNotFound {
				r.log.Warn("Dangling group index entry", "key", string(key))
				continue
			}
			if err != nil {
				return err
			}
			if err := item.Value(func(v []byte) error {
				row, err := unmarshalGroup(v)
				if err != nil {
					r.log.Warn("Skipping unreadable group row", "key", string(key), "error", err)
					return nil
				}
				if row.AccountID == accountID {
					rows = append(rows, row)
				}
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return parentsFirst(rows), nil
}

// parentsFirst orders rows by depth in the stored hierarchy, then by name.
func parentsFirst(rows []GroupRow) []GroupRow {
	byID := lo.KeyBy(rows, func(row GroupRow) string { return row.GroupID })
	depth := func(row GroupRow) int {
		d := 0
		seen := map[string]bool{row.GroupID: true}
		for parent, ok := byID[row.ParentGroupID]; ok && !seen[parent.GroupID]; parent, ok = byID[parent.ParentGroupID] {
			seen[parent.GroupID] = true
			d++
		}
		return d
	}
	depths := make(map[string]int, len(rows))
	for _, row := range rows {
		depths[row.GroupID] = depth(row)
	}
	slices.SortStableFunc(rows, func(a, b GroupRow) int {
		return cmp.Or(
			cmp.Compare(depths[a.GroupID], depths[b.GroupID]),
			cmp.Compare(a.GroupName, b.GroupName),
			cmp.Compare(a.GroupID, b.GroupID),
		)
	})
	return rows
}

// StoreContact upserts a contact row and its account index entry.
func (r ContactListRepository) StoreContact(row ContactRow) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return putContact(txn, row)
	})
}

func putContact(txn *badger.Txn, row ContactRow) error {
	key := contactKey(row.MetaContactID, row.AccountID, row.Address)
	bytes, err := marshalContact(row)
	if err != nil {
		return err
	}
	if err := txn.Set(key, bytes); err != nil {
		return err
	}
	return txn.Set(contactAccountIndexKey(row.AccountID, row.MetaContactID, row.Address), key)
}

func (r ContactListRepository) DeleteContact(metaContactID, accountID, address string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return deleteContact(txn, metaContactID, accountID, address)
	})
}

func deleteContact(txn *badger.Txn, metaContactID, accountID, address string) error {
	if err := txn.Delete(contactKey(metaContactID, accountID, address)); err != nil {
		return err
	}
	return txn.Delete(contactAccountIndexKey(accountID, metaContactID, address))
}

// DeleteMetaContact deletes every row of a meta contact.
func (r ContactListRepository) DeleteMetaContact(metaContactID string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		rows, err := scanContacts(txn, []byte(contactPrefix+metaContactID+keySeparatorSuffix))
		if err != nil {
			return err
		}
		for _, row := range rows {
			if row.MetaContactID != metaContactID {
				continue
			}
			if err := deleteContact(txn, row.MetaContactID, row.AccountID, row.Address); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceMetaContact atomically swaps every row of a meta contact for rows.
func (r ContactListRepository) ReplaceMetaContact(metaContactID string, rows []ContactRow) error {
	return r.db.Update(func(txn *badger.Txn) error {
		existing, err := scanContacts(txn, []byte(contactPrefix+metaContactID+keySeparatorSuffix))
		if err != nil {
			return err
		}
		for _, row := range existing {
			if row.MetaContactID != metaContactID {
				continue
			}
			if err := deleteContact(txn, row.MetaContactID, row.AccountID, row.Address); err != nil {
				return err
			}
		}
		for _, row := range rows {
			if err := putContact(txn, row); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r ContactListRepository) GetMetaContactRows(metaContactID string) ([]ContactRow, error) {
	var rows []ContactRow
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		rows, err = scanContacts(txn, []byte(contactPrefix+metaContactID+keySeparatorSuffix))
		return err
	})
	return lo.Filter(rows, func(row ContactRow, _ int) bool { return row.MetaContactID == metaContactID }), err
}

// UpdateContacts applies fn to every row of a meta contact inside one
// transaction. Rows for which fn returns false are left untouched.
func (r ContactListRepository) UpdateContacts(metaContactID string, fn func(row *ContactRow) bool) error {
	return r.db.Update(func(txn *badger.Txn) error {
		rows, err := scanContacts(txn, []byte(contactPrefix+metaContactID+keySeparatorSuffix))
		if err != nil {
			return err
		}
		for _, row := range rows {
			if row.MetaContactID != metaContactID || !fn(&row) {
				continue
			}
			if err := putContact(txn, row); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetContacts returns the contact rows of an account, grouped by meta contact.
func (r ContactListRepository) GetContacts(accountID string) ([]ContactRow, error) {
	var rows []ContactRow
	err := r.db.View(func(txn *badger.Txn) error {
		keys, err := scanIndex(txn, []byte(accountContactIdx+accountID+keySeparatorSuffix))
		if err != nil {
			return err
		}
		for _, key := range keys {
			item, err := txn.Get(key)
			if err == badger.ErrKeyNotFound {
				r.log.Warn("Dangling contact index entry", "key", string(key))
				continue
			}
			if err != nil {
				return err
			}
			if err := item.Value(func(v []byte) error {
				row, err := unmarshalContact(v)
				if err != nil {
					r.log.Warn("Skipping unreadable contact row", "key", string(key), "error", err)
					return nil
				}
				if row.AccountID == accountID {
					rows = append(rows, row)
				}
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	return rows, err
}

// DeleteAccount removes every group and contact row of an account.
func (r ContactListRepository) DeleteAccount(accountID string) error {
	groups, err := r.GetGroups(accountID)
	if err != nil {
		return err
	}
	contacts, err := r.GetContacts(accountID)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		for _, row := range groups {
			if err := deleteGroup(txn, row.GroupID, row.AccountID); err != nil {
				return err
			}
		}
		for _, row := range contacts {
			if err := deleteContact(txn, row.MetaContactID, row.AccountID, row.Address); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r ContactListRepository) AllGroups() ([]GroupRow, error) {
	var rows []GroupRow
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		rows, err = scanGroups(txn, []byte(groupPrefix))
		return err
	})
	return rows, err
}

func (r ContactListRepository) AllContacts() ([]ContactRow, error) {
	var rows []ContactRow
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		rows, err = scanContacts(txn, []byte(contactPrefix))
		return err
	})
	return rows, err
}

func scanGroups(txn *badger.Txn, prefix []byte) ([]GroupRow, error) {
	var rows []GroupRow
	err := scan(txn, prefix, func(v []byte) error {
		row, err := unmarshalGroup(v)
		if err != nil {
			return err
		}
		rows = append(rows, row)
		return nil
	})
	return rows, err
}

func scanContacts(txn *badger.Txn, prefix []byte) ([]ContactRow, error) {
	var rows []ContactRow
	err := scan(txn, prefix, func(v []byte) error {
		row, err := unmarshalContact(v)
		if err != nil {
			return err
		}
		rows = append(rows, row)
		return nil
	})
	return rows, err
}

func scanIndex(txn *badger.Txn, prefix []byte) ([][]byte, error) {
	var keys [][]byte
	err := scan(txn, prefix, func(v []byte) error {
		keys = append(keys, slices.Clone(v))
		return nil
	})
	return keys, err
}

func scan(txn *badger.Txn, prefix []byte, fn func(v []byte) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}
