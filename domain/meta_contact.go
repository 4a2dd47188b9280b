package domain

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// MetaContact aggregates proto contacts from one or more accounts that are
// believed to be the same person.
//
// Every mutation runs under the instance mutex. Mutations changing the
// ordering key (display name, online bucket) are applied while the contact
// is re-sorted inside its parent group, so readers of the parent snapshot
// never see a position that disagrees with the key.
type MetaContact struct {
	mu     sync.Mutex
	id     string
	key    atomic.Pointer[contactSortKey]
	parent atomic.Pointer[MetaContactGroup]

	contacts       atomic.Pointer[[]ProtoContact]
	onlineCount    int
	defaultContact ProtoContact
	userDefined    bool
	details        map[string][]string
	capabilities   map[string][]ProtoContact
	resourceCaps   map[string][]string
	avatar         []byte
}

type contactSortKey struct {
	online bool
	name   string
	folded string
}

func NewMetaContact() *MetaContact {
	return NewMetaContactWithID(uuid.NewString(), nil)
}

// NewMetaContactWithID restores a meta contact with a known id, typically
// from stored rows.
func NewMetaContactWithID(id string, details map[string][]string) *MetaContact {
	mc := &MetaContact{
		id:           id,
		details:      make(map[string][]string),
		capabilities: make(map[string][]ProtoContact),
		resourceCaps: make(map[string][]string),
	}
	for name, values := range details {
		mc.details[name] = slices.Clone(values)
	}
	empty := make([]ProtoContact, 0)
	mc.contacts.Store(&empty)
	mc.key.Store(&contactSortKey{})
	return mc
}

func (mc *MetaContact) ID() string { return mc.id }

func (mc *MetaContact) DisplayName() string { return mc.key.Load().name }

func (mc *MetaContact) IsDisplayNameUserDefined() bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.userDefined
}

// ParentGroup returns the group currently holding this contact, nil when detached.
func (mc *MetaContact) ParentGroup() *MetaContactGroup { return mc.parent.Load() }

func (mc *MetaContact) Contacts() []ProtoContact {
	return slices.Clone(*mc.contacts.Load())
}

func (mc *MetaContact) ContactCount() int { return len(*mc.contacts.Load()) }

func (mc *MetaContact) ContactsForAccount(accountID string) []ProtoContact {
	return lo.Filter(*mc.contacts.Load(), func(c ProtoContact, _ int) bool {
		return c.AccountID() == accountID
	})
}

func (mc *MetaContact) Contact(address, accountID string) ProtoContact {
	c, _ := lo.Find(*mc.contacts.Load(), func(c ProtoContact) bool {
		return c.Address() == address && (accountID == "" || c.AccountID() == accountID)
	})
	return c
}

func (mc *MetaContact) ContainsContact(c ProtoContact) bool {
	return slices.ContainsFunc(*mc.contacts.Load(), func(item ProtoContact) bool {
		return SameContact(item, c)
	})
}

func (mc *MetaContact) OnlineCount() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.onlineCount
}

func (mc *MetaContact) IsOnline() bool { return mc.key.Load().online }

// DefaultContact returns the proto contact with the highest presence status.
// The first contact wins on ties. The result is cached until membership or
// presence changes.
func (mc *MetaContact) DefaultContact() ProtoContact {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.defaultContact == nil {
		mc.defaultContact = mostAvailable(*mc.contacts.Load())
	}
	return mc.defaultContact
}

func (mc *MetaContact) DefaultContactForCapability(capability string) ProtoContact {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mostAvailable(mc.capabilities[capability])
}

func (mc *MetaContact) ContactsForCapability(capability string) []ProtoContact {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return slices.Clone(mc.capabilities[capability])
}

// ResourcesForCapability returns the resource ids advertising a capability.
func (mc *MetaContact) ResourcesForCapability(capability string) []string {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return slices.Clone(mc.resourceCaps[capability])
}

func mostAvailable(contacts []ProtoContact) ProtoContact {
	var best ProtoContact
	for _, c := range contacts {
		if best == nil || best.PresenceStatus().Status < c.PresenceStatus().Status {
			best = c
		}
	}
	return best
}

// AddProtoContact adds c to this meta contact. Adding a contact already
// present is a no-op and returns false. The first contact seeds an empty
// display name.
func (mc *MetaContact) AddProtoContact(c ProtoContact) bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.ContainsContact(c) {
		return false
	}
	mc.rekey(func() {
		current := *mc.contacts.Load()
		next := append(slices.Clone(current), c)
		mc.contacts.Store(&next)
		if c.PresenceStatus().IsOnline() {
			mc.onlineCount++
		}
		mc.defaultContact = nil
		name := mc.key.Load().name
		if len(next) == 1 && name == "" {
			name = c.DisplayName()
		}
		mc.storeKey(name)
	})
	return true
}

// RemoveProtoContact removes c, returning false when it was not present.
// When the removed contact's address or display name is the current display
// name, the name is reset from the new default contact.
func (mc *MetaContact) RemoveProtoContact(c ProtoContact) bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.removeLocked(c)
}

func (mc *MetaContact) removeLocked(c ProtoContact) bool {
	current := *mc.contacts.Load()
	idx := slices.IndexFunc(current, func(item ProtoContact) bool { return SameContact(item, c) })
	if idx < 0 {
		return false
	}
	removed := current[idx]
	mc.rekey(func() {
		next := slices.Delete(slices.Clone(current), idx, idx+1)
		mc.contacts.Store(&next)
		mc.onlineCount = countOnline(next)
		mc.defaultContact = nil
		mc.dropCapabilities(removed)
		name := mc.key.Load().name
		if len(next) > 0 && (name == removed.Address() || name == removed.DisplayName()) {
			mc.defaultContact = mostAvailable(next)
			name = mc.defaultContact.DisplayName()
		}
		mc.storeKey(name)
	})
	return true
}

// RefreshProtoContact replaces the stored handle sharing c's account and
// address with c. Used when a provider is re-attached with new handles.
func (mc *MetaContact) RefreshProtoContact(c ProtoContact) bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	current := *mc.contacts.Load()
	idx := slices.IndexFunc(current, func(item ProtoContact) bool { return SameContact(item, c) })
	if idx < 0 || current[idx] == c {
		return false
	}
	mc.rekey(func() {
		next := slices.Clone(current)
		next[idx] = c
		mc.contacts.Store(&next)
		mc.onlineCount = countOnline(next)
		mc.defaultContact = nil
		mc.storeKey(mc.key.Load().name)
	})
	return true
}

// RemoveContactsForAccount removes every proto contact of the account and
// returns what was removed.
func (mc *MetaContact) RemoveContactsForAccount(accountID string) []ProtoContact {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	var removed []ProtoContact
	for _, c := range *mc.contacts.Load() {
		if c.AccountID() == accountID && mc.removeLocked(c) {
			removed = append(removed, c)
		}
	}
	return removed
}

// RemoveContactsForGroup removes every proto contact whose parent is g.
func (mc *MetaContact) RemoveContactsForGroup(g ProtoGroup) []ProtoContact {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	var removed []ProtoContact
	for _, c := range *mc.contacts.Load() {
		if SameGroup(c.ParentGroup(), g) && mc.removeLocked(c) {
			removed = append(removed, c)
		}
	}
	return removed
}

// Reevaluate recomputes the online count and default contact after a
// presence change, re-sorts this contact inside its parent and returns the
// new index, or -1 when detached.
func (mc *MetaContact) Reevaluate() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.rekey(func() {
		mc.onlineCount = countOnline(*mc.contacts.Load())
		mc.defaultContact = nil
		mc.storeKey(mc.key.Load().name)
	})
	if parent := mc.parent.Load(); parent != nil {
		return parent.IndexOfContact(mc)
	}
	return -1
}

// SetDisplayName renames the contact and returns the previous name.
func (mc *MetaContact) SetDisplayName(name string, userDefined bool) (string, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	old := mc.key.Load().name
	if old == name && mc.userDefined == userDefined {
		return old, false
	}
	mc.rekey(func() {
		mc.userDefined = userDefined
		mc.storeKey(name)
	})
	return old, old != name
}

// ClearUserDefinedDisplayName drops a user chosen name in favour of the
// default contact's name.
func (mc *MetaContact) ClearUserDefinedDisplayName() (string, string, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	old := mc.key.Load().name
	if !mc.userDefined {
		return old, old, false
	}
	name := old
	if def := mostAvailable(*mc.contacts.Load()); def != nil {
		name = def.DisplayName()
	}
	mc.rekey(func() {
		mc.userDefined = false
		mc.storeKey(name)
	})
	return old, name, old != name
}

func (mc *MetaContact) AddDetail(name, value string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.details[name] = append(mc.details[name], value)
}

// RemoveDetail deletes the first value equal to value under name.
func (mc *MetaContact) RemoveDetail(name, value string) bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	values := mc.details[name]
	idx := slices.Index(values, value)
	if idx < 0 {
		return false
	}
	values = slices.Delete(values, idx, idx+1)
	if len(values) == 0 {
		delete(mc.details, name)
	} else {
		mc.details[name] = values
	}
	return true
}

// ChangeDetail replaces the first value equal to oldValue under name.
func (mc *MetaContact) ChangeDetail(name, oldValue, newValue string) bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	values := mc.details[name]
	idx := slices.Index(values, oldValue)
	if idx < 0 {
		return false
	}
	values[idx] = newValue
	return true
}

// RemoveDetails drops every value stored under name and returns them.
func (mc *MetaContact) RemoveDetails(name string) []string {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	values := mc.details[name]
	delete(mc.details, name)
	return values
}

func (mc *MetaContact) DetailValues(name string) []string {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return slices.Clone(mc.details[name])
}

func (mc *MetaContact) Details() map[string][]string {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	res := make(map[string][]string, len(mc.details))
	for name, values := range mc.details {
		res[name] = slices.Clone(values)
	}
	return res
}

// UpdateCapabilities replaces the capabilities advertised by c through
// resourceID. Stale bindings are pruned before the new ones are added.
func (mc *MetaContact) UpdateCapabilities(c ProtoContact, resourceID string, capabilities []string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for capability, contacts := range mc.capabilities {
		if slices.Contains(capabilities, capability) {
			continue
		}
		mc.capabilities[capability] = slices.DeleteFunc(contacts, func(item ProtoContact) bool {
			return SameContact(item, c)
		})
		if len(mc.capabilities[capability]) == 0 {
			delete(mc.capabilities, capability)
		}
	}
	for capability, resources := range mc.resourceCaps {
		if slices.Contains(capabilities, capability) {
			continue
		}
		mc.resourceCaps[capability] = slices.DeleteFunc(resources, func(r string) bool { return r == resourceID })
		if len(mc.resourceCaps[capability]) == 0 {
			delete(mc.resourceCaps, capability)
		}
	}
	for _, capability := range capabilities {
		if !slices.ContainsFunc(mc.capabilities[capability], func(item ProtoContact) bool { return SameContact(item, c) }) {
			mc.capabilities[capability] = append(mc.capabilities[capability], c)
		}
		if resourceID != "" && !slices.Contains(mc.resourceCaps[capability], resourceID) {
			mc.resourceCaps[capability] = append(mc.resourceCaps[capability], resourceID)
		}
	}
}

func (mc *MetaContact) dropCapabilities(c ProtoContact) {
	for capability, contacts := range mc.capabilities {
		mc.capabilities[capability] = slices.DeleteFunc(contacts, func(item ProtoContact) bool {
			return SameContact(item, c)
		})
		if len(mc.capabilities[capability]) == 0 {
			delete(mc.capabilities, capability)
		}
	}
}

func (mc *MetaContact) Avatar() []byte {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return slices.Clone(mc.avatar)
}

// SetAvatar caches avatar bytes and returns the previous ones.
func (mc *MetaContact) SetAvatar(avatar []byte) []byte {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	old := mc.avatar
	mc.avatar = slices.Clone(avatar)
	return old
}

// rekey applies fn, which may change the sort key, while keeping the parent
// snapshot ordered. Caller holds mc.mu.
func (mc *MetaContact) rekey(fn func()) {
	if parent := mc.parent.Load(); parent != nil {
		parent.resortChild(mc, fn)
		return
	}
	fn()
}

func (mc *MetaContact) storeKey(name string) {
	mc.key.Store(&contactSortKey{
		online: mc.onlineCount > 0,
		name:   name,
		folded: strings.ToLower(name),
	})
}

func countOnline(contacts []ProtoContact) int {
	return lo.CountBy(contacts, func(c ProtoContact) bool { return c.PresenceStatus().IsOnline() })
}

func (mc *MetaContact) String() string {
	return fmt.Sprintf("MetaContact[id=%s name=%s contacts=%d]", mc.id, mc.DisplayName(), mc.ContactCount())
}

// compareContacts orders online contacts first, then by case-insensitive
// display name, then by id.
func compareContacts(a, b *MetaContact) int {
	ka, kb := a.key.Load(), b.key.Load()
	if ka.online != kb.online {
		if ka.online {
			return -1
		}
		return 1
	}
	if c := strings.Compare(ka.folded, kb.folded); c != 0 {
		return c
	}
	return strings.Compare(a.id, b.id)
}
