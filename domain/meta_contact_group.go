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

const (
	RootGroupID   = "ContactListRoot"
	RootGroupName = "RootMetaContactGroup"
)

// MetaContactGroup is a folder of the meta contact list. It binds to zero or
// more proto groups, one per account it is resolved against.
//
// Lock order: a MetaContact before its parent group, and a group before its
// parent group. Membership reads never lock.
type MetaContactGroup struct {
	mu     sync.Mutex
	id     string
	name   atomic.Pointer[groupSortKey]
	parent atomic.Pointer[MetaContactGroup]

	children    *orderedSet[*MetaContact]
	subgroups   *orderedSet[*MetaContactGroup]
	protoGroups atomic.Pointer[[]ProtoGroup]
}

type groupSortKey struct {
	name   string
	folded string
}

// NewRootGroup creates the fixed-id root of a contact list.
func NewRootGroup() *MetaContactGroup {
	return NewMetaContactGroupWithID(RootGroupID, RootGroupName)
}

func NewMetaContactGroup(name string) *MetaContactGroup {
	return NewMetaContactGroupWithID(uuid.NewString(), name)
}

func NewMetaContactGroupWithID(id, name string) *MetaContactGroup {
	g := &MetaContactGroup{
		id:        id,
		children:  newOrderedSet(compareContacts),
		subgroups: newOrderedSet(compareGroups),
	}
	g.name.Store(&groupSortKey{name: name, folded: strings.ToLower(name)})
	empty := make([]ProtoGroup, 0)
	g.protoGroups.Store(&empty)
	return g
}

func (g *MetaContactGroup) ID() string { return g.id }

func (g *MetaContactGroup) Name() string { return g.name.Load().name }

func (g *MetaContactGroup) Parent() *MetaContactGroup { return g.parent.Load() }

func (g *MetaContactGroup) IsRoot() bool { return g.id == RootGroupID }

// Children returns a point-in-time ordered snapshot of the child contacts.
func (g *MetaContactGroup) Children() []*MetaContact { return g.children.clone() }

// Subgroups returns a point-in-time ordered snapshot of the subgroups.
func (g *MetaContactGroup) Subgroups() []*MetaContactGroup { return g.subgroups.clone() }

func (g *MetaContactGroup) ProtoGroups() []ProtoGroup {
	return slices.Clone(*g.protoGroups.Load())
}

func (g *MetaContactGroup) ProtoGroupsForAccount(accountID string) []ProtoGroup {
	return lo.Filter(*g.protoGroups.Load(), func(pg ProtoGroup, _ int) bool {
		return pg.AccountID() == accountID
	})
}

func (g *MetaContactGroup) ProtoGroup(accountID string) ProtoGroup {
	pg, _ := lo.Find(*g.protoGroups.Load(), func(pg ProtoGroup) bool {
		return pg.AccountID() == accountID
	})
	return pg
}

func (g *MetaContactGroup) ContainsProtoGroup(pg ProtoGroup) bool {
	return slices.ContainsFunc(*g.protoGroups.Load(), func(item ProtoGroup) bool {
		return SameGroup(item, pg)
	})
}

func (g *MetaContactGroup) CountChildren() int { return len(g.children.load()) }

func (g *MetaContactGroup) CountSubgroups() int { return len(g.subgroups.load()) }

func (g *MetaContactGroup) CountProtoGroups() int { return len(*g.protoGroups.Load()) }

func (g *MetaContactGroup) CountOnlineChildren() int {
	return lo.CountBy(g.children.load(), func(mc *MetaContact) bool { return mc.IsOnline() })
}

// IsEmpty reports a group with no children, no subgroups and no bindings.
func (g *MetaContactGroup) IsEmpty() bool {
	return g.CountChildren() == 0 && g.CountSubgroups() == 0 && g.CountProtoGroups() == 0
}

// IsPersistent is true when the group has no binding, or when at least one
// of its bindings is persistent.
func (g *MetaContactGroup) IsPersistent() bool {
	bindings := *g.protoGroups.Load()
	if len(bindings) == 0 {
		return true
	}
	return slices.ContainsFunc(bindings, func(pg ProtoGroup) bool { return pg.IsPersistent() })
}

func (g *MetaContactGroup) IndexOfContact(mc *MetaContact) int { return g.children.indexOf(mc) }

func (g *MetaContactGroup) IndexOfSubgroup(sub *MetaContactGroup) int { return g.subgroups.indexOf(sub) }

// AddChild attaches mc to this group and returns its index. mc must not be
// held by another group.
func (g *MetaContactGroup) AddChild(mc *MetaContact) int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if current := mc.parent.Load(); current != nil && current != g {
		panic(fmt.Sprintf("%s already belongs to group %s", mc, current.ID()))
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	mc.parent.Store(g)
	g.children.add(mc)
	return g.children.indexOf(mc)
}

// RemoveChild detaches mc, returning false when it was not a child.
func (g *MetaContactGroup) RemoveChild(mc *MetaContact) bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.children.remove(mc) {
		return false
	}
	mc.parent.CompareAndSwap(g, nil)
	return true
}

// MoveTo moves mc from its current parent into dst atomically with respect
// to mc's own mutations.
func (mc *MetaContact) MoveTo(dst *MetaContactGroup) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	src := mc.parent.Load()
	if src == dst {
		return
	}
	if src != nil {
		src.mu.Lock()
		src.children.remove(mc)
		src.mu.Unlock()
	}
	dst.mu.Lock()
	defer dst.mu.Unlock()
	mc.parent.Store(dst)
	dst.children.add(mc)
}

func (g *MetaContactGroup) resortChild(mc *MetaContact, fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.children.resort(mc, fn)
}

// AddSubgroup attaches sub below this group.
func (g *MetaContactGroup) AddSubgroup(sub *MetaContactGroup) {
	if sub == g || sub.IsAncestorOf(g) {
		panic(fmt.Sprintf("adding group %s below %s would create a cycle", sub.ID(), g.ID()))
	}
	sub.mu.Lock()
	defer sub.mu.Unlock()
	g.mu.Lock()
	defer g.mu.Unlock()
	sub.parent.Store(g)
	g.subgroups.add(sub)
}

// AddSubgroupIfAbsent attaches sub unless a sibling with the same
// case-insensitive name already exists, in which case the sibling is returned.
func (g *MetaContactGroup) AddSubgroupIfAbsent(sub *MetaContactGroup) (*MetaContactGroup, bool) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, existing := range g.subgroups.load() {
		if strings.EqualFold(existing.Name(), sub.Name()) {
			return existing, false
		}
	}
	sub.parent.Store(g)
	g.subgroups.add(sub)
	return sub, true
}

func (g *MetaContactGroup) RemoveSubgroup(sub *MetaContactGroup) bool {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.subgroups.remove(sub) {
		return false
	}
	sub.parent.CompareAndSwap(g, nil)
	return true
}

// Rename changes the group name and keeps the parent's subgroup order.
func (g *MetaContactGroup) Rename(name string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	old := g.Name()
	apply := func() { g.name.Store(&groupSortKey{name: name, folded: strings.ToLower(name)}) }
	if parent := g.parent.Load(); parent != nil {
		parent.mu.Lock()
		parent.subgroups.resort(g, apply)
		parent.mu.Unlock()
	} else {
		apply()
	}
	return old
}

// AddProtoGroup binds pg. A binding with the same account and uid is
// replaced by the new handle. Returns false when pg was already bound.
func (g *MetaContactGroup) AddProtoGroup(pg ProtoGroup) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	current := *g.protoGroups.Load()
	idx := slices.IndexFunc(current, func(item ProtoGroup) bool { return SameGroup(item, pg) })
	next := slices.Clone(current)
	switch {
	case idx < 0:
		next = append(next, pg)
	case current[idx] == pg:
		return false
	default:
		next[idx] = pg
	}
	g.protoGroups.Store(&next)
	return idx < 0
}

func (g *MetaContactGroup) RemoveProtoGroup(pg ProtoGroup) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	current := *g.protoGroups.Load()
	idx := slices.IndexFunc(current, func(item ProtoGroup) bool { return SameGroup(item, pg) })
	if idx < 0 {
		return false
	}
	next := slices.Delete(slices.Clone(current), idx, idx+1)
	g.protoGroups.Store(&next)
	return true
}

// RemoveProtoGroupsForAccount drops every binding of the account.
func (g *MetaContactGroup) RemoveProtoGroupsForAccount(accountID string) []ProtoGroup {
	g.mu.Lock()
	defer g.mu.Unlock()
	current := *g.protoGroups.Load()
	removed, kept := lo.FilterReject(current, func(pg ProtoGroup, _ int) bool {
		return pg.AccountID() == accountID
	})
	if len(removed) > 0 {
		g.protoGroups.Store(&kept)
	}
	return removed
}

// IsAncestorOf reports whether g appears in other's parent chain.
func (g *MetaContactGroup) IsAncestorOf(other *MetaContactGroup) bool {
	for p := other.Parent(); p != nil; p = p.Parent() {
		if p == g {
			return true
		}
	}
	return false
}

// Subgroup returns the direct subgroup with the given case-insensitive name.
func (g *MetaContactGroup) Subgroup(name string) *MetaContactGroup {
	sub, _ := lo.Find(g.subgroups.load(), func(s *MetaContactGroup) bool {
		return strings.EqualFold(s.Name(), name)
	})
	return sub
}

func (g *MetaContactGroup) SubgroupByID(id string) *MetaContactGroup {
	sub, _ := lo.Find(g.subgroups.load(), func(s *MetaContactGroup) bool { return s.id == id })
	return sub
}

func (g *MetaContactGroup) Child(id string) *MetaContact {
	mc, _ := lo.Find(g.children.load(), func(mc *MetaContact) bool { return mc.id == id })
	return mc
}

// ChildByContact returns the direct child holding a proto contact with the
// given address and account.
func (g *MetaContactGroup) ChildByContact(address, accountID string) *MetaContact {
	mc, _ := lo.Find(g.children.load(), func(mc *MetaContact) bool {
		return mc.Contact(address, accountID) != nil
	})
	return mc
}

// Walk visits this group and its descendants depth-first, parents first.
// Returning false from fn stops the descent into that group.
func (g *MetaContactGroup) Walk(fn func(*MetaContactGroup) bool) {
	if !fn(g) {
		return
	}
	for _, sub := range g.subgroups.load() {
		sub.Walk(fn)
	}
}

// FindContactByID searches this subtree for a meta contact id.
func (g *MetaContactGroup) FindContactByID(id string) *MetaContact {
	var found *MetaContact
	g.Walk(func(group *MetaContactGroup) bool {
		if found == nil {
			found = group.Child(id)
		}
		return found == nil
	})
	return found
}

// FindContactByProto searches this subtree for the meta contact holding the
// given proto contact key.
func (g *MetaContactGroup) FindContactByProto(address, accountID string) *MetaContact {
	var found *MetaContact
	g.Walk(func(group *MetaContactGroup) bool {
		if found == nil {
			found = group.ChildByContact(address, accountID)
		}
		return found == nil
	})
	return found
}

func (g *MetaContactGroup) FindGroupByID(id string) *MetaContactGroup {
	var found *MetaContactGroup
	g.Walk(func(group *MetaContactGroup) bool {
		if found == nil && group.id == id {
			found = group
		}
		return found == nil
	})
	return found
}

// FindGroupByProtoGroup returns the group in this subtree bound to pg.
func (g *MetaContactGroup) FindGroupByProtoGroup(pg ProtoGroup) *MetaContactGroup {
	var found *MetaContactGroup
	g.Walk(func(group *MetaContactGroup) bool {
		if found == nil && group.ContainsProtoGroup(pg) {
			found = group
		}
		return found == nil
	})
	return found
}

// Contacts returns every meta contact of the subtree matching fn.
func (g *MetaContactGroup) Contacts(fn func(*MetaContact) bool) []*MetaContact {
	var res []*MetaContact
	g.Walk(func(group *MetaContactGroup) bool {
		res = append(res, lo.Filter(group.children.load(), func(mc *MetaContact, _ int) bool {
			return fn(mc)
		})...)
		return true
	})
	return res
}

func (g *MetaContactGroup) String() string {
	return fmt.Sprintf("MetaContactGroup[id=%s name=%s children=%d subgroups=%d]",
		g.id, g.Name(), g.CountChildren(), g.CountSubgroups())
}

// compareGroups orders groups by case-insensitive name, then id.
func compareGroups(a, b *MetaContactGroup) int {
	if c := strings.Compare(a.name.Load().folded, b.name.Load().folded); c != 0 {
		return c
	}
	return strings.Compare(a.id, b.id)
}
