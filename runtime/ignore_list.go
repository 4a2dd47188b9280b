package runtime

import (
	"sync"
)

type ignoreKind int

const (
	ignoreContact ignoreKind = iota
	ignoreGroupName
	ignoreGroupUID
)

type ignoreKey struct {
	kind      ignoreKind
	entity    string
	accountID string
}

// IgnoreList holds the (entity, account) pairs whose remote notifications
// are produced by an operation in flight and must be skipped by the generic
// listeners. Entries are reference counted so overlapping operations on the
// same entity keep it ignored until the last one is done.
type IgnoreList struct {
	mu      sync.Mutex
	entries map[ignoreKey]int
}

func NewIgnoreList() *IgnoreList {
	return &IgnoreList{entries: make(map[ignoreKey]int)}
}

// IgnoreContact suppresses notifications for a contact address. The
// returned function removes the entry and is safe to call once.
func (l *IgnoreList) IgnoreContact(address, accountID string) func() {
	return l.add(ignoreKey{kind: ignoreContact, entity: address, accountID: accountID})
}

func (l *IgnoreList) IsContactIgnored(address, accountID string) bool {
	return l.has(ignoreKey{kind: ignoreContact, entity: address, accountID: accountID})
}

// IgnoreGroupName suppresses creation notifications of a group by name.
func (l *IgnoreList) IgnoreGroupName(name, accountID string) func() {
	return l.add(ignoreKey{kind: ignoreGroupName, entity: name, accountID: accountID})
}

func (l *IgnoreList) IsGroupNameIgnored(name, accountID string) bool {
	return l.has(ignoreKey{kind: ignoreGroupName, entity: name, accountID: accountID})
}

// IgnoreGroupUID suppresses notifications about an existing group.
func (l *IgnoreList) IgnoreGroupUID(uid, accountID string) func() {
	return l.add(ignoreKey{kind: ignoreGroupUID, entity: uid, accountID: accountID})
}

func (l *IgnoreList) IsGroupUIDIgnored(uid, accountID string) bool {
	return l.has(ignoreKey{kind: ignoreGroupUID, entity: uid, accountID: accountID})
}

func (l *IgnoreList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *IgnoreList) add(key ignoreKey) func() {
	l.mu.Lock()
	l.entries[key]++
	l.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.entries[key]--
			if l.entries[key] <= 0 {
				delete(l.entries, key)
			}
		})
	}
}

func (l *IgnoreList) has(key ignoreKey) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries[key] > 0
}
