package domain

// ProtoContact is a contact handle owned by one protocol account.
// Implementations are provided by protocol packages; this package only reads them.
type ProtoContact interface {
	Address() string
	AccountID() string
	DisplayName() string
	PresenceStatus() PresenceStatus
	ParentGroup() ProtoGroup
	PersistentData() string
	IsPersistent() bool
	IsResolved() bool
}

// ProtoGroup is a server-side group handle owned by one protocol account.
type ProtoGroup interface {
	UID() string
	Name() string
	AccountID() string
	Parent() ProtoGroup
	PersistentData() string
	IsPersistent() bool
	IsResolved() bool
	Subgroups() []ProtoGroup
	Contacts() []ProtoContact
}

// ContactKey identifies a proto contact independently of the handle instance.
type ContactKey struct {
	AccountID string
	Address   string
}

func KeyOf(c ProtoContact) ContactKey {
	return ContactKey{AccountID: c.AccountID(), Address: c.Address()}
}

// GroupKey identifies a proto group independently of the handle instance.
type GroupKey struct {
	AccountID string
	UID       string
}

func GroupKeyOf(g ProtoGroup) GroupKey {
	return GroupKey{AccountID: g.AccountID(), UID: g.UID()}
}

// SameContact reports whether two handles designate the same account contact.
func SameContact(a, b ProtoContact) bool {
	if a == nil || b == nil {
		return a == b
	}
	return KeyOf(a) == KeyOf(b)
}

// SameGroup reports whether two handles designate the same account group.
func SameGroup(a, b ProtoGroup) bool {
	if a == nil || b == nil {
		return a == b
	}
	return GroupKeyOf(a) == GroupKeyOf(b)
}
