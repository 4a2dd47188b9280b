package domain

import (
	"sync"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

type stubGroup struct {
	uid       string
	accountID string
}

func (g stubGroup) UID() string              { return g.uid }
func (g stubGroup) Name() string             { return g.uid }
func (g stubGroup) AccountID() string        { return g.accountID }
func (g stubGroup) Parent() ProtoGroup       { return nil }
func (g stubGroup) PersistentData() string   { return "" }
func (g stubGroup) IsPersistent() bool       { return true }
func (g stubGroup) IsResolved() bool         { return true }
func (g stubGroup) Subgroups() []ProtoGroup  { return nil }
func (g stubGroup) Contacts() []ProtoContact { return nil }

type stubContact struct {
	address   string
	accountID string
	name      string
	status    PresenceStatus
	parent    ProtoGroup
}

func (c *stubContact) Address() string                { return c.address }
func (c *stubContact) AccountID() string              { return c.accountID }
func (c *stubContact) DisplayName() string            { return c.name }
func (c *stubContact) PresenceStatus() PresenceStatus { return c.status }
func (c *stubContact) ParentGroup() ProtoGroup        { return c.parent }
func (c *stubContact) PersistentData() string         { return "" }
func (c *stubContact) IsPersistent() bool             { return true }
func (c *stubContact) IsResolved() bool               { return true }

func contact(address, name string, status PresenceStatus) *stubContact {
	return &stubContact{address: address, accountID: "alice", name: name, status: status}
}

func metaContact(contacts ...ProtoContact) *MetaContact {
	mc := NewMetaContact()
	for _, c := range contacts {
		mc.AddProtoContact(c)
	}
	return mc
}

func TestMetaContact_First_Contact_Seeds_Display_Name(t *testing.T) {
	req := require.New(t)
	mc := NewMetaContact()

	// When two contacts are added
	req.True(mc.AddProtoContact(contact("amy@x.org", "Amy", Offline)))
	req.True(mc.AddProtoContact(contact("amelia@x.org", "Amelia", Online)))

	// Then the first one named the meta contact
	req.Equal("Amy", mc.DisplayName())
	req.Equal(2, mc.ContactCount())
	req.Equal(1, mc.OnlineCount())
	req.True(mc.IsOnline())
}

func TestMetaContact_AddProtoContact_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	amy := contact("amy@x.org", "Amy", Online)
	mc := metaContact(amy)

	// When the same account contact is added again, through another handle
	added := mc.AddProtoContact(contact("amy@x.org", "Amy again", Online))

	// Then
	req.False(added)
	req.Equal(1, mc.ContactCount())
	req.Equal(1, mc.OnlineCount())
}

func TestMetaContact_DefaultContact_Is_Most_Available(t *testing.T) {
	req := require.New(t)
	away := contact("amy@work.org", "Amy work", Away)
	online := contact("amy@x.org", "Amy", Online)
	alsoOnline := contact("amy@y.org", "Amy y", Online)
	mc := metaContact(away, online, alsoOnline)

	// Then the first of the most available wins
	req.Same(online, mc.DefaultContact())

	// When its presence drops
	online.status = Offline
	mc.Reevaluate()

	// Then the cache was invalidated
	req.Same(alsoOnline, mc.DefaultContact())
}

func TestMetaContact_RemoveProtoContact_Resets_Display_Name(t *testing.T) {
	req := require.New(t)
	amy := contact("amy@x.org", "Amy", Offline)
	amelia := contact("amelia@x.org", "Amelia", Online)
	mc := metaContact(amy, amelia)

	// When the contact that named the meta contact goes away
	req.True(mc.RemoveProtoContact(amy))

	// Then the name comes from the remaining default contact
	req.Equal("Amelia", mc.DisplayName())
	req.False(mc.RemoveProtoContact(amy))
}

func TestMetaContact_User_Defined_Name_Survives_Removal(t *testing.T) {
	req := require.New(t)
	amy := contact("amy@x.org", "Amy", Offline)
	amelia := contact("amelia@x.org", "Amelia", Online)
	mc := metaContact(amy, amelia)

	// Given a user chosen name
	old, changed := mc.SetDisplayName("Amy Pond", true)
	req.Equal("Amy", old)
	req.True(changed)

	// When a contact is removed
	mc.RemoveProtoContact(amy)

	// Then the name is kept
	req.Equal("Amy Pond", mc.DisplayName())

	// When the user name is cleared
	old, name, changed := mc.ClearUserDefinedDisplayName()

	// Then
	req.Equal("Amy Pond", old)
	req.Equal("Amelia", name)
	req.True(changed)
	req.False(mc.IsDisplayNameUserDefined())
}

func TestMetaContact_Details(t *testing.T) {
	req := require.New(t)
	mc := NewMetaContactWithID("mc-1", map[string][]string{"email": {"amy@x.org"}})

	// When
	mc.AddDetail("phone", "111")
	mc.AddDetail("phone", "222")
	req.True(mc.ChangeDetail("phone", "111", "333"))
	req.False(mc.ChangeDetail("phone", "missing", "444"))
	req.True(mc.RemoveDetail("email", "amy@x.org"))
	req.False(mc.RemoveDetail("email", "amy@x.org"))

	// Then
	req.Equal(map[string][]string{"phone": {"333", "222"}}, mc.Details())
	req.Equal([]string{"333", "222"}, mc.RemoveDetails("phone"))
	req.Empty(mc.Details())
}

func TestMetaContact_Details_Are_Copied(t *testing.T) {
	req := require.New(t)
	stored := map[string][]string{"phone": {"111"}}
	mc := NewMetaContactWithID("mc-1", stored)

	// When both the input and the output are mutated
	stored["phone"][0] = "999"
	mc.Details()["phone"][0] = "888"

	// Then the meta contact is unaffected
	req.Equal([]string{"111"}, mc.DetailValues("phone"))
}

func TestMetaContact_Capabilities(t *testing.T) {
	req := require.New(t)
	amy := contact("amy@x.org", "Amy", Away)
	amyPhone := contact("amy@phone.org", "Amy phone", Online)
	mc := metaContact(amy, amyPhone)

	// When both contacts advertise capabilities
	mc.UpdateCapabilities(amy, "desktop", []string{"chat", "file-transfer"})
	mc.UpdateCapabilities(amyPhone, "phone", []string{"chat"})

	// Then
	req.Len(mc.ContactsForCapability("chat"), 2)
	req.Same(amyPhone, mc.DefaultContactForCapability("chat"))
	req.ElementsMatch([]string{"desktop", "phone"}, mc.ResourcesForCapability("chat"))

	// When the desktop drops file transfer
	mc.UpdateCapabilities(amy, "desktop", []string{"chat"})
	req.Empty(mc.ContactsForCapability("file-transfer"))

	// When a contact is removed, its capabilities go with it
	mc.RemoveProtoContact(amyPhone)
	req.Equal([]ProtoContact{amy}, mc.ContactsForCapability("chat"))
}

func TestMetaContact_RemoveContactsForAccount(t *testing.T) {
	req := require.New(t)
	amy := contact("amy@x.org", "Amy", Online)
	other := &stubContact{address: "amy@y.org", accountID: "bob", name: "Amy", status: Online}
	mc := metaContact(amy, other)

	// When
	removed := mc.RemoveContactsForAccount("alice")

	// Then
	req.Equal([]ProtoContact{amy}, removed)
	req.Equal([]ProtoContact{other}, mc.Contacts())
	req.Nil(mc.Contact("amy@x.org", "alice"))
	req.NotNil(mc.Contact("amy@y.org", ""))
}

func TestMetaContact_RemoveContactsForGroup(t *testing.T) {
	req := require.New(t)
	work := stubGroup{uid: "work", accountID: "alice"}
	amy := contact("amy@x.org", "Amy", Online)
	amy.parent = work
	zoe := contact("zoe@x.org", "Zoe", Online)
	mc := metaContact(amy, zoe)

	// When
	removed := mc.RemoveContactsForGroup(stubGroup{uid: "work", accountID: "alice"})

	// Then
	req.Equal([]ProtoContact{amy}, removed)
	req.Equal(1, mc.ContactCount())
}

func TestMetaContact_RefreshProtoContact(t *testing.T) {
	req := require.New(t)
	stale := contact("amy@x.org", "Amy", Offline)
	mc := metaContact(stale)
	fresh := contact("amy@x.org", "Amy", Online)

	// When a new handle replaces the stale one
	req.True(mc.RefreshProtoContact(fresh))

	// Then
	req.Same(fresh, mc.Contacts()[0])
	req.True(mc.IsOnline())
	req.False(mc.RefreshProtoContact(fresh))
	req.False(mc.RefreshProtoContact(contact("zoe@x.org", "Zoe", Online)))
}

func TestMetaContact_Avatar_Is_Copied(t *testing.T) {
	req := require.New(t)
	mc := NewMetaContact()
	avatar := []byte{1, 2, 3}

	// When
	req.Nil(mc.SetAvatar(avatar))
	avatar[0] = 9

	// Then
	req.Equal([]byte{1, 2, 3}, mc.Avatar())
}

func TestMetaContact_Concurrent_Presence_Keeps_Parent_Sorted(t *testing.T) {
	req := require.New(t)
	root := NewRootGroup()
	contacts := lo.Times(50, func(i int) *stubContact {
		return contact(lo.RandomString(8, lo.LowerCaseLettersCharset)+"@x.org", lo.RandomString(8, lo.LowerCaseLettersCharset), Offline)
	})
	metas := lo.Map(contacts, func(c *stubContact, _ int) *MetaContact {
		mc := metaContact(c)
		root.AddChild(mc)
		return mc
	})
	var wg sync.WaitGroup

	// When every contact is renamed concurrently
	for i, mc := range metas {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mc.SetDisplayName(lo.Ternary(i%2 == 0, "a", "z")+mc.DisplayName(), false)
		}()
	}
	wg.Wait()

	// Then the snapshot is still ordered
	children := root.Children()
	req.Len(children, 50)
	for i := 1; i < len(children); i++ {
		req.LessOrEqual(compareContacts(children[i-1], children[i]), 0)
	}
}
