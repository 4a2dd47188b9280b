package storage_test

import (
	"contact-lab/contract"
	"contact-lab/domain"
	"contact-lab/domain/event"
	"contact-lab/errors"
	"contact-lab/mocks"
	"contact-lab/protocol/memory"
	"contact-lab/repositories"
	"contact-lab/repositories/storage"
	"contact-lab/runtime"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const account = "alice@x.org"

func newRepository(t *testing.T) repositories.ContactListRepository {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repositories.NewContactListRepository(db, slog.Default())
}

// run starts the provider's delivery loop until the test ends.
func run(t *testing.T, p *memory.Provider) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = p.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
}

type groupView struct {
	ID       string
	Name     string
	Contacts []contactView
	Groups   []groupView
}

type contactView struct {
	ID          string
	Name        string
	UserDefined bool
	Addresses   []string
	Details     map[string][]string
}

func view(g *domain.MetaContactGroup) groupView {
	return groupView{
		ID:   g.ID(),
		Name: g.Name(),
		Contacts: lo.Map(g.Children(), func(mc *domain.MetaContact, _ int) contactView {
			return contactView{
				ID:          mc.ID(),
				Name:        mc.DisplayName(),
				UserDefined: mc.IsDisplayNameUserDefined(),
				Addresses: lo.Map(mc.Contacts(), func(c domain.ProtoContact, _ int) string {
					return c.AccountID() + "/" + c.Address()
				}),
				Details: mc.Details(),
			}
		}),
		Groups: lo.Map(g.Subgroups(), func(sub *domain.MetaContactGroup, _ int) groupView { return view(sub) }),
	}
}

func TestContactListSink_Restores_Tree_From_Store(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := newRepository(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given a list built against a live server
	server := memory.NewProvider(slog.Default(), account)
	server.Seed(nil, "amy@x.org", "Amy", domain.Offline)
	server.Seed([]string{"Work"}, "carl@x.org", "Carl", domain.Offline)
	run(t, server)
	registry := runtime.NewRegistry()
	first := runtime.NewOrchestrator(log, registry, registry, repository, time.Second)
	req.NoError(first.Start(ctx, server))

	friends, err := first.CreateMetaContactGroup(ctx, first.Root(), "Friends")
	req.NoError(err)
	_, err = first.CreateMetaContact(ctx, account, friends, "dan@x.org")
	req.NoError(err)
	amy := first.FindMetaContactByAddress("amy@x.org", account)
	req.NoError(first.RenameMetaContact(ctx, amy, "Amelia"))
	first.AddMetaContactDetail(ctx, amy, "phone", "111")
	req.NoError(server.Sync(ctx))
	first.Stop()
	want := view(first.Root())

	// When a new process restores it while the server is unreachable
	offline := memory.NewProvider(slog.Default(), account)
	run(t, offline)
	registry = runtime.NewRegistry()
	second := runtime.NewOrchestrator(log, registry, registry, repository, time.Second)
	req.NoError(second.Start(ctx, offline))

	// Then the tree is identical, with unresolved contacts
	got := view(second.Root())
	req.Empty(cmp.Diff(want, got, cmpopts.EquateEmpty()))
	restored := second.FindMetaContactByAddress("carl@x.org", account)
	req.False(restored.Contacts()[0].IsResolved())
	req.Same(second.Root().Subgroup("Work"), restored.ParentGroup())
}

func TestContactListSink_LoadAccount_Drops_Unrestorable_Rows(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repository := mocks.NewMockIContactListRepository(ctrl)
	loader := mocks.NewMockIListLoader(ctrl)
	sink := storage.NewContactListSink(repository, loader, slog.Default())
	root := domain.NewRootGroup()
	restored := domain.NewMetaContact()

	// Given an orphan group, a contact in an unknown group, a contact the
	// loader rejects and a valid one
	repository.EXPECT().GetGroups(account).Return([]repositories.GroupRow{
		{AccountID: account, GroupID: "orphan", GroupName: "Orphan", ParentGroupID: "missing"},
	}, nil)
	repository.EXPECT().GetContacts(account).Return([]repositories.ContactRow{
		{MetaContactID: "ghost", AccountID: account, Address: "ghost@x.org", MetaGroupID: "orphan"},
		{MetaContactID: "empty", AccountID: account, Address: "empty@x.org", MetaGroupID: root.ID()},
		{MetaContactID: "ok", AccountID: account, Address: "amy@x.org", MetaGroupID: root.ID(), DisplayName: "Amy"},
	}, nil)
	loader.EXPECT().Root().Return(root)
	loader.EXPECT().LoadStoredProtoGroup(root, account, nil, "", "").Return(nil, nil)

	// Then the sink deletes what it cannot restore
	repository.EXPECT().DeleteGroup("orphan", account).Return(nil)
	repository.EXPECT().DeleteContact("ghost", account, "ghost@x.org").Return(nil)
	loader.EXPECT().LoadStoredContact(root, storedWithID("empty")).Return(nil, errors.ErrNoProtoContact)
	repository.EXPECT().DeleteContact("empty", account, "empty@x.org").Return(nil)
	loader.EXPECT().LoadStoredContact(root, storedWithID("ok")).Return(restored, nil)

	// When
	err := sink.LoadAccount(context.Background(), account)

	// Then
	req.NoError(err)
}

func TestContactListSink_Skips_Replayed_Events(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := newRepository(t)
	sink := storage.NewContactListSink(repository, nil, slog.Default())
	server := memory.NewProvider(slog.Default(), account)
	amy := server.Seed(nil, "amy@x.org", "Amy", domain.Online)
	root := domain.NewRootGroup()
	root.AddProtoGroup(server.RootGroup())
	mc := domain.NewMetaContact()
	mc.AddProtoContact(amy)
	root.AddChild(mc)

	// When the contact comes from a replay
	req.NoError(sink.Consume(event.WithReplay(ctx), event.ContactAdded{Contact: mc, Parent: root}))

	// Then nothing is written back
	rows, err := repository.AllContacts()
	req.NoError(err)
	req.Empty(rows)

	// When a live event arrives while another account replays
	req.NoError(sink.Consume(ctx, event.ContactAdded{Contact: mc, Parent: root}))

	// Then it is stored
	rows, err = repository.AllContacts()
	req.NoError(err)
	req.Len(rows, 1)
}

func TestContactListSink_Mirrors_Contact_Events(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := newRepository(t)
	sink := storage.NewContactListSink(repository, nil, slog.Default())
	server := memory.NewProvider(slog.Default(), account)
	amy := server.Seed(nil, "amy@x.org", "Amy", domain.Online)
	amyWork := server.Seed([]string{"Work"}, "amy@work.org", "Amy W", domain.Online)
	root := domain.NewRootGroup()
	root.AddProtoGroup(server.RootGroup())
	mc := domain.NewMetaContact()
	mc.AddProtoContact(amy)
	root.AddChild(mc)

	// When the contact is added
	req.NoError(sink.Consume(ctx, event.ContactAdded{Contact: mc, Parent: root}))

	// Then one row is stored
	rows, err := repository.GetMetaContactRows(mc.ID())
	req.NoError(err)
	req.Len(rows, 1)
	req.Equal(repositories.ContactRow{
		MetaContactID:     mc.ID(),
		AccountID:         account,
		Address:           "amy@x.org",
		MetaGroupID:       root.ID(),
		ProtoGroupUID:     memory.RootGroupUID,
		DisplayName:       "Amy",
		ServerDisplayName: "Amy",
	}, rows[0])

	// When a proto contact is added, the name and details change
	mc.AddProtoContact(amyWork)
	req.NoError(sink.Consume(ctx, event.ProtoContactAdded{Contact: mc, ProtoContact: amyWork}))
	mc.SetDisplayName("Amelia", true)
	req.NoError(sink.Consume(ctx, event.ContactRenamed{Contact: mc, OldName: "Amy", NewName: "Amelia"}))
	mc.AddDetail("phone", "111")
	req.NoError(sink.Consume(ctx, event.ContactModified{Contact: mc, Name: "phone", NewValue: "111"}))

	// Then every row follows
	rows, err = repository.GetMetaContactRows(mc.ID())
	req.NoError(err)
	req.Len(rows, 2)
	for _, row := range rows {
		req.Equal("Amelia", row.DisplayName)
		req.True(row.UserDefined)
		req.Equal(map[string][]string{"phone": {"111"}}, row.Details)
	}

	// When a proto contact leaves, then the meta contact
	mc.RemoveProtoContact(amyWork)
	req.NoError(sink.Consume(ctx, event.ProtoContactRemoved{Contact: mc, ProtoContact: amyWork}))
	rows, err = repository.GetMetaContactRows(mc.ID())
	req.NoError(err)
	req.Len(rows, 1)
	req.NoError(sink.Consume(ctx, event.ContactRemoved{Contact: mc, Parent: root}))

	// Then nothing is left
	all, err := repository.AllContacts()
	req.NoError(err)
	req.Empty(all)
}

func TestContactListSink_Mirrors_Group_Events(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := newRepository(t)
	sink := storage.NewContactListSink(repository, nil, slog.Default())
	server := memory.NewProvider(slog.Default(), account)
	carl := server.Seed([]string{"Work"}, "carl@x.org", "Carl", domain.Online)
	serverWork := server.FindGroupByName("Work")
	root := domain.NewRootGroup()
	root.AddProtoGroup(server.RootGroup())
	work := domain.NewMetaContactGroup("Work")
	work.AddProtoGroup(serverWork)
	root.AddSubgroup(work)
	mc := domain.NewMetaContact()
	mc.AddProtoContact(carl)
	work.AddChild(mc)

	// When the group is added with its content
	req.NoError(sink.Consume(ctx, event.GroupAdded{Group: work, Parent: root}))

	// Then
	groups, err := repository.GetGroupRows(work.ID())
	req.NoError(err)
	req.Equal([]repositories.GroupRow{{
		AccountID:           account,
		GroupID:             work.ID(),
		GroupName:           "Work",
		ParentGroupID:       root.ID(),
		ProtoGroupUID:       serverWork.UID(),
		ParentProtoGroupUID: memory.RootGroupUID,
	}}, groups)
	contacts, err := repository.GetMetaContactRows(mc.ID())
	req.NoError(err)
	req.Len(contacts, 1)

	// When the group is renamed
	work.Rename("Office")
	req.NoError(sink.Consume(ctx, event.GroupModified{Group: work, Change: event.MetaGroupRenamed, OldValue: "Work", NewValue: "Office"}))
	groups, err = repository.GetGroupRows(work.ID())
	req.NoError(err)
	req.Equal("Office", groups[0].GroupName)

	// When an event the store does not care about arrives
	req.NoError(sink.Consume(ctx, event.GroupModified{Group: root, Change: event.ChildContactsReordered}))

	// When the group is removed
	req.NoError(sink.Consume(ctx, event.GroupRemoved{Group: work, Parent: root}))

	// Then its rows and its contacts' rows are gone
	all, err := repository.AllGroups()
	req.NoError(err)
	req.Empty(all)
	contacts, err = repository.AllContacts()
	req.NoError(err)
	req.Empty(contacts)
}

// storedWithID matches a StoredMetaContact by id.
func storedWithID(id string) gomock.Matcher {
	return gomock.Cond(func(x any) bool {
		stored, ok := x.(contract.StoredMetaContact)
		return ok && stored.ID == id
	})
}
