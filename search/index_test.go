package search_test

import (
	"contact-lab/domain"
	"contact-lab/domain/event"
	"contact-lab/protocol/memory"
	"contact-lab/runtime"
	"contact-lab/search"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const account = "alice@x.org"

func newIndex(t *testing.T) *search.ContactIndex {
	t.Helper()
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	return search.NewContactIndex(writer, slog.Default())
}

func start(t *testing.T, index *search.ContactIndex) (*runtime.Orchestrator, *memory.Provider) {
	t.Helper()
	p := memory.NewProvider(slog.Default(), account)
	p.Seed(nil, "amy@x.org", "Amy", domain.Online)
	p.Seed(nil, "bob@x.org", "Bob", domain.Offline)
	p.Seed([]string{"Work"}, "carl@x.org", "Carl", domain.Away)

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

	registry := runtime.NewRegistry()
	o := runtime.NewOrchestrator(logs.GetLoggerFromLevel(slog.LevelDebug), registry, registry, nil, time.Second)
	o.AddListener(index)
	require.NoError(t, o.Start(context.Background(), p))
	require.NoError(t, p.Sync(context.Background()))
	return o, p
}

func TestContactIndex_Search_By_Name_And_Address(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := newIndex(t)

	// Given
	o, _ := start(t, index)
	amy := o.FindMetaContactByAddress("amy@x.org", account)
	carl := o.FindMetaContactByAddress("carl@x.org", account)

	// When
	byName, err := index.Search(ctx, "Amy", 10)
	req.NoError(err)
	byPrefix, err := index.Search(ctx, "car", 10)
	req.NoError(err)
	none, err := index.Search(ctx, "nobody", 10)
	req.NoError(err)
	blank, err := index.Search(ctx, "   ", 10)
	req.NoError(err)

	// Then
	req.Equal([]string{amy.ID()}, byName)
	req.Equal([]string{carl.ID()}, byPrefix)
	req.Empty(none)
	req.Empty(blank)
}

func TestContactIndex_Follows_List_Changes(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := newIndex(t)
	o, _ := start(t, index)
	amy := o.FindMetaContactByAddress("amy@x.org", account)
	bob := o.FindMetaContactByAddress("bob@x.org", account)

	// When amy is renamed and gets a detail, and bob is removed
	req.NoError(o.RenameMetaContact(ctx, amy, "Amelia"))
	o.AddMetaContactDetail(ctx, amy, "phone", "5551234")
	req.NoError(o.RemoveMetaContact(ctx, bob))

	// Then
	renamed, err := index.Search(ctx, "amel", 10)
	req.NoError(err)
	req.Equal([]string{amy.ID()}, renamed)
	byDetail, err := index.Search(ctx, "5551234", 10)
	req.NoError(err)
	req.Equal([]string{amy.ID()}, byDetail)
	removed, err := index.Search(ctx, "bob", 10)
	req.NoError(err)
	req.Empty(removed)
	all, err := index.ForAccount(ctx, account, 0)
	req.NoError(err)
	req.Len(all, 2)
}

func TestContactIndex_Drops_Removed_Group_Content(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := newIndex(t)
	root := domain.NewRootGroup()
	p := memory.NewProvider(slog.Default(), account)
	dan := p.Seed([]string{"Friends"}, "dan@x.org", "Dan", domain.Online)
	friends := domain.NewMetaContactGroup("Friends")
	root.AddSubgroup(friends)
	mc := domain.NewMetaContact()
	mc.AddProtoContact(dan)
	friends.AddChild(mc)

	// Given
	req.NoError(index.Consume(ctx, event.GroupAdded{Group: friends, Parent: root}))
	found, err := index.Search(ctx, "dan", 10)
	req.NoError(err)
	req.Equal([]string{mc.ID()}, found)

	// When
	req.NoError(index.Consume(ctx, event.GroupRemoved{Group: friends, Parent: root}))

	// Then
	found, err = index.Search(ctx, "dan", 10)
	req.NoError(err)
	req.Empty(found)
}
