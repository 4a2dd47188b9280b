package main

import (
	"bytes"
	"contact-lab/domain"
	"contact-lab/domain/event"
	"contact-lab/protocol/memory"
	"contact-lab/repositories"
	"contact-lab/search"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

// seed stores and indexes a two-contact list, then closes both stores.
func seed(t *testing.T) (string, string, *domain.MetaContact) {
	t.Helper()
	req := require.New(t)
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "badger")
	indexPath := filepath.Join(t.TempDir(), "bluge")

	db, err := badger.Open(badger.DefaultOptions(dbPath).WithLogger(nil))
	req.NoError(err)
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(indexPath))
	req.NoError(err)
	index := search.NewContactIndex(writer, slog.Default())
	repository := repositories.NewContactListRepository(db, slog.Default())

	p := memory.NewProvider(slog.Default(), "alice@x.org")
	amy := p.Seed(nil, "amy@x.org", "Amy", domain.Online)
	root := domain.NewRootGroup()
	mc := domain.NewMetaContact()
	mc.AddProtoContact(amy)
	mc.AddDetail("phone", "111")
	root.AddChild(mc)
	req.NoError(index.Consume(ctx, event.ContactAdded{Contact: mc, Parent: root}))
	req.NoError(repository.StoreGroup(repositories.GroupRow{
		AccountID: "alice@x.org", GroupID: "work-group-id", GroupName: "Work",
		ParentGroupID: root.ID(), ProtoGroupUID: "work", ParentProtoGroupUID: memory.RootGroupUID,
	}))
	req.NoError(repository.StoreContact(repositories.ContactRow{
		MetaContactID: mc.ID(), AccountID: "alice@x.org", Address: "amy@x.org",
		MetaGroupID: root.ID(), DisplayName: "Amy", Details: mc.Details(),
	}))
	req.NoError(repository.StoreContact(repositories.ContactRow{
		MetaContactID: "bob-meta-contact", AccountID: "alice@y.org", Address: "bob@y.org",
		MetaGroupID: root.ID(), DisplayName: "Bob", UserDefined: true,
	}))
	req.NoError(writer.Close())
	req.NoError(db.Close())
	return dbPath, indexPath, mc
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestInspect_Groups_And_Contacts(t *testing.T) {
	req := require.New(t)
	dbPath, indexPath, _ := seed(t)

	// When
	groups := execute(t, "groups", "--db", dbPath, "--index", indexPath)
	contacts := execute(t, "contacts", "--db", dbPath, "--index", indexPath, "--account", "alice@y.org")

	// Then
	req.Contains(groups, "Work")
	req.Contains(groups, "work-gro")
	req.Contains(contacts, "Bob *")
	req.NotContains(contacts, "amy@x.org")
}

func TestInspect_Search(t *testing.T) {
	req := require.New(t)
	dbPath, indexPath, mc := seed(t)

	// When
	out := execute(t, "search", "am", "--db", dbPath, "--index", indexPath)

	// Then
	req.Contains(out, shortID(mc.ID()))
	req.Contains(out, "phone=111")
	req.NotContains(out, "bob@y.org")
}

func TestFormatDetails(t *testing.T) {
	require.Equal(t, "email=a|b phone=1", formatDetails(map[string][]string{
		"phone": {"1"},
		"email": {"a", "b"},
	}))
}
