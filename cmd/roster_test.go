package main

import (
	"contact-lab/domain"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const roster = `
accounts:
  - id: alice@x.org
    groups:
      - [Archive]
    contacts:
      - address: amy@x.org
        name: Amy
        status: online
      - address: carl@x.org
        name: Carl
        status: away
        group: [Work]
  - id: alice@y.org
    contacts:
      - address: amy@y.org
`

func TestRoster_Providers(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "roster.yaml")
	req.NoError(os.WriteFile(path, []byte(roster), 0o600))

	// When
	r, err := loadRoster(path)
	req.NoError(err)
	providers, err := r.providers(slog.Default())

	// Then
	req.NoError(err)
	req.Len(providers, 2)
	alice := providers[0]
	req.Equal("alice@x.org", alice.AccountID())
	req.NotNil(alice.FindGroupByName("Archive"))
	carl := alice.Find("carl@x.org")
	req.NotNil(carl)
	req.Equal(domain.Away, carl.PresenceStatus())
	req.Equal("Work", carl.ParentGroup().Name())
	req.Equal(domain.Offline, providers[1].Find("amy@y.org").PresenceStatus())
}

func TestRoster_Rejects_Unknown_Status(t *testing.T) {
	req := require.New(t)
	r := Roster{Accounts: []AccountRoster{{
		ID:       "alice@x.org",
		Contacts: []ContactRoster{{Address: "amy@x.org", Status: "invisible"}},
	}}}

	// When
	_, err := r.providers(slog.Default())

	// Then
	req.ErrorContains(err, "invisible")
}

func TestLoadRoster_Rejects_Duplicate_Accounts(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "roster.yaml")
	req.NoError(os.WriteFile(path, []byte("accounts:\n  - id: a\n  - id: a\n"), 0o600))

	// When
	_, err := loadRoster(path)

	// Then
	req.ErrorContains(err, "declared twice")
}
