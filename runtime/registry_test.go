package runtime

import (
	"contact-lab/protocol/memory"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Register_One_Provider(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	provider := memory.NewProvider(slog.Default(), "alice@x.org")

	// Given no provider is registered
	req.Empty(registry.All())

	// When a provider registers
	ok := registry.Register(provider)

	// Then
	req.True(ok)
	req.Len(registry.All(), 1)
	got, found := registry.Get("alice@x.org")
	req.True(found)
	req.Equal(provider, got)
}

func TestRegistry_Register_Same_Account_Twice(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// Given a provider is registered
	req.True(registry.Register(memory.NewProvider(slog.Default(), "alice@x.org")))

	// When another provider registers for the same account
	ok := registry.Register(memory.NewProvider(slog.Default(), "alice@x.org"))

	// Then it is rejected
	req.False(ok)
	req.Len(registry.All(), 1)
}

func TestRegistry_All_Sorted_By_Account(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// When providers register in any order
	registry.Register(memory.NewProvider(slog.Default(), "zoe@x.org"))
	registry.Register(memory.NewProvider(slog.Default(), "amy@x.org"))

	// Then
	all := registry.All()
	req.Len(all, 2)
	req.Equal("amy@x.org", all[0].AccountID())
	req.Equal("zoe@x.org", all[1].AccountID())
}

func TestRegistry_Unregister(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	registry.Register(memory.NewProvider(slog.Default(), "alice@x.org"))

	// When the provider unregisters
	_, ok := registry.Unregister("alice@x.org")

	// Then
	req.True(ok)
	req.Empty(registry.All())
	_, ok = registry.Unregister("alice@x.org")
	req.False(ok)
}

func TestRegistry_Stored_Accounts(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// Given an account is stored
	registry.Store("alice@x.org")
	req.True(registry.IsStored("alice@x.org"))

	// When it is forgotten
	registry.Forget("alice@x.org")

	// Then
	req.False(registry.IsStored("alice@x.org"))
}
