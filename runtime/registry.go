package runtime

import (
	"contact-lab/protocol"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
)

type Set map[string]struct{}

// Registry keeps the attached protocol providers by account id.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]protocol.Provider
	stored    Set
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]protocol.Provider),
		stored:    make(Set),
	}
}

// Register adds a provider. It returns false if the account already has one.
func (r *Registry) Register(provider protocol.Provider) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[provider.AccountID()]; ok {
		return false
	}
	r.providers[provider.AccountID()] = provider
	return true
}

func (r *Registry) Unregister(accountID string) (protocol.Provider, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	provider, ok := r.providers[accountID]
	delete(r.providers, accountID)
	return provider, ok
}

func (r *Registry) Get(accountID string) (protocol.Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[accountID]
	return provider, ok
}

// All returns the providers sorted by account id.
func (r *Registry) All() []protocol.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := lo.Values(r.providers)
	slices.SortFunc(res, func(a, b protocol.Provider) int {
		return strings.Compare(a.AccountID(), b.AccountID())
	})
	return res
}

// Store marks an account as configured. Detaching the provider of a stored
// account keeps its contacts.
func (r *Registry) Store(accountID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored[accountID] = struct{}{}
}

// Forget marks an account as uninstalled.
func (r *Registry) Forget(accountID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stored, accountID)
}

func (r *Registry) IsStored(accountID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.stored[accountID]
	return ok
}
