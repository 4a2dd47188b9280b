//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"contact-lab/domain"
	"contact-lab/domain/event"
	"contact-lab/protocol"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives every contact list change, synchronously and in
// registration order.
type EventSink interface {
	Consume(ctx context.Context, e event.ListEvent) error
}

// IProviderRegistry tracks the protocol providers currently attached.
type IProviderRegistry interface {
	Register(provider protocol.Provider) bool
	Unregister(accountID string) (protocol.Provider, bool)
	Get(accountID string) (protocol.Provider, bool)
	All() []protocol.Provider
}

// IAccountRegistry answers whether an account is still configured. A provider
// detached while its account is stored is being reconfigured, not removed.
type IAccountRegistry interface {
	IsStored(accountID string) bool
}

// IListLoader is the load-time API used to rebuild the tree from storage.
// Nodes created through it carry unresolved proto bindings.
type IListLoader interface {
	Root() *domain.MetaContactGroup
	LoadStoredGroup(parent *domain.MetaContactGroup, id, name string) *domain.MetaContactGroup
	LoadStoredProtoGroup(group *domain.MetaContactGroup, accountID string, parent domain.ProtoGroup, uid, persistentData string) (domain.ProtoGroup, error)
	LoadStoredContact(parent *domain.MetaContactGroup, stored StoredMetaContact) (*domain.MetaContact, error)
}

// StoredMetaContact is a meta contact as read back from storage, restricted
// to one account.
type StoredMetaContact struct {
	ID          string
	AccountID   string
	DisplayName string
	UserDefined bool
	Details     map[string][]string
	Contacts    []StoredProtoContact
}

type StoredProtoContact struct {
	Address        string
	PersistentData string
	Parent         domain.ProtoGroup
}
