// Package protocol describes the protocol-provider collaborator consumed by
// the contact list: remote roster operations and their inbound notifications.
// Providers acknowledge mutations asynchronously through the listener streams.
package protocol

import (
	"contact-lab/domain"
	"context"
	"fmt"
)

// Provider is one registered messaging account.
type Provider interface {
	AccountID() string
	RootGroup() domain.ProtoGroup

	Subscribe(ctx context.Context, parent domain.ProtoGroup, address string) error
	Unsubscribe(ctx context.Context, contact domain.ProtoContact) error
	CreateGroup(ctx context.Context, parent domain.ProtoGroup, name string) error
	RenameGroup(ctx context.Context, group domain.ProtoGroup, name string) error
	RemoveGroup(ctx context.Context, group domain.ProtoGroup) error
	MoveContact(ctx context.Context, contact domain.ProtoContact, group domain.ProtoGroup) error
	SetDisplayName(ctx context.Context, contact domain.ProtoContact, name string) error

	// CreateUnresolvedContact returns a placeholder for a stored contact the
	// server has not confirmed yet. An existing handle with the same address
	// is returned instead when the provider already knows it.
	CreateUnresolvedContact(parent domain.ProtoGroup, address, persistentData string) domain.ProtoContact
	CreateUnresolvedGroup(parent domain.ProtoGroup, uid, persistentData string) domain.ProtoGroup

	AddSubscriptionListener(l SubscriptionListener)
	RemoveSubscriptionListener(l SubscriptionListener)
	AddGroupListener(l GroupListener)
	RemoveGroupListener(l GroupListener)
	AddPresenceListener(l PresenceListener)
	RemovePresenceListener(l PresenceListener)
	AddCapabilitiesListener(l CapabilitiesListener)
	RemoveCapabilitiesListener(l CapabilitiesListener)
}

type SubscriptionEventKind string

const (
	SubscriptionCreated    SubscriptionEventKind = "created"
	SubscriptionMoved      SubscriptionEventKind = "moved"
	SubscriptionRemoved    SubscriptionEventKind = "removed"
	SubscriptionFailed     SubscriptionEventKind = "failed"
	SubscriptionResolved   SubscriptionEventKind = "resolved"
	ContactPropertyChanged SubscriptionEventKind = "property-changed"
)

// Contact property names carried by ContactPropertyChanged notifications.
const (
	PropertyDisplayName    = "DisplayName"
	PropertyImage          = "Image"
	PropertyPersistentData = "PersistentData"
)

type SubscriptionEvent struct {
	Kind        SubscriptionEventKind
	Contact     domain.ProtoContact
	ParentGroup domain.ProtoGroup
	OldParent   domain.ProtoGroup
	Reason      string
	Property    string
	OldValue    string
	NewValue    string
	Image       []byte
}

type SubscriptionListener interface {
	OnSubscriptionEvent(evt SubscriptionEvent)
}

type GroupEventKind string

const (
	GroupCreated  GroupEventKind = "created"
	GroupRemoved  GroupEventKind = "removed"
	GroupRenamed  GroupEventKind = "renamed"
	GroupResolved GroupEventKind = "resolved"
)

type GroupEvent struct {
	Kind    GroupEventKind
	Group   domain.ProtoGroup
	OldName string
}

type GroupListener interface {
	OnGroupEvent(evt GroupEvent)
}

type PresenceEvent struct {
	Contact   domain.ProtoContact
	OldStatus domain.PresenceStatus
	NewStatus domain.PresenceStatus
}

type PresenceListener interface {
	OnPresenceEvent(evt PresenceEvent)
}

type CapabilitiesEvent struct {
	Contact      domain.ProtoContact
	ResourceID   string
	Capabilities []string
}

type CapabilitiesListener interface {
	OnCapabilitiesEvent(evt CapabilitiesEvent)
}

// FailureCode classifies a synchronous remote failure.
type FailureCode int

const (
	CodeGeneral FailureCode = iota
	CodeNetworkFailure
	CodeSubscriptionAlreadyExists
	CodeNotSupported
	CodeIllegalArgument
)

// OperationFailedError is returned by providers when a remote call is
// rejected before any notification is emitted.
type OperationFailedError struct {
	Code    FailureCode
	Message string
}

func (e *OperationFailedError) Error() string {
	return fmt.Sprintf("operation failed (code %d): %s", e.Code, e.Message)
}

func Failed(code FailureCode, format string, args ...any) error {
	return &OperationFailedError{Code: code, Message: fmt.Sprintf(format, args...)}
}
