package event

import (
	"contact-lab/domain"
	"context"
)

type replayKey struct{}

// WithReplay marks the events fired with ctx as the replay of stored state.
func WithReplay(ctx context.Context) context.Context {
	return context.WithValue(ctx, replayKey{}, true)
}

func IsReplay(ctx context.Context) bool {
	replay, _ := ctx.Value(replayKey{}).(bool)
	return replay
}

type Kind string

const (
	KindGroupAdded           Kind = "GroupAdded"
	KindGroupModified        Kind = "GroupModified"
	KindGroupRemoved         Kind = "GroupRemoved"
	KindContactAdded         Kind = "ContactAdded"
	KindContactRemoved       Kind = "ContactRemoved"
	KindContactMoved         Kind = "ContactMoved"
	KindContactRenamed       Kind = "ContactRenamed"
	KindContactModified      Kind = "ContactModified"
	KindContactAvatarUpdated Kind = "ContactAvatarUpdated"
	KindProtoContactAdded    Kind = "ProtoContactAdded"
	KindProtoContactRemoved  Kind = "ProtoContactRemoved"
	KindProtoContactMoved    Kind = "ProtoContactMoved"
	KindProtoContactRenamed  Kind = "ProtoContactRenamed"
	KindProtoContactModified Kind = "ProtoContactModified"
)

// ListEvent is a change of the meta contact list, delivered to listeners
// after the tree has been mutated.
type ListEvent interface {
	Kind() Kind
}

// GroupChange qualifies a GroupModified event.
type GroupChange string

const (
	MetaGroupRenamed       GroupChange = "MetaGroupRenamed"
	ProtoGroupAdded        GroupChange = "ProtoGroupAdded"
	ProtoGroupRenamed      GroupChange = "ProtoGroupRenamed"
	ProtoGroupRemoved      GroupChange = "ProtoGroupRemoved"
	ChildContactsReordered GroupChange = "ChildContactsReordered"
)

// ProtoContactModified properties.
const (
	PropertyPersistentData = "PersistentData"
	PropertyCapabilities   = "Capabilities"
	PropertyDisplayName    = "DisplayName"
)

type GroupAdded struct {
	Group  *domain.MetaContactGroup
	Parent *domain.MetaContactGroup
}

func (GroupAdded) Kind() Kind { return KindGroupAdded }

type GroupModified struct {
	Group      *domain.MetaContactGroup
	Change     GroupChange
	ProtoGroup domain.ProtoGroup
	OldValue   string
	NewValue   string
}

func (GroupModified) Kind() Kind { return KindGroupModified }

// GroupRemoved carries the parent the group was detached from.
type GroupRemoved struct {
	Group  *domain.MetaContactGroup
	Parent *domain.MetaContactGroup
}

func (GroupRemoved) Kind() Kind { return KindGroupRemoved }

type ContactAdded struct {
	Contact *domain.MetaContact
	Parent  *domain.MetaContactGroup
}

func (ContactAdded) Kind() Kind { return KindContactAdded }

// ContactRemoved carries the parent the contact was detached from.
type ContactRemoved struct {
	Contact *domain.MetaContact
	Parent  *domain.MetaContactGroup
}

func (ContactRemoved) Kind() Kind { return KindContactRemoved }

type ContactMoved struct {
	Contact   *domain.MetaContact
	OldParent *domain.MetaContactGroup
	NewParent *domain.MetaContactGroup
}

func (ContactMoved) Kind() Kind { return KindContactMoved }

type ContactRenamed struct {
	Contact *domain.MetaContact
	OldName string
	NewName string
}

func (ContactRenamed) Kind() Kind { return KindContactRenamed }

// ContactModified reports a detail change. An empty OldValue means added,
// an empty NewValue means removed.
type ContactModified struct {
	Contact  *domain.MetaContact
	Name     string
	OldValue string
	NewValue string
}

func (ContactModified) Kind() Kind { return KindContactModified }

type ContactAvatarUpdated struct {
	Contact      *domain.MetaContact
	ProtoContact domain.ProtoContact
	Avatar       []byte
	MIMEType     string
}

func (ContactAvatarUpdated) Kind() Kind { return KindContactAvatarUpdated }

type ProtoContactAdded struct {
	Contact      *domain.MetaContact
	ProtoContact domain.ProtoContact
}

func (ProtoContactAdded) Kind() Kind { return KindProtoContactAdded }

type ProtoContactRemoved struct {
	Contact      *domain.MetaContact
	ProtoContact domain.ProtoContact
}

func (ProtoContactRemoved) Kind() Kind { return KindProtoContactRemoved }

type ProtoContactMoved struct {
	OldContact   *domain.MetaContact
	NewContact   *domain.MetaContact
	ProtoContact domain.ProtoContact
}

func (ProtoContactMoved) Kind() Kind { return KindProtoContactMoved }

type ProtoContactRenamed struct {
	Contact      *domain.MetaContact
	ProtoContact domain.ProtoContact
	OldName      string
	NewName      string
}

func (ProtoContactRenamed) Kind() Kind { return KindProtoContactRenamed }

type ProtoContactModified struct {
	Contact      *domain.MetaContact
	ProtoContact domain.ProtoContact
	Property     string
	OldValue     string
	NewValue     string
}

func (ProtoContactModified) Kind() Kind { return KindProtoContactModified }
