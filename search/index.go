// Package search keeps a full-text index of the meta contacts, fed by list
// events, to look contacts up by display name, address or detail value.
package search

import (
	"contact-lab/domain"
	"contact-lab/domain/event"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/blugelabs/bluge"
	"github.com/samber/lo"
)

const (
	fieldName    = "name"
	fieldAddress = "address"
	fieldAccount = "account"
	fieldGroup   = "group"
	fieldDetail  = "detail"
	fieldID      = "_id"

	DefaultLimit = 20
)

// ContactIndex is a listener mirroring the tree into a bluge index. Documents
// are keyed by meta contact id.
type ContactIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewContactIndex(writer *bluge.Writer, log *slog.Logger) *ContactIndex {
	return &ContactIndex{writer: writer, log: log}
}

func (i *ContactIndex) Consume(_ context.Context, e event.ListEvent) error {
	switch evt := e.(type) {
	case event.GroupAdded:
		return i.indexTree(evt.Group)
	case event.GroupRemoved:
		return i.deleteTree(evt.Group)
	case event.GroupModified:
		if evt.Change != event.MetaGroupRenamed {
			return nil
		}
		return i.indexContacts(evt.Group.Children()...)
	case event.ContactAdded:
		return i.indexContacts(evt.Contact)
	case event.ContactRemoved:
		return i.writer.Delete(bluge.Identifier(evt.Contact.ID()))
	case event.ContactMoved:
		return i.indexContacts(evt.Contact)
	case event.ContactRenamed:
		return i.indexContacts(evt.Contact)
	case event.ContactModified:
		return i.indexContacts(evt.Contact)
	case event.ProtoContactAdded:
		return i.indexContacts(evt.Contact)
	case event.ProtoContactRemoved:
		return i.indexContacts(evt.Contact)
	case event.ProtoContactMoved:
		return i.indexContacts(evt.OldContact, evt.NewContact)
	default:
		return nil
	}
}

// indexContacts writes the current state of every meta contact in one batch.
// A meta contact that left the tree is removed from the index.
func (i *ContactIndex) indexContacts(contacts ...*domain.MetaContact) error {
	batch := bluge.NewBatch()
	for _, mc := range contacts {
		if mc == nil {
			continue
		}
		if mc.ParentGroup() == nil || mc.ContactCount() == 0 {
			batch.Delete(bluge.Identifier(mc.ID()))
			continue
		}
		doc := toDocument(mc)
		batch.Update(doc.ID(), doc)
	}
	return i.writer.Batch(batch)
}

func (i *ContactIndex) indexTree(root *domain.MetaContactGroup) error {
	var contacts []*domain.MetaContact
	root.Walk(func(g *domain.MetaContactGroup) bool {
		contacts = append(contacts, g.Children()...)
		return true
	})
	return i.indexContacts(contacts...)
}

func (i *ContactIndex) deleteTree(root *domain.MetaContactGroup) error {
	batch := bluge.NewBatch()
	root.Walk(func(g *domain.MetaContactGroup) bool {
		for _, mc := range g.Children() {
			batch.Delete(bluge.Identifier(mc.ID()))
		}
		return true
	})
	return i.writer.Batch(batch)
}

func toDocument(mc *domain.MetaContact) *bluge.Document {
	doc := bluge.NewDocument(mc.ID()).
		AddField(bluge.NewTextField(fieldName, mc.DisplayName()).StoreValue())
	if parent := mc.ParentGroup(); parent != nil {
		doc.AddField(bluge.NewKeywordField(fieldGroup, parent.ID()))
	}
	for _, c := range mc.Contacts() {
		doc.AddField(bluge.NewTextField(fieldAddress, c.Address()))
		doc.AddField(bluge.NewKeywordField(fieldAccount, c.AccountID()))
	}
	for _, values := range mc.Details() {
		for _, value := range values {
			doc.AddField(bluge.NewTextField(fieldDetail, value))
		}
	}
	return doc
}

// Search returns the ids of the meta contacts whose name, address or detail
// matches text, a word prefix included, best match first.
func (i *ContactIndex) Search(ctx context.Context, text string, limit int) ([]string, error) {
	request := searchRequest(text, limit)
	if request == nil {
		return nil, nil
	}
	return i.run(ctx, request)
}

// ForAccount returns the ids of the meta contacts holding a proto contact of
// the account.
func (i *ContactIndex) ForAccount(ctx context.Context, accountID string, limit int) ([]string, error) {
	query := bluge.NewTermQuery(accountID).SetField(fieldAccount)
	return i.run(ctx, bluge.NewTopNSearch(sizeOf(limit), query))
}

func searchRequest(text string, limit int) bluge.SearchRequest {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	prefix := strings.ToLower(text)
	query := bluge.NewBooleanQuery().
		AddShould(lo.FlatMap([]string{fieldName, fieldAddress, fieldDetail}, func(field string, _ int) []bluge.Query {
			return []bluge.Query{
				bluge.NewMatchQuery(text).SetField(field),
				bluge.NewPrefixQuery(prefix).SetField(field),
			}
		})...).
		SetMinShould(1)
	return bluge.NewTopNSearch(sizeOf(limit), query)
}

func sizeOf(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

func (i *ContactIndex) run(ctx context.Context, request bluge.SearchRequest) ([]string, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("unable to open index reader: %w", err)
	}
	defer func() { _ = reader.Close() }()

	ids, err := collect(ctx, reader, request)
	if err != nil {
		return nil, err
	}
	i.log.Debug(fmt.Sprintf("%d meta contacts found", len(ids)))
	return ids, nil
}

// SearchReader runs a Search against an index opened read-only.
func SearchReader(ctx context.Context, reader *bluge.Reader, text string, limit int) ([]string, error) {
	request := searchRequest(text, limit)
	if request == nil {
		return nil, nil
	}
	return collect(ctx, reader, request)
}

func collect(ctx context.Context, reader *bluge.Reader, request bluge.SearchRequest) ([]string, error) {
	matches, err := reader.Search(ctx, request)
	if err != nil {
		return nil, err
	}
	var ids []string
	match, err := matches.Next()
	for err == nil && match != nil {
		verr := match.VisitStoredFields(func(field string, value []byte) bool {
			if field == fieldID {
				ids = append(ids, string(value))
				return false
			}
			return true
		})
		if verr != nil {
			return nil, verr
		}
		match, err = matches.Next()
	}
	return ids, err
}
