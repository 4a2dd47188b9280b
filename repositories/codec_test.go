package repositories

import (
	"contact-lab/errors"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestContactRow_Codec(t *testing.T) {
	req := require.New(t)
	row := ContactRow{
		MetaContactID: "m1",
		AccountID:     "alice@x.org",
		Address:       "bob@x.org",
		DisplayName:   "Bob",
		UserDefined:   true,
		Details:       map[string][]string{"phone": {"111", "222"}, "email": {"bob@home.org"}},
	}

	// When
	b, err := marshalContact(row)
	req.NoError(err)
	got, err := unmarshalContact(b)

	// Then
	req.NoError(err)
	req.Equal(row, got)
}

func TestContactRow_Codec_Without_Details(t *testing.T) {
	req := require.New(t)

	// Given a row stored without any detail
	b, err := marshalContact(ContactRow{MetaContactID: "m1", AccountID: "alice@x.org", Address: "bob@x.org"})
	req.NoError(err)

	// When
	got, err := unmarshalContact(b)

	// Then no empty map is made up
	req.NoError(err)
	req.Nil(got.Details)
}

func TestGroupRow_Codec_Keeps_Known_Fields_Of_Newer_Rows(t *testing.T) {
	req := require.New(t)
	row := GroupRow{AccountID: "alice@x.org", GroupID: "g1", GroupName: "Friends", ProtoGroupUID: "uid-1"}
	b, err := marshalGroup(row)
	req.NoError(err)

	// Given a row written by a version with one more field
	b = protowire.AppendTag(b, 42, protowire.BytesType)
	b = protowire.AppendString(b, "from the future")

	// When
	got, err := unmarshalGroup(b)

	// Then
	req.NoError(err)
	req.Equal(row, got)
}

func TestRow_Codec_Rejects_Garbage(t *testing.T) {
	req := require.New(t)

	// When
	_, groupErr := unmarshalGroup([]byte{0xff, 0xff, 0xff})
	_, contactErr := unmarshalContact([]byte{0x0a, 0x05, 'a'})

	// Then
	req.ErrorIs(groupErr, errors.ErrCorruptRow)
	req.ErrorIs(contactErr, errors.ErrCorruptRow)
}
