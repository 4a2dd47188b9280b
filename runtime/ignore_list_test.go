package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIgnoreList_Contact_Entries_Are_Scoped_By_Account(t *testing.T) {
	req := require.New(t)
	list := NewIgnoreList()

	// When an address is ignored on one account
	release := list.IgnoreContact("amy@x.org", "alice")

	// Then only that pair is ignored
	req.True(list.IsContactIgnored("amy@x.org", "alice"))
	req.False(list.IsContactIgnored("amy@x.org", "bob"))
	req.False(list.IsGroupNameIgnored("amy@x.org", "alice"))

	// When released
	release()

	// Then
	req.False(list.IsContactIgnored("amy@x.org", "alice"))
	req.Zero(list.Len())
}

func TestIgnoreList_Overlapping_Entries(t *testing.T) {
	req := require.New(t)
	list := NewIgnoreList()

	// Given two operations on the same group
	first := list.IgnoreGroupUID("g1", "alice")
	second := list.IgnoreGroupUID("g1", "alice")

	// When the first one finishes, twice
	first()
	first()

	// Then the group stays ignored until the second one is done
	req.True(list.IsGroupUIDIgnored("g1", "alice"))
	second()
	req.False(list.IsGroupUIDIgnored("g1", "alice"))
	req.Zero(list.Len())
}

func TestIgnoreList_Group_Names(t *testing.T) {
	req := require.New(t)
	list := NewIgnoreList()

	release := list.IgnoreGroupName("Friends", "alice")
	defer release()

	req.True(list.IsGroupNameIgnored("Friends", "alice"))
	req.False(list.IsGroupUIDIgnored("Friends", "alice"))
	req.Equal(1, list.Len())
}
