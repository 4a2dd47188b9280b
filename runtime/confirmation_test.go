package runtime

import (
	"contact-lab/domain"
	"contact-lab/errors"
	"contact-lab/protocol"
	"contact-lab/protocol/memory"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPendingOp_Confirmed_By_Created_Subscription(t *testing.T) {
	req := require.New(t)
	p := memory.NewProvider(slog.Default(), "alice")
	amy := p.Seed(nil, "amy@x.org", "Amy", domain.Online)
	op := newPendingOp(slog.Default(), "subscribe", "amy@x.org", "alice", subscriptionConfirmation("amy@x.org"))

	// Given notifications for another contact and for the expected one
	op.OnSubscriptionEvent(protocol.SubscriptionEvent{Kind: protocol.SubscriptionCreated, Contact: p.Seed(nil, "zoe@x.org", "Zoe", domain.Online)})
	op.OnSubscriptionEvent(protocol.SubscriptionEvent{Kind: protocol.SubscriptionCreated, Contact: amy})

	// When
	got, err := op.await(context.Background(), time.Second)

	// Then
	req.NoError(err)
	req.Same(amy, got.contact)
	req.Equal(OpConfirmed, op.state)
}

func TestPendingOp_Confirmed_By_Group_Holding_The_Contact(t *testing.T) {
	req := require.New(t)
	p := memory.NewProvider(slog.Default(), "alice")
	p.Seed([]string{"Friends"}, "amy@x.org", "Amy", domain.Online)
	op := newPendingOp(slog.Default(), "subscribe", "amy@x.org", "alice", subscriptionConfirmation("amy@x.org"))

	// When the server answers with a new group holding the contact
	op.OnGroupEvent(protocol.GroupEvent{Kind: protocol.GroupCreated, Group: p.FindGroupByName("Friends")})
	got, err := op.await(context.Background(), time.Second)

	// Then
	req.NoError(err)
	req.Equal("amy@x.org", got.contact.Address())
}

func TestPendingOp_Failed_Subscription(t *testing.T) {
	req := require.New(t)
	p := memory.NewProvider(slog.Default(), "alice")
	amy := p.Seed(nil, "amy@x.org", "Amy", domain.Online)
	op := newPendingOp(slog.Default(), "subscribe", "amy@x.org", "alice", subscriptionConfirmation("amy@x.org"))

	// When
	op.OnSubscriptionEvent(protocol.SubscriptionEvent{Kind: protocol.SubscriptionFailed, Contact: amy, Reason: "rejected"})
	_, err := op.await(context.Background(), time.Second)

	// Then
	req.ErrorIs(err, errors.ErrSubscriptionFailed)
	req.ErrorContains(err, "rejected")
	req.Equal(OpFailed, op.state)
}

func TestPendingOp_Times_Out(t *testing.T) {
	req := require.New(t)
	op := newPendingOp(slog.Default(), "create group", "Friends", "alice", groupConfirmation(nil, "Friends"))

	// When nothing is delivered
	_, err := op.await(context.Background(), 20*time.Millisecond)

	// Then
	req.ErrorIs(err, errors.ErrConfirmationTimeout)
	req.ErrorIs(err, context.DeadlineExceeded)
	req.Equal(OpTimedOut, op.state)
}

func TestGroupConfirmation_Matches_Name_And_Parent(t *testing.T) {
	req := require.New(t)
	p := memory.NewProvider(slog.Default(), "alice")
	work := p.SeedGroup([]string{"Work"})
	nested := p.SeedGroup([]string{"Work", "Friends"})
	top := p.SeedGroup([]string{"Friends"})
	match := groupConfirmation(p.RootGroup(), "Friends")

	// Then only the group below the expected parent matches
	_, ok := match(confirmationSource{group: &protocol.GroupEvent{Kind: protocol.GroupCreated, Group: nested}})
	req.False(ok)
	_, ok = match(confirmationSource{group: &protocol.GroupEvent{Kind: protocol.GroupCreated, Group: work}})
	req.False(ok)
	_, ok = match(confirmationSource{group: &protocol.GroupEvent{Kind: protocol.GroupRenamed, Group: top}})
	req.False(ok)
	got, ok := match(confirmationSource{group: &protocol.GroupEvent{Kind: protocol.GroupCreated, Group: top}})
	req.True(ok)
	req.Same(top, got.group)
}

func TestOpState_String(t *testing.T) {
	req := require.New(t)
	req.Equal("WaitingConfirmation", OpWaitingConfirmation.String())
	req.Equal("OpState(42)", OpState(42).String())
}
