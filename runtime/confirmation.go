package runtime

import (
	"contact-lab/domain"
	"contact-lab/errors"
	"contact-lab/protocol"
	"context"
	"fmt"
	"log/slog"
	"time"
)

// OpState is the life cycle of a remote operation waiting for its
// acknowledgement.
type OpState int

const (
	OpIssued OpState = iota
	OpWaitingConfirmation
	OpConfirmed
	OpTimedOut
	OpFailed
)

func (s OpState) String() string {
	switch s {
	case OpIssued:
		return "Issued"
	case OpWaitingConfirmation:
		return "WaitingConfirmation"
	case OpConfirmed:
		return "Confirmed"
	case OpTimedOut:
		return "TimedOut"
	case OpFailed:
		return "Failed"
	default:
		return fmt.Sprintf("OpState(%d)", int(s))
	}
}

type confirmation struct {
	contact domain.ProtoContact
	group   domain.ProtoGroup
	failed  bool
	reason  string
}

// pendingOp is a one-shot listener bridging an asynchronous acknowledgement
// to the calling goroutine.
type pendingOp struct {
	log       *slog.Logger
	name      string
	subject   string
	accountID string
	state     OpState
	result    chan confirmation
	match     func(confirmationSource) (confirmation, bool)
}

// confirmationSource is whichever notification reached the listener.
type confirmationSource struct {
	subscription *protocol.SubscriptionEvent
	group        *protocol.GroupEvent
}

func newPendingOp(log *slog.Logger, name, subject, accountID string,
	match func(confirmationSource) (confirmation, bool)) *pendingOp {
	return &pendingOp{
		log:       log,
		name:      name,
		subject:   subject,
		accountID: accountID,
		state:     OpIssued,
		result:    make(chan confirmation, 1),
		match:     match,
	}
}

// subscriptionConfirmation waits for the creation of address, either as a
// created subscription, a failed one, or a created group holding it.
func subscriptionConfirmation(address string) func(confirmationSource) (confirmation, bool) {
	return func(src confirmationSource) (confirmation, bool) {
		if evt := src.subscription; evt != nil && evt.Contact != nil && evt.Contact.Address() == address {
			switch evt.Kind {
			case protocol.SubscriptionCreated:
				return confirmation{contact: evt.Contact}, true
			case protocol.SubscriptionFailed:
				return confirmation{contact: evt.Contact, failed: true, reason: evt.Reason}, true
			}
		}
		if evt := src.group; evt != nil && evt.Kind == protocol.GroupCreated {
			for _, c := range evt.Group.Contacts() {
				if c.Address() == address {
					return confirmation{contact: c}, true
				}
			}
		}
		return confirmation{}, false
	}
}

// groupConfirmation waits for the creation of a group named name below parent.
func groupConfirmation(parent domain.ProtoGroup, name string) func(confirmationSource) (confirmation, bool) {
	return func(src confirmationSource) (confirmation, bool) {
		evt := src.group
		if evt == nil || evt.Kind != protocol.GroupCreated || evt.Group.Name() != name {
			return confirmation{}, false
		}
		if parent != nil && evt.Group.Parent() != nil && !domain.SameGroup(evt.Group.Parent(), parent) {
			return confirmation{}, false
		}
		return confirmation{group: evt.Group}, true
	}
}

func (op *pendingOp) OnSubscriptionEvent(evt protocol.SubscriptionEvent) {
	op.offer(confirmationSource{subscription: &evt})
}

func (op *pendingOp) OnGroupEvent(evt protocol.GroupEvent) {
	op.offer(confirmationSource{group: &evt})
}

func (op *pendingOp) offer(src confirmationSource) {
	c, ok := op.match(src)
	if !ok {
		return
	}
	select {
	case op.result <- c:
	default:
	}
}

func (op *pendingOp) transition(state OpState) {
	op.log.Debug("Remote operation state changed",
		"op", op.name, "subject", op.subject, "account", op.accountID,
		"from", op.state.String(), "to", state.String())
	op.state = state
}

// await blocks until the acknowledgement arrives, the timeout elapses or ctx
// is done. A missing acknowledgement is reported as ErrConfirmationTimeout.
func (op *pendingOp) await(ctx context.Context, timeout time.Duration) (confirmation, error) {
	op.transition(OpWaitingConfirmation)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	select {
	case c := <-op.result:
		if c.failed {
			op.transition(OpFailed)
			return c, fmt.Errorf("%w: %s", errors.ErrSubscriptionFailed, c.reason)
		}
		op.transition(OpConfirmed)
		return c, nil
	case <-ctx.Done():
		op.transition(OpTimedOut)
		return confirmation{}, fmt.Errorf("%w after %s: %w", errors.ErrConfirmationTimeout, timeout, ctx.Err())
	}
}
