package workers

import (
	"contact-lab/domain"
	"contact-lab/domain/event"
	"contact-lab/mocks"
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestEventFanout_Fanout_In_Registration_Order(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	first := mocks.NewMockEventSink(ctrl)
	second := mocks.NewMockEventSink(ctrl)
	fanout := NewEventFanout(log)

	// Given two sinks registered in order
	req.True(fanout.Add(first))
	req.True(fanout.Add(second))
	evt := event.ContactAdded{Contact: domain.NewMetaContact()}

	// Then the first sink consumes before the second
	gomock.InOrder(
		first.EXPECT().Consume(gomock.Any(), evt).Return(nil),
		second.EXPECT().Consume(gomock.Any(), evt).Return(nil),
	)

	// When an event is fanned out
	fanout.Fanout(context.Background(), evt)
}

func TestEventFanout_Add_Twice(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	sink := mocks.NewMockEventSink(ctrl)
	fanout := NewEventFanout(slog.Default())

	// Given a sink is registered
	req.True(fanout.Add(sink))

	// When it is registered again
	added := fanout.Add(sink)

	// Then it is kept once
	req.False(added)
	req.Len(fanout.Sinks(), 1)
}

func TestEventFanout_Failing_Sink_Is_Isolated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	failing := mocks.NewMockEventSink(ctrl)
	panicking := mocks.NewMockEventSink(ctrl)
	healthy := mocks.NewMockEventSink(ctrl)
	fanout := NewEventFanout(slog.Default())
	fanout.Add(failing)
	fanout.Add(panicking)
	fanout.Add(healthy)

	// Given a sink returning an error and a sink panicking
	failing.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(fmt.Errorf("disk full"))
	panicking.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, e event.ListEvent) error {
			panic("boom")
		})

	// Then the last sink still consumes the event
	healthy.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	// When an event is fanned out
	fanout.Fanout(context.Background(), event.GroupAdded{Group: domain.NewMetaContactGroup("Friends")})
}

func TestEventFanout_Remove(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	removed := mocks.NewMockEventSink(ctrl)
	kept := mocks.NewMockEventSink(ctrl)
	fanout := NewEventFanout(slog.Default())
	fanout.Add(removed)
	fanout.Add(kept)

	// When a sink is removed
	req.True(fanout.Remove(removed))
	req.False(fanout.Remove(removed))

	// Then it no longer receives events
	kept.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	fanout.Fanout(context.Background(), event.GroupAdded{})
}
