package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type captureSink struct {
	mu     sync.Mutex
	events []Event
	block  chan struct{}
}

func (s *captureSink) Send(ctx context.Context, e Event) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestDispatcherDelivers(t *testing.T) {
	sink := &captureSink{}
	d := NewDispatcher(sink, zap.NewNop())

	d.Dispatch(Event{Kind: KindBooked, AppointmentID: uuid.New()})
	d.Dispatch(Event{Kind: KindCancelled, AppointmentID: uuid.New()})
	d.Shutdown()

	require.Equal(t, 2, sink.count())
	assert.Equal(t, KindBooked, sink.events[0].Kind)
	assert.False(t, sink.events[0].OccurredAt.IsZero(), "timestamp is stamped on dispatch")
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	block := make(chan struct{})
	sink := &captureSink{block: block}
	d := NewDispatcher(sink, zap.NewNop(), WithBufferSize(1))

	// The worker picks up one event and parks in the sink; the buffer holds
	// one more; everything beyond that is dropped without blocking.
	for i := 0; i < 10; i++ {
		d.Dispatch(Event{Kind: KindBooked, AppointmentID: uuid.New()})
	}

	close(block)
	d.Shutdown()

	assert.LessOrEqual(t, sink.count(), 2)
}

func TestDispatcherShutdownDrains(t *testing.T) {
	sink := &captureSink{}
	d := NewDispatcher(sink, zap.NewNop(), WithBufferSize(100))

	for i := 0; i < 50; i++ {
		d.Dispatch(Event{Kind: KindBooked, AppointmentID: uuid.New()})
	}
	d.Shutdown()

	assert.Equal(t, 50, sink.count(), "queued events are delivered before shutdown returns")
}

func TestDispatcherSurvivesSinkErrors(t *testing.T) {
	calls := 0
	sink := SinkFunc(func(context.Context, Event) error {
		calls++
		return assert.AnError
	})
	d := NewDispatcher(sink, zap.NewNop())

	d.Dispatch(Event{Kind: KindBooked, AppointmentID: uuid.New()})
	d.Dispatch(Event{Kind: KindBooked, AppointmentID: uuid.New()})
	d.Shutdown()

	assert.Equal(t, 2, calls, "a failing sink does not stop the worker")
}

func TestDispatchNeverBlocksCaller(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	sink := &captureSink{block: block}
	d := NewDispatcher(sink, zap.NewNop(), WithBufferSize(1))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			d.Dispatch(Event{Kind: KindBooked, AppointmentID: uuid.New()})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on a full buffer")
	}
}
