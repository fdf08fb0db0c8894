package notify

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const DefaultBufferSize = 4096

// Sink delivers a single event to wherever notifications go.
type Sink interface {
	Send(ctx context.Context, e Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, e Event) error

func (f SinkFunc) Send(ctx context.Context, e Event) error { return f(ctx, e) }

// LogSink is the delivery of last resort: it just records the event.
func LogSink(log *zap.Logger) Sink {
	return SinkFunc(func(_ context.Context, e Event) error {
		log.Info("notification",
			zap.String("kind", string(e.Kind)),
			zap.String("appointment_id", e.AppointmentID.String()),
			zap.String("recipient_role", e.RecipientRole),
		)
		return nil
	})
}

// Dispatcher decouples notification delivery from the booking path: events
// are enqueued on a buffered channel and delivered by a background worker.
// A full buffer drops the event with a warning; the scheduling core never
// blocks on notification trouble.
type Dispatcher struct {
	sink    Sink
	log     *zap.Logger
	dropped prometheus.Counter

	events chan Event
	done   chan struct{}
}

type Option func(*Dispatcher)

// WithBufferSize overrides the event buffer capacity.
func WithBufferSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.events = make(chan Event, n)
		}
	}
}

// WithDropCounter wires the dropped-event metric.
func WithDropCounter(c prometheus.Counter) Option {
	return func(d *Dispatcher) { d.dropped = c }
}

func NewDispatcher(sink Sink, log *zap.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sink:   sink,
		log:    log,
		events: make(chan Event, DefaultBufferSize),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	go d.worker()
	return d
}

// Dispatch enqueues an event without blocking.
func (d *Dispatcher) Dispatch(e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	select {
	case d.events <- e:
	default:
		if d.dropped != nil {
			d.dropped.Inc()
		}
		d.log.Warn("notification buffer full, dropping event",
			zap.String("kind", string(e.Kind)),
			zap.String("appointment_id", e.AppointmentID.String()),
		)
	}
}

// Shutdown drains the buffer, waiting up to 10 seconds for the worker.
func (d *Dispatcher) Shutdown() {
	close(d.events)
	select {
	case <-d.done:
	case <-time.After(10 * time.Second):
		d.log.Warn("notification dispatcher shutdown timed out; some events may be lost")
	}
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for e := range d.events {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.sink.Send(ctx, e); err != nil {
			// Logged, never retried synchronously.
			d.log.Error("failed to deliver notification",
				zap.String("kind", string(e.Kind)),
				zap.String("appointment_id", e.AppointmentID.String()),
				zap.Error(err),
			)
		}
		cancel()
	}
}
