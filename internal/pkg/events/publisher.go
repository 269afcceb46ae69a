package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	queueSize      = 256
	publishTimeout = 5 * time.Second
)

var (
	ErrQueueFull       = errors.New("event queue full")
	ErrPublisherClosed = errors.New("event publisher closed")
)

// Publisher sends booking events to RabbitMQ from a background worker.
// Publish only enqueues. The connection is opened lazily and reopened after
// the broker drops it.
type Publisher struct {
	url         string
	queue       string
	dialTimeout time.Duration

	events    chan BookingEvent
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher creates publisher for the booking events queue and starts its worker
func NewPublisher(url string) *Publisher {
	return newPublisher(url, DialTimeout)
}

func newPublisher(url string, dialTimeout time.Duration) *Publisher {
	p := &Publisher{
		url:         url,
		queue:       QueueName,
		dialTimeout: dialTimeout,
		events:      make(chan BookingEvent, queueSize),
		done:        make(chan struct{}),
	}

	p.wg.Add(1)
	go p.worker()

	return p
}

// Publish queues the event for delivery. It never waits on the broker.
func (p *Publisher) Publish(ctx context.Context, event BookingEvent) error {
	select {
	case <-p.done:
		return ErrPublisherClosed
	default:
	}

	select {
	case p.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (p *Publisher) worker() {
	defer p.wg.Done()

	for {
		select {
		case event := <-p.events:
			p.deliver(event)
		case <-p.done:
			for {
				select {
				case event := <-p.events:
					p.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) deliver(event BookingEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.send(ctx, event); err != nil {
		log.Error().Err(err).
			Str("type", event.Type).
			Str("reservation_id", event.ReservationID).
			Msg("Failed to publish booking event")
		return
	}
	log.Debug().Str("type", event.Type).Str("reservation_id", event.ReservationID).Msg("Booking event published")
}

func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := dial(p.url, p.dialTimeout)
		if err != nil {
			return nil, fmt.Errorf("dial broker: %w", err)
		}
		p.conn = conn
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	p.ch = ch
	return ch, nil
}

// send publishes the event as a persistent JSON message
func (p *Publisher) send(ctx context.Context, event BookingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ch, err := p.channel()
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         event.Type,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Close stops the worker after draining queued events and releases the broker connection
func (p *Publisher) Close() error {
	p.closeOnce.Do(func() { close(p.done) })
	p.wg.Wait()

	if p.ch != nil {
		p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}

// NoopPublisher drops events; used when no broker is configured
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, BookingEvent) error { return nil }
