package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/cinema-group-booking/internal/model"
)

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type dialFunc func(url string, timeout time.Duration) (channel, io.Closer, error)

// DefaultDialTimeout bounds connecting and the AMQP handshake.
const DefaultDialTimeout = 5 * time.Second

func dialAMQP(url string, timeout time.Duration) (channel, io.Closer, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return ch, conn, nil
}

// Publisher sends BookingConfirmedEvents to a durable queue on the
// default exchange.  The connection is opened on first use and reopened
// after any failure.  Dialling happens in the background, so a publish
// never waits on the broker longer than its context allows.
type Publisher struct {
	url         string
	queue       string
	dial        dialFunc
	dialTimeout time.Duration

	mu       sync.Mutex
	ch       channel
	conn     io.Closer
	dialing  chan struct{} // closed when the in-flight dial finishes
	dialErr  error
	isClosed bool
}

// NewPublisher constructs a Publisher for queue at url.  Nothing is
// dialled until the first publish.
func NewPublisher(url, queue string) *Publisher {
	return &Publisher{url: url, queue: queue, dial: dialAMQP, dialTimeout: DefaultDialTimeout}
}

// PublishBookingConfirmed publishes the event for booking b.  Messages
// are persistent and carry the event id as MessageId.
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, b model.Booking, show model.Show) error {
	ev := NewBookingConfirmed(b, show)
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.awaitChannel(ctx); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return errors.New("rabbitmq: publisher closed")
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    time.Now().UTC(),
		Type:         "booking.confirmed",
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.resetLocked()
		return fmt.Errorf("rabbitmq: publish: %w", err)
	}
	return nil
}

// awaitChannel returns once a channel is open, the dial fails or ctx is
// done.  Concurrent callers share one dial.
func (p *Publisher) awaitChannel(ctx context.Context) error {
	p.mu.Lock()
	if p.isClosed {
		p.mu.Unlock()
		return errors.New("rabbitmq: publisher closed")
	}
	if p.ch != nil {
		p.mu.Unlock()
		return nil
	}
	if p.dialing == nil {
		p.dialing = make(chan struct{})
		go p.connect(p.dialing)
	}
	done := p.dialing
	p.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("rabbitmq: dial: %w", ctx.Err())
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil && p.dialErr != nil {
		return p.dialErr
	}
	return nil
}

func (p *Publisher) connect(done chan struct{}) {
	defer close(done)
	ch, conn, err := p.dial(p.url, p.dialTimeout)
	if err != nil {
		err = fmt.Errorf("rabbitmq: dial: %w", err)
	} else if _, derr := ch.QueueDeclare(p.queue, true, false, false, false, nil); derr != nil {
		_ = ch.Close()
		_ = conn.Close()
		ch, conn, err = nil, nil, fmt.Errorf("rabbitmq: queue declare: %w", derr)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.dialing = nil
	p.dialErr = err
	if err != nil {
		return
	}
	if p.isClosed {
		_ = ch.Close()
		_ = conn.Close()
		return
	}
	p.ch, p.conn = ch, conn
}

func (p *Publisher) resetLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.isClosed = true
	p.resetLocked()
	log.Printf("rabbitmq: publisher closed")
	return nil
}
