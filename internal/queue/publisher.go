package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher emits domain events.  Callers treat failures as non-fatal.
type Publisher interface {
    PublishPurchaseOrderReceived(ctx context.Context, ev PurchaseOrderReceivedEvent) error
}

// NopPublisher drops every event.  It is used when EVENTS_ENABLED is off.
type NopPublisher struct{}

func (NopPublisher) PublishPurchaseOrderReceived(context.Context, PurchaseOrderReceivedEvent) error {
    return nil
}

// AMQPPublisher dials the broker per event.  Receipts are rare, so a
// long-lived connection with its own reconnect logic is not worth keeping.
type AMQPPublisher struct {
    URL string
}

func NewAMQPPublisher(url string) *AMQPPublisher { return &AMQPPublisher{URL: url} }

// PublishPurchaseOrderReceived sends ev as a persistent JSON message to the
// purchase_order.received queue via the default exchange.
func (p *AMQPPublisher) PublishPurchaseOrderReceived(ctx context.Context, ev PurchaseOrderReceivedEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    timeout := dialTimeout(ctx)
    if timeout <= 0 {
        err := ctx.Err()
        if err == nil {
            err = context.DeadlineExceeded
        }
        return fmt.Errorf("rabbitmq dial: %w", err)
    }
    conn, err := amqp.DialConfig(p.URL, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      amqp.DefaultDial(timeout),
    })
    if err != nil {
        return fmt.Errorf("rabbitmq dial: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("rabbitmq channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    // Idempotent; durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(ReceivedQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", ReceivedQueueName, false, false, pub); err != nil {
        return fmt.Errorf("publish: %w", err)
    }
    return nil
}

// defaultDialTimeout applies when ctx carries no deadline.
const defaultDialTimeout = 30 * time.Second

// dialTimeout is the time left before ctx expires.  amqp.Dial does not
// take a context, so the deadline is passed down as the TCP and handshake
// timeout instead.
func dialTimeout(ctx context.Context) time.Duration {
    if err := ctx.Err(); err != nil {
        return 0
    }
    if dl, ok := ctx.Deadline(); ok {
        return time.Until(dl)
    }
    return defaultDialTimeout
}
