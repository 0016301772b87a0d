package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// Consumer appends every received purchase order to <LogDir>/receiving.log.
type Consumer struct {
    URL    string
    LogDir string
    Log    *zap.Logger
}

// Run connects to RabbitMQ and consumes until ctx is cancelled, redialling
// with exponential backoff whenever the connection drops.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            c.Log.Warn("receiving consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.Log.Warn("receiving consumer: loop ended, reconnecting", zap.Error(err))
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.Log.Warn("receiving consumer: set QoS failed", zap.Error(err))
    }
    if _, err := ch.QueueDeclare(ReceivedQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(ReceivedQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.Handle(d.Body); err != nil {
                c.Log.Error("receiving consumer: handle message failed", zap.Error(err))
                _ = d.Nack(false, false) // no requeue, avoids a poison-message loop
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// Handle decodes one message and appends it to the receiving log.
func (c *Consumer) Handle(body []byte) error {
    var ev PurchaseOrderReceivedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.PurchaseOrderID == "" {
        return errors.New("event has no purchase_order_id")
    }
    if err := os.MkdirAll(c.LogDir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join(c.LogDir, "receiving.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatReceived(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatReceived renders ev as one receiving log line.
func FormatReceived(ev PurchaseOrderReceivedEvent) string {
    by := ev.ReceivedBy
    if by == "" {
        by = "-"
    }
    return fmt.Sprintf("[%s] Purchase order received | purchase_order_id=%s | supplier=%q | total=%s | items=%d | received_by=%s\n",
        ev.ReceivedAt.UTC().Format(time.RFC3339), ev.PurchaseOrderID, ev.SupplierName, ev.TotalAmount, ev.ItemCount, by)
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
