// Package queue carries domain events over RabbitMQ: a publisher used by
// the HTTP handlers and a background consumer that keeps a receiving log.
package queue

import "time"

// ReceivedQueueName is the durable queue purchase order receipts go to.
const ReceivedQueueName = "purchase_order.received"

// PurchaseOrderReceivedEvent is published after an order is moved to
// RECEIVED.  It carries enough for the receiving log without querying the
// primary database.
type PurchaseOrderReceivedEvent struct {
    PurchaseOrderID string    `json:"purchase_order_id"`
    SupplierName    string    `json:"supplier_name"`
    TotalAmount     string    `json:"total_amount"`
    ItemCount       int       `json:"item_count"`
    ReceivedBy      string    `json:"received_by,omitempty"`
    ReceivedAt      time.Time `json:"received_at"`
}
