package queue

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFormatReceived(t *testing.T) {
	line := FormatReceived(PurchaseOrderReceivedEvent{
		PurchaseOrderID: "po-1",
		SupplierName:    "Acme Bar Supply",
		TotalAmount:     "120.50",
		ItemCount:       3,
		ReceivedAt:      time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
	})
	assert.Equal(t, "[2026-03-04T05:06:07Z] Purchase order received | purchase_order_id=po-1 | supplier=\"Acme Bar Supply\" | total=120.50 | items=3 | received_by=-\n", line)
}

func TestHandleAppendsToReceivingLog(t *testing.T) {
	dir := t.TempDir()
	c := &Consumer{LogDir: filepath.Join(dir, "logs"), Log: zap.NewNop()}

	for _, id := range []string{"po-1", "po-2"} {
		body, err := json.Marshal(PurchaseOrderReceivedEvent{PurchaseOrderID: id, TotalAmount: "1.00", ReceivedAt: time.Now()})
		require.NoError(t, err)
		require.NoError(t, c.Handle(body))
	}

	b, err := os.ReadFile(filepath.Join(dir, "logs", "receiving.log"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "purchase_order_id=po-1")
	assert.Contains(t, string(b), "purchase_order_id=po-2")
}

func TestHandleRejectsBadMessages(t *testing.T) {
	c := &Consumer{LogDir: t.TempDir(), Log: zap.NewNop()}
	assert.Error(t, c.Handle([]byte("not json")))
	assert.Error(t, c.Handle([]byte(`{"supplier_name":"x"}`)))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishPurchaseOrderReceived(context.Background(), PurchaseOrderReceivedEvent{}))
}
