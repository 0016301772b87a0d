package handler

import (
	"context"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-ops/internal/model"
	"github.com/iliyamo/venue-ops/internal/queue"
	"github.com/iliyamo/venue-ops/internal/validation"
)

const purchaseOrder = "purchase order"

// eventTimeout bounds the best-effort publish after a receipt.
const eventTimeout = 3 * time.Second

func (h *ResourceHandler) ListPurchaseOrders() echo.HandlerFunc {
	return listHandler(purchaseOrder, func(ctx context.Context, _ url.Values) ([]model.PurchaseOrder, error) {
		return h.PurchaseOrders.List(ctx)
	})
}

// CreatePurchaseOrder stores the order and its items together.
func (h *ResourceHandler) CreatePurchaseOrder() echo.HandlerFunc {
	return createHandler(purchaseOrder, func(ctx context.Context, c echo.Context, in *validation.PurchaseOrderCreate) (*model.PurchaseOrder, error) {
		po := in.Model()
		if err := h.PurchaseOrders.Create(ctx, &po); err != nil {
			return nil, err
		}
		if po.Status == model.StatusReceived {
			h.announceReceived(c, &po)
		}
		return &po, nil
	})
}

func (h *ResourceHandler) GetPurchaseOrder() echo.HandlerFunc {
	return getHandler(purchaseOrder, h.PurchaseOrders.GetByID)
}

// UpdatePurchaseOrder applies a sparse patch.  A status field here has the
// same side effect as the dedicated status route.
func (h *ResourceHandler) UpdatePurchaseOrder() echo.HandlerFunc {
	return updateHandler(purchaseOrder, func(ctx context.Context, c echo.Context, id string, in *validation.PurchaseOrderPatch) (*model.PurchaseOrder, error) {
		p := in.Patch()
		po, err := h.PurchaseOrders.Update(ctx, id, p)
		if err != nil {
			return nil, err
		}
		if p.Status != nil && *p.Status == model.StatusReceived {
			h.announceReceived(c, po)
		}
		return po, nil
	})
}

// UpdatePurchaseOrderStatus handles PATCH /api/purchase-orders/:id/status.
// Any status may follow any other; RECEIVED also stamps the delivery date.
func (h *ResourceHandler) UpdatePurchaseOrderStatus() echo.HandlerFunc {
	return updateHandler(purchaseOrder, func(ctx context.Context, c echo.Context, id string, in *validation.PurchaseOrderStatusUpdate) (*model.PurchaseOrder, error) {
		status := validation.ParseStatus(in.Status)
		po, err := h.PurchaseOrders.UpdateStatus(ctx, id, status)
		if err != nil {
			return nil, err
		}
		if status == model.StatusReceived {
			h.announceReceived(c, po)
		}
		return po, nil
	})
}

func (h *ResourceHandler) DeletePurchaseOrder() echo.HandlerFunc {
	return deleteHandler(purchaseOrder, h.PurchaseOrders.Delete)
}

// announceReceived publishes the receipt event.  The write has already
// succeeded, so a broker failure is logged and otherwise ignored.
func (h *ResourceHandler) announceReceived(c echo.Context, po *model.PurchaseOrder) {
	ev := queue.PurchaseOrderReceivedEvent{
		PurchaseOrderID: po.ID,
		SupplierName:    po.SupplierName,
		TotalAmount:     po.TotalAmount.StringFixed(2),
		ItemCount:       len(po.Items),
		ReceivedBy:      receivedBy(c),
		ReceivedAt:      time.Now().UTC(),
	}
	if po.ActualDeliveryDate != nil {
		ev.ReceivedAt = *po.ActualDeliveryDate
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), eventTimeout)
	defer cancel()
	if err := h.Events.PublishPurchaseOrderReceived(ctx, ev); err != nil {
		h.Log.Warn("publish purchase_order.received failed", zap.String("purchase_order_id", po.ID), zap.Error(err))
	}
}
