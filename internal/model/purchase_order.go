package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// PurchaseOrderStatus is the closed set of order states.  Any status may
// follow any other; only RECEIVED carries a side effect.
type PurchaseOrderStatus string

const (
    StatusPending   PurchaseOrderStatus = "PENDING"
    StatusOrdered   PurchaseOrderStatus = "ORDERED"
    StatusShipped   PurchaseOrderStatus = "SHIPPED"
    StatusReceived  PurchaseOrderStatus = "RECEIVED"
    StatusCancelled PurchaseOrderStatus = "CANCELLED"
)

// StampsDelivery reports whether writing s must also set the actual
// delivery date.  Unknown values return false.
func (s PurchaseOrderStatus) StampsDelivery() bool {
    switch s {
    case StatusReceived:
        return true
    case StatusPending, StatusOrdered, StatusShipped, StatusCancelled:
        return false
    default:
        return false
    }
}

// PurchaseOrder is an order placed with a supplier.
type PurchaseOrder struct {
    ID                   string              `json:"id"`
    SupplierName         string              `json:"supplierName"`
    Status               PurchaseOrderStatus `json:"status"`
    TotalAmount          decimal.Decimal     `json:"totalAmount"`
    ExpectedDeliveryDate *time.Time          `json:"expectedDeliveryDate"`
    ActualDeliveryDate   *time.Time          `json:"actualDeliveryDate"`
    Notes                *string             `json:"notes"`
    CreatedAt            time.Time           `json:"createdAt"`
    UpdatedAt            time.Time           `json:"updatedAt"`
    Items                []PurchaseOrderItem `json:"items,omitempty"`
}

// PurchaseOrderItem is one line of a purchase order.
type PurchaseOrderItem struct {
    ID              string          `json:"id"`
    PurchaseOrderID string          `json:"purchaseOrderId"`
    Description     string          `json:"description"`
    Quantity        int             `json:"quantity"`
    UnitCost        decimal.Decimal `json:"unitCost"`
}
