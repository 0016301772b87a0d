package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Patch types carry a sparse set of changes.  A nil field is left untouched
// in storage.

type FloorPlanPatch struct {
    Name   *string
    Width  *float64
    Height *float64
}

type VenueObjectPatch struct {
    FloorPlanID     *string
    WorkstationID   *string
    Name            *string
    Type            *VenueObjectType
    AnchorX         *float64
    AnchorY         *float64
    Width           *float64
    Height          *float64
    Rotation        *float64
    ReservationCost *decimal.Decimal
}

type WorkstationPatch struct {
    Name *string
}

type StorageLocationPatch struct {
    Name        *string
    Description *string
}

type VinylSlotPatch struct {
    Row      *int
    Column   *int
    Capacity *int
}

type PurchaseOrderPatch struct {
    SupplierName         *string
    Status               *PurchaseOrderStatus
    TotalAmount          *decimal.Decimal
    ExpectedDeliveryDate *time.Time
    Notes                *string
}

type CompanyClientPatch struct {
    Name               *string
    SalesPipelineStage *string
}
