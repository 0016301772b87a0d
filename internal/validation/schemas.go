package validation

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/venue-ops/internal/apperror"
	"github.com/iliyamo/venue-ops/internal/model"
)

// ---- Floor plans ----

type FloorPlanCreate struct {
	Name   string   `json:"name" validate:"required,notblank,max=255"`
	Width  *float64 `json:"width" validate:"omitempty,gt=0"`
	Height *float64 `json:"height" validate:"omitempty,gt=0"`
}

// Model applies the default dimensions.
func (in *FloorPlanCreate) Model() model.FloorPlan {
	fp := model.FloorPlan{
		Name:   strings.TrimSpace(in.Name),
		Width:  model.DefaultFloorPlanWidth,
		Height: model.DefaultFloorPlanHeight,
	}
	if in.Width != nil {
		fp.Width = *in.Width
	}
	if in.Height != nil {
		fp.Height = *in.Height
	}
	return fp
}

type FloorPlanPatch struct {
	Name   *string  `json:"name" validate:"omitempty,notblank,max=255"`
	Width  *float64 `json:"width" validate:"omitempty,gt=0"`
	Height *float64 `json:"height" validate:"omitempty,gt=0"`
}

func (in *FloorPlanPatch) Patch() model.FloorPlanPatch {
	return model.FloorPlanPatch{Name: trimmed(in.Name), Width: in.Width, Height: in.Height}
}

// ---- Venue objects ----

type VenueObjectCreate struct {
	FloorPlanID     string           `json:"floorPlanId" validate:"required,uuid4"`
	WorkstationID   *string          `json:"workstationId" validate:"omitempty,uuid4"`
	Name            string           `json:"name" validate:"required,notblank,max=255"`
	Type            string           `json:"type" validate:"required,venueobjecttype"`
	AnchorX         *float64         `json:"anchorX" validate:"required"`
	AnchorY         *float64         `json:"anchorY" validate:"required"`
	Width           *float64         `json:"width" validate:"omitempty,gt=0"`
	Height          *float64         `json:"height" validate:"omitempty,gt=0"`
	Rotation        *float64         `json:"rotation" validate:"omitempty,gte=-360,lte=360"`
	ReservationCost *decimal.Decimal `json:"reservationCost" validate:"-"`
}

func (in *VenueObjectCreate) Check() []apperror.FieldError {
	return amount(nil, "reservationCost", in.ReservationCost)
}

func (in *VenueObjectCreate) Model() model.VenueObject {
	vo := model.VenueObject{
		FloorPlanID:   in.FloorPlanID,
		WorkstationID: in.WorkstationID,
		Name:          strings.TrimSpace(in.Name),
		Type:          model.VenueObjectType(in.Type),
		AnchorX:       *in.AnchorX,
		AnchorY:       *in.AnchorY,
		Width:         1,
		Height:        1,
	}
	if in.Width != nil {
		vo.Width = *in.Width
	}
	if in.Height != nil {
		vo.Height = *in.Height
	}
	if in.Rotation != nil {
		vo.Rotation = *in.Rotation
	}
	if in.ReservationCost != nil {
		vo.ReservationCost = decimal.NewNullDecimal(*in.ReservationCost)
	}
	return vo
}

type VenueObjectPatch struct {
	FloorPlanID     *string          `json:"floorPlanId" validate:"omitempty,uuid4"`
	WorkstationID   *string          `json:"workstationId" validate:"omitempty,uuid4"`
	Name            *string          `json:"name" validate:"omitempty,notblank,max=255"`
	Type            *string          `json:"type" validate:"omitempty,venueobjecttype"`
	AnchorX         *float64         `json:"anchorX"`
	AnchorY         *float64         `json:"anchorY"`
	Width           *float64         `json:"width" validate:"omitempty,gt=0"`
	Height          *float64         `json:"height" validate:"omitempty,gt=0"`
	Rotation        *float64         `json:"rotation" validate:"omitempty,gte=-360,lte=360"`
	ReservationCost *decimal.Decimal `json:"reservationCost" validate:"-"`
}

func (in *VenueObjectPatch) Check() []apperror.FieldError {
	return amount(nil, "reservationCost", in.ReservationCost)
}

func (in *VenueObjectPatch) Patch() model.VenueObjectPatch {
	p := model.VenueObjectPatch{
		FloorPlanID:     in.FloorPlanID,
		WorkstationID:   in.WorkstationID,
		Name:            trimmed(in.Name),
		AnchorX:         in.AnchorX,
		AnchorY:         in.AnchorY,
		Width:           in.Width,
		Height:          in.Height,
		Rotation:        in.Rotation,
		ReservationCost: in.ReservationCost,
	}
	if in.Type != nil {
		t := model.VenueObjectType(*in.Type)
		p.Type = &t
	}
	return p
}

// ---- Workstations and storage locations ----

type WorkstationCreate struct {
	Name string `json:"name" validate:"required,notblank,max=255"`
}

type WorkstationPatch struct {
	Name *string `json:"name" validate:"omitempty,notblank,max=255"`
}

func (in *WorkstationPatch) Patch() model.WorkstationPatch {
	return model.WorkstationPatch{Name: trimmed(in.Name)}
}

type StorageLocationCreate struct {
	Name        string  `json:"name" validate:"required,notblank,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

func (in *StorageLocationCreate) Model() model.StorageLocation {
	return model.StorageLocation{Name: strings.TrimSpace(in.Name), Description: in.Description}
}

type StorageLocationPatch struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

func (in *StorageLocationPatch) Patch() model.StorageLocationPatch {
	return model.StorageLocationPatch{Name: trimmed(in.Name), Description: in.Description}
}

// ---- Vinyl library ----

type VinylSlotCreate struct {
	Row      *int `json:"row" validate:"required,min=1,max=2147483647"`
	Column   *int `json:"column" validate:"required,min=1,max=2147483647"`
	Capacity *int `json:"capacity" validate:"omitempty,min=1,max=2147483647"`
}

// Model applies the default capacity.
func (in *VinylSlotCreate) Model() model.VinylLibrarySlot {
	slot := model.VinylLibrarySlot{Row: *in.Row, Column: *in.Column, Capacity: model.DefaultSlotCapacity}
	if in.Capacity != nil {
		slot.Capacity = *in.Capacity
	}
	return slot
}

type VinylSlotPatch struct {
	Row      *int `json:"row" validate:"omitempty,min=1,max=2147483647"`
	Column   *int `json:"column" validate:"omitempty,min=1,max=2147483647"`
	Capacity *int `json:"capacity" validate:"omitempty,min=1,max=2147483647"`
}

func (in *VinylSlotPatch) Patch() model.VinylSlotPatch {
	return model.VinylSlotPatch{Row: in.Row, Column: in.Column, Capacity: in.Capacity}
}

type DJSetTrackCreate struct {
	SessionID     string `json:"sessionId" validate:"required,uuid4"`
	VinylRecordID string `json:"vinylRecordId" validate:"required,uuid4"`
}

// ---- Purchase orders ----

type PurchaseOrderItemInput struct {
	Description string           `json:"description" validate:"required,notblank,max=255"`
	Quantity    *int             `json:"quantity" validate:"required,min=1,max=2147483647"`
	UnitCost    *decimal.Decimal `json:"unitCost" validate:"-"`
}

type PurchaseOrderCreate struct {
	SupplierName         string                   `json:"supplierName" validate:"required,notblank,max=255"`
	Status               *string                  `json:"status" validate:"omitempty,postatus"`
	TotalAmount          *decimal.Decimal         `json:"totalAmount" validate:"-"`
	ExpectedDeliveryDate *time.Time               `json:"expectedDeliveryDate"`
	Notes                *string                  `json:"notes" validate:"omitempty,max=5000"`
	Items                []PurchaseOrderItemInput `json:"items" validate:"omitempty,dive"`
}

func (in *PurchaseOrderCreate) Check() []apperror.FieldError {
	out := amount(nil, "totalAmount", in.TotalAmount)
	itemsOK := true
	for i, it := range in.Items {
		field := "items[" + strconv.Itoa(i) + "].unitCost"
		if it.UnitCost == nil {
			out = append(out, apperror.FieldError{Field: field, Message: "is required"})
			itemsOK = false
			continue
		}
		n := len(out)
		if out = amount(out, field, it.UnitCost); len(out) > n || it.Quantity == nil {
			itemsOK = false
		}
	}
	if in.TotalAmount == nil && itemsOK {
		if total := in.itemsTotal(); total.GreaterThanOrEqual(maxAmount) {
			out = append(out, apperror.FieldError{Field: "totalAmount", Message: "items total must be less than " + maxAmount.String()})
		}
	}
	return out
}

// itemsTotal sums quantity * unitCost over items with both values present.
func (in *PurchaseOrderCreate) itemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range in.Items {
		if it.Quantity != nil && it.UnitCost != nil {
			total = total.Add(it.UnitCost.Mul(decimal.NewFromInt(int64(*it.Quantity))))
		}
	}
	return total
}

// Model builds the order and its items.  The total defaults to the sum of
// the line items when not supplied.
func (in *PurchaseOrderCreate) Model() model.PurchaseOrder {
	po := model.PurchaseOrder{
		SupplierName:         strings.TrimSpace(in.SupplierName),
		Status:               model.StatusPending,
		ExpectedDeliveryDate: in.ExpectedDeliveryDate,
		Notes:                in.Notes,
	}
	if in.Status != nil {
		po.Status = ParseStatus(*in.Status)
	}
	for _, it := range in.Items {
		po.Items = append(po.Items, model.PurchaseOrderItem{
			Description: strings.TrimSpace(it.Description),
			Quantity:    *it.Quantity,
			UnitCost:    *it.UnitCost,
		})
	}
	po.TotalAmount = in.itemsTotal()
	if in.TotalAmount != nil {
		po.TotalAmount = *in.TotalAmount
	}
	return po
}

type PurchaseOrderPatch struct {
	SupplierName         *string          `json:"supplierName" validate:"omitempty,notblank,max=255"`
	Status               *string          `json:"status" validate:"omitempty,postatus"`
	TotalAmount          *decimal.Decimal `json:"totalAmount" validate:"-"`
	ExpectedDeliveryDate *time.Time       `json:"expectedDeliveryDate"`
	Notes                *string          `json:"notes" validate:"omitempty,max=5000"`
}

func (in *PurchaseOrderPatch) Check() []apperror.FieldError {
	return amount(nil, "totalAmount", in.TotalAmount)
}

func (in *PurchaseOrderPatch) Patch() model.PurchaseOrderPatch {
	p := model.PurchaseOrderPatch{
		SupplierName:         trimmed(in.SupplierName),
		TotalAmount:          in.TotalAmount,
		ExpectedDeliveryDate: in.ExpectedDeliveryDate,
		Notes:                in.Notes,
	}
	if in.Status != nil {
		st := ParseStatus(*in.Status)
		p.Status = &st
	}
	return p
}

type PurchaseOrderStatusUpdate struct {
	Status string `json:"status" validate:"required,postatus"`
}

// ---- Company clients ----

type CompanyClientCreate struct {
	Name               string  `json:"name" validate:"required,notblank,max=255"`
	SalesPipelineStage *string `json:"salesPipelineStage" validate:"omitempty,notblank,max=64"`
}

func (in *CompanyClientCreate) Model() model.CompanyClient {
	cc := model.CompanyClient{Name: strings.TrimSpace(in.Name), SalesPipelineStage: model.DefaultSalesStage}
	if in.SalesPipelineStage != nil {
		cc.SalesPipelineStage = strings.TrimSpace(*in.SalesPipelineStage)
	}
	return cc
}

type CompanyClientPatch struct {
	Name               *string `json:"name" validate:"omitempty,notblank,max=255"`
	SalesPipelineStage *string `json:"salesPipelineStage" validate:"omitempty,notblank,max=64"`
}

func (in *CompanyClientPatch) Patch() model.CompanyClientPatch {
	return model.CompanyClientPatch{Name: trimmed(in.Name), SalesPipelineStage: trimmed(in.SalesPipelineStage)}
}

type SalesStageUpdate struct {
	SalesPipelineStage string `json:"salesPipelineStage" validate:"required,notblank,max=64"`
}

// ---- Auth ----

type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// maxAmount is the first value a DECIMAL(12,2) column cannot hold.
var maxAmount = decimal.New(1, 10)

// amount checks a currency value: not negative, at most two decimal
// places and below maxAmount, so that it is stored exactly.
func amount(out []apperror.FieldError, field string, d *decimal.Decimal) []apperror.FieldError {
	switch {
	case d == nil:
	case d.IsNegative():
		out = append(out, apperror.FieldError{Field: field, Message: "must not be negative"})
	case !d.Equal(d.Truncate(2)):
		out = append(out, apperror.FieldError{Field: field, Message: "must have at most 2 decimal places"})
	case d.GreaterThanOrEqual(maxAmount):
		out = append(out, apperror.FieldError{Field: field, Message: "must be less than " + maxAmount.String()})
	}
	return out
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
