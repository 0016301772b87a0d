package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// VenueObjectType is the closed set of things that can be placed on a plan.
type VenueObjectType string

const (
    VenueObjectTable      VenueObjectType = "TABLE"
    VenueObjectBooth      VenueObjectType = "BOOTH"
    VenueObjectBar        VenueObjectType = "BAR"
    VenueObjectStage      VenueObjectType = "STAGE"
    VenueObjectDJBooth    VenueObjectType = "DJ_BOOTH"
    VenueObjectDanceFloor VenueObjectType = "DANCE_FLOOR"
    VenueObjectEntrance   VenueObjectType = "ENTRANCE"
    VenueObjectRestroom   VenueObjectType = "RESTROOM"
    VenueObjectWall       VenueObjectType = "WALL"
    VenueObjectDecor      VenueObjectType = "DECOR"
)

// VenueObjectTypes lists every accepted type in declaration order.
var VenueObjectTypes = []VenueObjectType{
    VenueObjectTable, VenueObjectBooth, VenueObjectBar, VenueObjectStage, VenueObjectDJBooth,
    VenueObjectDanceFloor, VenueObjectEntrance, VenueObjectRestroom, VenueObjectWall, VenueObjectDecor,
}

// Valid reports whether t is a member of the enum.
func (t VenueObjectType) Valid() bool {
    for _, v := range VenueObjectTypes {
        if t == v {
            return true
        }
    }
    return false
}

// VenueObject is a shape anchored on a floor plan.  ReservationCost is a
// nullable decimal and always crosses the wire as a string.
type VenueObject struct {
    ID              string              `json:"id"`
    FloorPlanID     string              `json:"floorPlanId"`
    WorkstationID   *string             `json:"workstationId"`
    Name            string              `json:"name"`
    Type            VenueObjectType     `json:"type"`
    AnchorX         float64             `json:"anchorX"`
    AnchorY         float64             `json:"anchorY"`
    Width           float64             `json:"width"`
    Height          float64             `json:"height"`
    Rotation        float64             `json:"rotation"`
    ReservationCost decimal.NullDecimal `json:"reservationCost"`
    CreatedAt       time.Time           `json:"createdAt"`
    UpdatedAt       time.Time           `json:"updatedAt"`
    Workstation     *Workstation        `json:"workstation,omitempty"` // eager-loaded when linked
}
