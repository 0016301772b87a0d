package model

import "time"

// Default floor plan dimensions, in grid units, applied when a plan is
// created without explicit width or height.
const (
    DefaultFloorPlanWidth  = 100.0
    DefaultFloorPlanHeight = 100.0
)

// FloorPlan is a named canvas on which venue objects are placed.
type FloorPlan struct {
    ID        string    `json:"id"`        // floor_plans.id
    Name      string    `json:"name"`      // floor_plans.name
    Width     float64   `json:"width"`     // floor_plans.width
    Height    float64   `json:"height"`    // floor_plans.height
    CreatedAt time.Time `json:"createdAt"` // floor_plans.created_at
    UpdatedAt time.Time `json:"updatedAt"` // floor_plans.updated_at
}

// FloorPlanDetail is a floor plan with its venue objects eager-loaded.
// Objects is never nil so it serialises as [] for an empty plan.
type FloorPlanDetail struct {
    FloorPlan
    Objects []VenueObject `json:"objects"`
}
