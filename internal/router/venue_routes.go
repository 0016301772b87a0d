package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-ops/internal/handler"
)

// RegisterVenue registers the floor plan, venue object, workstation and
// storage location endpoints on the guarded /api group.
func RegisterVenue(g *echo.Group, h *handler.ResourceHandler) {
	g.GET("/floorplans", h.ListFloorPlans())
	g.POST("/floorplans", h.CreateFloorPlan())
	g.GET("/floorplans/:id", h.GetFloorPlan())
	g.PATCH("/floorplans/:id", h.UpdateFloorPlan())
	g.DELETE("/floorplans/:id", h.DeleteFloorPlan())

	// ?floorPlanId= narrows the list to one plan
	g.GET("/venue-objects", h.ListVenueObjects())
	g.POST("/venue-objects", h.CreateVenueObject())
	g.GET("/venue-objects/:id", h.GetVenueObject())
	g.PATCH("/venue-objects/:id", h.UpdateVenueObject())
	g.DELETE("/venue-objects/:id", h.DeleteVenueObject())

	g.GET("/workstations", h.ListWorkstations())
	g.POST("/workstations", h.CreateWorkstation())
	g.GET("/workstations/:id", h.GetWorkstation())
	g.PATCH("/workstations/:id", h.UpdateWorkstation())
	g.DELETE("/workstations/:id", h.DeleteWorkstation())

	g.GET("/storage-locations", h.ListStorageLocations())
	g.POST("/storage-locations", h.CreateStorageLocation())
	g.GET("/storage-locations/:id", h.GetStorageLocation())
	g.PATCH("/storage-locations/:id", h.UpdateStorageLocation())
	g.DELETE("/storage-locations/:id", h.DeleteStorageLocation())
}
