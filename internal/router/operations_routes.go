package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-ops/internal/handler"
)

// RegisterOperations registers the vinyl library, DJ set, purchasing and
// client endpoints on the guarded /api group.
func RegisterOperations(g *echo.Group, h *handler.ResourceHandler) {
	g.GET("/vinyl-slots", h.ListVinylSlots())
	g.POST("/vinyl-slots", h.CreateVinylSlot())
	g.GET("/vinyl-slots/:id", h.GetVinylSlot())
	g.PATCH("/vinyl-slots/:id", h.UpdateVinylSlot())
	g.DELETE("/vinyl-slots/:id", h.DeleteVinylSlot())

	// ?sessionId= narrows the list to one DJ session
	g.GET("/dj-set-tracks", h.ListDJSetTracks())
	g.POST("/dj-set-tracks", h.CreateDJSetTrack())
	g.DELETE("/dj-set-tracks/:id", h.DeleteDJSetTrack())

	g.GET("/purchase-orders", h.ListPurchaseOrders())
	g.POST("/purchase-orders", h.CreatePurchaseOrder())
	g.GET("/purchase-orders/:id", h.GetPurchaseOrder())
	g.PATCH("/purchase-orders/:id", h.UpdatePurchaseOrder())
	g.PATCH("/purchase-orders/:id/status", h.UpdatePurchaseOrderStatus())
	g.DELETE("/purchase-orders/:id", h.DeletePurchaseOrder())

	g.GET("/company-clients", h.ListCompanyClients())
	g.POST("/company-clients", h.CreateCompanyClient())
	g.GET("/company-clients/:id", h.GetCompanyClient())
	g.PATCH("/company-clients/:id", h.UpdateCompanyClient())
	g.PATCH("/company-clients/:id/sales-stage", h.UpdateSalesStage())
	g.DELETE("/company-clients/:id", h.DeleteCompanyClient())
}
