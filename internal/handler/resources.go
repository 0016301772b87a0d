package handler

import (
	"context"
	"database/sql"
	"net/url"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/venue-ops/internal/middleware"
	"github.com/iliyamo/venue-ops/internal/model"
	"github.com/iliyamo/venue-ops/internal/queue"
	"github.com/iliyamo/venue-ops/internal/repository"
	"github.com/iliyamo/venue-ops/internal/validation"
)

// ResourceHandler bundles the repositories behind the CRUD endpoints.
type ResourceHandler struct {
	FloorPlans       *repository.FloorPlanRepo
	VenueObjects     *repository.VenueObjectRepo
	Workstations     *repository.WorkstationRepo
	StorageLocations *repository.StorageLocationRepo
	VinylSlots       *repository.VinylSlotRepo
	DJSetTracks      *repository.DJSetTrackRepo
	PurchaseOrders   *repository.PurchaseOrderRepo
	CompanyClients   *repository.CompanyClientRepo
	Events           queue.Publisher
	Log              *zap.Logger
}

// NewResourceHandler builds every repository over db.  A nil publisher
// disables events.
func NewResourceHandler(db *sql.DB, events queue.Publisher, log *zap.Logger) *ResourceHandler {
	if events == nil {
		events = queue.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ResourceHandler{
		FloorPlans:       repository.NewFloorPlanRepo(db),
		VenueObjects:     repository.NewVenueObjectRepo(db),
		Workstations:     repository.NewWorkstationRepo(db),
		StorageLocations: repository.NewStorageLocationRepo(db),
		VinylSlots:       repository.NewVinylSlotRepo(db),
		DJSetTracks:      repository.NewDJSetTrackRepo(db),
		PurchaseOrders:   repository.NewPurchaseOrderRepo(db),
		CompanyClients:   repository.NewCompanyClientRepo(db),
		Events:           events,
		Log:              log,
	}
}

// ----- Floor plans -----

const floorPlan = "floor plan"

func (h *ResourceHandler) ListFloorPlans() echo.HandlerFunc {
	return listHandler(floorPlan, func(ctx context.Context, _ url.Values) ([]model.FloorPlan, error) {
		return h.FloorPlans.List(ctx)
	})
}

// CreateFloorPlan answers with the new plan and an empty object list.
func (h *ResourceHandler) CreateFloorPlan() echo.HandlerFunc {
	return createHandler(floorPlan, func(ctx context.Context, _ echo.Context, in *validation.FloorPlanCreate) (*model.FloorPlanDetail, error) {
		fp := in.Model()
		if err := h.FloorPlans.Create(ctx, &fp); err != nil {
			return nil, err
		}
		return &model.FloorPlanDetail{FloorPlan: fp, Objects: []model.VenueObject{}}, nil
	})
}

func (h *ResourceHandler) GetFloorPlan() echo.HandlerFunc {
	return getHandler(floorPlan, h.FloorPlans.GetByID)
}

func (h *ResourceHandler) UpdateFloorPlan() echo.HandlerFunc {
	return updateHandler(floorPlan, func(ctx context.Context, _ echo.Context, id string, in *validation.FloorPlanPatch) (*model.FloorPlanDetail, error) {
		return h.FloorPlans.Update(ctx, id, in.Patch())
	})
}

func (h *ResourceHandler) DeleteFloorPlan() echo.HandlerFunc {
	return deleteHandler(floorPlan, h.FloorPlans.Delete)
}

// ----- Venue objects -----

const venueObject = "venue object"

// ListVenueObjects accepts an optional ?floorPlanId= filter.
func (h *ResourceHandler) ListVenueObjects() echo.HandlerFunc {
	return listHandler(venueObject, func(ctx context.Context, q url.Values) ([]model.VenueObject, error) {
		planID, err := queryID(q, "floorPlanId")
		if err != nil {
			return nil, err
		}
		return h.VenueObjects.List(ctx, planID)
	})
}

func (h *ResourceHandler) CreateVenueObject() echo.HandlerFunc {
	return createHandler(venueObject, func(ctx context.Context, _ echo.Context, in *validation.VenueObjectCreate) (*model.VenueObject, error) {
		vo := in.Model()
		if err := h.VenueObjects.Create(ctx, &vo); err != nil {
			return nil, err
		}
		// Re-read so a linked workstation comes back eager-loaded.
		return h.VenueObjects.GetByID(ctx, vo.ID)
	})
}

func (h *ResourceHandler) GetVenueObject() echo.HandlerFunc {
	return getHandler(venueObject, h.VenueObjects.GetByID)
}

func (h *ResourceHandler) UpdateVenueObject() echo.HandlerFunc {
	return updateHandler(venueObject, func(ctx context.Context, _ echo.Context, id string, in *validation.VenueObjectPatch) (*model.VenueObject, error) {
		return h.VenueObjects.Update(ctx, id, in.Patch())
	})
}

func (h *ResourceHandler) DeleteVenueObject() echo.HandlerFunc {
	return deleteHandler(venueObject, h.VenueObjects.Delete)
}

// ----- Workstations -----

const workstation = "workstation"

func (h *ResourceHandler) ListWorkstations() echo.HandlerFunc {
	return listHandler(workstation, func(ctx context.Context, _ url.Values) ([]model.Workstation, error) {
		return h.Workstations.List(ctx)
	})
}

func (h *ResourceHandler) CreateWorkstation() echo.HandlerFunc {
	return createHandler(workstation, func(ctx context.Context, _ echo.Context, in *validation.WorkstationCreate) (*model.Workstation, error) {
		w := model.Workstation{Name: trimName(in.Name)}
		if err := h.Workstations.Create(ctx, &w); err != nil {
			return nil, err
		}
		return &w, nil
	})
}

func (h *ResourceHandler) GetWorkstation() echo.HandlerFunc {
	return getHandler(workstation, h.Workstations.GetByID)
}

func (h *ResourceHandler) UpdateWorkstation() echo.HandlerFunc {
	return updateHandler(workstation, func(ctx context.Context, _ echo.Context, id string, in *validation.WorkstationPatch) (*model.Workstation, error) {
		return h.Workstations.Update(ctx, id, in.Patch())
	})
}

func (h *ResourceHandler) DeleteWorkstation() echo.HandlerFunc {
	return deleteHandler(workstation, h.Workstations.Delete)
}

// ----- Storage locations -----

const storageLocation = "storage location"

func (h *ResourceHandler) ListStorageLocations() echo.HandlerFunc {
	return listHandler(storageLocation, func(ctx context.Context, _ url.Values) ([]model.StorageLocation, error) {
		return h.StorageLocations.List(ctx)
	})
}

func (h *ResourceHandler) CreateStorageLocation() echo.HandlerFunc {
	return createHandler(storageLocation, func(ctx context.Context, _ echo.Context, in *validation.StorageLocationCreate) (*model.StorageLocation, error) {
		s := in.Model()
		if err := h.StorageLocations.Create(ctx, &s); err != nil {
			return nil, err
		}
		return &s, nil
	})
}

func (h *ResourceHandler) GetStorageLocation() echo.HandlerFunc {
	return getHandler(storageLocation, h.StorageLocations.GetByID)
}

func (h *ResourceHandler) UpdateStorageLocation() echo.HandlerFunc {
	return updateHandler(storageLocation, func(ctx context.Context, _ echo.Context, id string, in *validation.StorageLocationPatch) (*model.StorageLocation, error) {
		return h.StorageLocations.Update(ctx, id, in.Patch())
	})
}

func (h *ResourceHandler) DeleteStorageLocation() echo.HandlerFunc {
	return deleteHandler(storageLocation, h.StorageLocations.Delete)
}

// ----- Vinyl library -----

const vinylSlot = "vinyl slot"

func (h *ResourceHandler) ListVinylSlots() echo.HandlerFunc {
	return listHandler(vinylSlot, func(ctx context.Context, _ url.Values) ([]model.VinylLibrarySlot, error) {
		return h.VinylSlots.List(ctx)
	})
}

func (h *ResourceHandler) CreateVinylSlot() echo.HandlerFunc {
	return createHandler(vinylSlot, func(ctx context.Context, _ echo.Context, in *validation.VinylSlotCreate) (*model.VinylLibrarySlot, error) {
		s := in.Model()
		if err := h.VinylSlots.Create(ctx, &s); err != nil {
			return nil, err
		}
		return &s, nil
	})
}

func (h *ResourceHandler) GetVinylSlot() echo.HandlerFunc {
	return getHandler(vinylSlot, h.VinylSlots.GetByID)
}

func (h *ResourceHandler) UpdateVinylSlot() echo.HandlerFunc {
	return updateHandler(vinylSlot, func(ctx context.Context, _ echo.Context, id string, in *validation.VinylSlotPatch) (*model.VinylLibrarySlot, error) {
		return h.VinylSlots.Update(ctx, id, in.Patch())
	})
}

func (h *ResourceHandler) DeleteVinylSlot() echo.HandlerFunc {
	return deleteHandler(vinylSlot, h.VinylSlots.Delete)
}

const djSetTrack = "dj set track"

// ListDJSetTracks accepts an optional ?sessionId= filter.
func (h *ResourceHandler) ListDJSetTracks() echo.HandlerFunc {
	return listHandler(djSetTrack, func(ctx context.Context, q url.Values) ([]model.DJSetTrack, error) {
		sessionID, err := queryID(q, "sessionId")
		if err != nil {
			return nil, err
		}
		return h.DJSetTracks.List(ctx, sessionID)
	})
}

func (h *ResourceHandler) CreateDJSetTrack() echo.HandlerFunc {
	return createHandler(djSetTrack, func(ctx context.Context, _ echo.Context, in *validation.DJSetTrackCreate) (*model.DJSetTrack, error) {
		t := model.DJSetTrack{SessionID: in.SessionID, VinylRecordID: in.VinylRecordID}
		if err := h.DJSetTracks.Create(ctx, &t); err != nil {
			return nil, err
		}
		return &t, nil
	})
}

func (h *ResourceHandler) DeleteDJSetTrack() echo.HandlerFunc {
	return deleteHandler(djSetTrack, h.DJSetTracks.Delete)
}

// ----- Company clients -----

const companyClient = "company client"

func (h *ResourceHandler) ListCompanyClients() echo.HandlerFunc {
	return listHandler(companyClient, func(ctx context.Context, _ url.Values) ([]model.CompanyClient, error) {
		return h.CompanyClients.List(ctx)
	})
}

func (h *ResourceHandler) CreateCompanyClient() echo.HandlerFunc {
	return createHandler(companyClient, func(ctx context.Context, _ echo.Context, in *validation.CompanyClientCreate) (*model.CompanyClient, error) {
		cc := in.Model()
		if err := h.CompanyClients.Create(ctx, &cc); err != nil {
			return nil, err
		}
		return &cc, nil
	})
}

func (h *ResourceHandler) GetCompanyClient() echo.HandlerFunc {
	return getHandler(companyClient, h.CompanyClients.GetByID)
}

func (h *ResourceHandler) UpdateCompanyClient() echo.HandlerFunc {
	return updateHandler(companyClient, func(ctx context.Context, _ echo.Context, id string, in *validation.CompanyClientPatch) (*model.CompanyClient, error) {
		return h.CompanyClients.Update(ctx, id, in.Patch())
	})
}

// UpdateSalesStage handles PATCH /api/company-clients/:id/sales-stage.
func (h *ResourceHandler) UpdateSalesStage() echo.HandlerFunc {
	return updateHandler(companyClient, func(ctx context.Context, _ echo.Context, id string, in *validation.SalesStageUpdate) (*model.CompanyClient, error) {
		return h.CompanyClients.UpdateSalesStage(ctx, id, trimName(in.SalesPipelineStage))
	})
}

func (h *ResourceHandler) DeleteCompanyClient() echo.HandlerFunc {
	return deleteHandler(companyClient, h.CompanyClients.Delete)
}

// receivedBy names the staff member behind the request, if any.
func receivedBy(c echo.Context) string {
	if s := middleware.CurrentSession(c); s != nil {
		return s.Name
	}
	return ""
}
