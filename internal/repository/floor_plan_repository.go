package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/venue-ops/internal/model"
)

// FloorPlanRepo encapsulates the queries for floor plans.  Venue objects
// belong to a plan and are removed with it by the ON DELETE CASCADE
// constraint.
type FloorPlanRepo struct {
	db *sql.DB
}

func NewFloorPlanRepo(db *sql.DB) *FloorPlanRepo {
	return &FloorPlanRepo{db: db}
}

// Create inserts fp, assigning its id and timestamps.
func (r *FloorPlanRepo) Create(ctx context.Context, fp *model.FloorPlan) error {
	fp.ID = newID()
	fp.CreatedAt = now()
	fp.UpdatedAt = fp.CreatedAt
	const q = "INSERT INTO floor_plans (id, name, width, height, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, q, fp.ID, fp.Name, fp.Width, fp.Height, fp.CreatedAt, fp.UpdatedAt)
	return translate(err)
}

// GetByID loads a plan together with its venue objects and their
// workstations in a single round trip.  Objects are ordered by name, then
// id, and the slice is empty (not nil) for a plan without objects.
func (r *FloorPlanRepo) GetByID(ctx context.Context, id string) (*model.FloorPlanDetail, error) {
	const q = `SELECT fp.id, fp.name, fp.width, fp.height, fp.created_at, fp.updated_at,
	                  vo.id, vo.floor_plan_id, vo.workstation_id, vo.name, vo.type,
	                  vo.anchor_x, vo.anchor_y, vo.width, vo.height, vo.rotation, vo.reservation_cost,
	                  vo.created_at, vo.updated_at, ws.id, ws.name, ws.created_at, ws.updated_at
	           FROM floor_plans fp
	           LEFT JOIN venue_objects vo ON vo.floor_plan_id = fp.id
	           LEFT JOIN workstations ws ON ws.id = vo.workstation_id
	           WHERE fp.id = ?
	           ORDER BY vo.name, vo.id`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var d *model.FloorPlanDetail
	for rows.Next() {
		var (
			fp model.FloorPlan
			vo nullVenueObject
			ws nullWorkstation
		)
		if err := rows.Scan(&fp.ID, &fp.Name, &fp.Width, &fp.Height, &fp.CreatedAt, &fp.UpdatedAt,
			&vo.ID, &vo.FloorPlanID, &vo.WorkstationID, &vo.Name, &vo.Type,
			&vo.AnchorX, &vo.AnchorY, &vo.Width, &vo.Height, &vo.Rotation, &vo.ReservationCost,
			&vo.CreatedAt, &vo.UpdatedAt, &ws.ID, &ws.Name, &ws.CreatedAt, &ws.UpdatedAt); err != nil {
			return nil, err
		}
		if d == nil {
			d = &model.FloorPlanDetail{FloorPlan: fp, Objects: []model.VenueObject{}}
		}
		if obj := vo.model(); obj != nil {
			obj.Workstation = ws.model()
			d.Objects = append(d.Objects, *obj)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNotFound
	}
	return d, nil
}

// List returns every plan ordered by name, then id, without objects.
func (r *FloorPlanRepo) List(ctx context.Context) ([]model.FloorPlan, error) {
	const q = "SELECT id, name, width, height, created_at, updated_at FROM floor_plans ORDER BY name, id"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.FloorPlan{}
	for rows.Next() {
		var fp model.FloorPlan
		if err := rows.Scan(&fp.ID, &fp.Name, &fp.Width, &fp.Height, &fp.CreatedAt, &fp.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies the supplied fields and returns the plan with its objects.
func (r *FloorPlanRepo) Update(ctx context.Context, id string, p model.FloorPlanPatch) (*model.FloorPlanDetail, error) {
	var a assignments
	setPtr(&a, "name", p.Name)
	setPtr(&a, "width", p.Width)
	setPtr(&a, "height", p.Height)
	if !a.empty() {
		a.set("updated_at", now())
	}
	if err := updateByID(ctx, r.db, "floor_plans", id, a); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes the plan; its venue objects go with it.
func (r *FloorPlanRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "floor_plans", id)
}

// nullVenueObject receives the venue object side of a LEFT JOIN.
type nullVenueObject struct {
	ID              sql.NullString
	FloorPlanID     sql.NullString
	WorkstationID   sql.NullString
	Name            sql.NullString
	Type            sql.NullString
	AnchorX         sql.NullFloat64
	AnchorY         sql.NullFloat64
	Width           sql.NullFloat64
	Height          sql.NullFloat64
	Rotation        sql.NullFloat64
	ReservationCost decimal.NullDecimal
	CreatedAt       sql.NullTime
	UpdatedAt       sql.NullTime
}

func (v nullVenueObject) model() *model.VenueObject {
	if !v.ID.Valid {
		return nil
	}
	return &model.VenueObject{
		ID:              v.ID.String,
		FloorPlanID:     v.FloorPlanID.String,
		WorkstationID:   stringPtr(v.WorkstationID),
		Name:            v.Name.String,
		Type:            model.VenueObjectType(v.Type.String),
		AnchorX:         v.AnchorX.Float64,
		AnchorY:         v.AnchorY.Float64,
		Width:           v.Width.Float64,
		Height:          v.Height.Float64,
		Rotation:        v.Rotation.Float64,
		ReservationCost: v.ReservationCost,
		CreatedAt:       v.CreatedAt.Time,
		UpdatedAt:       v.UpdatedAt.Time,
	}
}
