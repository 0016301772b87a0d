package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/venue-ops/internal/model"
)

// venueObjectCols selects a venue object with its linked workstation.  The
// query using it must alias venue_objects as vo and LEFT JOIN workstations
// as ws.
const venueObjectCols = `vo.id, vo.floor_plan_id, vo.workstation_id, vo.name, vo.type,
	vo.anchor_x, vo.anchor_y, vo.width, vo.height, vo.rotation, vo.reservation_cost,
	vo.created_at, vo.updated_at, ws.id, ws.name, ws.created_at, ws.updated_at`

// VenueObjectRepo persists shapes placed on floor plans.
type VenueObjectRepo struct {
	db *sql.DB
}

func NewVenueObjectRepo(db *sql.DB) *VenueObjectRepo {
	return &VenueObjectRepo{db: db}
}

// Create inserts vo and fills its id and timestamps.  An unknown floor plan
// or workstation id yields ErrReference.
func (r *VenueObjectRepo) Create(ctx context.Context, vo *model.VenueObject) error {
	vo.ID = newID()
	vo.CreatedAt = now()
	vo.UpdatedAt = vo.CreatedAt
	const q = `INSERT INTO venue_objects
	           (id, floor_plan_id, workstation_id, name, type, anchor_x, anchor_y, width, height, rotation, reservation_cost, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, vo.ID, vo.FloorPlanID, nullString(vo.WorkstationID), vo.Name, string(vo.Type),
		vo.AnchorX, vo.AnchorY, vo.Width, vo.Height, vo.Rotation, vo.ReservationCost, vo.CreatedAt, vo.UpdatedAt)
	return translate(err)
}

// GetByID returns one object with its workstation eager-loaded.
func (r *VenueObjectRepo) GetByID(ctx context.Context, id string) (*model.VenueObject, error) {
	q := `SELECT ` + venueObjectCols + `
	      FROM venue_objects vo
	      LEFT JOIN workstations ws ON ws.id = vo.workstation_id
	      WHERE vo.id = ?`
	vo, err := scanVenueObject(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, translate(err)
	}
	return vo, nil
}

// List returns objects ordered by name then id.  A non-empty floorPlanID
// restricts the result to that plan.
func (r *VenueObjectRepo) List(ctx context.Context, floorPlanID string) ([]model.VenueObject, error) {
	q := `SELECT ` + venueObjectCols + `
	      FROM venue_objects vo
	      LEFT JOIN workstations ws ON ws.id = vo.workstation_id`
	var args []any
	if floorPlanID != "" {
		q += ` WHERE vo.floor_plan_id = ?`
		args = append(args, floorPlanID)
	}
	q += ` ORDER BY vo.name, vo.id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.VenueObject{}
	for rows.Next() {
		vo, err := scanVenueObject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *vo)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies the supplied fields and returns the stored object.
func (r *VenueObjectRepo) Update(ctx context.Context, id string, p model.VenueObjectPatch) (*model.VenueObject, error) {
	var a assignments
	setPtr(&a, "floor_plan_id", p.FloorPlanID)
	setPtr(&a, "workstation_id", p.WorkstationID)
	setPtr(&a, "name", p.Name)
	if p.Type != nil {
		a.set("type", string(*p.Type))
	}
	setPtr(&a, "anchor_x", p.AnchorX)
	setPtr(&a, "anchor_y", p.AnchorY)
	setPtr(&a, "width", p.Width)
	setPtr(&a, "height", p.Height)
	setPtr(&a, "rotation", p.Rotation)
	setPtr(&a, "reservation_cost", p.ReservationCost)
	if !a.empty() {
		a.set("updated_at", now())
	}
	if err := updateByID(ctx, r.db, "venue_objects", id, a); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *VenueObjectRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "venue_objects", id)
}

// scanVenueObject reads the columns of venueObjectCols.
func scanVenueObject(s scanner) (*model.VenueObject, error) {
	var (
		vo    model.VenueObject
		wsRef sql.NullString
		typ   string
		ws    nullWorkstation
	)
	if err := s.Scan(&vo.ID, &vo.FloorPlanID, &wsRef, &vo.Name, &typ,
		&vo.AnchorX, &vo.AnchorY, &vo.Width, &vo.Height, &vo.Rotation, &vo.ReservationCost,
		&vo.CreatedAt, &vo.UpdatedAt, &ws.ID, &ws.Name, &ws.CreatedAt, &ws.UpdatedAt); err != nil {
		return nil, err
	}
	vo.Type = model.VenueObjectType(typ)
	vo.WorkstationID = stringPtr(wsRef)
	vo.Workstation = ws.model()
	return &vo, nil
}

// nullWorkstation receives the workstation side of a LEFT JOIN.
type nullWorkstation struct {
	ID        sql.NullString
	Name      sql.NullString
	CreatedAt sql.NullTime
	UpdatedAt sql.NullTime
}

func (w nullWorkstation) model() *model.Workstation {
	if !w.ID.Valid {
		return nil
	}
	return &model.Workstation{ID: w.ID.String, Name: w.Name.String, CreatedAt: w.CreatedAt.Time, UpdatedAt: w.UpdatedAt.Time}
}
