package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/venue-ops/internal/model"
)

// WorkstationRepo persists workstations.  Deleting one unlinks its venue
// objects (ON DELETE SET NULL) rather than removing them.
type WorkstationRepo struct {
	db *sql.DB
}

func NewWorkstationRepo(db *sql.DB) *WorkstationRepo {
	return &WorkstationRepo{db: db}
}

func (r *WorkstationRepo) Create(ctx context.Context, w *model.Workstation) error {
	w.ID = newID()
	w.CreatedAt = now()
	w.UpdatedAt = w.CreatedAt
	const q = "INSERT INTO workstations (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, q, w.ID, w.Name, w.CreatedAt, w.UpdatedAt)
	return translate(err)
}

func (r *WorkstationRepo) GetByID(ctx context.Context, id string) (*model.Workstation, error) {
	const q = "SELECT id, name, created_at, updated_at FROM workstations WHERE id = ?"
	var w model.Workstation
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&w.ID, &w.Name, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

// List returns all workstations ordered by name, then id.
func (r *WorkstationRepo) List(ctx context.Context) ([]model.Workstation, error) {
	const q = "SELECT id, name, created_at, updated_at FROM workstations ORDER BY name, id"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Workstation{}
	for rows.Next() {
		var w model.Workstation
		if err := rows.Scan(&w.ID, &w.Name, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *WorkstationRepo) Update(ctx context.Context, id string, p model.WorkstationPatch) (*model.Workstation, error) {
	var a assignments
	setPtr(&a, "name", p.Name)
	if !a.empty() {
		a.set("updated_at", now())
	}
	if err := updateByID(ctx, r.db, "workstations", id, a); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *WorkstationRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "workstations", id)
}

// StorageLocationRepo persists storage locations.  Names are unique; a
// duplicate yields ErrConflict.
type StorageLocationRepo struct {
	db *sql.DB
}

func NewStorageLocationRepo(db *sql.DB) *StorageLocationRepo {
	return &StorageLocationRepo{db: db}
}

func (r *StorageLocationRepo) Create(ctx context.Context, s *model.StorageLocation) error {
	s.ID = newID()
	s.CreatedAt = now()
	s.UpdatedAt = s.CreatedAt
	const q = "INSERT INTO storage_locations (id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, q, s.ID, s.Name, nullString(s.Description), s.CreatedAt, s.UpdatedAt)
	return translate(err)
}

func (r *StorageLocationRepo) GetByID(ctx context.Context, id string) (*model.StorageLocation, error) {
	const q = "SELECT id, name, description, created_at, updated_at FROM storage_locations WHERE id = ?"
	s, err := scanStorageLocation(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, translate(err)
	}
	return s, nil
}

// List returns all locations ordered by name, then id.
func (r *StorageLocationRepo) List(ctx context.Context) ([]model.StorageLocation, error) {
	const q = "SELECT id, name, description, created_at, updated_at FROM storage_locations ORDER BY name, id"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.StorageLocation{}
	for rows.Next() {
		s, err := scanStorageLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *StorageLocationRepo) Update(ctx context.Context, id string, p model.StorageLocationPatch) (*model.StorageLocation, error) {
	var a assignments
	setPtr(&a, "name", p.Name)
	setPtr(&a, "description", p.Description)
	if !a.empty() {
		a.set("updated_at", now())
	}
	if err := updateByID(ctx, r.db, "storage_locations", id, a); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *StorageLocationRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "storage_locations", id)
}

func scanStorageLocation(s scanner) (*model.StorageLocation, error) {
	var (
		loc  model.StorageLocation
		desc sql.NullString
	)
	if err := s.Scan(&loc.ID, &loc.Name, &desc, &loc.CreatedAt, &loc.UpdatedAt); err != nil {
		return nil, err
	}
	loc.Description = stringPtr(desc)
	return &loc, nil
}
