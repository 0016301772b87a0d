package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/venue-ops/internal/model"
)

// VinylSlotRepo persists the record library grid.  (slot_row, slot_column)
// is unique, so a second slot at an occupied position yields ErrConflict.
type VinylSlotRepo struct {
	db *sql.DB
}

func NewVinylSlotRepo(db *sql.DB) *VinylSlotRepo {
	return &VinylSlotRepo{db: db}
}

func (r *VinylSlotRepo) Create(ctx context.Context, s *model.VinylLibrarySlot) error {
	s.ID = newID()
	s.CreatedAt = now()
	const q = "INSERT INTO vinyl_library_slots (id, slot_row, slot_column, capacity, created_at) VALUES (?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, q, s.ID, s.Row, s.Column, s.Capacity, s.CreatedAt)
	return translate(err)
}

func (r *VinylSlotRepo) GetByID(ctx context.Context, id string) (*model.VinylLibrarySlot, error) {
	const q = "SELECT id, slot_row, slot_column, capacity, created_at FROM vinyl_library_slots WHERE id = ?"
	var s model.VinylLibrarySlot
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.Row, &s.Column, &s.Capacity, &s.CreatedAt); err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// List returns the grid in reading order: row, then column.
func (r *VinylSlotRepo) List(ctx context.Context) ([]model.VinylLibrarySlot, error) {
	const q = "SELECT id, slot_row, slot_column, capacity, created_at FROM vinyl_library_slots ORDER BY slot_row, slot_column"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.VinylLibrarySlot{}
	for rows.Next() {
		var s model.VinylLibrarySlot
		if err := rows.Scan(&s.ID, &s.Row, &s.Column, &s.Capacity, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update moves or resizes a slot.  The table has no updated_at column.
func (r *VinylSlotRepo) Update(ctx context.Context, id string, p model.VinylSlotPatch) (*model.VinylLibrarySlot, error) {
	var a assignments
	setPtr(&a, "slot_row", p.Row)
	setPtr(&a, "slot_column", p.Column)
	setPtr(&a, "capacity", p.Capacity)
	if err := updateByID(ctx, r.db, "vinyl_library_slots", id, a); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *VinylSlotRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "vinyl_library_slots", id)
}

// DJSetTrackRepo records plays during DJ sessions.
type DJSetTrackRepo struct {
	db *sql.DB
}

func NewDJSetTrackRepo(db *sql.DB) *DJSetTrackRepo {
	return &DJSetTrackRepo{db: db}
}

// Create stamps PlayedAt with the current time and inserts t.
func (r *DJSetTrackRepo) Create(ctx context.Context, t *model.DJSetTrack) error {
	t.ID = newID()
	t.PlayedAt = now()
	const q = "INSERT INTO dj_set_tracks (id, session_id, vinyl_record_id, played_at) VALUES (?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, q, t.ID, t.SessionID, t.VinylRecordID, t.PlayedAt)
	return translate(err)
}

// List returns plays in the order they happened.  A non-empty sessionID
// restricts the result to that session.
func (r *DJSetTrackRepo) List(ctx context.Context, sessionID string) ([]model.DJSetTrack, error) {
	q := "SELECT id, session_id, vinyl_record_id, played_at FROM dj_set_tracks"
	var args []any
	if sessionID != "" {
		q += " WHERE session_id = ?"
		args = append(args, sessionID)
	}
	q += " ORDER BY played_at, id"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.DJSetTrack{}
	for rows.Next() {
		var t model.DJSetTrack
		if err := rows.Scan(&t.ID, &t.SessionID, &t.VinylRecordID, &t.PlayedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *DJSetTrackRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "dj_set_tracks", id)
}
