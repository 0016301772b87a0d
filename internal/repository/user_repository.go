package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/venue-ops/internal/model"
	"github.com/iliyamo/venue-ops/internal/utils"
)

const userCols = "id, email, name, password_hash, role, is_active, created_at, updated_at"

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// Create hashes password, inserts u and fills its id and timestamps.
func (r *UserRepo) Create(ctx context.Context, u *model.User, password string, cost int) error {
	u.Email = normalizeEmail(u.Email)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	u.ID = newID()
	u.PasswordHash = hash
	u.IsActive = true
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, name, password_hash, role, is_active, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?)",
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err = translate(err); errors.Is(err, ErrConflict) {
		return ErrEmailExists
	}
	return err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", normalizeEmail(email)))
}

// Authenticate returns the active user whose password matches.  Unknown
// emails, inactive accounts and wrong passwords all yield ErrNotFound.
func (r *UserRepo) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	u, err := r.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		utils.BurnPasswordCheck(password)
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrNotFound
	}
	return u, nil
}

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	if err := s.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
