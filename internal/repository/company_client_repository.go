package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/venue-ops/internal/model"
)

// CompanyClientRepo persists business customers and their pipeline stage.
type CompanyClientRepo struct {
	db *sql.DB
}

func NewCompanyClientRepo(db *sql.DB) *CompanyClientRepo {
	return &CompanyClientRepo{db: db}
}

func (r *CompanyClientRepo) Create(ctx context.Context, c *model.CompanyClient) error {
	c.ID = newID()
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt
	if c.SalesPipelineStage == "" {
		c.SalesPipelineStage = model.DefaultSalesStage
	}
	const q = "INSERT INTO company_clients (id, name, sales_pipeline_stage, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, q, c.ID, c.Name, c.SalesPipelineStage, c.CreatedAt, c.UpdatedAt)
	return translate(err)
}

func (r *CompanyClientRepo) GetByID(ctx context.Context, id string) (*model.CompanyClient, error) {
	const q = "SELECT id, name, sales_pipeline_stage, created_at, updated_at FROM company_clients WHERE id = ?"
	var c model.CompanyClient
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &c.SalesPipelineStage, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// List returns clients ordered by name, then id.
func (r *CompanyClientRepo) List(ctx context.Context) ([]model.CompanyClient, error) {
	const q = "SELECT id, name, sales_pipeline_stage, created_at, updated_at FROM company_clients ORDER BY name, id"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.CompanyClient{}
	for rows.Next() {
		var c model.CompanyClient
		if err := rows.Scan(&c.ID, &c.Name, &c.SalesPipelineStage, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CompanyClientRepo) Update(ctx context.Context, id string, p model.CompanyClientPatch) (*model.CompanyClient, error) {
	var a assignments
	setPtr(&a, "name", p.Name)
	setPtr(&a, "sales_pipeline_stage", p.SalesPipelineStage)
	if !a.empty() {
		a.set("updated_at", now())
	}
	if err := updateByID(ctx, r.db, "company_clients", id, a); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// UpdateSalesStage moves the client to stage.
func (r *CompanyClientRepo) UpdateSalesStage(ctx context.Context, id, stage string) (*model.CompanyClient, error) {
	return r.Update(ctx, id, model.CompanyClientPatch{SalesPipelineStage: &stage})
}

func (r *CompanyClientRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "company_clients", id)
}
