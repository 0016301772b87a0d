package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/venue-ops/internal/model"
)

const purchaseOrderCols = `id, supplier_name, status, total_amount, expected_delivery_date,
	actual_delivery_date, notes, created_at, updated_at`

// PurchaseOrderRepo persists purchase orders and their line items.
type PurchaseOrderRepo struct {
	db *sql.DB
}

func NewPurchaseOrderRepo(db *sql.DB) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{db: db}
}

// Create inserts po and its items in one transaction.  An order created
// directly as RECEIVED is stamped with the current delivery time.
func (r *PurchaseOrderRepo) Create(ctx context.Context, po *model.PurchaseOrder) (err error) {
	po.ID = newID()
	po.CreatedAt = now()
	po.UpdatedAt = po.CreatedAt
	if po.Status.StampsDelivery() {
		t := po.CreatedAt
		po.ActualDeliveryDate = &t
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	const qOrder = `INSERT INTO purchase_orders
	                (id, supplier_name, status, total_amount, expected_delivery_date, actual_delivery_date, notes, created_at, updated_at)
	                VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err = tx.ExecContext(ctx, qOrder, po.ID, po.SupplierName, string(po.Status), po.TotalAmount,
		nullTime(po.ExpectedDeliveryDate), nullTime(po.ActualDeliveryDate), nullString(po.Notes),
		po.CreatedAt, po.UpdatedAt); err != nil {
		return translate(err)
	}

	const qItem = `INSERT INTO purchase_order_items (id, purchase_order_id, description, quantity, unit_cost)
	               VALUES (?, ?, ?, ?, ?)`
	for i := range po.Items {
		it := &po.Items[i]
		it.ID = newID()
		it.PurchaseOrderID = po.ID
		if _, err = tx.ExecContext(ctx, qItem, it.ID, it.PurchaseOrderID, it.Description, it.Quantity, it.UnitCost); err != nil {
			return translate(err)
		}
	}
	return nil
}

// GetByID returns the order with its items ordered by description.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	po, err := scanPurchaseOrder(r.db.QueryRowContext(ctx, "SELECT "+purchaseOrderCols+" FROM purchase_orders WHERE id = ?", id))
	if err != nil {
		return nil, translate(err)
	}
	items, err := r.items(ctx, id)
	if err != nil {
		return nil, err
	}
	po.Items = items
	return po, nil
}

func (r *PurchaseOrderRepo) items(ctx context.Context, orderID string) ([]model.PurchaseOrderItem, error) {
	const q = `SELECT id, purchase_order_id, description, quantity, unit_cost
	           FROM purchase_order_items WHERE purchase_order_id = ? ORDER BY description, id`
	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PurchaseOrderItem
	for rows.Next() {
		var it model.PurchaseOrderItem
		if err := rows.Scan(&it.ID, &it.PurchaseOrderID, &it.Description, &it.Quantity, &it.UnitCost); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// List returns orders oldest first, without items.
func (r *PurchaseOrderRepo) List(ctx context.Context) ([]model.PurchaseOrder, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+purchaseOrderCols+" FROM purchase_orders ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.PurchaseOrder{}
	for rows.Next() {
		po, err := scanPurchaseOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *po)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies the supplied fields.  A status of RECEIVED stamps the
// actual delivery date in the same statement.
func (r *PurchaseOrderRepo) Update(ctx context.Context, id string, p model.PurchaseOrderPatch) (*model.PurchaseOrder, error) {
	var a assignments
	setPtr(&a, "supplier_name", p.SupplierName)
	if p.Status != nil {
		setStatus(&a, *p.Status)
	}
	setPtr(&a, "total_amount", p.TotalAmount)
	if p.ExpectedDeliveryDate != nil {
		a.set("expected_delivery_date", p.ExpectedDeliveryDate.UTC())
	}
	setPtr(&a, "notes", p.Notes)
	if !a.empty() {
		a.set("updated_at", now())
	}
	if err := updateByID(ctx, r.db, "purchase_orders", id, a); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// UpdateStatus moves the order to status.  Any status may follow any other.
func (r *PurchaseOrderRepo) UpdateStatus(ctx context.Context, id string, status model.PurchaseOrderStatus) (*model.PurchaseOrder, error) {
	return r.Update(ctx, id, model.PurchaseOrderPatch{Status: &status})
}

func (r *PurchaseOrderRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "purchase_orders", id)
}

// setStatus writes status and, only for RECEIVED, the delivery stamp.
// Other statuses leave actual_delivery_date as it is.
func setStatus(a *assignments, status model.PurchaseOrderStatus) {
	a.set("status", string(status))
	if status.StampsDelivery() {
		a.set("actual_delivery_date", now())
	}
}

func scanPurchaseOrder(s scanner) (*model.PurchaseOrder, error) {
	var (
		po       model.PurchaseOrder
		status   string
		expected sql.NullTime
		actual   sql.NullTime
		notes    sql.NullString
	)
	if err := s.Scan(&po.ID, &po.SupplierName, &status, &po.TotalAmount, &expected,
		&actual, &notes, &po.CreatedAt, &po.UpdatedAt); err != nil {
		return nil, err
	}
	po.Status = model.PurchaseOrderStatus(status)
	po.ExpectedDeliveryDate = timePtr(expected)
	po.ActualDeliveryDate = timePtr(actual)
	po.Notes = stringPtr(notes)
	return &po, nil
}
