package repository

import (
	"context"
	"time"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/models"
)

const productColumns = `
	p.id, p.vendor_id, p.admin_id, p.name, p.sku, p.approval_status, p.is_approved, p.is_active,
	p.approved_by, p.approved_at, p.rejected_by, p.rejected_at, p.created_at, p.updated_at`

type ProductRepository struct {
	db dbtx
}

func (r *ProductRepository) Create(ctx context.Context, product models.Product) error {
	const query = `
		INSERT INTO products (
			id, vendor_id, admin_id, name, sku, approval_status, is_approved, is_active,
			approved_by, approved_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW()
		)
	`

	_, err := r.db.Exec(ctx, query,
		product.ID,
		product.VendorID,
		product.AdminID,
		product.Name,
		product.SKU,
		product.ApprovalStatus,
		product.IsApproved,
		product.IsActive,
		product.ApprovedBy,
		product.ApprovedAt,
	)
	return mapWriteErr(err)
}

func scanProduct(row scanner) (models.Product, error) {
	var product models.Product
	err := row.Scan(
		&product.ID,
		&product.VendorID,
		&product.AdminID,
		&product.Name,
		&product.SKU,
		&product.ApprovalStatus,
		&product.IsApproved,
		&product.IsActive,
		&product.ApprovedBy,
		&product.ApprovedAt,
		&product.RejectedBy,
		&product.RejectedAt,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	return product, err
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (models.Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1`, id)
	product, err := scanProduct(row)
	if err != nil {
		return models.Product{}, notFound(err, ErrProductNotFound)
	}
	return product, nil
}

func (r *ProductRepository) ListByAdmin(ctx context.Context, adminID string) ([]models.Product, error) {
	return r.list(ctx, `
		SELECT `+productColumns+` FROM products p
		WHERE ($1 = '' OR p.admin_id = $1)
		ORDER BY p.created_at DESC
	`, adminID)
}

// ListPendingForPublicVendors returns the approval candidates. Inventory of
// private and virtual vendors never enters the queue.
func (r *ProductRepository) ListPendingForPublicVendors(ctx context.Context) ([]models.Product, error) {
	return r.list(ctx, `
		SELECT `+productColumns+`
		FROM products p
		JOIN vendors v ON v.id = p.vendor_id
		WHERE p.approval_status = 'pending' AND v.vendor_type = 'public'
		ORDER BY p.created_at ASC
	`)
}

func (r *ProductRepository) list(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *ProductRepository) ApprovePending(ctx context.Context, ids []string, approverID string, at time.Time) ([]string, error) {
	return r.collectIDs(ctx, `
		UPDATE products
		SET approval_status = 'approved',
		    is_approved = TRUE,
		    approved_by = $2,
		    approved_at = $3,
		    updated_at = NOW()
		WHERE id = ANY($1) AND approval_status = 'pending'
		RETURNING id
	`, ids, approverID, at)
}

func (r *ProductRepository) RejectPending(ctx context.Context, ids []string, rejecterID string, at time.Time) ([]string, error) {
	return r.collectIDs(ctx, `
		UPDATE products
		SET approval_status = 'rejected',
		    is_active = FALSE,
		    rejected_by = $2,
		    rejected_at = $3,
		    updated_at = NOW()
		WHERE id = ANY($1) AND approval_status = 'pending'
		RETURNING id
	`, ids, rejecterID, at)
}

func (r *ProductRepository) collectIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changed []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		changed = append(changed, id)
	}
	return changed, rows.Err()
}
