package repository

import (
	"context"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/models"
)

const vendorColumns = `
	id, name, vendor_type, approval_status, status, is_active, admin_id, public_vendor_user_id,
	auto_approve_inventory, approved_by, approved_at, created_at, updated_at`

type VendorRepository struct {
	db dbtx
}

func (r *VendorRepository) Create(ctx context.Context, vendor models.Vendor) error {
	const query = `
		INSERT INTO vendors (
			id, name, vendor_type, approval_status, status, is_active, admin_id,
			public_vendor_user_id, auto_approve_inventory, approved_by, approved_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW()
		)
	`

	_, err := r.db.Exec(ctx, query,
		vendor.ID,
		vendor.Name,
		vendor.VendorType,
		vendor.ApprovalStatus,
		vendor.Status,
		vendor.IsActive,
		vendor.AdminID,
		vendor.PublicVendorUserID,
		vendor.AutoApproveInventory,
		vendor.ApprovedBy,
		vendor.ApprovedAt,
	)
	return mapWriteErr(err)
}

func scanVendor(row scanner) (models.Vendor, error) {
	var vendor models.Vendor
	err := row.Scan(
		&vendor.ID,
		&vendor.Name,
		&vendor.VendorType,
		&vendor.ApprovalStatus,
		&vendor.Status,
		&vendor.IsActive,
		&vendor.AdminID,
		&vendor.PublicVendorUserID,
		&vendor.AutoApproveInventory,
		&vendor.ApprovedBy,
		&vendor.ApprovedAt,
		&vendor.CreatedAt,
		&vendor.UpdatedAt,
	)
	return vendor, err
}

func (r *VendorRepository) GetByID(ctx context.Context, id string) (models.Vendor, error) {
	row := r.db.QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id)
	vendor, err := scanVendor(row)
	if err != nil {
		return models.Vendor{}, notFound(err, ErrVendorNotFound)
	}
	return vendor, nil
}

func (r *VendorRepository) FindByPublicUser(ctx context.Context, userID string) (models.Vendor, error) {
	row := r.db.QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE public_vendor_user_id = $1`, userID)
	vendor, err := scanVendor(row)
	if err != nil {
		return models.Vendor{}, notFound(err, ErrVendorNotFound)
	}
	return vendor, nil
}

// ListByAdmin lists the vendors of one tenant; an empty adminID lists all.
func (r *VendorRepository) ListByAdmin(ctx context.Context, adminID string) ([]models.Vendor, error) {
	return r.list(ctx, `
		SELECT `+vendorColumns+` FROM vendors
		WHERE ($1 = '' OR admin_id = $1)
		ORDER BY created_at DESC
	`, adminID)
}

func (r *VendorRepository) ListByApprovalStatus(ctx context.Context, status models.ApprovalStatus) ([]models.Vendor, error) {
	return r.list(ctx, `
		SELECT `+vendorColumns+` FROM vendors
		WHERE approval_status = $1
		ORDER BY created_at ASC
	`, status)
}

func (r *VendorRepository) list(ctx context.Context, query string, arg any) ([]models.Vendor, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vendors []models.Vendor
	for rows.Next() {
		vendor, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		vendors = append(vendors, vendor)
	}
	return vendors, rows.Err()
}

func (r *VendorRepository) ApplyDecision(ctx context.Context, id string, decision VendorDecision) error {
	const query = `
		UPDATE vendors
		SET approval_status = $2,
		    status = $3,
		    is_active = $4,
		    auto_approve_inventory = COALESCE($5, auto_approve_inventory),
		    approved_by = CASE WHEN $2 = 'approved' THEN $6 ELSE approved_by END,
		    approved_at = CASE WHEN $2 = 'approved' THEN $7 ELSE approved_at END,
		    updated_at = NOW()
		WHERE id = $1 AND approval_status = 'pending'
	`
	cmd, err := r.db.Exec(ctx, query,
		id,
		string(decision.Status),
		decision.VendorState,
		decision.IsActive,
		decision.AutoApprove,
		decision.DecidedBy,
		decision.DecidedAt,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotPending
	}
	return nil
}

func (r *VendorRepository) SetAutoApprove(ctx context.Context, id string, enabled bool) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE vendors SET auto_approve_inventory = $2, updated_at = NOW() WHERE id = $1
	`, id, enabled)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrVendorNotFound
	}
	return nil
}
