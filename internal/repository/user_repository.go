package repository

import (
	"context"
	"time"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/models"
)

const userColumns = `
	id, email, name, password_hash, role, account_type, admin_id, is_active,
	plan_approval_status, vendor_approval_status, COALESCE(permissions, '{}'::jsonb),
	is_email_verified, email_verification_token, email_verification_token_expiry,
	email_verification_token_used, created_at, updated_at`

type UserRepository struct {
	db dbtx
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	const query = `
		INSERT INTO users (
			id, email, name, password_hash, role, account_type, admin_id, is_active,
			plan_approval_status, vendor_approval_status, permissions,
			is_email_verified, email_verification_token, email_verification_token_expiry,
			email_verification_token_used, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE($11, '{}'::jsonb), $12, $13, $14, $15, NOW(), NOW()
		)
	`

	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Role,
		user.AccountType,
		user.AdminID,
		user.IsActive,
		user.PlanApprovalStatus,
		user.VendorApprovalStatus,
		user.Permissions,
		user.IsEmailVerified,
		user.EmailVerificationToken,
		user.EmailVerificationTokenExpiry,
		user.EmailVerificationTokenUsed,
	)
	return mapWriteErr(err)
}

func scanUser(row scanner) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.Role,
		&user.AccountType,
		&user.AdminID,
		&user.IsActive,
		&user.PlanApprovalStatus,
		&user.VendorApprovalStatus,
		&user.Permissions,
		&user.IsEmailVerified,
		&user.EmailVerificationToken,
		&user.EmailVerificationTokenExpiry,
		&user.EmailVerificationTokenUsed,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (models.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	user, err := scanUser(row)
	if err != nil {
		return models.User{}, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.getOne(ctx, `email = $1`, email)
}

func (r *UserRepository) FindByVerificationToken(ctx context.Context, token string) (models.User, error) {
	return r.getOne(ctx, `email_verification_token = $1`, token)
}

func (r *UserRepository) ListByPlanStatus(ctx context.Context, status models.ApprovalStatus) ([]models.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE plan_approval_status = $1 AND role <> 'master_admin'
		ORDER BY created_at ASC
	`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) ApplyAccountDecision(ctx context.Context, id string, decision AccountDecision) error {
	const query = `
		UPDATE users
		SET plan_approval_status = $2,
		    is_active = $3,
		    vendor_approval_status = COALESCE($4, vendor_approval_status),
		    updated_at = NOW()
		WHERE id = $1 AND plan_approval_status = 'pending'
	`
	var vendorStatus *string
	if decision.VendorApprovalStatus != nil {
		s := string(*decision.VendorApprovalStatus)
		vendorStatus = &s
	}

	cmd, err := r.db.Exec(ctx, query, id, decision.Status, decision.IsActive, vendorStatus)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotPending
	}
	return nil
}

func (r *UserRepository) SetVendorApproval(ctx context.Context, id string, status models.ApprovalStatus, isActive bool) error {
	return r.exec(ctx, `
		UPDATE users SET vendor_approval_status = $2, is_active = $3, updated_at = NOW() WHERE id = $1
	`, id, status, isActive)
}

func (r *UserRepository) SetActive(ctx context.Context, id string, isActive bool) error {
	return r.exec(ctx, `
		UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1
	`, id, isActive)
}

func (r *UserRepository) SetPermissions(ctx context.Context, id string, permissions models.Permissions) error {
	return r.exec(ctx, `
		UPDATE users SET permissions = COALESCE($2, '{}'::jsonb), updated_at = NOW() WHERE id = $1
	`, id, permissions)
}

func (r *UserRepository) Reinstate(ctx context.Context, id string, reinstate Reinstatement) error {
	return r.exec(ctx, `
		UPDATE users
		SET name = $2,
		    password_hash = $3,
		    permissions = COALESCE($4, '{}'::jsonb),
		    is_active = TRUE,
		    is_email_verified = TRUE,
		    updated_at = NOW()
		WHERE id = $1
	`, id, reinstate.Name, reinstate.PasswordHash, reinstate.Permissions)
}

func (r *UserRepository) SetVerificationToken(ctx context.Context, id string, token string, expiry time.Time) error {
	return r.exec(ctx, `
		UPDATE users
		SET email_verification_token = $2,
		    email_verification_token_expiry = $3,
		    email_verification_token_used = FALSE,
		    updated_at = NOW()
		WHERE id = $1
	`, id, token, expiry)
}

func (r *UserRepository) MarkEmailVerified(ctx context.Context, id string) error {
	return r.exec(ctx, `
		UPDATE users
		SET is_email_verified = TRUE,
		    email_verification_token_used = TRUE,
		    updated_at = NOW()
		WHERE id = $1
	`, id)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM users WHERE id = $1`, id)
}

func (r *UserRepository) exec(ctx context.Context, query string, args ...any) error {
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapWriteErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
