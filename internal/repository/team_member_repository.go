package repository

import (
	"context"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/models"
)

const teamMemberColumns = `
	id, admin_id, email, name, user_id, COALESCE(permissions, '{}'::jsonb), status,
	invite_token, invite_token_expiry, created_at, updated_at`

type TeamMemberRepository struct {
	db dbtx
}

func (r *TeamMemberRepository) Create(ctx context.Context, member models.TeamMember) error {
	const query = `
		INSERT INTO team_members (
			id, admin_id, email, name, user_id, permissions, status,
			invite_token, invite_token_expiry, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, COALESCE($6, '{}'::jsonb), $7, $8, $9, NOW(), NOW()
		)
	`

	_, err := r.db.Exec(ctx, query,
		member.ID,
		member.AdminID,
		member.Email,
		member.Name,
		member.UserID,
		member.Permissions,
		member.Status,
		member.InviteToken,
		member.InviteTokenExpiry,
	)
	return mapWriteErr(err)
}

func scanTeamMember(row scanner) (models.TeamMember, error) {
	var member models.TeamMember
	err := row.Scan(
		&member.ID,
		&member.AdminID,
		&member.Email,
		&member.Name,
		&member.UserID,
		&member.Permissions,
		&member.Status,
		&member.InviteToken,
		&member.InviteTokenExpiry,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	return member, err
}

func (r *TeamMemberRepository) getOne(ctx context.Context, where string, args ...any) (models.TeamMember, error) {
	row := r.db.QueryRow(ctx, `SELECT `+teamMemberColumns+` FROM team_members WHERE `+where, args...)
	member, err := scanTeamMember(row)
	if err != nil {
		return models.TeamMember{}, notFound(err, ErrTeamMemberNotFound)
	}
	return member, nil
}

func (r *TeamMemberRepository) GetByID(ctx context.Context, id string) (models.TeamMember, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *TeamMemberRepository) FindByEmail(ctx context.Context, adminID, email string) (models.TeamMember, error) {
	return r.getOne(ctx, `admin_id = $1 AND email = $2`, adminID, email)
}

func (r *TeamMemberRepository) FindByInviteToken(ctx context.Context, token string) (models.TeamMember, error) {
	return r.getOne(ctx, `invite_token = $1`, token)
}

func (r *TeamMemberRepository) ListByAdmin(ctx context.Context, adminID string) ([]models.TeamMember, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+teamMemberColumns+`
		FROM team_members
		WHERE admin_id = $1
		ORDER BY created_at ASC
	`, adminID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.TeamMember
	for rows.Next() {
		member, err := scanTeamMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (r *TeamMemberRepository) Update(ctx context.Context, member models.TeamMember) error {
	const query = `
		UPDATE team_members
		SET name = $2,
		    user_id = $3,
		    permissions = COALESCE($4, '{}'::jsonb),
		    status = $5,
		    invite_token = $6,
		    invite_token_expiry = $7,
		    updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.db.Exec(ctx, query,
		member.ID,
		member.Name,
		member.UserID,
		member.Permissions,
		member.Status,
		member.InviteToken,
		member.InviteTokenExpiry,
	)
	if err != nil {
		return mapWriteErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrTeamMemberNotFound
	}
	return nil
}
