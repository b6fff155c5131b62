package repository

import (
	"context"
	"time"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/models"
)

const sessionColumns = `
	id, user_id, session_token, is_active, ip_address, user_agent, created_at, last_active, expires_at`

type SessionRepository struct {
	db dbtx
}

func (r *SessionRepository) Create(ctx context.Context, session models.Session) error {
	const query = `
		INSERT INTO user_sessions (
			id, user_id, session_token, is_active, ip_address, user_agent, created_at, last_active, expires_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $7, $8
		)
	`

	_, err := r.db.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.SessionToken,
		session.IsActive,
		session.IPAddress,
		session.UserAgent,
		session.CreatedAt,
		session.ExpiresAt,
	)
	return mapWriteErr(err)
}

func scanSession(row scanner) (models.Session, error) {
	var session models.Session
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.SessionToken,
		&session.IsActive,
		&session.IPAddress,
		&session.UserAgent,
		&session.CreatedAt,
		&session.LastActive,
		&session.ExpiresAt,
	)
	return session, err
}

func (r *SessionRepository) FindByToken(ctx context.Context, token string) (models.Session, error) {
	row := r.db.QueryRow(ctx, `SELECT `+sessionColumns+` FROM user_sessions WHERE session_token = $1`, token)
	session, err := scanSession(row)
	if err != nil {
		return models.Session{}, notFound(err, ErrSessionNotFound)
	}
	return session, nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID string) ([]models.Session, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM user_sessions
		WHERE user_id = $1
		ORDER BY last_active DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (r *SessionRepository) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE user_sessions SET last_active = $2 WHERE id = $1`, id, at)
	return err
}

func (r *SessionRepository) Deactivate(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE user_sessions SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) DeactivateByUser(ctx context.Context, userID string) (int64, error) {
	cmd, err := r.db.Exec(ctx, `
		UPDATE user_sessions SET is_active = FALSE WHERE user_id = $1 AND is_active
	`, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// DeactivateOldest keeps the keepLatest most recently used active sessions
// of a user and deactivates the rest. Rows are kept for audit.
func (r *SessionRepository) DeactivateOldest(ctx context.Context, userID string, keepLatest int) error {
	const query = `
		UPDATE user_sessions SET is_active = FALSE
		WHERE id IN (
			SELECT id FROM user_sessions
			WHERE user_id = $1 AND is_active
			ORDER BY last_active DESC
			OFFSET $2
		)
	`
	_, err := r.db.Exec(ctx, query, userID, keepLatest)
	return err
}

func (r *SessionRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	cmd, err := r.db.Exec(ctx, `
		UPDATE user_sessions SET is_active = FALSE WHERE is_active AND expires_at <= $1
	`, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
