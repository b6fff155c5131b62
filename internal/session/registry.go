// Package session owns the server-side session lifecycle. A session is live
// only while its row is active, unexpired, and its owning user is active;
// revocation of a blocked user is applied lazily the next time one of the
// user's sessions is validated.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/apperr"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/ids"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/models"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/repository"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/security"
)

const DefaultTTL = 7 * 24 * time.Hour

type ClientMeta struct {
	IPAddress string
	UserAgent string
}

type Options struct {
	TTL time.Duration
	// MaxSessions caps the active sessions per user. Zero disables the cap.
	MaxSessions int
}

type Registry struct {
	store       repository.Store
	ttl         time.Duration
	maxSessions int
	now         func() time.Time
	log         zerolog.Logger
}

func NewRegistry(store repository.Store, opts Options, log zerolog.Logger) *Registry {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		store:       store,
		ttl:         ttl,
		maxSessions: opts.MaxSessions,
		now:         time.Now,
		log:         log.With().Str("component", "session").Logger(),
	}
}

func (r *Registry) TTL() time.Duration {
	return r.ttl
}

// Create issues a new session with an opaque 256-bit token.
func (r *Registry) Create(ctx context.Context, userID string, meta ClientMeta) (models.Session, error) {
	token, err := security.GenerateVerificationToken()
	if err != nil {
		return models.Session{}, apperr.Store("generate session token", err)
	}

	now := r.now()
	session := models.Session{
		ID:           ids.New(),
		UserID:       userID,
		SessionToken: token,
		IsActive:     true,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		CreatedAt:    now,
		LastActive:   now,
		ExpiresAt:    now.Add(r.ttl),
	}
	if err := r.store.Sessions().Create(ctx, session); err != nil {
		return models.Session{}, apperr.Store("create session", err)
	}

	if r.maxSessions > 0 {
		if err := r.store.Sessions().DeactivateOldest(ctx, userID, r.maxSessions); err != nil {
			r.log.Warn().Err(err).Str("user_id", userID).Msg("failed to trim old sessions")
		}
	}
	return session, nil
}

// Validate reports whether token is a live session of userID. Store failures
// are returned to the caller, which must treat them as a denial.
func (r *Registry) Validate(ctx context.Context, token, userID string) (bool, error) {
	if token == "" || userID == "" {
		return false, nil
	}

	session, err := r.store.Sessions().FindByToken(ctx, token)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Store("find session", err)
	}
	if session.UserID != userID || !session.IsActive {
		return false, nil
	}
	now := r.now()
	if !now.Before(session.ExpiresAt) {
		return false, nil
	}

	user, err := r.store.Users().GetByID(ctx, userID)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		r.deactivate(ctx, session, "user missing")
		return false, nil
	case err != nil:
		return false, apperr.Store("load session user", err)
	case !user.IsActive:
		r.deactivate(ctx, session, "user inactive")
		return false, nil
	}

	if err := r.store.Sessions().Touch(ctx, session.ID, now); err != nil {
		r.log.Warn().Err(err).Str("session_id", session.ID).Msg("failed to touch session")
	}
	return true, nil
}

// Probe is the fail-open variant used by the request gate: a store outage
// lets the request through to the route, which re-checks authoritatively.
func (r *Registry) Probe(ctx context.Context, token, userID string) bool {
	ok, err := r.Validate(ctx, token, userID)
	if err != nil {
		r.log.Warn().Err(err).Str("user_id", userID).Msg("session probe failed open")
		return true
	}
	return ok
}

// Logout deactivates the session holding token. Unknown tokens are ignored.
func (r *Registry) Logout(ctx context.Context, token string) error {
	session, err := r.store.Sessions().FindByToken(ctx, token)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return apperr.Store("find session", err)
	}
	if err := r.store.Sessions().Deactivate(ctx, session.ID); err != nil {
		return apperr.Store("deactivate session", err)
	}
	return nil
}

// RevokeAll deactivates every active session of userID.
func (r *Registry) RevokeAll(ctx context.Context, userID string) (int64, error) {
	n, err := r.store.Sessions().DeactivateByUser(ctx, userID)
	if err != nil {
		return 0, apperr.Store("revoke sessions", err)
	}
	return n, nil
}

// ReapExpired deactivates sessions past their expiry.
func (r *Registry) ReapExpired(ctx context.Context) (int64, error) {
	n, err := r.store.Sessions().DeactivateExpired(ctx, r.now())
	if err != nil {
		return 0, apperr.Store("reap sessions", err)
	}
	return n, nil
}

func (r *Registry) ListByUser(ctx context.Context, userID string) ([]models.Session, error) {
	sessions, err := r.store.Sessions().ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Store("list sessions", err)
	}
	return sessions, nil
}

func (r *Registry) deactivate(ctx context.Context, session models.Session, why string) {
	if err := r.store.Sessions().Deactivate(ctx, session.ID); err != nil {
		r.log.Error().Err(err).Str("session_id", session.ID).Msg("failed to deactivate session")
		return
	}
	r.log.Info().Str("session_id", session.ID).Str("user_id", session.UserID).Str("cause", why).Msg("session deactivated")
}
