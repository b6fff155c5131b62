package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/apperr"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/approval"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/models"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/repository"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/session"
)

// AdminService holds the master-admin account operations outside the
// approval workflow.
type AdminService struct {
	store     repository.Store
	approvals *approval.Service
	sessions  *session.Registry
	log       zerolog.Logger
}

func NewAdminService(store repository.Store, approvals *approval.Service, sessions *session.Registry, log zerolog.Logger) *AdminService {
	return &AdminService{
		store:     store,
		approvals: approvals,
		sessions:  sessions,
		log:       log.With().Str("component", "admin").Logger(),
	}
}

// target loads userID for a destructive operation. Master admins are
// protected whoever the caller is, so that check runs before the caller's
// own guard is reported.
func (s *AdminService) target(ctx context.Context, actorID, userID, op string) (models.User, models.User, error) {
	actor, guardErr := s.approvals.RequireMasterAdmin(ctx, actorID)
	user, err := s.store.Users().GetByID(ctx, userID)
	if err == nil {
		if err := approval.ProtectMasterAdmin(user, op); err != nil {
			return models.User{}, models.User{}, err
		}
	}
	if guardErr != nil {
		return models.User{}, models.User{}, guardErr
	}
	if errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, models.User{}, apperr.NotFound("user")
	}
	if err != nil {
		return models.User{}, models.User{}, apperr.Store("load user", err)
	}
	return actor, user, nil
}

// Block deactivates the account. Its sessions stop validating immediately
// through the lazy check; they are also revoked eagerly when possible.
func (s *AdminService) Block(ctx context.Context, actorID, userID string) (models.User, error) {
	actor, user, err := s.target(ctx, actorID, userID, "block")
	if err != nil {
		return models.User{}, err
	}
	if err := s.store.Users().SetActive(ctx, userID, false); err != nil {
		return models.User{}, apperr.Store("block user", err)
	}
	if n, err := s.sessions.RevokeAll(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("eager session revoke failed")
	} else {
		s.log.Info().Str("actor_id", actor.ID).Str("user_id", userID).Int64("sessions", n).Msg("user blocked")
	}
	user.IsActive = false
	return user, nil
}

// Unblock reactivates an approved account. Pending or rejected accounts go
// through the approval workflow instead.
func (s *AdminService) Unblock(ctx context.Context, actorID, userID string) (models.User, error) {
	actor, user, err := s.target(ctx, actorID, userID, "unblock")
	if err != nil {
		return models.User{}, err
	}
	if user.PlanApprovalStatus != models.ApprovalApproved && user.Role != models.UserRoleTeamMember {
		return models.User{}, apperr.Invariant("account is " + string(user.PlanApprovalStatus) + ", not approved")
	}
	if err := s.store.Users().SetActive(ctx, userID, true); err != nil {
		return models.User{}, apperr.Store("unblock user", err)
	}
	s.log.Info().Str("actor_id", actor.ID).Str("user_id", userID).Msg("user unblocked")
	user.IsActive = true
	return user, nil
}

func (s *AdminService) Delete(ctx context.Context, actorID, userID string) error {
	actor, _, err := s.target(ctx, actorID, userID, "delete")
	if err != nil {
		return err
	}
	if err := s.store.Users().Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.NotFound("user")
		}
		return apperr.Store("delete user", err)
	}
	if _, err := s.sessions.RevokeAll(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("eager session revoke failed")
	}
	s.log.Info().Str("actor_id", actor.ID).Str("user_id", userID).Msg("user deleted")
	return nil
}
