package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/apperr"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/ids"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/models"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/notify"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/permission"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/repository"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/security"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/session"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/tenant"
)

const InviteTTL = 7 * 24 * time.Hour

const WarningInviteNotSent = "invitation email could not be sent"

var grantableModules = map[string]struct{}{
	permission.ModuleOrders:    {},
	permission.ModuleInventory: {},
	permission.ModuleVendors:   {},
	permission.ModuleAccounts:  {},
	permission.ModulePayments:  {},
	permission.ModuleTeam:      {},
}

// ValidatePermissions checks that every grant names a known module and a
// known action.
func ValidatePermissions(p models.Permissions) error {
	var problems []string
	for module, actions := range p {
		if _, ok := grantableModules[module]; !ok {
			problems = append(problems, fmt.Sprintf("unknown module %q", module))
			continue
		}
		for _, action := range actions {
			if action != permission.ActionView && action != permission.ActionEdit {
				problems = append(problems, fmt.Sprintf("unknown action %q for %s", action, module))
			}
		}
	}
	if len(problems) > 0 {
		return apperr.InvalidInputDetails("invalid permissions", problems)
	}
	return nil
}

type TeamService struct {
	store    repository.Store
	checker  *permission.Checker
	sessions *session.Registry
	hasher   security.Hasher
	notifier notify.Notifier
	now      func() time.Time
	log      zerolog.Logger
}

func NewTeamService(
	store repository.Store,
	checker *permission.Checker,
	sessions *session.Registry,
	hasher security.Hasher,
	notifier notify.Notifier,
	log zerolog.Logger,
) *TeamService {
	return &TeamService{
		store:    store,
		checker:  checker,
		sessions: sessions,
		hasher:   hasher,
		notifier: notifier,
		now:      time.Now,
		log:      log.With().Str("component", "team").Logger(),
	}
}

func (s *TeamService) List(ctx context.Context, actorID string) ([]models.TeamMember, error) {
	actor, _, err := s.checker.Check(ctx, actorID, permission.ModuleTeam, permission.ActionView)
	if err != nil {
		return nil, err
	}
	members, err := s.store.TeamMembers().ListByAdmin(ctx, actor.TenantID())
	if err != nil {
		return nil, apperr.Store("list team members", err)
	}
	return members, nil
}

type InviteInput struct {
	Email       string
	Name        string
	Permissions models.Permissions
}

type InviteResult struct {
	Member models.TeamMember
	Email  Delivery
}

// Invite creates a pending member in the actor's tenant and mails the
// invite token. Re-inviting an inactive or still-pending member starts a
// fresh pending invitation.
func (s *TeamService) Invite(ctx context.Context, actorID string, input InviteInput) (InviteResult, error) {
	actor, _, err := s.checker.Check(ctx, actorID, permission.ModuleTeam, permission.ActionEdit)
	if err != nil {
		return InviteResult{}, err
	}
	email := normalizeEmail(input.Email)
	if email == "" {
		return InviteResult{}, apperr.InvalidInput("email required")
	}
	if err := ValidatePermissions(input.Permissions); err != nil {
		return InviteResult{}, err
	}
	adminID := actor.TenantID()
	// A former member of this tenant keeps their account and may be invited
	// back; any other registered email is taken.
	if existing, err := s.store.Users().FindByEmail(ctx, email); err == nil {
		if !isMemberOf(existing, adminID) {
			return InviteResult{}, apperr.Conflict("email already registered")
		}
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return InviteResult{}, apperr.Store("find user", err)
	}

	token, err := security.GenerateVerificationToken()
	if err != nil {
		return InviteResult{}, apperr.Store("generate invite token", err)
	}
	expiry := s.now().Add(InviteTTL)

	member, err := s.store.TeamMembers().FindByEmail(ctx, adminID, email)
	switch {
	case err == nil:
		if member.Status == models.TeamMemberActive {
			return InviteResult{}, apperr.Conflict("team member already active")
		}
		member.Name = strings.TrimSpace(input.Name)
		member.Permissions = input.Permissions.Clone()
		member.Status = models.TeamMemberPending
		member.UserID = nil
		member.InviteToken = &token
		member.InviteTokenExpiry = &expiry
		if err := s.store.TeamMembers().Update(ctx, member); err != nil {
			return InviteResult{}, apperr.Store("update team member", err)
		}
	case errors.Is(err, repository.ErrTeamMemberNotFound):
		member = models.TeamMember{
			ID:                ids.New(),
			AdminID:           adminID,
			Email:             email,
			Name:              strings.TrimSpace(input.Name),
			Permissions:       input.Permissions.Clone(),
			Status:            models.TeamMemberPending,
			InviteToken:       &token,
			InviteTokenExpiry: &expiry,
		}
		if err := s.store.TeamMembers().Create(ctx, member); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return InviteResult{}, apperr.Conflict("team member already invited")
			}
			return InviteResult{}, apperr.Store("create team member", err)
		}
	default:
		return InviteResult{}, apperr.Store("find team member", err)
	}

	s.log.Info().Str("actor_id", actor.ID).Str("admin_id", adminID).Str("member_id", member.ID).Msg("team member invited")
	inviter := actor.Name
	if inviter == "" {
		inviter = actor.Email
	}
	res := s.notifier.SendTeamInvite(ctx, email, member.Name, inviter, token)
	return InviteResult{Member: member, Email: deliveryOf(res, WarningInviteNotSent)}, nil
}

type AcceptInput struct {
	Token    string
	Password string
	Name     string
}

func isMemberOf(user models.User, adminID string) bool {
	return user.Role == models.UserRoleTeamMember && user.AdminID != nil && *user.AdminID == adminID
}

// Accept turns a pending invitation into an active team_member account
// scoped to the inviting tenant. A returning member's account is reinstated
// with the new password and grants.
func (s *TeamService) Accept(ctx context.Context, input AcceptInput) (models.User, error) {
	if input.Token == "" {
		return models.User{}, apperr.InvalidInput("invite token required")
	}
	member, err := s.store.TeamMembers().FindByInviteToken(ctx, input.Token)
	if errors.Is(err, repository.ErrTeamMemberNotFound) {
		return models.User{}, apperr.InvalidInput("invalid invite token")
	}
	if err != nil {
		return models.User{}, apperr.Store("find invite", err)
	}
	if member.Status != models.TeamMemberPending {
		return models.User{}, apperr.InvalidInput("invite is no longer pending")
	}
	if member.InviteTokenExpiry == nil || s.now().After(*member.InviteTokenExpiry) {
		return models.User{}, apperr.InvalidInput("invite expired")
	}
	if err := checkPassword(input.Password); err != nil {
		return models.User{}, err
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return models.User{}, apperr.Store("hash password", err)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = member.Name
	}
	adminID := member.AdminID
	user := models.User{
		ID:                   ids.New(),
		Email:                member.Email,
		Name:                 name,
		PasswordHash:         passwordHash,
		Role:                 models.UserRoleTeamMember,
		AdminID:              &adminID,
		IsActive:             true,
		PlanApprovalStatus:   models.ApprovalApproved,
		VendorApprovalStatus: models.ApprovalPending,
		Permissions:          member.Permissions.Clone(),
		IsEmailVerified:      true,
	}

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		existing, err := tx.Users().FindByEmail(ctx, member.Email)
		switch {
		case err == nil:
			if !isMemberOf(existing, adminID) {
				return apperr.Conflict("email already registered")
			}
			err := tx.Users().Reinstate(ctx, existing.ID, repository.Reinstatement{
				Name:         name,
				PasswordHash: passwordHash,
				Permissions:  member.Permissions,
			})
			if err != nil {
				return apperr.Store("reinstate member account", err)
			}
			existing.Name, existing.PasswordHash = name, passwordHash
			existing.Permissions = member.Permissions.Clone()
			existing.IsActive, existing.IsEmailVerified = true, true
			user = existing
		case errors.Is(err, repository.ErrUserNotFound):
			if err := tx.Users().Create(ctx, user); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					return apperr.Conflict("email already registered")
				}
				return apperr.Store("create user", err)
			}
		default:
			return apperr.Store("find user", err)
		}
		userID := user.ID
		member.UserID = &userID
		member.Name = name
		member.Status = models.TeamMemberActive
		member.InviteToken = nil
		member.InviteTokenExpiry = nil
		if err := tx.TeamMembers().Update(ctx, member); err != nil {
			return apperr.Store("activate team member", err)
		}
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	s.log.Info().Str("member_id", member.ID).Str("user_id", user.ID).Msg("invite accepted")
	return user, nil
}

// member loads memberID if it belongs to the actor's tenant. Members of
// other tenants are reported as missing.
func (s *TeamService) member(ctx context.Context, actor models.User, memberID string) (models.TeamMember, error) {
	member, err := s.store.TeamMembers().GetByID(ctx, memberID)
	if errors.Is(err, repository.ErrTeamMemberNotFound) {
		return models.TeamMember{}, apperr.NotFound("team member")
	}
	if err != nil {
		return models.TeamMember{}, apperr.Store("load team member", err)
	}
	if !tenant.For(actor).Owns(member.AdminID) {
		return models.TeamMember{}, apperr.NotFound("team member")
	}
	return member, nil
}

// UpdatePermissions replaces a member's grants. The linked account picks
// them up on its next permission check.
func (s *TeamService) UpdatePermissions(ctx context.Context, actorID, memberID string, perms models.Permissions) (models.TeamMember, error) {
	actor, _, err := s.checker.Check(ctx, actorID, permission.ModuleTeam, permission.ActionEdit)
	if err != nil {
		return models.TeamMember{}, err
	}
	if err := ValidatePermissions(perms); err != nil {
		return models.TeamMember{}, err
	}
	member, err := s.member(ctx, actor, memberID)
	if err != nil {
		return models.TeamMember{}, err
	}
	if member.UserID != nil && *member.UserID == actor.ID {
		return models.TeamMember{}, apperr.Invariant("cannot change your own permissions")
	}

	member.Permissions = perms.Clone()
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.TeamMembers().Update(ctx, member); err != nil {
			return apperr.Store("update team member", err)
		}
		if member.UserID == nil {
			return nil
		}
		if err := tx.Users().SetPermissions(ctx, *member.UserID, perms); err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return apperr.Store("update member permissions", err)
		}
		return nil
	})
	if err != nil {
		return models.TeamMember{}, err
	}
	s.log.Info().Str("actor_id", actor.ID).Str("member_id", memberID).Msg("team permissions updated")
	return member, nil
}

// Deactivate marks the member inactive and blocks the linked account.
func (s *TeamService) Deactivate(ctx context.Context, actorID, memberID string) (models.TeamMember, error) {
	actor, _, err := s.checker.Check(ctx, actorID, permission.ModuleTeam, permission.ActionEdit)
	if err != nil {
		return models.TeamMember{}, err
	}
	member, err := s.member(ctx, actor, memberID)
	if err != nil {
		return models.TeamMember{}, err
	}
	if member.UserID != nil && *member.UserID == actor.ID {
		return models.TeamMember{}, apperr.Invariant("cannot deactivate yourself")
	}

	member.Status = models.TeamMemberInactive
	member.InviteToken = nil
	member.InviteTokenExpiry = nil
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.TeamMembers().Update(ctx, member); err != nil {
			return apperr.Store("deactivate team member", err)
		}
		if member.UserID == nil {
			return nil
		}
		if err := tx.Users().SetActive(ctx, *member.UserID, false); err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return apperr.Store("deactivate member account", err)
		}
		return nil
	})
	if err != nil {
		return models.TeamMember{}, err
	}

	if member.UserID != nil {
		if _, err := s.sessions.RevokeAll(ctx, *member.UserID); err != nil {
			s.log.Warn().Err(err).Str("member_id", memberID).Msg("eager session revoke failed")
		}
	}
	s.log.Info().Str("actor_id", actor.ID).Str("member_id", memberID).Msg("team member deactivated")
	return member, nil
}
