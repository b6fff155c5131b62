package approval

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/apperr"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/models"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/permission"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/repository"
)

const moduleApprovals = "approvals"

type Service struct {
	store repository.Store
	sink  AuditSink
	now   func() time.Time
	log   zerolog.Logger
}

func NewService(store repository.Store, sink AuditSink, log zerolog.Logger) *Service {
	if sink == nil {
		sink = nopSink{}
	}
	return &Service{
		store: store,
		sink:  sink,
		now:   time.Now,
		log:   log.With().Str("component", "approval").Logger(),
	}
}

// BatchResult reports which ids a batch decision changed. Ids that were
// missing or no longer pending are reported as skipped and left untouched.
type BatchResult struct {
	Applied []string `json:"applied"`
	Skipped []string `json:"skipped"`
}

// RequireMasterAdmin re-reads the actor and fails unless it is an active
// master admin.
func (s *Service) RequireMasterAdmin(ctx context.Context, actorID string) (models.User, error) {
	actor, err := s.store.Users().GetByID(ctx, actorID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, apperr.Authentication("principal not found")
	}
	if err != nil {
		return models.User{}, apperr.Store("load actor", err)
	}
	if !actor.IsActive {
		return models.User{}, apperr.Authentication("account inactive")
	}
	if actor.Role != models.UserRoleMasterAdmin {
		s.log.Warn().Str("actor_id", actorID).Str("role", string(actor.Role)).Msg("approval denied")
		return models.User{}, apperr.Authorization("master admin required", moduleApprovals, permission.ActionEdit)
	}
	return actor, nil
}

// ProtectMasterAdmin rejects destructive operations aimed at a master admin.
func ProtectMasterAdmin(target models.User, op string) error {
	if target.Role == models.UserRoleMasterAdmin {
		return apperr.Invariant("cannot " + op + " a master admin")
	}
	return nil
}

func (s *Service) ApproveUser(ctx context.Context, actorID, userID string) (models.User, error) {
	return s.decideUser(ctx, actorID, userID, models.ApprovalApproved)
}

func (s *Service) RejectUser(ctx context.Context, actorID, userID string) (models.User, error) {
	return s.decideUser(ctx, actorID, userID, models.ApprovalRejected)
}

func (s *Service) decideUser(ctx context.Context, actorID, userID string, to models.ApprovalStatus) (models.User, error) {
	actor, guardErr := s.RequireMasterAdmin(ctx, actorID)
	target, err := s.store.Users().GetByID(ctx, userID)
	if err == nil && to == models.ApprovalRejected {
		if err := ProtectMasterAdmin(target, "reject"); err != nil {
			return models.User{}, err
		}
	}
	if guardErr != nil {
		return models.User{}, guardErr
	}
	if errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, apperr.NotFound("user")
	}
	if err != nil {
		return models.User{}, apperr.Store("load user", err)
	}
	if err := Transition(EntityAccount, target.PlanApprovalStatus, to); err != nil {
		return models.User{}, err
	}

	now := s.now()
	var cascaded []string
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		decision := repository.AccountDecision{Status: to, IsActive: to == models.ApprovalApproved}
		if target.Role == models.UserRolePublicVendor {
			vendorStatus := to
			decision.VendorApprovalStatus = &vendorStatus
		}
		if err := tx.Users().ApplyAccountDecision(ctx, userID, decision); err != nil {
			if errors.Is(err, repository.ErrNotPending) {
				return apperr.Invariant("account is no longer pending")
			}
			return apperr.Store("apply account decision", err)
		}
		if target.Role != models.UserRolePublicVendor {
			return nil
		}

		// Keep the self-registered vendor in step with its account.
		vendor, err := tx.Vendors().FindByPublicUser(ctx, userID)
		if errors.Is(err, repository.ErrVendorNotFound) {
			return nil
		}
		if err != nil {
			return apperr.Store("load linked vendor", err)
		}
		err = tx.Vendors().ApplyDecision(ctx, vendor.ID, vendorDecision(to, actor.ID, now, nil))
		switch {
		case errors.Is(err, repository.ErrNotPending):
			return nil
		case err != nil:
			return apperr.Store("apply linked vendor decision", err)
		}
		cascaded = append(cascaded, string(EntityVendor)+":"+vendor.ID)
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	s.log.Info().Str("actor_id", actor.ID).Str("user_id", userID).Str("to", string(to)).Msg("account decided")
	record(ctx, s.sink, s.log, Event{
		Entity:   EntityAccount,
		IDs:      []string{userID},
		From:     models.ApprovalPending,
		To:       to,
		ActorID:  actor.ID,
		At:       now,
		Cascaded: cascaded,
	})

	updated, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return models.User{}, apperr.Store("reload user", err)
	}
	return updated, nil
}

func vendorDecision(to models.ApprovalStatus, actorID string, at time.Time, autoApprove *bool) repository.VendorDecision {
	decision := repository.VendorDecision{
		Status:      to,
		VendorState: models.VendorStatusActive,
		IsActive:    true,
		AutoApprove: autoApprove,
		DecidedBy:   actorID,
		DecidedAt:   at,
	}
	if to == models.ApprovalRejected {
		decision.VendorState = models.VendorStatusRejected
		decision.IsActive = false
		decision.AutoApprove = nil
	}
	return decision
}

// ApproveVendor approves a pending vendor. A non-nil autoApprove also sets
// the vendor's inventory auto-approval flag.
func (s *Service) ApproveVendor(ctx context.Context, actorID, vendorID string, autoApprove *bool) (models.Vendor, error) {
	return s.decideVendor(ctx, actorID, vendorID, models.ApprovalApproved, autoApprove)
}

func (s *Service) RejectVendor(ctx context.Context, actorID, vendorID string) (models.Vendor, error) {
	return s.decideVendor(ctx, actorID, vendorID, models.ApprovalRejected, nil)
}

func (s *Service) decideVendor(ctx context.Context, actorID, vendorID string, to models.ApprovalStatus, autoApprove *bool) (models.Vendor, error) {
	actor, err := s.RequireMasterAdmin(ctx, actorID)
	if err != nil {
		return models.Vendor{}, err
	}
	vendor, err := s.loadVendor(ctx, vendorID)
	if err != nil {
		return models.Vendor{}, err
	}
	if err := Transition(EntityVendor, vendor.ApprovalStatus, to); err != nil {
		return models.Vendor{}, err
	}

	now := s.now()
	var cascaded []string
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		err := tx.Vendors().ApplyDecision(ctx, vendorID, vendorDecision(to, actor.ID, now, autoApprove))
		if errors.Is(err, repository.ErrNotPending) {
			return apperr.Invariant("vendor is no longer pending")
		}
		if err != nil {
			return apperr.Store("apply vendor decision", err)
		}
		if vendor.PublicVendorUserID == nil {
			return nil
		}

		linkedID := *vendor.PublicVendorUserID
		err = tx.Users().SetVendorApproval(ctx, linkedID, to, to == models.ApprovalApproved)
		if errors.Is(err, repository.ErrUserNotFound) {
			s.log.Warn().Str("vendor_id", vendorID).Str("user_id", linkedID).Msg("linked vendor account missing")
			return nil
		}
		if err != nil {
			return apperr.Store("apply linked account decision", err)
		}
		cascaded = append(cascaded, string(EntityAccount)+":"+linkedID)
		return nil
	})
	if err != nil {
		return models.Vendor{}, err
	}

	s.log.Info().Str("actor_id", actor.ID).Str("vendor_id", vendorID).Str("to", string(to)).Msg("vendor decided")
	record(ctx, s.sink, s.log, Event{
		Entity:   EntityVendor,
		IDs:      []string{vendorID},
		From:     models.ApprovalPending,
		To:       to,
		ActorID:  actor.ID,
		At:       now,
		Cascaded: cascaded,
	})
	return s.loadVendor(ctx, vendorID)
}

func (s *Service) ToggleAutoApprove(ctx context.Context, actorID, vendorID string, enabled bool) (models.Vendor, error) {
	actor, err := s.RequireMasterAdmin(ctx, actorID)
	if err != nil {
		return models.Vendor{}, err
	}
	err = s.store.Vendors().SetAutoApprove(ctx, vendorID, enabled)
	if errors.Is(err, repository.ErrVendorNotFound) {
		return models.Vendor{}, apperr.NotFound("vendor")
	}
	if err != nil {
		return models.Vendor{}, apperr.Store("set auto approve", err)
	}
	s.log.Info().Str("actor_id", actor.ID).Str("vendor_id", vendorID).Bool("enabled", enabled).Msg("auto approve toggled")
	return s.loadVendor(ctx, vendorID)
}

func (s *Service) loadVendor(ctx context.Context, vendorID string) (models.Vendor, error) {
	vendor, err := s.store.Vendors().GetByID(ctx, vendorID)
	if errors.Is(err, repository.ErrVendorNotFound) {
		return models.Vendor{}, apperr.NotFound("vendor")
	}
	if err != nil {
		return models.Vendor{}, apperr.Store("load vendor", err)
	}
	return vendor, nil
}

func (s *Service) ApproveProducts(ctx context.Context, actorID string, productIDs []string) (BatchResult, error) {
	return s.decideProducts(ctx, actorID, productIDs, models.ApprovalApproved)
}

func (s *Service) RejectProducts(ctx context.Context, actorID string, productIDs []string) (BatchResult, error) {
	return s.decideProducts(ctx, actorID, productIDs, models.ApprovalRejected)
}

func (s *Service) decideProducts(ctx context.Context, actorID string, productIDs []string, to models.ApprovalStatus) (BatchResult, error) {
	actor, err := s.RequireMasterAdmin(ctx, actorID)
	if err != nil {
		return BatchResult{}, err
	}
	ids := normalizeIDs(productIDs)
	if len(ids) == 0 {
		return BatchResult{}, apperr.InvalidInput("productIds required")
	}

	now := s.now()
	var applied []string
	if to == models.ApprovalApproved {
		applied, err = s.store.Products().ApprovePending(ctx, ids, actor.ID, now)
	} else {
		applied, err = s.store.Products().RejectPending(ctx, ids, actor.ID, now)
	}
	if err != nil {
		return BatchResult{}, apperr.Store("apply product decision", err)
	}

	result := BatchResult{Applied: applied, Skipped: []string{}}
	if result.Applied == nil {
		result.Applied = []string{}
	}
	done := make(map[string]struct{}, len(applied))
	for _, id := range applied {
		done[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := done[id]; !ok {
			result.Skipped = append(result.Skipped, id)
		}
	}

	s.log.Info().
		Str("actor_id", actor.ID).
		Str("to", string(to)).
		Int("applied", len(result.Applied)).
		Int("skipped", len(result.Skipped)).
		Msg("products decided")
	if len(result.Applied) > 0 {
		record(ctx, s.sink, s.log, Event{
			Entity:  EntityProduct,
			IDs:     result.Applied,
			From:    models.ApprovalPending,
			To:      to,
			ActorID: actor.ID,
			At:      now,
		})
	}
	return result, nil
}

func normalizeIDs(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, id := range in {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *Service) ListPendingAccounts(ctx context.Context, actorID string) ([]models.User, error) {
	if _, err := s.RequireMasterAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	users, err := s.store.Users().ListByPlanStatus(ctx, models.ApprovalPending)
	if err != nil {
		return nil, apperr.Store("list pending accounts", err)
	}
	return users, nil
}

func (s *Service) ListPendingVendors(ctx context.Context, actorID string) ([]models.Vendor, error) {
	if _, err := s.RequireMasterAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	vendors, err := s.store.Vendors().ListByApprovalStatus(ctx, models.ApprovalPending)
	if err != nil {
		return nil, apperr.Store("list pending vendors", err)
	}
	return vendors, nil
}

// ListPendingProducts returns the pending inventory of public vendors.
// Private and virtual vendor inventory never waits for approval.
func (s *Service) ListPendingProducts(ctx context.Context, actorID string) ([]models.Product, error) {
	if _, err := s.RequireMasterAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	products, err := s.store.Products().ListPendingForPublicVendors(ctx)
	if err != nil {
		return nil, apperr.Store("list pending products", err)
	}
	return products, nil
}
