package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/apperr"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/ids"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/models"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/permission"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/repository"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/tenant"
)

const ReasonPublicVendorCreate = "public vendors cannot add vendors"

// CatalogService serves the tenant-scoped vendor and inventory records.
type CatalogService struct {
	store   repository.Store
	checker *permission.Checker
	now     func() time.Time
	log     zerolog.Logger
}

func NewCatalogService(store repository.Store, checker *permission.Checker, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		store:   store,
		checker: checker,
		now:     time.Now,
		log:     log.With().Str("component", "catalog").Logger(),
	}
}

func (s *CatalogService) ListVendors(ctx context.Context, actorID string) ([]models.Vendor, error) {
	actor, _, err := s.checker.Check(ctx, actorID, permission.ModuleVendors, permission.ActionView)
	if err != nil {
		return nil, err
	}
	vendors, err := s.store.Vendors().ListByAdmin(ctx, tenant.For(actor).Filter())
	if err != nil {
		return nil, apperr.Store("list vendors", err)
	}
	return vendors, nil
}

type CreateVendorInput struct {
	Name       string
	VendorType models.VendorType
}

// CreateVendor adds a private or virtual vendor to the actor's tenant.
// These start approved, so public vendors may not add them. Public vendors
// only come from self-registration.
func (s *CatalogService) CreateVendor(ctx context.Context, actorID string, input CreateVendorInput) (models.Vendor, error) {
	actor, _, err := s.checker.Check(ctx, actorID, permission.ModuleVendors, permission.ActionEdit)
	if err != nil {
		return models.Vendor{}, err
	}
	if actor.Role == models.UserRolePublicVendor {
		return models.Vendor{}, apperr.Authorization(ReasonPublicVendorCreate, permission.ModuleVendors, permission.ActionEdit)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Vendor{}, apperr.InvalidInput("vendor name required")
	}
	switch input.VendorType {
	case models.VendorTypePrivate, models.VendorTypeVirtual:
	case models.VendorTypePublic:
		return models.Vendor{}, apperr.InvalidInput("public vendors register through signup")
	default:
		return models.Vendor{}, apperr.InvalidInput("vendorType must be private or virtual")
	}

	now := s.now()
	approvedBy := actor.ID
	vendor := models.Vendor{
		ID:             ids.New(),
		Name:           name,
		VendorType:     input.VendorType,
		ApprovalStatus: models.ApprovalApproved,
		Status:         models.VendorStatusActive,
		IsActive:       true,
		AdminID:        tenant.For(actor).AdminID,
		ApprovedBy:     &approvedBy,
		ApprovedAt:     &now,
	}
	if err := s.store.Vendors().Create(ctx, vendor); err != nil {
		return models.Vendor{}, apperr.Store("create vendor", err)
	}
	s.log.Info().Str("actor_id", actor.ID).Str("vendor_id", vendor.ID).Str("type", string(vendor.VendorType)).Msg("vendor created")
	return vendor, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, actorID string) ([]models.Product, error) {
	actor, _, err := s.checker.Check(ctx, actorID, permission.ModuleInventory, permission.ActionView)
	if err != nil {
		return nil, err
	}
	products, err := s.store.Products().ListByAdmin(ctx, tenant.For(actor).Filter())
	if err != nil {
		return nil, apperr.Store("list products", err)
	}
	return products, nil
}

type CreateProductInput struct {
	VendorID string
	Name     string
	SKU      string
}

// CreateProduct adds inventory under one of the tenant's vendors. Items of a
// public vendor wait for approval unless the vendor has auto-approval on.
func (s *CatalogService) CreateProduct(ctx context.Context, actorID string, input CreateProductInput) (models.Product, error) {
	actor, _, err := s.checker.Check(ctx, actorID, permission.ModuleInventory, permission.ActionEdit)
	if err != nil {
		return models.Product{}, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Product{}, apperr.InvalidInput("product name required")
	}

	vendor, err := s.store.Vendors().GetByID(ctx, input.VendorID)
	if errors.Is(err, repository.ErrVendorNotFound) || (err == nil && !tenant.For(actor).Owns(vendor.AdminID)) {
		return models.Product{}, apperr.NotFound("vendor")
	}
	if err != nil {
		return models.Product{}, apperr.Store("load vendor", err)
	}
	if !vendor.IsActive || vendor.ApprovalStatus != models.ApprovalApproved {
		return models.Product{}, apperr.Invariant("vendor is not active")
	}

	product := models.Product{
		ID:             ids.New(),
		VendorID:       vendor.ID,
		AdminID:        vendor.AdminID,
		Name:           name,
		SKU:            strings.TrimSpace(input.SKU),
		ApprovalStatus: models.ApprovalPending,
		IsActive:       true,
	}
	if vendor.VendorType != models.VendorTypePublic || vendor.AutoApproveInventory {
		now := s.now()
		product.ApprovalStatus = models.ApprovalApproved
		approvedBy := actor.ID
		product.IsApproved = true
		product.ApprovedBy = &approvedBy
		product.ApprovedAt = &now
	}
	if err := s.store.Products().Create(ctx, product); err != nil {
		return models.Product{}, apperr.Store("create product", err)
	}
	s.log.Info().
		Str("actor_id", actor.ID).
		Str("product_id", product.ID).
		Str("status", string(product.ApprovalStatus)).
		Msg("product created")
	return product, nil
}
