package approval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/apperr"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/models"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/repository"
)

type recordingSink struct {
	events []Event
	err    error
}

func (s *recordingSink) Record(_ context.Context, e Event) error {
	s.events = append(s.events, e)
	return s.err
}

var fixedNow = time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

type fixture struct {
	store *repository.MemoryStore
	sink  *recordingSink
	svc   *Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()
	users := []models.User{
		{ID: "admin", Email: "admin@example.com", Role: models.UserRoleMasterAdmin, IsActive: true, PlanApprovalStatus: models.ApprovalApproved},
		{ID: "owner", Email: "owner@example.com", Role: models.UserRoleOwner, IsActive: true, PlanApprovalStatus: models.ApprovalApproved},
		{ID: "pending-owner", Email: "new@example.com", Role: models.UserRoleOwner, PlanApprovalStatus: models.ApprovalPending},
		{
			ID:                   "pv",
			Email:                "pv@example.com",
			Role:                 models.UserRolePublicVendor,
			PlanApprovalStatus:   models.ApprovalPending,
			VendorApprovalStatus: models.ApprovalPending,
		},
	}
	for _, u := range users {
		require.NoError(t, store.Users().Create(ctx, u))
	}
	vendors := []models.Vendor{
		{
			ID:                 "v-public",
			Name:               "Acme Wholesale",
			VendorType:         models.VendorTypePublic,
			ApprovalStatus:     models.ApprovalPending,
			Status:             models.VendorStatusPending,
			AdminID:            "pv",
			PublicVendorUserID: strPtr("pv"),
		},
		{
			ID:             "v-private",
			Name:           "In-house",
			VendorType:     models.VendorTypePrivate,
			ApprovalStatus: models.ApprovalApproved,
			Status:         models.VendorStatusActive,
			IsActive:       true,
			AdminID:        "owner",
		},
	}
	for _, v := range vendors {
		require.NoError(t, store.Vendors().Create(ctx, v))
	}

	sink := &recordingSink{}
	svc := NewService(store, sink, zerolog.Nop())
	svc.now = func() time.Time { return fixedNow }
	return fixture{store: store, sink: sink, svc: svc}
}

func (f fixture) addProduct(t *testing.T, id, vendorID string, status models.ApprovalStatus) {
	t.Helper()
	require.NoError(t, f.store.Products().Create(context.Background(), models.Product{
		ID:             id,
		VendorID:       vendorID,
		AdminID:        "pv",
		Name:           "item " + id,
		ApprovalStatus: status,
		IsApproved:     status == models.ApprovalApproved,
		IsActive:       true,
	}))
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperr.KindOf(err), err.Error())
}

func TestTransition(t *testing.T) {
	assert.NoError(t, Transition(EntityVendor, models.ApprovalPending, models.ApprovalApproved))
	assert.NoError(t, Transition(EntityVendor, models.ApprovalPending, models.ApprovalRejected))
	requireKind(t, Transition(EntityVendor, models.ApprovalApproved, models.ApprovalRejected), apperr.KindInvariant)
	requireKind(t, Transition(EntityVendor, models.ApprovalRejected, models.ApprovalApproved), apperr.KindInvariant)
	requireKind(t, Transition(EntityVendor, models.ApprovalRejected, models.ApprovalPending), apperr.KindInvalidInput)
}

func TestApproveVendorCascadesToLinkedAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	auto := true

	vendor, err := f.svc.ApproveVendor(ctx, "admin", "v-public", &auto)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, vendor.ApprovalStatus)
	assert.Equal(t, models.VendorStatusActive, vendor.Status)
	assert.True(t, vendor.IsActive)
	assert.True(t, vendor.AutoApproveInventory)
	require.NotNil(t, vendor.ApprovedBy)
	assert.Equal(t, "admin", *vendor.ApprovedBy)

	pv, err := f.store.Users().GetByID(ctx, "pv")
	require.NoError(t, err)
	assert.True(t, pv.IsActive)
	assert.Equal(t, models.ApprovalApproved, pv.VendorApprovalStatus)

	require.Len(t, f.sink.events, 1)
	assert.Equal(t, []string{"account:pv"}, f.sink.events[0].Cascaded)
}

func TestRejectVendorCascadesToLinkedAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	vendor, err := f.svc.RejectVendor(ctx, "admin", "v-public")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, vendor.ApprovalStatus)
	assert.Equal(t, models.VendorStatusRejected, vendor.Status)
	assert.False(t, vendor.IsActive)

	pv, err := f.store.Users().GetByID(ctx, "pv")
	require.NoError(t, err)
	assert.False(t, pv.IsActive)
	assert.Equal(t, models.ApprovalRejected, pv.VendorApprovalStatus)
}

func TestDecidingNonPendingVendorIsRejectedBeforeWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ApproveVendor(ctx, "admin", "v-public", nil)
	require.NoError(t, err)

	_, err = f.svc.RejectVendor(ctx, "admin", "v-public")
	requireKind(t, err, apperr.KindInvariant)
	_, err = f.svc.ApproveVendor(ctx, "admin", "v-public", nil)
	requireKind(t, err, apperr.KindInvariant)

	pv, err := f.store.Users().GetByID(ctx, "pv")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, pv.VendorApprovalStatus)
	assert.Len(t, f.sink.events, 1)

	_, err = f.svc.ApproveVendor(ctx, "admin", "missing", nil)
	requireKind(t, err, apperr.KindNotFound)
}

func TestNonMasterAdminCannotDecide(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addProduct(t, "p1", "v-public", models.ApprovalPending)

	_, err := f.svc.ApproveVendor(ctx, "owner", "v-public", nil)
	requireKind(t, err, apperr.KindAuthorization)
	_, err = f.svc.ApproveUser(ctx, "owner", "pending-owner")
	requireKind(t, err, apperr.KindAuthorization)
	_, err = f.svc.ApproveProducts(ctx, "owner", []string{"p1"})
	requireKind(t, err, apperr.KindAuthorization)
	_, err = f.svc.ToggleAutoApprove(ctx, "owner", "v-public", true)
	requireKind(t, err, apperr.KindAuthorization)
	_, err = f.svc.ApproveUser(ctx, "ghost", "pending-owner")
	requireKind(t, err, apperr.KindAuthentication)

	vendor, err := f.store.Vendors().GetByID(ctx, "v-public")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, vendor.ApprovalStatus)
	assert.False(t, vendor.AutoApproveInventory)
	product, err := f.store.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, product.ApprovalStatus)
	assert.Empty(t, f.sink.events)
}

func TestApproveUserActivatesAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, err := f.svc.ApproveUser(ctx, "admin", "pending-owner")
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.Equal(t, models.ApprovalApproved, user.PlanApprovalStatus)

	_, err = f.svc.ApproveUser(ctx, "admin", "pending-owner")
	requireKind(t, err, apperr.KindInvariant)
}

func TestApprovePublicVendorAccountSyncsVendor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, err := f.svc.ApproveUser(ctx, "admin", "pv")
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.Equal(t, models.ApprovalApproved, user.VendorApprovalStatus)

	vendor, err := f.store.Vendors().GetByID(ctx, "v-public")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, vendor.ApprovalStatus)
	assert.True(t, vendor.IsActive)
	require.Len(t, f.sink.events, 1)
	assert.Equal(t, []string{"vendor:v-public"}, f.sink.events[0].Cascaded)
}

func TestRejectUserDeactivates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, err := f.svc.RejectUser(ctx, "admin", "pv")
	require.NoError(t, err)
	assert.False(t, user.IsActive)
	assert.Equal(t, models.ApprovalRejected, user.PlanApprovalStatus)
	assert.Equal(t, models.ApprovalRejected, user.VendorApprovalStatus)

	vendor, err := f.store.Vendors().GetByID(ctx, "v-public")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, vendor.ApprovalStatus)
}

func TestRejectMasterAdminIsInvariantForAnyCaller(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, actor := range []string{"admin", "owner", "ghost"} {
		_, err := f.svc.RejectUser(ctx, actor, "admin")
		requireKind(t, err, apperr.KindInvariant)
	}
	admin, err := f.store.Users().GetByID(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsActive)
}

func TestBatchApproveSkipsDecidedProducts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addProduct(t, "p1", "v-public", models.ApprovalPending)
	f.addProduct(t, "p2", "v-public", models.ApprovalPending)

	earlier := fixedNow.Add(-time.Hour)
	_, err := f.store.Products().ApprovePending(ctx, []string{"p2"}, "admin", earlier)
	require.NoError(t, err)

	result, err := f.svc.ApproveProducts(ctx, "admin", []string{"p1", "p2", "p1", " ", "missing"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, result.Applied)
	assert.Equal(t, []string{"p2", "missing"}, result.Skipped)

	p1, err := f.store.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p1.IsApproved)
	require.NotNil(t, p1.ApprovedAt)
	assert.Equal(t, fixedNow, *p1.ApprovedAt)

	p2, err := f.store.Products().GetByID(ctx, "p2")
	require.NoError(t, err)
	require.NotNil(t, p2.ApprovedAt)
	assert.Equal(t, earlier, *p2.ApprovedAt)

	require.Len(t, f.sink.events, 1)
	assert.Equal(t, []string{"p1"}, f.sink.events[0].IDs)
}

func TestBatchRejectDeactivates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addProduct(t, "p1", "v-public", models.ApprovalPending)

	result, err := f.svc.RejectProducts(ctx, "admin", []string{"p1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, result.Applied)
	assert.Empty(t, result.Skipped)

	p1, err := f.store.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, p1.ApprovalStatus)
	assert.False(t, p1.IsActive)

	_, err = f.svc.RejectProducts(ctx, "admin", nil)
	requireKind(t, err, apperr.KindInvalidInput)
}

func TestListPendingProductsOnlyPublicVendors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addProduct(t, "p-public", "v-public", models.ApprovalPending)
	f.addProduct(t, "p-private", "v-private", models.ApprovalPending)

	products, err := f.svc.ListPendingProducts(ctx, "admin")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "p-public", products[0].ID)

	_, err = f.svc.ListPendingProducts(ctx, "owner")
	requireKind(t, err, apperr.KindAuthorization)
}

func TestAuditFailureDoesNotFailTransition(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.sink.err = errors.New("bucket unavailable")

	vendor, err := f.svc.ApproveVendor(ctx, "admin", "v-public", nil)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, vendor.ApprovalStatus)
}

func TestToggleAutoApprove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	vendor, err := f.svc.ToggleAutoApprove(ctx, "admin", "v-private", true)
	require.NoError(t, err)
	assert.True(t, vendor.AutoApproveInventory)

	vendor, err = f.svc.ToggleAutoApprove(ctx, "admin", "v-private", false)
	require.NoError(t, err)
	assert.False(t, vendor.AutoApproveInventory)

	_, err = f.svc.ToggleAutoApprove(ctx, "admin", "nope", true)
	requireKind(t, err, apperr.KindNotFound)
}
