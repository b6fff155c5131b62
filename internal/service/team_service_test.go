package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/apperr"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/models"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/permission"
)

func TestInviteAndAccept(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.activeAccount(t, "o@example.com", models.UserRoleOwner)

	res, err := e.team.Invite(ctx, owner.ID, InviteInput{
		Email:       "Member@Example.com",
		Name:        "Mia",
		Permissions: models.Permissions{permission.ModuleInventory: {permission.ActionView}},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Email.Warning)
	assert.Equal(t, models.TeamMemberPending, res.Member.Status)
	assert.Equal(t, owner.ID, res.Member.AdminID)

	invite := e.notifier.last(t)
	assert.Equal(t, "invite", invite.kind)
	assert.Equal(t, "member@example.com", invite.to)

	user, err := e.team.Accept(ctx, AcceptInput{Token: invite.token, Password: goodPassword})
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleTeamMember, user.Role)
	require.NotNil(t, user.AdminID)
	assert.Equal(t, owner.ID, *user.AdminID)
	assert.Equal(t, "Mia", user.Name)

	member, err := e.store.TeamMembers().GetByID(ctx, res.Member.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TeamMemberActive, member.Status)
	assert.Nil(t, member.InviteToken)

	_, err = e.team.Accept(ctx, AcceptInput{Token: invite.token, Password: goodPassword})
	requireReason(t, err, apperr.KindInvalidInput, "invalid invite token")

	out, err := e.auth.Signin(ctx, SigninInput{Email: "member@example.com", Password: goodPassword})
	require.NoError(t, err)
	assert.Equal(t, user.ID, out.User.ID)
}

func TestInviteRules(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.activeAccount(t, "o@example.com", models.UserRoleOwner)
	pv := e.activeAccount(t, "pv@example.com", models.UserRolePublicVendor)

	_, err := e.team.Invite(ctx, pv.ID, InviteInput{Email: "m@example.com"})
	requireReason(t, err, apperr.KindAuthorization, permission.ReasonNoModuleAccess)

	_, err = e.team.Invite(ctx, owner.ID, InviteInput{Email: "m@example.com", Permissions: models.Permissions{"reports": {"view"}}})
	requireReason(t, err, apperr.KindInvalidInput, "invalid permissions")

	_, err = e.team.Invite(ctx, owner.ID, InviteInput{Email: "pv@example.com"})
	requireReason(t, err, apperr.KindConflict, "email already registered")

	first, err := e.team.Invite(ctx, owner.ID, InviteInput{Email: "m@example.com"})
	require.NoError(t, err)
	oldToken := e.notifier.last(t).token
	again, err := e.team.Invite(ctx, owner.ID, InviteInput{Email: "m@example.com"})
	require.NoError(t, err)
	assert.Equal(t, first.Member.ID, again.Member.ID)

	_, err = e.team.Accept(ctx, AcceptInput{Token: oldToken, Password: goodPassword})
	requireReason(t, err, apperr.KindInvalidInput, "invalid invite token")
}

func TestAcceptExpiredInvite(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.activeAccount(t, "o@example.com", models.UserRoleOwner)

	_, err := e.team.Invite(ctx, owner.ID, InviteInput{Email: "m@example.com"})
	require.NoError(t, err)
	e.team.now = func() time.Time { return time.Now().Add(InviteTTL + time.Hour) }

	_, err = e.team.Accept(ctx, AcceptInput{Token: e.notifier.last(t).token, Password: goodPassword})
	requireReason(t, err, apperr.KindInvalidInput, "invite expired")
}

func TestInviteNotifierFailureIsWarning(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.activeAccount(t, "o@example.com", models.UserRoleOwner)
	e.notifier.err = errors.New("queue down")

	res, err := e.team.Invite(ctx, owner.ID, InviteInput{Email: "m@example.com"})
	require.NoError(t, err)
	assert.Equal(t, WarningInviteNotSent, res.Email.Warning)
}

func TestInviteReportsSkippedEmail(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.activeAccount(t, "o@example.com", models.UserRoleOwner)
	e.notifier.skip = true

	res, err := e.team.Invite(ctx, owner.ID, InviteInput{Email: "m@example.com"})
	require.NoError(t, err)
	assert.Equal(t, Delivery{Skipped: true, Warning: WarningEmailDisabled}, res.Email)
	assert.Equal(t, models.TeamMemberPending, res.Member.Status)
}

func acceptedMember(t *testing.T, e env, ownerID, email string, perms models.Permissions) (models.TeamMember, models.User) {
	t.Helper()
	ctx := context.Background()
	res, err := e.team.Invite(ctx, ownerID, InviteInput{Email: email, Permissions: perms})
	require.NoError(t, err)
	user, err := e.team.Accept(ctx, AcceptInput{Token: e.notifier.last(t).token, Password: goodPassword})
	require.NoError(t, err)
	return res.Member, user
}

func TestUpdatePermissionsTakesEffectImmediately(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.activeAccount(t, "o@example.com", models.UserRoleOwner)
	member, user := acceptedMember(t, e, owner.ID, "m@example.com", models.Permissions{
		permission.ModuleVendors: {permission.ActionView},
	})

	_, err := e.catalog.CreateVendor(ctx, user.ID, CreateVendorInput{Name: "Depot", VendorType: models.VendorTypePrivate})
	requireReason(t, err, apperr.KindAuthorization, "no edit permission for vendors")

	_, err = e.team.UpdatePermissions(ctx, owner.ID, member.ID, models.Permissions{
		permission.ModuleVendors: {permission.ActionView, permission.ActionEdit},
	})
	require.NoError(t, err)

	vendor, err := e.catalog.CreateVendor(ctx, user.ID, CreateVendorInput{Name: "Depot", VendorType: models.VendorTypePrivate})
	require.NoError(t, err)
	assert.Equal(t, owner.ID, vendor.AdminID)
}

func TestTeamOperationsAreTenantScoped(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.activeAccount(t, "o@example.com", models.UserRoleOwner)
	other := e.activeAccount(t, "x@example.com", models.UserRoleOwner)
	member, _ := acceptedMember(t, e, owner.ID, "m@example.com", nil)

	_, err := e.team.Deactivate(ctx, other.ID, member.ID)
	requireReason(t, err, apperr.KindNotFound, "team member not found")

	members, err := e.team.List(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, members)

	members, err = e.team.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestDeactivateMemberBlocksAccount(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.activeAccount(t, "o@example.com", models.UserRoleOwner)
	member, user := acceptedMember(t, e, owner.ID, "m@example.com", models.Permissions{
		permission.ModuleOrders: {permission.ActionView},
	})

	out, err := e.auth.Signin(ctx, SigninInput{Email: "m@example.com", Password: goodPassword})
	require.NoError(t, err)

	deactivated, err := e.team.Deactivate(ctx, owner.ID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TeamMemberInactive, deactivated.Status)

	ok, err := e.auth.ValidateSession(ctx, out.Session.SessionToken, user.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = e.auth.Signin(ctx, SigninInput{Email: "m@example.com", Password: goodPassword})
	requireReason(t, err, apperr.KindAuthentication, ReasonAccountBlocked)
}

func TestReinviteDeactivatedMember(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.activeAccount(t, "o@example.com", models.UserRoleOwner)
	other := e.activeAccount(t, "x@example.com", models.UserRoleOwner)
	member, user := acceptedMember(t, e, owner.ID, "m@example.com", models.Permissions{
		permission.ModuleOrders: {permission.ActionView},
	})

	_, err := e.team.Invite(ctx, owner.ID, InviteInput{Email: "m@example.com"})
	requireReason(t, err, apperr.KindConflict, "team member already active")

	_, err = e.team.Deactivate(ctx, owner.ID, member.ID)
	require.NoError(t, err)

	_, err = e.team.Invite(ctx, other.ID, InviteInput{Email: "m@example.com"})
	requireReason(t, err, apperr.KindConflict, "email already registered")

	res, err := e.team.Invite(ctx, owner.ID, InviteInput{
		Email:       "m@example.com",
		Name:        "Mia",
		Permissions: models.Permissions{permission.ModuleInventory: {permission.ActionView}},
	})
	require.NoError(t, err)
	assert.Equal(t, member.ID, res.Member.ID)
	assert.Equal(t, models.TeamMemberPending, res.Member.Status)

	const newPassword = "An0ther-secret!"
	back, err := e.team.Accept(ctx, AcceptInput{Token: e.notifier.last(t).token, Password: newPassword})
	require.NoError(t, err)
	assert.Equal(t, user.ID, back.ID)
	assert.True(t, back.IsActive)
	assert.Equal(t, models.Permissions{permission.ModuleInventory: {permission.ActionView}}, back.Permissions)

	stored, err := e.store.TeamMembers().GetByID(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TeamMemberActive, stored.Status)
	require.NotNil(t, stored.UserID)
	assert.Equal(t, user.ID, *stored.UserID)

	_, err = e.auth.Signin(ctx, SigninInput{Email: "m@example.com", Password: goodPassword})
	requireReason(t, err, apperr.KindAuthentication, ReasonInvalidCredentials)
	out, err := e.auth.Signin(ctx, SigninInput{Email: "m@example.com", Password: newPassword})
	require.NoError(t, err)
	assert.Equal(t, user.ID, out.User.ID)

	_, err = e.catalog.ListProducts(ctx, user.ID)
	require.NoError(t, err)
	_, err = e.catalog.ListVendors(ctx, user.ID)
	requireReason(t, err, apperr.KindAuthorization, permission.ReasonNoModuleAccess)
}
