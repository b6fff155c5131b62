package service

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
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/notify"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/security"
)

func TestSignupOwnerStartsPending(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	res, err := e.auth.Signup(ctx, SignupInput{Email: "  Owner@Example.com ", Password: goodPassword, Name: "Olive"})
	require.NoError(t, err)
	assert.Empty(t, res.Email.Warning)
	assert.Nil(t, res.Vendor)

	user, err := e.store.Users().GetByID(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", user.Email)
	assert.Equal(t, models.UserRoleOwner, user.Role)
	assert.False(t, user.IsActive)
	assert.Equal(t, models.ApprovalPending, user.PlanApprovalStatus)
	require.NotNil(t, user.EmailVerificationToken)
	assert.Len(t, *user.EmailVerificationToken, 64)

	assert.Equal(t, sentMail{"verify", "owner@example.com", *user.EmailVerificationToken}, e.notifier.last(t))
}

func TestSignupPublicVendorCreatesLinkedVendor(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	res, err := e.auth.Signup(ctx, SignupInput{
		Email:      "pv@example.com",
		Password:   goodPassword,
		Role:       models.UserRolePublicVendor,
		VendorName: "Acme Wholesale",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Vendor)

	vendor, err := e.store.Vendors().FindByPublicUser(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Wholesale", vendor.Name)
	assert.Equal(t, models.VendorTypePublic, vendor.VendorType)
	assert.Equal(t, models.ApprovalPending, vendor.ApprovalStatus)
	assert.Equal(t, res.User.ID, vendor.AdminID)
}

func TestSignupValidation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.auth.Signup(ctx, SignupInput{Email: "a@example.com", Password: "abc"})
	requireReason(t, err, apperr.KindInvalidInput, "weak password")
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Details, "Password must be at least 8 characters long")
	assert.Contains(t, appErr.Details, "Password must contain at least one special character")

	_, err = e.auth.Signup(ctx, SignupInput{Email: "a@example.com", Password: goodPassword, Role: models.UserRoleMasterAdmin})
	requireReason(t, err, apperr.KindInvalidInput, "")

	_, err = e.auth.Signup(ctx, SignupInput{Email: "admin@example.com", Password: goodPassword})
	requireReason(t, err, apperr.KindConflict, "email already registered")
}

func TestSignupNotifierFailureIsWarning(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.notifier.err = errors.New("queue down")

	res, err := e.auth.Signup(ctx, SignupInput{Email: "a@example.com", Password: goodPassword})
	require.NoError(t, err)
	assert.Equal(t, WarningEmailNotSent, res.Email.Warning)

	_, err = e.store.Users().GetByID(ctx, res.User.ID)
	assert.NoError(t, err)
}

func TestSigninLifecycle(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	res, err := e.auth.Signup(ctx, SignupInput{Email: "a@example.com", Password: goodPassword})
	require.NoError(t, err)
	in := SigninInput{Email: "a@example.com", Password: goodPassword, IPAddress: "10.0.0.1"}

	_, err = e.auth.Signin(ctx, in)
	requireReason(t, err, apperr.KindAuthentication, ReasonEmailNotVerified)

	_, err = e.auth.VerifyEmail(ctx, e.notifier.last(t).token)
	require.NoError(t, err)
	_, err = e.auth.Signin(ctx, in)
	requireReason(t, err, apperr.KindAuthentication, ReasonAccountPending)

	_, err = e.approvals.ApproveUser(ctx, "admin", res.User.ID)
	require.NoError(t, err)

	_, err = e.auth.Signin(ctx, SigninInput{Email: "a@example.com", Password: "wrong"})
	requireReason(t, err, apperr.KindAuthentication, ReasonInvalidCredentials)
	_, err = e.auth.Signin(ctx, SigninInput{Email: "nobody@example.com", Password: goodPassword})
	requireReason(t, err, apperr.KindAuthentication, ReasonInvalidCredentials)

	out, err := e.auth.Signin(ctx, in)
	require.NoError(t, err)
	claims, err := security.ParseSessionEnvelope(out.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, out.Session.SessionToken, claims.SessionToken)
	assert.Equal(t, "10.0.0.1", out.Session.IPAddress)

	ok, err := e.auth.ValidateSession(ctx, claims.SessionToken, claims.UserID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, e.auth.Signout(ctx, claims.SessionToken))
	ok, err = e.auth.ValidateSession(ctx, claims.SessionToken, claims.UserID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSigninRejectedAndBlockedReasons(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	rejected, err := e.auth.Signup(ctx, SignupInput{Email: "r@example.com", Password: goodPassword})
	require.NoError(t, err)
	_, err = e.auth.VerifyEmail(ctx, e.notifier.last(t).token)
	require.NoError(t, err)
	_, err = e.approvals.RejectUser(ctx, "admin", rejected.User.ID)
	require.NoError(t, err)
	_, err = e.auth.Signin(ctx, SigninInput{Email: "r@example.com", Password: goodPassword})
	requireReason(t, err, apperr.KindAuthentication, ReasonAccountRejected)

	blocked := e.activeAccount(t, "b@example.com", models.UserRoleOwner)
	_, err = e.admin.Block(ctx, "admin", blocked.ID)
	require.NoError(t, err)
	_, err = e.auth.Signin(ctx, SigninInput{Email: "b@example.com", Password: goodPassword})
	requireReason(t, err, apperr.KindAuthentication, ReasonAccountBlocked)
}

func TestVerifyEmailTokenRules(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	res, err := e.auth.Signup(ctx, SignupInput{Email: "a@example.com", Password: goodPassword})
	require.NoError(t, err)
	token := e.notifier.last(t).token

	_, err = e.auth.VerifyEmail(ctx, "bogus")
	requireReason(t, err, apperr.KindInvalidInput, "invalid verification token")

	e.auth.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	_, err = e.auth.VerifyEmail(ctx, token)
	requireReason(t, err, apperr.KindInvalidInput, "verification token expired")

	e.auth.now = time.Now
	user, err := e.auth.VerifyEmail(ctx, token)
	require.NoError(t, err)
	assert.True(t, user.IsEmailVerified)
	assert.Equal(t, res.User.ID, user.ID)

	_, err = e.auth.VerifyEmail(ctx, token)
	requireReason(t, err, apperr.KindInvalidInput, "verification token already used")
}

func TestResendVerificationCommitsTokenDespiteNotifierFailure(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	res, err := e.auth.Signup(ctx, SignupInput{Email: "a@example.com", Password: goodPassword})
	require.NoError(t, err)
	first := e.notifier.last(t).token

	e.notifier.err = errors.New("queue down")
	delivery, err := e.auth.ResendVerification(ctx, "A@example.com")
	require.NoError(t, err)
	assert.Equal(t, Delivery{Warning: WarningEmailNotSent}, delivery)

	user, err := e.store.Users().GetByID(ctx, res.User.ID)
	require.NoError(t, err)
	require.NotNil(t, user.EmailVerificationToken)
	assert.NotEqual(t, first, *user.EmailVerificationToken)

	_, err = e.auth.VerifyEmail(ctx, *user.EmailVerificationToken)
	require.NoError(t, err)
	_, err = e.auth.ResendVerification(ctx, "a@example.com")
	requireReason(t, err, apperr.KindInvalidInput, "email already verified")
}

func TestSessionsAndMe(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	user := e.activeAccount(t, "a@example.com", models.UserRoleOwner)

	_, err := e.auth.Signin(ctx, SigninInput{Email: "a@example.com", Password: goodPassword})
	require.NoError(t, err)
	_, err = e.auth.Signin(ctx, SigninInput{Email: "a@example.com", Password: goodPassword})
	require.NoError(t, err)

	sessions, err := e.auth.Sessions(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	me, err := e.auth.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", me.Email)

	_, err = e.auth.Me(ctx, "ghost")
	requireReason(t, err, apperr.KindAuthentication, "")
}

func TestSignupReportsSkippedEmail(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.auth.notifier = notify.NewQueueNotifier(nil, false, zerolog.Nop())

	res, err := e.auth.Signup(ctx, SignupInput{Email: "a@example.com", Password: goodPassword})
	require.NoError(t, err)
	assert.Equal(t, Delivery{Skipped: true, Warning: WarningEmailDisabled}, res.Email)

	user, err := e.store.Users().GetByID(ctx, res.User.ID)
	require.NoError(t, err)
	assert.NotNil(t, user.EmailVerificationToken)

	delivery, err := e.auth.ResendVerification(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, delivery.Skipped)
	assert.False(t, delivery.Sent)
	assert.Equal(t, WarningEmailDisabled, delivery.Warning)
}
