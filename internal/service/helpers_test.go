package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/apperr"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/approval"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/models"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/notify"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/permission"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/repository"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/session"
)

const (
	testSecret   = "test-secret"
	goodPassword = "Sup3r-secret!"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) ([]byte, error) {
	return []byte("plain:" + password), nil
}

func (plainHasher) Verify(password string, encoded []byte) (bool, error) {
	if !strings.HasPrefix(string(encoded), "plain:") {
		return false, errors.New("unknown hash")
	}
	return string(encoded) == "plain:"+password, nil
}

type sentMail struct {
	kind, to, token string
}

// fakeNotifier records every email. With skip set it reports delivery as
// disabled, the way an unconfigured queue does.
type fakeNotifier struct {
	sent []sentMail
	err  error
	skip bool
}

func (f *fakeNotifier) SendVerificationEmail(_ context.Context, to, _, token string) notify.Result {
	f.sent = append(f.sent, sentMail{"verify", to, token})
	return f.result()
}

func (f *fakeNotifier) SendTeamInvite(_ context.Context, to, _, _, token string) notify.Result {
	f.sent = append(f.sent, sentMail{"invite", to, token})
	return f.result()
}

func (f *fakeNotifier) result() notify.Result {
	switch {
	case f.skip:
		return notify.Result{Skipped: true}
	case f.err != nil:
		return notify.Result{Err: f.err}
	}
	return notify.Result{Success: true}
}

func (f *fakeNotifier) last(t *testing.T) sentMail {
	t.Helper()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

type env struct {
	store     *repository.MemoryStore
	notifier  *fakeNotifier
	sessions  *session.Registry
	approvals *approval.Service
	auth      *AuthService
	admin     *AdminService
	team      *TeamService
	catalog   *CatalogService
}

func newEnv(t *testing.T) env {
	t.Helper()
	log := zerolog.Nop()
	store := repository.NewMemoryStore()
	notifier := &fakeNotifier{}
	sessions := session.NewRegistry(store, session.Options{TTL: time.Hour, MaxSessions: 5}, log)
	approvals := approval.NewService(store, nil, log)
	checker := permission.NewChecker(store.Users())

	require.NoError(t, store.Users().Create(context.Background(), models.User{
		ID:                 "admin",
		Email:              "admin@example.com",
		PasswordHash:       []byte("plain:" + goodPassword),
		Role:               models.UserRoleMasterAdmin,
		IsActive:           true,
		PlanApprovalStatus: models.ApprovalApproved,
		IsEmailVerified:    true,
	}))

	return env{
		store:     store,
		notifier:  notifier,
		sessions:  sessions,
		approvals: approvals,
		auth:      NewAuthService(store, sessions, plainHasher{}, notifier, AuthOptions{JWTSecret: testSecret}, log),
		admin:     NewAdminService(store, approvals, sessions, log),
		team:      NewTeamService(store, checker, sessions, plainHasher{}, notifier, log),
		catalog:   NewCatalogService(store, checker, log),
	}
}

// activeAccount signs up, verifies and approves an account.
func (e env) activeAccount(t *testing.T, email string, role models.UserRole) models.User {
	t.Helper()
	ctx := context.Background()
	res, err := e.auth.Signup(ctx, SignupInput{Email: email, Password: goodPassword, Name: "Test", Role: role})
	require.NoError(t, err)
	_, err = e.auth.VerifyEmail(ctx, e.notifier.last(t).token)
	require.NoError(t, err)
	user, err := e.approvals.ApproveUser(ctx, "admin", res.User.ID)
	require.NoError(t, err)
	return user
}

func requireReason(t *testing.T, err error, kind apperr.Kind, reason string) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr), err.Error())
	assert.Equal(t, kind, appErr.Kind)
	if reason != "" {
		assert.Equal(t, reason, appErr.Reason)
	}
}
