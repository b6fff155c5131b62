package session

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

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestRegistry(t *testing.T, store repository.Store, opts Options) (*Registry, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	r := NewRegistry(store, opts, zerolog.Nop())
	r.now = c.now
	return r, c
}

func seedUser(t *testing.T, store repository.Store, id string, active bool) {
	t.Helper()
	require.NoError(t, store.Users().Create(context.Background(), models.User{
		ID:                 id,
		Email:              id + "@example.com",
		Role:               models.UserRoleOwner,
		IsActive:           active,
		PlanApprovalStatus: models.ApprovalApproved,
	}))
}

func TestValidateLiveSession(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	seedUser(t, store, "u1", true)
	reg, c := newTestRegistry(t, store, Options{TTL: time.Hour})

	s, err := reg.Create(ctx, "u1", ClientMeta{IPAddress: "10.0.0.1", UserAgent: "curl"})
	require.NoError(t, err)
	assert.Len(t, s.SessionToken, 64)
	assert.Equal(t, c.t.Add(time.Hour), s.ExpiresAt)

	c.advance(10 * time.Minute)
	ok, err := reg.Validate(ctx, s.SessionToken, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := store.Sessions().FindByToken(ctx, s.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, c.t, stored.LastActive)
}

func TestValidateRejectsForeignUser(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	seedUser(t, store, "u1", true)
	seedUser(t, store, "u2", true)
	reg, _ := newTestRegistry(t, store, Options{})

	s, err := reg.Create(ctx, "u1", ClientMeta{})
	require.NoError(t, err)

	ok, err := reg.Validate(ctx, s.SessionToken, "u2")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = reg.Validate(ctx, "not-a-token", "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateAfterExpiry(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	seedUser(t, store, "u1", true)
	reg, c := newTestRegistry(t, store, Options{TTL: time.Hour})

	s, err := reg.Create(ctx, "u1", ClientMeta{})
	require.NoError(t, err)

	c.advance(time.Hour)
	ok, err := reg.Validate(ctx, s.SessionToken, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogoutEndsSession(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	seedUser(t, store, "u1", true)
	reg, _ := newTestRegistry(t, store, Options{})

	s, err := reg.Create(ctx, "u1", ClientMeta{})
	require.NoError(t, err)
	require.NoError(t, reg.Logout(ctx, s.SessionToken))
	require.NoError(t, reg.Logout(ctx, "unknown"))

	ok, err := reg.Validate(ctx, s.SessionToken, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateDeactivatesSessionOfBlockedUser(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	seedUser(t, store, "u1", true)
	reg, _ := newTestRegistry(t, store, Options{})

	s, err := reg.Create(ctx, "u1", ClientMeta{})
	require.NoError(t, err)
	require.NoError(t, store.Users().SetActive(ctx, "u1", false))

	ok, err := reg.Validate(ctx, s.SessionToken, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := store.Sessions().FindByToken(ctx, s.SessionToken)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	// Unblocking does not resurrect the session.
	require.NoError(t, store.Users().SetActive(ctx, "u1", true))
	ok, err = reg.Validate(ctx, s.SessionToken, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateDeactivatesSessionOfDeletedUser(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	seedUser(t, store, "u1", true)
	reg, _ := newTestRegistry(t, store, Options{})

	s, err := reg.Create(ctx, "u1", ClientMeta{})
	require.NoError(t, err)
	require.NoError(t, store.Users().Delete(ctx, "u1"))

	ok, err := reg.Validate(ctx, s.SessionToken, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := store.Sessions().FindByToken(ctx, s.SessionToken)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestCreateTrimsOldestBeyondCap(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	seedUser(t, store, "u1", true)
	reg, c := newTestRegistry(t, store, Options{MaxSessions: 2})

	var tokens []string
	for i := 0; i < 3; i++ {
		s, err := reg.Create(ctx, "u1", ClientMeta{})
		require.NoError(t, err)
		tokens = append(tokens, s.SessionToken)
		c.advance(time.Minute)
	}

	ok, err := reg.Validate(ctx, tokens[0], "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	for _, tok := range tokens[1:] {
		ok, err := reg.Validate(ctx, tok, "u1")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	all, err := reg.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 3, "trimmed sessions are kept, only deactivated")
}

func TestRevokeAllAndReap(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	seedUser(t, store, "u1", true)
	seedUser(t, store, "u2", true)
	reg, c := newTestRegistry(t, store, Options{TTL: time.Hour})

	_, err := reg.Create(ctx, "u1", ClientMeta{})
	require.NoError(t, err)
	_, err = reg.Create(ctx, "u1", ClientMeta{})
	require.NoError(t, err)

	n, err := reg.RevokeAll(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = reg.Create(ctx, "u2", ClientMeta{})
	require.NoError(t, err)
	c.advance(2 * time.Hour)
	n, err = reg.ReapExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

type failingSessions struct{ repository.Sessions }

func (failingSessions) FindByToken(context.Context, string) (models.Session, error) {
	return models.Session{}, errors.New("connection refused")
}

type brokenStore struct{ repository.Store }

func (b brokenStore) Sessions() repository.Sessions {
	return failingSessions{b.Store.Sessions()}
}

func TestProbeFailsOpenValidateFailsClosed(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry(t, brokenStore{repository.NewMemoryStore()}, Options{})

	ok, err := reg.Validate(ctx, "tok", "u1")
	assert.False(t, ok)
	assert.True(t, errors.Is(err, apperr.ErrStore))

	assert.True(t, reg.Probe(ctx, "tok", "u1"))
}
