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
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/notify"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/repository"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/security"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/session"
)

const (
	ReasonInvalidCredentials = "invalid credentials"
	ReasonEmailNotVerified   = "email not verified"
	ReasonAccountPending     = "account pending approval"
	ReasonAccountRejected    = "account rejected"
	ReasonAccountBlocked     = "account blocked"

	WarningEmailNotSent = "verification email could not be sent"
)

type AuthOptions struct {
	JWTSecret       string
	VerificationTTL time.Duration
}

type AuthService struct {
	store           repository.Store
	sessions        *session.Registry
	hasher          security.Hasher
	notifier        notify.Notifier
	jwtSecret       string
	verificationTTL time.Duration
	now             func() time.Time
	log             zerolog.Logger
}

func NewAuthService(
	store repository.Store,
	sessions *session.Registry,
	hasher security.Hasher,
	notifier notify.Notifier,
	opts AuthOptions,
	log zerolog.Logger,
) *AuthService {
	ttl := opts.VerificationTTL
	if ttl <= 0 {
		ttl = security.VerificationTokenTTL
	}
	return &AuthService{
		store:           store,
		sessions:        sessions,
		hasher:          hasher,
		notifier:        notifier,
		jwtSecret:       opts.JWTSecret,
		verificationTTL: ttl,
		now:             time.Now,
		log:             log.With().Str("component", "auth").Logger(),
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func checkPassword(password string) error {
	check := security.ValidatePassword(password)
	if !check.IsValid {
		return apperr.InvalidInputDetails("weak password", check.Errors)
	}
	return nil
}

type SignupInput struct {
	Email       string
	Password    string
	Name        string
	AccountType string
	Role        models.UserRole
	VendorName  string
}

type SignupResult struct {
	User   models.User
	Vendor *models.Vendor
	Email  Delivery
}

// Signup registers an owner or a self-registered public vendor. Both start
// inactive and pending approval; a public vendor also gets a pending public
// Vendor linked back to the account.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (SignupResult, error) {
	input.Email = normalizeEmail(input.Email)
	if input.Email == "" {
		return SignupResult{}, apperr.InvalidInput("email required")
	}
	if input.Role == "" {
		input.Role = models.UserRoleOwner
	}
	if input.Role != models.UserRoleOwner && input.Role != models.UserRolePublicVendor {
		return SignupResult{}, apperr.InvalidInput("role must be owner or public_vendor")
	}
	if err := checkPassword(input.Password); err != nil {
		return SignupResult{}, err
	}

	if _, err := s.store.Users().FindByEmail(ctx, input.Email); err == nil {
		return SignupResult{}, apperr.Conflict("email already registered")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return SignupResult{}, apperr.Store("find user", err)
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return SignupResult{}, apperr.Store("hash password", err)
	}
	token, err := security.GenerateVerificationToken()
	if err != nil {
		return SignupResult{}, apperr.Store("generate verification token", err)
	}
	expiry := s.now().Add(s.verificationTTL)

	user := models.User{
		ID:                           ids.New(),
		Email:                        input.Email,
		Name:                         strings.TrimSpace(input.Name),
		PasswordHash:                 passwordHash,
		Role:                         input.Role,
		AccountType:                  input.AccountType,
		PlanApprovalStatus:           models.ApprovalPending,
		VendorApprovalStatus:         models.ApprovalPending,
		EmailVerificationToken:       &token,
		EmailVerificationTokenExpiry: &expiry,
	}

	var vendor *models.Vendor
	if user.Role == models.UserRolePublicVendor {
		name := strings.TrimSpace(input.VendorName)
		if name == "" {
			name = user.Name
		}
		if name == "" {
			name = user.Email
		}
		userID := user.ID
		vendor = &models.Vendor{
			ID:                 ids.New(),
			Name:               name,
			VendorType:         models.VendorTypePublic,
			ApprovalStatus:     models.ApprovalPending,
			Status:             models.VendorStatusPending,
			AdminID:            user.ID,
			PublicVendorUserID: &userID,
		}
	}

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperr.Conflict("email already registered")
			}
			return apperr.Store("create user", err)
		}
		if vendor == nil {
			return nil
		}
		if err := tx.Vendors().Create(ctx, *vendor); err != nil {
			return apperr.Store("create vendor", err)
		}
		return nil
	})
	if err != nil {
		return SignupResult{}, err
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("account registered")
	res := s.notifier.SendVerificationEmail(ctx, user.Email, user.Name, token)
	return SignupResult{User: user, Vendor: vendor, Email: deliveryOf(res, WarningEmailNotSent)}, nil
}

type SigninInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

type SigninResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
	Session   models.Session
}

// Signin authenticates against the store and opens a session. It fails
// closed on any store error.
func (s *AuthService) Signin(ctx context.Context, input SigninInput) (SigninResult, error) {
	email := normalizeEmail(input.Email)
	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return SigninResult{}, apperr.Authentication(ReasonInvalidCredentials)
		}
		return SigninResult{}, apperr.Store("find user", err)
	}

	ok, err := s.hasher.Verify(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return SigninResult{}, apperr.Authentication(ReasonInvalidCredentials)
	}
	if !user.IsEmailVerified && user.Role != models.UserRoleMasterAdmin {
		return SigninResult{}, apperr.Authentication(ReasonEmailNotVerified)
	}
	if !user.IsActive {
		s.log.Warn().Str("user_id", user.ID).Msg("sign in refused for inactive account")
		return SigninResult{}, apperr.Authentication(inactiveReason(user))
	}

	sess, err := s.sessions.Create(ctx, user.ID, session.ClientMeta{
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
	})
	if err != nil {
		return SigninResult{}, err
	}

	token, err := security.SignSessionEnvelope(s.jwtSecret, user.ID, sess.SessionToken, sess.ExpiresAt)
	if err != nil {
		return SigninResult{}, apperr.Store("sign session envelope", err)
	}

	return SigninResult{
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
		User:      user,
		Session:   sess,
	}, nil
}

// inactiveReason tells an inactive user why they can't sign in. Self-
// registered vendors are judged by their vendor approval.
func inactiveReason(u models.User) string {
	status := u.PlanApprovalStatus
	if u.Role == models.UserRolePublicVendor && u.VendorApprovalStatus != models.ApprovalPending {
		status = u.VendorApprovalStatus
	}
	switch status {
	case models.ApprovalPending:
		return ReasonAccountPending
	case models.ApprovalRejected:
		return ReasonAccountRejected
	default:
		return ReasonAccountBlocked
	}
}

func (s *AuthService) Signout(ctx context.Context, sessionToken string) error {
	return s.sessions.Logout(ctx, sessionToken)
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, apperr.InvalidInput("verification token required")
	}
	user, err := s.store.Users().FindByVerificationToken(ctx, token)
	if errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, apperr.InvalidInput("invalid verification token")
	}
	if err != nil {
		return models.User{}, apperr.Store("find user by token", err)
	}
	if user.EmailVerificationTokenUsed {
		return models.User{}, apperr.InvalidInput("verification token already used")
	}
	if user.EmailVerificationTokenExpiry == nil || s.now().After(*user.EmailVerificationTokenExpiry) {
		return models.User{}, apperr.InvalidInput("verification token expired")
	}

	if err := s.store.Users().MarkEmailVerified(ctx, user.ID); err != nil {
		return models.User{}, apperr.Store("mark email verified", err)
	}
	user.IsEmailVerified = true
	user.EmailVerificationTokenUsed = true
	return user, nil
}

// ResendVerification issues a fresh token. The new token is stored even
// when the email is skipped or can't be sent.
func (s *AuthService) ResendVerification(ctx context.Context, email string) (Delivery, error) {
	user, err := s.store.Users().FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrUserNotFound) {
		return Delivery{}, apperr.NotFound("user")
	}
	if err != nil {
		return Delivery{}, apperr.Store("find user", err)
	}
	if user.IsEmailVerified {
		return Delivery{}, apperr.InvalidInput("email already verified")
	}

	token, err := security.GenerateVerificationToken()
	if err != nil {
		return Delivery{}, apperr.Store("generate verification token", err)
	}
	if err := s.store.Users().SetVerificationToken(ctx, user.ID, token, s.now().Add(s.verificationTTL)); err != nil {
		return Delivery{}, apperr.Store("store verification token", err)
	}

	res := s.notifier.SendVerificationEmail(ctx, user.Email, user.Name, token)
	return deliveryOf(res, WarningEmailNotSent), nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (models.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, apperr.Authentication("principal not found")
	}
	if err != nil {
		return models.User{}, apperr.Store("load user", err)
	}
	return user, nil
}

func (s *AuthService) Sessions(ctx context.Context, userID string) ([]models.Session, error) {
	return s.sessions.ListByUser(ctx, userID)
}

// ValidateSession is the authoritative, fail-closed session check.
func (s *AuthService) ValidateSession(ctx context.Context, sessionToken, userID string) (bool, error) {
	return s.sessions.Validate(ctx, sessionToken, userID)
}
