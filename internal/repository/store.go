package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/models"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrVendorNotFound     = errors.New("vendor not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrTeamMemberNotFound = errors.New("team member not found")

	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotPending is returned by conditional approval writes when the row
	// is no longer pending.
	ErrNotPending = errors.New("record is not pending")
)

type Users interface {
	Create(ctx context.Context, user models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByVerificationToken(ctx context.Context, token string) (models.User, error)
	ListByPlanStatus(ctx context.Context, status models.ApprovalStatus) ([]models.User, error)
	ApplyAccountDecision(ctx context.Context, id string, decision AccountDecision) error
	SetVendorApproval(ctx context.Context, id string, status models.ApprovalStatus, isActive bool) error
	SetActive(ctx context.Context, id string, isActive bool) error
	SetPermissions(ctx context.Context, id string, permissions models.Permissions) error
	Reinstate(ctx context.Context, id string, reinstate Reinstatement) error
	SetVerificationToken(ctx context.Context, id string, token string, expiry time.Time) error
	MarkEmailVerified(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// AccountDecision is applied only while plan_approval_status is pending.
type AccountDecision struct {
	Status               models.ApprovalStatus
	IsActive             bool
	VendorApprovalStatus *models.ApprovalStatus
}

// Reinstatement reactivates an existing account with fresh credentials.
type Reinstatement struct {
	Name         string
	PasswordHash []byte
	Permissions  models.Permissions
}

type Sessions interface {
	Create(ctx context.Context, session models.Session) error
	FindByToken(ctx context.Context, token string) (models.Session, error)
	ListByUser(ctx context.Context, userID string) ([]models.Session, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Deactivate(ctx context.Context, id string) error
	DeactivateByUser(ctx context.Context, userID string) (int64, error)
	DeactivateOldest(ctx context.Context, userID string, keepLatest int) error
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type Vendors interface {
	Create(ctx context.Context, vendor models.Vendor) error
	GetByID(ctx context.Context, id string) (models.Vendor, error)
	FindByPublicUser(ctx context.Context, userID string) (models.Vendor, error)
	ListByAdmin(ctx context.Context, adminID string) ([]models.Vendor, error)
	ListByApprovalStatus(ctx context.Context, status models.ApprovalStatus) ([]models.Vendor, error)
	ApplyDecision(ctx context.Context, id string, decision VendorDecision) error
	SetAutoApprove(ctx context.Context, id string, enabled bool) error
}

// VendorDecision is applied only while approval_status is pending.
type VendorDecision struct {
	Status      models.ApprovalStatus
	VendorState models.VendorStatus
	IsActive    bool
	AutoApprove *bool
	DecidedBy   string
	DecidedAt   time.Time
}

type Products interface {
	Create(ctx context.Context, product models.Product) error
	GetByID(ctx context.Context, id string) (models.Product, error)
	ListByAdmin(ctx context.Context, adminID string) ([]models.Product, error)
	ListPendingForPublicVendors(ctx context.Context) ([]models.Product, error)
	// ApprovePending and RejectPending only touch rows that are still
	// pending and return the ids they changed.
	ApprovePending(ctx context.Context, ids []string, approverID string, at time.Time) ([]string, error)
	RejectPending(ctx context.Context, ids []string, rejecterID string, at time.Time) ([]string, error)
}

type TeamMembers interface {
	Create(ctx context.Context, member models.TeamMember) error
	GetByID(ctx context.Context, id string) (models.TeamMember, error)
	FindByEmail(ctx context.Context, adminID, email string) (models.TeamMember, error)
	FindByInviteToken(ctx context.Context, token string) (models.TeamMember, error)
	ListByAdmin(ctx context.Context, adminID string) ([]models.TeamMember, error)
	Update(ctx context.Context, member models.TeamMember) error
}

// Store groups the per-entity collections. InTx runs fn against a store
// whose writes commit or roll back together where the driver supports it.
type Store interface {
	Users() Users
	Sessions() Sessions
	Vendors() Vendors
	Products() Products
	TeamMembers() TeamMembers
	InTx(ctx context.Context, fn func(Store) error) error
	Ping(ctx context.Context) error
}

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type scanner interface {
	Scan(dest ...any) error
}

type PostgresStore struct {
	pool *pgxpool.Pool
	db   dbtx
	inTx bool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, db: pool}
}

func (s *PostgresStore) Users() Users             { return &UserRepository{db: s.db} }
func (s *PostgresStore) Sessions() Sessions       { return &SessionRepository{db: s.db} }
func (s *PostgresStore) Vendors() Vendors         { return &VendorRepository{db: s.db} }
func (s *PostgresStore) Products() Products       { return &ProductRepository{db: s.db} }
func (s *PostgresStore) TeamMembers() TeamMembers { return &TeamMemberRepository{db: s.db} }

func (s *PostgresStore) InTx(ctx context.Context, fn func(Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&PostgresStore{pool: s.pool, db: tx, inTx: true})
	})
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func mapWriteErr(err error) error {
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel
	}
	return err
}

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
