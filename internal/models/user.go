package models

import (
	"slices"
	"time"
)

type UserRole string

const (
	UserRoleMasterAdmin  UserRole = "master_admin"
	UserRoleOwner        UserRole = "owner"
	UserRoleTeamMember   UserRole = "team_member"
	UserRolePublicVendor UserRole = "public_vendor"
)

// IsValid reports whether r is one of the four known roles.
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleMasterAdmin, UserRoleOwner, UserRoleTeamMember, UserRolePublicVendor:
		return true
	default:
		return false
	}
}

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Permissions maps a module name to the actions granted on it.
type Permissions map[string][]string

// Allows reports whether action is granted on module.
func (p Permissions) Allows(module, action string) bool {
	return slices.Contains(p[module], action)
}

// Clone returns a deep copy so callers can't mutate a shared map.
func (p Permissions) Clone() Permissions {
	if p == nil {
		return nil
	}
	out := make(Permissions, len(p))
	for module, actions := range p {
		out[module] = slices.Clone(actions)
	}
	return out
}

type User struct {
	ID                   string
	Email                string
	Name                 string
	PasswordHash         []byte
	Role                 UserRole
	AccountType          string
	AdminID              *string
	IsActive             bool
	PlanApprovalStatus   ApprovalStatus
	VendorApprovalStatus ApprovalStatus
	Permissions          Permissions

	IsEmailVerified              bool
	EmailVerificationToken       *string
	EmailVerificationTokenExpiry *time.Time
	EmailVerificationTokenUsed   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TenantID returns the id of the tenant the user acts within. Owners and
// self-registered vendors are their own tenant; team members act for the
// owner that invited them.
func (u User) TenantID() string {
	if u.Role == UserRoleTeamMember && u.AdminID != nil {
		return *u.AdminID
	}
	return u.ID
}

type Session struct {
	ID           string
	UserID       string
	SessionToken string
	IsActive     bool
	IPAddress    string
	UserAgent    string
	CreatedAt    time.Time
	LastActive   time.Time
	ExpiresAt    time.Time
}
