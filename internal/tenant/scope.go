// Package tenant resolves which tenant's records a principal may see.
package tenant

import "github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/models"

type Scope struct {
	AdminID string
	Global  bool
}

// For returns the scope of p. Master admins see every tenant; team members
// act within the tenant that invited them; everyone else is their own tenant.
func For(p models.User) Scope {
	if p.Role == models.UserRoleMasterAdmin {
		return Scope{AdminID: p.ID, Global: true}
	}
	return Scope{AdminID: p.TenantID()}
}

// Owns reports whether a record stamped with adminID is visible in s.
func (s Scope) Owns(adminID string) bool {
	return s.Global || (adminID != "" && adminID == s.AdminID)
}

// Filter is the adminID list filter; empty means unfiltered.
func (s Scope) Filter() string {
	if s.Global {
		return ""
	}
	return s.AdminID
}
