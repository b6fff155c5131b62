// Package permission decides whether a principal may perform an action on a
// module. Evaluate is pure; Checker re-reads the principal on every call so
// a permission change takes effect on the next request.
package permission

import (
	"context"
	"errors"
	"fmt"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/apperr"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/models"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/repository"
)

const (
	ActionView = "view"
	ActionEdit = "edit"
)

const (
	ModuleOrders    = "orders"
	ModuleInventory = "inventory"
	ModuleVendors   = "vendors"
	ModuleAccounts  = "accounts"
	ModulePayments  = "payments"
	ModuleTeam      = "team"
)

const (
	ReasonNoModuleAccess = "no access to module"
	ReasonInvalidRole    = "invalid role"
)

type Decision struct {
	Authorized bool   `json:"authorized"`
	Reason     string `json:"reason,omitempty"`
}

var allow = Decision{Authorized: true}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// publicVendorModules is the fixed set a self-registered vendor may use.
// Team management is never part of it.
var publicVendorModules = map[string]struct{}{
	ModuleOrders:    {},
	ModuleInventory: {},
	ModuleVendors:   {},
	ModuleAccounts:  {},
	ModulePayments:  {},
}

type roleHandler func(p models.User, module, action string) Decision

var handlers = map[models.UserRole]roleHandler{
	models.UserRoleMasterAdmin:  allowAll,
	models.UserRoleOwner:        allowAll,
	models.UserRolePublicVendor: publicVendor,
	models.UserRoleTeamMember:   teamMember,
}

func allowAll(models.User, string, string) Decision {
	return allow
}

func publicVendor(_ models.User, module, _ string) Decision {
	if _, ok := publicVendorModules[module]; ok {
		return allow
	}
	return deny(ReasonNoModuleAccess)
}

func teamMember(p models.User, module, action string) Decision {
	actions := p.Permissions[module]
	if len(actions) == 0 {
		return deny(ReasonNoModuleAccess)
	}
	if p.Permissions.Allows(module, action) {
		return allow
	}
	return deny(fmt.Sprintf("no %s permission for %s", action, module))
}

// Evaluate decides whether p may perform action on module.
func Evaluate(p models.User, module, action string) Decision {
	h, ok := handlers[p.Role]
	if !ok {
		return deny(ReasonInvalidRole)
	}
	return h(p, module, action)
}

// Checker evaluates against the stored principal.
type Checker struct {
	users repository.Users
}

func NewChecker(users repository.Users) *Checker {
	return &Checker{users: users}
}

// Check loads principalID and evaluates the request. A missing principal is
// an authentication failure; a denial is returned as an authorization error
// carrying the decision's reason.
func (c *Checker) Check(ctx context.Context, principalID, module, action string) (models.User, Decision, error) {
	user, err := c.users.GetByID(ctx, principalID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return models.User{}, Decision{}, apperr.Authentication("principal not found")
	}
	if err != nil {
		return models.User{}, Decision{}, apperr.Store("load principal", err)
	}
	if !user.IsActive {
		return user, Decision{}, apperr.Authentication("account inactive")
	}

	decision := Evaluate(user, module, action)
	if !decision.Authorized {
		return user, decision, apperr.Authorization(decision.Reason, module, action)
	}
	return user, decision, nil
}

// ActionForMethod maps an HTTP method to the action it requires.
func ActionForMethod(method string) string {
	switch method {
	case "GET", "HEAD", "OPTIONS":
		return ActionView
	default:
		return ActionEdit
	}
}
