package handlers

import (
	"time"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/models"
)

type userResponse struct {
	ID                   string             `json:"id"`
	Email                string             `json:"email"`
	Name                 string             `json:"name"`
	Role                 string             `json:"role"`
	AccountType          string             `json:"accountType,omitempty"`
	AdminID              *string            `json:"adminId,omitempty"`
	IsActive             bool               `json:"isActive"`
	IsEmailVerified      bool               `json:"isEmailVerified"`
	PlanApprovalStatus   string             `json:"planApprovalStatus"`
	VendorApprovalStatus string             `json:"vendorApprovalStatus,omitempty"`
	Permissions          models.Permissions `json:"permissions,omitempty"`
	CreatedAt            time.Time          `json:"createdAt"`
}

func toUser(u models.User) userResponse {
	return userResponse{
		ID:                   u.ID,
		Email:                u.Email,
		Name:                 u.Name,
		Role:                 string(u.Role),
		AccountType:          u.AccountType,
		AdminID:              u.AdminID,
		IsActive:             u.IsActive,
		IsEmailVerified:      u.IsEmailVerified,
		PlanApprovalStatus:   string(u.PlanApprovalStatus),
		VendorApprovalStatus: string(u.VendorApprovalStatus),
		Permissions:          u.Permissions,
		CreatedAt:            u.CreatedAt,
	}
}

func toUsers(users []models.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUser(u))
	}
	return out
}

type sessionResponse struct {
	ID         string    `json:"id"`
	IPAddress  string    `json:"ipAddress"`
	UserAgent  string    `json:"userAgent"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	LastActive time.Time `json:"lastActive"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Current    bool      `json:"current"`
}

type vendorResponse struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	VendorType           string     `json:"vendorType"`
	ApprovalStatus       string     `json:"approvalStatus"`
	Status               string     `json:"status"`
	IsActive             bool       `json:"isActive"`
	AdminID              string     `json:"adminId"`
	PublicVendorUserID   *string    `json:"publicVendorUserId,omitempty"`
	AutoApproveInventory bool       `json:"autoApproveInventory"`
	ApprovedBy           *string    `json:"approvedBy,omitempty"`
	ApprovedAt           *time.Time `json:"approvedAt,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
}

func toVendor(v models.Vendor) vendorResponse {
	return vendorResponse{
		ID:                   v.ID,
		Name:                 v.Name,
		VendorType:           string(v.VendorType),
		ApprovalStatus:       string(v.ApprovalStatus),
		Status:               string(v.Status),
		IsActive:             v.IsActive,
		AdminID:              v.AdminID,
		PublicVendorUserID:   v.PublicVendorUserID,
		AutoApproveInventory: v.AutoApproveInventory,
		ApprovedBy:           v.ApprovedBy,
		ApprovedAt:           v.ApprovedAt,
		CreatedAt:            v.CreatedAt,
	}
}

func toVendors(vendors []models.Vendor) []vendorResponse {
	out := make([]vendorResponse, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, toVendor(v))
	}
	return out
}

type productResponse struct {
	ID             string     `json:"id"`
	VendorID       string     `json:"vendorId"`
	AdminID        string     `json:"adminId"`
	Name           string     `json:"name"`
	SKU            string     `json:"sku"`
	ApprovalStatus string     `json:"approvalStatus"`
	IsApproved     bool       `json:"isApproved"`
	IsActive       bool       `json:"isActive"`
	ApprovedBy     *string    `json:"approvedBy,omitempty"`
	ApprovedAt     *time.Time `json:"approvedAt,omitempty"`
	RejectedBy     *string    `json:"rejectedBy,omitempty"`
	RejectedAt     *time.Time `json:"rejectedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func toProduct(p models.Product) productResponse {
	return productResponse{
		ID:             p.ID,
		VendorID:       p.VendorID,
		AdminID:        p.AdminID,
		Name:           p.Name,
		SKU:            p.SKU,
		ApprovalStatus: string(p.ApprovalStatus),
		IsApproved:     p.IsApproved,
		IsActive:       p.IsActive,
		ApprovedBy:     p.ApprovedBy,
		ApprovedAt:     p.ApprovedAt,
		RejectedBy:     p.RejectedBy,
		RejectedAt:     p.RejectedAt,
		CreatedAt:      p.CreatedAt,
	}
}

func toProducts(products []models.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProduct(p))
	}
	return out
}

// memberResponse never exposes the invite token.
type memberResponse struct {
	ID          string             `json:"id"`
	AdminID     string             `json:"adminId"`
	Email       string             `json:"email"`
	Name        string             `json:"name"`
	UserID      *string            `json:"userId,omitempty"`
	Permissions models.Permissions `json:"permissions"`
	Status      string             `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
}

func toMember(m models.TeamMember) memberResponse {
	return memberResponse{
		ID:          m.ID,
		AdminID:     m.AdminID,
		Email:       m.Email,
		Name:        m.Name,
		UserID:      m.UserID,
		Permissions: m.Permissions,
		Status:      string(m.Status),
		CreatedAt:   m.CreatedAt,
	}
}
