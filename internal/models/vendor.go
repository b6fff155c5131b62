package models

import "time"

type VendorType string

const (
	VendorTypePublic  VendorType = "public"
	VendorTypePrivate VendorType = "private"
	VendorTypeVirtual VendorType = "virtual"
)

type VendorStatus string

const (
	VendorStatusPending  VendorStatus = "pending"
	VendorStatusActive   VendorStatus = "active"
	VendorStatusInactive VendorStatus = "inactive"
	VendorStatusRejected VendorStatus = "rejected"
)

type Vendor struct {
	ID                   string
	Name                 string
	VendorType           VendorType
	ApprovalStatus       ApprovalStatus
	Status               VendorStatus
	IsActive             bool
	AdminID              string
	PublicVendorUserID   *string
	AutoApproveInventory bool
	ApprovedBy           *string
	ApprovedAt           *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type Product struct {
	ID             string
	VendorID       string
	AdminID        string
	Name           string
	SKU            string
	ApprovalStatus ApprovalStatus
	IsApproved     bool
	IsActive       bool
	ApprovedBy     *string
	ApprovedAt     *time.Time
	RejectedBy     *string
	RejectedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
