package models

import "time"

type TeamMemberStatus string

const (
	TeamMemberPending  TeamMemberStatus = "pending"
	TeamMemberActive   TeamMemberStatus = "active"
	TeamMemberInactive TeamMemberStatus = "inactive"
)

type TeamMember struct {
	ID                string
	AdminID           string
	Email             string
	Name              string
	UserID            *string
	Permissions       Permissions
	Status            TeamMemberStatus
	InviteToken       *string
	InviteTokenExpiry *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
