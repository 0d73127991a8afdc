package models

import "strings"

// Role is the opaque permission level attached to an authenticated session.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleViewer Role = "viewer"
	RoleNone   Role = "none"
)

// ParseRole maps a raw role string to a known Role. Anything unrecognized is RoleNone.
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleUser:
		return RoleUser
	case RoleViewer:
		return RoleViewer
	default:
		return RoleNone
	}
}

// Capabilities is the set of permission flags derived from a Role.
type Capabilities struct {
	CanModify    bool `json:"canModify"`
	CanViewAudit bool `json:"canViewAudit"`
	CanExport    bool `json:"canExport"`
}
