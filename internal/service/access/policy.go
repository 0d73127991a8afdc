// Package access maps session roles to the capabilities the application grants.
package access

import "github.com/mamadbah2/inventory/internal/domain/models"

var policy = map[models.Role]models.Capabilities{
	models.RoleAdmin:  {CanModify: true, CanViewAudit: true, CanExport: true},
	models.RoleUser:   {CanModify: true},
	models.RoleViewer: {},
}

// Resolve returns the capability set for role. Unknown roles get nothing.
func Resolve(role models.Role) models.Capabilities {
	return policy[role]
}

// ResolveRaw parses a raw role string before resolving it.
func ResolveRaw(raw string) (models.Role, models.Capabilities) {
	role := models.ParseRole(raw)
	return role, Resolve(role)
}
