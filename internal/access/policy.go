// Package access holds the authenticated principal and the category-scope
// policy applied before every inventory operation.
package access

import "go.mongodb.org/mongo-driver/bson/primitive"

// Role of an authenticated principal.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleEmployee
}

// Principal is the authenticated identity and authorization scope making a
// request. It is passed explicitly to every core operation; there is no
// ambient current user.
type Principal struct {
	ID         primitive.ObjectID
	Name       string
	Role       Role
	Categories []primitive.ObjectID
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Allows decides whether the principal may act on the given category. Admins
// are allowed everywhere; employees exactly on their configured set. The
// decision is pure: no lookups, no errors.
func Allows(p Principal, category primitive.ObjectID) bool {
	if p.IsAdmin() {
		return true
	}
	for _, c := range p.Categories {
		if c == category {
			return true
		}
	}
	return false
}
