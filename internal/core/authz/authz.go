// Package authz centralizes the role and association ownership rules
// shared by every entity's operations.
package authz

import "solidarite-maraude/internal/adapters/persistence/models"

// Actor is the authenticated caller, built from access token claims
type Actor struct {
	ID            uint
	AssociationID uint
	Role          string
}

// IsAdmin reports whether the actor bypasses association scoping
func IsAdmin(a Actor) bool {
	return a.Role == models.RoleAdmin
}

// IsCoordinator reports whether the actor holds the coordinator role
func IsCoordinator(a Actor) bool {
	return a.Role == models.RoleCoordinator
}

// IsSelf reports whether the actor owns the resource
func IsSelf(a Actor, ownerID uint) bool {
	return a.ID == ownerID
}

// SameAssociation reports whether the actor belongs to the resource's association
func SameAssociation(a Actor, associationID uint) bool {
	return a.AssociationID == associationID
}

// IsCoordinatorOf reports whether the actor coordinates the given association
func IsCoordinatorOf(a Actor, associationID uint) bool {
	return IsCoordinator(a) && SameAssociation(a, associationID)
}

// CanEdit is the composite edit rule used by maraude actions and reports:
// creator, coordinator of the owning association, or admin.
func CanEdit(a Actor, creatorID, associationID uint) bool {
	return IsSelf(a, creatorID) || IsCoordinatorOf(a, associationID) || IsAdmin(a)
}

// CanManage gates create/delete operations: coordinator or admin,
// narrowed to the actor's own association unless admin.
func CanManage(a Actor, associationID uint) bool {
	if IsAdmin(a) {
		return true
	}
	return IsCoordinator(a) && SameAssociation(a, associationID)
}
