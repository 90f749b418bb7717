package authz

import (
	"testing"

	"solidarite-maraude/internal/adapters/persistence/models"
)

var (
	admin       = Actor{ID: 1, AssociationID: 1, Role: models.RoleAdmin}
	coordinator = Actor{ID: 2, AssociationID: 2, Role: models.RoleCoordinator}
	volunteer   = Actor{ID: 3, AssociationID: 2, Role: models.RoleVolunteer}
)

func TestIsAdmin(t *testing.T) {
	if !IsAdmin(admin) {
		t.Error("admin should be admin")
	}
	if IsAdmin(coordinator) || IsAdmin(volunteer) {
		t.Error("non-admin roles should not be admin")
	}
}

func TestIsCoordinatorOf(t *testing.T) {
	if !IsCoordinatorOf(coordinator, 2) {
		t.Error("coordinator should coordinate their own association")
	}
	if IsCoordinatorOf(coordinator, 3) {
		t.Error("coordinator should not coordinate another association")
	}
	if IsCoordinatorOf(volunteer, 2) {
		t.Error("volunteer should never coordinate")
	}
	// Admins bypass via IsAdmin, not via IsCoordinatorOf
	if IsCoordinatorOf(admin, 1) {
		t.Error("admin role is not a coordinator role")
	}
}

func TestCanEdit(t *testing.T) {
	tests := []struct {
		name          string
		actor         Actor
		creatorID     uint
		associationID uint
		want          bool
	}{
		{"creator edits own resource", volunteer, 3, 2, true},
		{"volunteer cannot edit others", volunteer, 9, 2, false},
		{"coordinator edits within association", coordinator, 9, 2, true},
		{"coordinator blocked outside association", coordinator, 9, 3, false},
		{"admin edits anything", admin, 9, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanEdit(tt.actor, tt.creatorID, tt.associationID); got != tt.want {
				t.Errorf("CanEdit = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanManage(t *testing.T) {
	if !CanManage(admin, 99) {
		t.Error("admin manages any association")
	}
	if !CanManage(coordinator, 2) {
		t.Error("coordinator manages their own association")
	}
	if CanManage(coordinator, 3) {
		t.Error("coordinator blocked outside their association")
	}
	if CanManage(volunteer, 2) {
		t.Error("volunteer never manages")
	}
}
