package authz

import (
	"errors"
	"testing"

	"github.com/fleetms/vms-backend/internal/model"
	"github.com/fleetms/vms-backend/pkg/apperror"
	"github.com/google/uuid"
)

func TestCan(t *testing.T) {
	cases := []struct {
		role     string
		resource Resource
		action   Action
		want     bool
	}{
		{model.RoleAdmin, ResourceVehicles, ActionDelete, true},
		{model.RoleManager, ResourceVehicles, ActionDelete, false},
		{model.RoleManager, ResourceVehicles, ActionCreate, true},
		{model.RoleVehicleOwner, ResourceVehicles, ActionCreate, true},
		{model.RoleDriver, ResourceVehicles, ActionView, true},
		{model.RoleDriver, ResourceVehicles, ActionCreate, false},
		{model.RoleGateSecurity, ResourceCheckIns, ActionCreate, true},
		{model.RoleDriver, ResourceCheckIns, ActionCreate, false},
		{model.RoleDriver, ResourceCheckIns, ActionView, true},
		{model.RoleGateSecurity, ResourceDrivers, ActionCreate, true},
		{model.RoleDriver, ResourceExpenses, ActionView, false},
		{model.RoleManager, ResourceExpenses, ActionView, true},
		{model.RoleDriver, ResourceTrips, ActionCreate, true},
		{model.RoleGateSecurity, ResourceTrips, ActionView, false},
		{model.RoleManager, ResourceUsers, ActionCreate, true},
		{model.RoleManager, ResourceUsers, ActionUpdate, false},
		{model.RoleManager, ResourceAudit, ActionView, false},
		{model.RoleAdmin, ResourceAudit, ActionView, true},
		{model.RoleVehicleOwner, ResourceDashboard, ActionView, true},
		{model.RoleStaff, ResourceDashboard, ActionView, false},
		{model.RoleVisitor, ResourceVehicles, ActionView, false},
		{"", ResourceVehicles, ActionView, false},
		{model.RoleAdmin, Resource("unknown"), ActionView, false},
		{model.RoleAdmin, ResourceAudit, ActionDelete, false},
	}
	for _, tc := range cases {
		if got := Can(tc.role, tc.resource, tc.action); got != tc.want {
			t.Errorf("Can(%q, %s, %s) = %v, want %v", tc.role, tc.resource, tc.action, got, tc.want)
		}
	}
}

func TestAuthorizeDeniesAnonymous(t *testing.T) {
	err := Authorize(Actor{}, ResourceVehicles, ActionView)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAuthorizeAllowsPermittedRole(t *testing.T) {
	actor := Actor{ID: uuid.New(), Role: model.RoleManager}
	if err := Authorize(actor, ResourceTrips, ActionUpdate); err != nil {
		t.Fatalf("manager updating trips: %v", err)
	}
}

func TestActorAnonymity(t *testing.T) {
	if !(Actor{}).IsAnonymous() {
		t.Fatal("zero actor must be anonymous")
	}
	if (Actor{ID: uuid.New()}).IsAnonymous() {
		t.Fatal("actor with id must not be anonymous")
	}
}
