package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fleetms/vms-backend/internal/audit"
	"github.com/fleetms/vms-backend/internal/authz"
	"github.com/fleetms/vms-backend/internal/dto"
	"github.com/fleetms/vms-backend/internal/model"
	"github.com/fleetms/vms-backend/pkg/apperror"
)

type vehicleFixture struct {
	svc     VehicleService
	users   *fakeUserRepo
	audits  *fakeAuditRepo
	manager authz.Actor
}

func newVehicleFixture(t *testing.T) *vehicleFixture {
	t.Helper()
	vehicles := newFakeVehicleRepo()
	drivers := newFakeDriverRepo()
	users := newFakeUserRepo()
	audits := newFakeAuditRepo()

	manager := users.addUser("Mala", model.RoleManager)
	svc := NewVehicleService(fakeTx{}, vehicles, drivers, users, audit.NewRecorder(audits))
	return &vehicleFixture{
		svc:     svc,
		users:   users,
		audits:  audits,
		manager: authz.Actor{ID: manager.ID, Role: model.RoleManager},
	}
}

func vehicleReq(plate string) dto.CreateVehicleRequest {
	return dto.CreateVehicleRequest{
		Manufacturer: "Toyota",
		Model:        "Avanza",
		Year:         2022,
		PlateNumber:  plate,
	}
}

func TestCreateVehicleDefaultsToOrganization(t *testing.T) {
	f := newVehicleFixture(t)

	v, err := f.svc.Create(context.Background(), f.manager, vehicleReq("B 1 AA"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if v.OwnershipType != model.OwnershipOrganization {
		t.Fatalf("ownership type = %q, want organization", v.OwnershipType)
	}
	if v.OwnerID != nil {
		t.Fatal("organization vehicles carry no owner")
	}
	if f.audits.count(model.LogVehicle) != 1 {
		t.Fatal("creation must leave an audit entry")
	}
}

func TestDuplicatePlateConflicts(t *testing.T) {
	f := newVehicleFixture(t)

	if _, err := f.svc.Create(context.Background(), f.manager, vehicleReq("B 2 AA")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := f.svc.Create(context.Background(), f.manager, vehicleReq("B 2 AA"))
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestIndividualOwnershipRequiresOwner(t *testing.T) {
	f := newVehicleFixture(t)

	req := vehicleReq("B 3 AA")
	req.OwnershipType = model.OwnershipIndividual
	_, err := f.svc.Create(context.Background(), f.manager, req)
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("missing owner: expected ErrInvalidInput, got %v", err)
	}

	staff := f.users.addUser("Sena", model.RoleStaff)
	staffID := staff.ID.String()
	req.OwnerID = &staffID
	_, err = f.svc.Create(context.Background(), f.manager, req)
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("owner without privileges: expected ErrInvalidInput, got %v", err)
	}

	owner := f.users.addUser("Omar", model.RoleVehicleOwner)
	ownerID := owner.ID.String()
	req.OwnerID = &ownerID
	v, err := f.svc.Create(context.Background(), f.manager, req)
	if err != nil {
		t.Fatalf("create with valid owner: %v", err)
	}
	if v.OwnerID == nil || *v.OwnerID != owner.ID {
		t.Fatal("owner must be recorded")
	}
}

func TestVehicleOwnerWritesAreForcedOntoSelf(t *testing.T) {
	f := newVehicleFixture(t)
	owner := f.users.addUser("Ocha", model.RoleVehicleOwner)
	actor := authz.Actor{ID: owner.ID, Role: model.RoleVehicleOwner}

	stranger := f.users.addUser("Sia", model.RoleVehicleOwner)
	strangerID := stranger.ID.String()

	req := vehicleReq("B 4 AA")
	req.OwnershipType = model.OwnershipOrganization
	req.OwnerID = &strangerID
	v, err := f.svc.Create(context.Background(), actor, req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if v.OwnershipType != model.OwnershipIndividual {
		t.Fatalf("ownership type = %q, want individual", v.OwnershipType)
	}
	if v.OwnerID == nil || *v.OwnerID != owner.ID {
		t.Fatal("vehicle owner must end up owning their own vehicle")
	}
}

func TestSwitchingToOrganizationClearsOwner(t *testing.T) {
	f := newVehicleFixture(t)
	owner := f.users.addUser("Oki", model.RoleVehicleOwner)
	ownerID := owner.ID.String()

	req := vehicleReq("B 5 AA")
	req.OwnershipType = model.OwnershipIndividual
	req.OwnerID = &ownerID
	v, err := f.svc.Create(context.Background(), f.manager, req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	org := model.OwnershipOrganization
	v, err = f.svc.Update(context.Background(), f.manager, v.ID, dto.UpdateVehicleRequest{OwnershipType: &org})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if v.OwnerID != nil {
		t.Fatal("switching to organization must clear the owner")
	}
}
