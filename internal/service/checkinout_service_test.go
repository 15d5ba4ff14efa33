package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fleetms/vms-backend/internal/audit"
	"github.com/fleetms/vms-backend/internal/authz"
	"github.com/fleetms/vms-backend/internal/dto"
	"github.com/fleetms/vms-backend/internal/model"
	"github.com/fleetms/vms-backend/pkg/apperror"
	"github.com/google/uuid"
)

type gateFixture struct {
	svc      CheckInOutService
	vehicles *fakeVehicleRepo
	checkins *fakeCheckInRepo
	audits   *fakeAuditRepo
	vehicle  *model.Vehicle
	bare     *model.Vehicle
	guard    authz.Actor
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	vehicles := newFakeVehicleRepo()
	drivers := newFakeDriverRepo()
	checkins := newFakeCheckInRepo()
	audits := newFakeAuditRepo()

	vehicle := &model.Vehicle{ID: uuid.New(), PlateNumber: "B 1 GT"}
	vehicles.vehicles[vehicle.ID] = vehicle
	bare := &model.Vehicle{ID: uuid.New(), PlateNumber: "B 2 GT"}
	vehicles.vehicles[bare.ID] = bare

	drivers.Create(context.Background(), &model.Driver{
		UserID: uuid.New(), VehicleID: &vehicle.ID, LicenseNumber: "L-9",
	})

	svc := NewCheckInOutService(fakeTx{}, checkins, vehicles, drivers, audit.NewRecorder(audits))
	return &gateFixture{
		svc:      svc,
		vehicles: vehicles,
		checkins: checkins,
		audits:   audits,
		vehicle:  vehicle,
		bare:     bare,
		guard:    authz.Actor{ID: uuid.New(), Role: model.RoleGateSecurity},
	}
}

func TestCheckInOpensRecord(t *testing.T) {
	f := newGateFixture(t)

	rec, err := f.svc.CheckIn(context.Background(), f.guard, dto.CheckInRequest{VehicleID: f.vehicle.ID.String()})
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if !rec.IsOpen() {
		t.Fatal("fresh check-in must be open")
	}
	if rec.CheckedInBy == nil || *rec.CheckedInBy != f.guard.ID {
		t.Fatal("check-in must record the guard")
	}
	if len(f.vehicles.locked) == 0 {
		t.Fatal("check-in must lock the vehicle row")
	}
}

func TestDuplicateCheckInConflicts(t *testing.T) {
	f := newGateFixture(t)

	if _, err := f.svc.CheckIn(context.Background(), f.guard, dto.CheckInRequest{VehicleID: f.vehicle.ID.String()}); err != nil {
		t.Fatalf("first check in: %v", err)
	}
	_, err := f.svc.CheckIn(context.Background(), f.guard, dto.CheckInRequest{VehicleID: f.vehicle.ID.String()})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCheckInWithoutDriverConflicts(t *testing.T) {
	f := newGateFixture(t)

	_, err := f.svc.CheckIn(context.Background(), f.guard, dto.CheckInRequest{VehicleID: f.bare.ID.String()})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCheckOutClosesOnce(t *testing.T) {
	f := newGateFixture(t)

	rec, err := f.svc.CheckIn(context.Background(), f.guard, dto.CheckInRequest{VehicleID: f.vehicle.ID.String()})
	if err != nil {
		t.Fatalf("check in: %v", err)
	}

	closed, err := f.svc.CheckOut(context.Background(), f.guard, rec.ID)
	if err != nil {
		t.Fatalf("check out: %v", err)
	}
	if closed.IsOpen() {
		t.Fatal("checked-out record must be closed")
	}
	if closed.CheckedOutBy == nil || *closed.CheckedOutBy != f.guard.ID {
		t.Fatal("check-out must record the guard")
	}

	_, err = f.svc.CheckOut(context.Background(), f.guard, rec.ID)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("second check-out: expected ErrConflict, got %v", err)
	}
}

func TestCheckOutUnknownIDNotFound(t *testing.T) {
	f := newGateFixture(t)

	_, err := f.svc.CheckOut(context.Background(), f.guard, uuid.New())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReCheckInAfterCheckOut(t *testing.T) {
	f := newGateFixture(t)

	rec, err := f.svc.CheckIn(context.Background(), f.guard, dto.CheckInRequest{VehicleID: f.vehicle.ID.String()})
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if _, err := f.svc.CheckOut(context.Background(), f.guard, rec.ID); err != nil {
		t.Fatalf("check out: %v", err)
	}
	if _, err := f.svc.CheckIn(context.Background(), f.guard, dto.CheckInRequest{VehicleID: f.vehicle.ID.String()}); err != nil {
		t.Fatalf("re-check-in after check-out: %v", err)
	}
}

func TestUpdateRejectsBackdatedCheckOut(t *testing.T) {
	f := newGateFixture(t)

	rec, err := f.svc.CheckIn(context.Background(), f.guard, dto.CheckInRequest{VehicleID: f.vehicle.ID.String()})
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	before := rec.CheckedInAt.Add(-time.Hour)
	_, err = f.svc.Update(context.Background(), f.guard, rec.ID, dto.UpdateCheckInOutRequest{CheckedOutAt: &before})
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDriverCannotCheckIn(t *testing.T) {
	f := newGateFixture(t)

	driverActor := authz.Actor{ID: uuid.New(), Role: model.RoleDriver}
	_, err := f.svc.CheckIn(context.Background(), driverActor, dto.CheckInRequest{VehicleID: f.vehicle.ID.String()})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
