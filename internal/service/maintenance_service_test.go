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
	"github.com/google/uuid"
)

type maintenanceFixture struct {
	svc      MaintenanceService
	expenses *fakeExpenseRepo
	audits   *fakeAuditRepo
	vehicle  *model.Vehicle
	manager  authz.Actor
	driver   authz.Actor
}

func newMaintenanceFixture(t *testing.T) *maintenanceFixture {
	t.Helper()
	vehicles := newFakeVehicleRepo()
	drivers := newFakeDriverRepo()
	maintenances := newFakeMaintenanceRepo()
	expenses := newFakeExpenseRepo()
	audits := newFakeAuditRepo()

	vehicle := &model.Vehicle{ID: uuid.New(), Manufacturer: "Toyota", Model: "Hiace", Year: 2021, PlateNumber: "B 1234 XY"}
	vehicles.vehicles[vehicle.ID] = vehicle

	driverUser := uuid.New()
	drivers.Create(context.Background(), &model.Driver{UserID: driverUser, VehicleID: &vehicle.ID, LicenseNumber: "L-1"})

	svc := NewMaintenanceService(fakeTx{}, maintenances, expenses, vehicles, drivers, audit.NewRecorder(audits))
	return &maintenanceFixture{
		svc:      svc,
		expenses: expenses,
		audits:   audits,
		vehicle:  vehicle,
		manager:  authz.Actor{ID: uuid.New(), Role: model.RoleManager},
		driver:   authz.Actor{ID: driverUser, Role: model.RoleDriver},
	}
}

func TestMaintenanceCompletedCreatesExpense(t *testing.T) {
	f := newMaintenanceFixture(t)

	m, err := f.svc.Create(context.Background(), f.manager, dto.CreateMaintenanceRequest{
		VehicleID:   f.vehicle.ID.String(),
		Description: "brake pads",
		Status:      model.MaintenanceCompleted,
		Cost:        350,
		Date:        "2026-08-20",
	})
	if err != nil {
		t.Fatalf("create maintenance: %v", err)
	}

	e, err := f.expenses.FindByMaintenance(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("expected derived expense, got %v", err)
	}
	if e.Amount != 350 {
		t.Fatalf("expense amount = %v, want 350", e.Amount)
	}
	if e.VehicleID != f.vehicle.ID {
		t.Fatalf("expense vehicle = %v, want %v", e.VehicleID, f.vehicle.ID)
	}
	if f.audits.count(model.LogMaintenance) != 1 || f.audits.count(model.LogExpense) != 1 {
		t.Fatalf("expected maintenance and expense audit entries, got %d/%d",
			f.audits.count(model.LogMaintenance), f.audits.count(model.LogExpense))
	}
}

func TestMaintenancePendingHasNoExpense(t *testing.T) {
	f := newMaintenanceFixture(t)

	m, err := f.svc.Create(context.Background(), f.manager, dto.CreateMaintenanceRequest{
		VehicleID:   f.vehicle.ID.String(),
		Description: "oil change",
		Status:      model.MaintenancePending,
		Cost:        80,
		Date:        "2026-08-21",
	})
	if err != nil {
		t.Fatalf("create maintenance: %v", err)
	}
	if _, err := f.expenses.FindByMaintenance(context.Background(), m.ID); err == nil {
		t.Fatal("pending maintenance must not have an expense")
	}
}

func TestMaintenanceRevertDeletesExpense(t *testing.T) {
	f := newMaintenanceFixture(t)

	m, err := f.svc.Create(context.Background(), f.manager, dto.CreateMaintenanceRequest{
		VehicleID:   f.vehicle.ID.String(),
		Description: "gearbox",
		Status:      model.MaintenanceCompleted,
		Cost:        900,
		Date:        "2026-08-01",
	})
	if err != nil {
		t.Fatalf("create maintenance: %v", err)
	}

	pending := model.MaintenancePending
	if _, err := f.svc.Update(context.Background(), f.manager, m.ID, dto.UpdateMaintenanceRequest{Status: &pending}); err != nil {
		t.Fatalf("revert maintenance: %v", err)
	}
	if _, err := f.expenses.FindByMaintenance(context.Background(), m.ID); err == nil {
		t.Fatal("reverted maintenance must not keep its expense")
	}
}

func TestMaintenanceCostUpdateFollowsExpense(t *testing.T) {
	f := newMaintenanceFixture(t)

	m, err := f.svc.Create(context.Background(), f.manager, dto.CreateMaintenanceRequest{
		VehicleID:   f.vehicle.ID.String(),
		Description: "tyres",
		Status:      model.MaintenanceCompleted,
		Cost:        400,
		Date:        "2026-08-10",
	})
	if err != nil {
		t.Fatalf("create maintenance: %v", err)
	}

	cost := 550.0
	if _, err := f.svc.Update(context.Background(), f.manager, m.ID, dto.UpdateMaintenanceRequest{Cost: &cost}); err != nil {
		t.Fatalf("update cost: %v", err)
	}

	e, err := f.expenses.FindByMaintenance(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("expected derived expense, got %v", err)
	}
	if e.Amount != 550 {
		t.Fatalf("expense amount = %v, want 550", e.Amount)
	}
}

func TestMaintenanceDeleteRemovesExpense(t *testing.T) {
	f := newMaintenanceFixture(t)

	adminActor := authz.Actor{ID: uuid.New(), Role: model.RoleAdmin}
	m, err := f.svc.Create(context.Background(), adminActor, dto.CreateMaintenanceRequest{
		VehicleID:   f.vehicle.ID.String(),
		Description: "engine",
		Status:      model.MaintenanceCompleted,
		Cost:        2000,
		Date:        "2026-07-15",
	})
	if err != nil {
		t.Fatalf("create maintenance: %v", err)
	}
	if err := f.svc.Delete(context.Background(), adminActor, m.ID); err != nil {
		t.Fatalf("delete maintenance: %v", err)
	}
	if _, err := f.expenses.FindByMaintenance(context.Background(), m.ID); err == nil {
		t.Fatal("deleted maintenance must not keep its expense")
	}
}

func TestDriverCannotCompleteMaintenance(t *testing.T) {
	f := newMaintenanceFixture(t)

	_, err := f.svc.Create(context.Background(), f.driver, dto.CreateMaintenanceRequest{
		VehicleID:   f.vehicle.ID.String(),
		Description: "wipers",
		Status:      model.MaintenanceCompleted,
		Cost:        30,
		Date:        "2026-08-22",
	})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestMaintenanceRejectsUnknownStatus(t *testing.T) {
	f := newMaintenanceFixture(t)

	_, err := f.svc.Create(context.Background(), f.manager, dto.CreateMaintenanceRequest{
		VehicleID:   f.vehicle.ID.String(),
		Description: "misc",
		Status:      "done",
		Cost:        10,
		Date:        "2026-08-22",
	})
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
