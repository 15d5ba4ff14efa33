package service

import (
	"context"
	"fmt"

	"github.com/fleetms/vms-backend/internal/audit"
	"github.com/fleetms/vms-backend/internal/authz"
	"github.com/fleetms/vms-backend/internal/dto"
	"github.com/fleetms/vms-backend/internal/model"
	"github.com/fleetms/vms-backend/internal/repository"
	"github.com/fleetms/vms-backend/pkg/apperror"
	"github.com/fleetms/vms-backend/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MaintenanceService interface {
	List(ctx context.Context, actor authz.Actor) ([]*model.Maintenance, error)
	Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.Maintenance, error)
	Create(ctx context.Context, actor authz.Actor, req dto.CreateMaintenanceRequest) (*model.Maintenance, error)
	Update(ctx context.Context, actor authz.Actor, id uuid.UUID, req dto.UpdateMaintenanceRequest) (*model.Maintenance, error)
	Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error
}

type maintenanceService struct {
	tx           database.TxManager
	maintenances repository.MaintenanceRepository
	expenses     repository.ExpenseRepository
	vehicles     repository.VehicleRepository
	drivers      repository.DriverRepository
	recorder     *audit.Recorder
}

func NewMaintenanceService(tx database.TxManager, maintenances repository.MaintenanceRepository, expenses repository.ExpenseRepository, vehicles repository.VehicleRepository, drivers repository.DriverRepository, recorder *audit.Recorder) MaintenanceService {
	return &maintenanceService{tx: tx, maintenances: maintenances, expenses: expenses, vehicles: vehicles, drivers: drivers, recorder: recorder}
}

func (s *maintenanceService) List(ctx context.Context, actor authz.Actor) ([]*model.Maintenance, error) {
	if err := authz.Authorize(actor, authz.ResourceMaintenances, authz.ActionView); err != nil {
		return nil, err
	}
	scope, err := maintenanceScopeFor(ctx, actor, s.drivers)
	if err != nil {
		return nil, err
	}
	return s.maintenances.FindAll(ctx, scope)
}

func (s *maintenanceService) Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.Maintenance, error) {
	if err := authz.Authorize(actor, authz.ResourceMaintenances, authz.ActionView); err != nil {
		return nil, err
	}
	scope, err := maintenanceScopeFor(ctx, actor, s.drivers)
	if err != nil {
		return nil, err
	}
	return s.maintenances.FindByID(ctx, id, scope)
}

func (s *maintenanceService) Create(ctx context.Context, actor authz.Actor, req dto.CreateMaintenanceRequest) (*model.Maintenance, error) {
	if err := authz.Authorize(actor, authz.ResourceMaintenances, authz.ActionCreate); err != nil {
		return nil, err
	}
	if !model.ValidMaintenanceStatus(req.Status) {
		return nil, fmt.Errorf("unknown maintenance status %q: %w", req.Status, apperror.ErrInvalidInput)
	}
	if req.Status == model.MaintenanceCompleted && !authz.CanCompleteMaintenance(actor.Role) {
		return nil, fmt.Errorf("only managers may mark maintenance completed: %w", apperror.ErrForbidden)
	}

	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle id: %w", apperror.ErrInvalidInput)
	}
	scope, err := vehicleScopeFor(ctx, actor, s.drivers)
	if err != nil {
		return nil, err
	}
	v, err := s.vehicles.FindByID(ctx, vehicleID, scope)
	if err != nil {
		return nil, err
	}
	date, err := dto.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	m := &model.Maintenance{
		VehicleID:   v.ID,
		Description: req.Description,
		Status:      req.Status,
		Cost:        req.Cost,
		Date:        date,
		CreatedBy:   &actor.ID,
		UpdatedBy:   &actor.ID,
	}

	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := s.maintenances.WithTx(tx).Create(ctx, m); err != nil {
			return err
		}
		if err := s.syncExpense(ctx, tx, actor, m); err != nil {
			return err
		}
		return s.recorder.Created(ctx, tx, actor.ID, model.LogMaintenance, m.ID,
			fmt.Sprintf("Maintenance for vehicle %s was recorded", v.PlateNumber), maintenanceAttrs(m))
	})
	if err != nil {
		return nil, err
	}
	return s.maintenances.FindByID(ctx, m.ID)
}

func (s *maintenanceService) Update(ctx context.Context, actor authz.Actor, id uuid.UUID, req dto.UpdateMaintenanceRequest) (*model.Maintenance, error) {
	if err := authz.Authorize(actor, authz.ResourceMaintenances, authz.ActionUpdate); err != nil {
		return nil, err
	}
	scope, err := maintenanceScopeFor(ctx, actor, s.drivers)
	if err != nil {
		return nil, err
	}
	m, err := s.maintenances.FindByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	before := maintenanceAttrs(m)

	if req.VehicleID != nil {
		vehicleID, err := uuid.Parse(*req.VehicleID)
		if err != nil {
			return nil, fmt.Errorf("invalid vehicle id: %w", apperror.ErrInvalidInput)
		}
		vScope, err := vehicleScopeFor(ctx, actor, s.drivers)
		if err != nil {
			return nil, err
		}
		if _, err := s.vehicles.FindByID(ctx, vehicleID, vScope); err != nil {
			return nil, err
		}
		m.VehicleID = vehicleID
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.Status != nil {
		if !model.ValidMaintenanceStatus(*req.Status) {
			return nil, fmt.Errorf("unknown maintenance status %q: %w", *req.Status, apperror.ErrInvalidInput)
		}
		if *req.Status != m.Status && (*req.Status == model.MaintenanceCompleted || m.Status == model.MaintenanceCompleted) &&
			!authz.CanCompleteMaintenance(actor.Role) {
			return nil, fmt.Errorf("only managers may change completion state: %w", apperror.ErrForbidden)
		}
		m.Status = *req.Status
	}
	if req.Cost != nil {
		m.Cost = *req.Cost
	}
	if req.Date != nil {
		date, err := dto.ParseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		m.Date = date
	}
	m.UpdatedBy = &actor.ID

	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := s.maintenances.WithTx(tx).Save(ctx, m); err != nil {
			return err
		}
		if err := s.syncExpense(ctx, tx, actor, m); err != nil {
			return err
		}
		return s.recorder.Updated(ctx, tx, actor.ID, model.LogMaintenance, m.ID,
			"Maintenance record was updated", before, maintenanceAttrs(m))
	})
	if err != nil {
		return nil, err
	}
	return s.maintenances.FindByID(ctx, m.ID)
}

func (s *maintenanceService) Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if err := authz.Authorize(actor, authz.ResourceMaintenances, authz.ActionDelete); err != nil {
		return err
	}
	m, err := s.maintenances.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := s.expenses.WithTx(tx).DeleteByMaintenance(ctx, m.ID); err != nil {
			return err
		}
		if err := s.maintenances.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}
		return s.recorder.Deleted(ctx, tx, actor.ID, model.LogMaintenance, id,
			"Maintenance record was deleted", maintenanceAttrs(m))
	})
}

// syncExpense keeps the derived expense row in lockstep with the
// maintenance status: Completed has exactly one mirroring expense,
// anything else has none.
func (s *maintenanceService) syncExpense(ctx context.Context, tx *gorm.DB, actor authz.Actor, m *model.Maintenance) error {
	expenses := s.expenses.WithTx(tx)
	existing, err := expenses.FindByMaintenance(ctx, m.ID)
	if err != nil && !repository.IsNotFound(err) {
		return err
	}

	if !m.IsCompleted() {
		if existing == nil {
			return nil
		}
		if err := expenses.DeleteByMaintenance(ctx, m.ID); err != nil {
			return err
		}
		return s.recorder.Deleted(ctx, tx, actor.ID, model.LogExpense, existing.ID,
			"Maintenance expense was withdrawn", expenseAttrs(existing))
	}

	if existing != nil {
		before := expenseAttrs(existing)
		existing.VehicleID = m.VehicleID
		existing.Amount = m.Cost
		existing.Description = fmt.Sprintf("Maintenance: %s", m.Description)
		existing.Date = m.Date
		existing.UpdatedBy = &actor.ID
		if err := expenses.Save(ctx, existing); err != nil {
			return err
		}
		return s.recorder.Updated(ctx, tx, actor.ID, model.LogExpense, existing.ID,
			"Maintenance expense was updated", before, expenseAttrs(existing))
	}

	e := &model.Expense{
		VehicleID:     m.VehicleID,
		MaintenanceID: &m.ID,
		Amount:        m.Cost,
		Description:   fmt.Sprintf("Maintenance: %s", m.Description),
		Date:          m.Date,
		CreatedBy:     &actor.ID,
		UpdatedBy:     &actor.ID,
	}
	if err := expenses.Create(ctx, e); err != nil {
		return err
	}
	return s.recorder.Created(ctx, tx, actor.ID, model.LogExpense, e.ID,
		"Maintenance expense was recorded", expenseAttrs(e))
}

func maintenanceAttrs(m *model.Maintenance) map[string]any {
	return map[string]any{
		"vehicle_id":  m.VehicleID.String(),
		"description": m.Description,
		"status":      m.Status,
		"cost":        m.Cost,
		"date":        m.Date.Format("2006-01-02"),
	}
}
