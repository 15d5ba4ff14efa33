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

type ExpenseService interface {
	List(ctx context.Context, actor authz.Actor) ([]*model.Expense, error)
	Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.Expense, error)
	Create(ctx context.Context, actor authz.Actor, req dto.CreateExpenseRequest) (*model.Expense, error)
	Update(ctx context.Context, actor authz.Actor, id uuid.UUID, req dto.UpdateExpenseRequest) (*model.Expense, error)
	Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error
}

type expenseService struct {
	tx       database.TxManager
	expenses repository.ExpenseRepository
	vehicles repository.VehicleRepository
	recorder *audit.Recorder
}

func NewExpenseService(tx database.TxManager, expenses repository.ExpenseRepository, vehicles repository.VehicleRepository, recorder *audit.Recorder) ExpenseService {
	return &expenseService{tx: tx, expenses: expenses, vehicles: vehicles, recorder: recorder}
}

func (s *expenseService) List(ctx context.Context, actor authz.Actor) ([]*model.Expense, error) {
	if err := authz.Authorize(actor, authz.ResourceExpenses, authz.ActionView); err != nil {
		return nil, err
	}
	return s.expenses.FindAll(ctx)
}

func (s *expenseService) Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.Expense, error) {
	if err := authz.Authorize(actor, authz.ResourceExpenses, authz.ActionView); err != nil {
		return nil, err
	}
	return s.expenses.FindByID(ctx, id)
}

func (s *expenseService) Create(ctx context.Context, actor authz.Actor, req dto.CreateExpenseRequest) (*model.Expense, error) {
	if err := authz.Authorize(actor, authz.ResourceExpenses, authz.ActionCreate); err != nil {
		return nil, err
	}
	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle id: %w", apperror.ErrInvalidInput)
	}
	if _, err := s.vehicles.FindByID(ctx, vehicleID); err != nil {
		return nil, err
	}
	date, err := dto.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	e := &model.Expense{
		VehicleID:   vehicleID,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
		CreatedBy:   &actor.ID,
		UpdatedBy:   &actor.ID,
	}
	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := s.expenses.WithTx(tx).Create(ctx, e); err != nil {
			return err
		}
		return s.recorder.Created(ctx, tx, actor.ID, model.LogExpense, e.ID,
			"Expense was recorded", expenseAttrs(e))
	})
	if err != nil {
		return nil, err
	}
	return s.expenses.FindByID(ctx, e.ID)
}

func (s *expenseService) Update(ctx context.Context, actor authz.Actor, id uuid.UUID, req dto.UpdateExpenseRequest) (*model.Expense, error) {
	if err := authz.Authorize(actor, authz.ResourceExpenses, authz.ActionUpdate); err != nil {
		return nil, err
	}
	e, err := s.expenses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.MaintenanceID != nil {
		return nil, fmt.Errorf("expense is derived from a maintenance record and follows it: %w", apperror.ErrConflict)
	}
	before := expenseAttrs(e)

	if req.VehicleID != nil {
		vehicleID, err := uuid.Parse(*req.VehicleID)
		if err != nil {
			return nil, fmt.Errorf("invalid vehicle id: %w", apperror.ErrInvalidInput)
		}
		if _, err := s.vehicles.FindByID(ctx, vehicleID); err != nil {
			return nil, err
		}
		e.VehicleID = vehicleID
	}
	if req.Amount != nil {
		e.Amount = *req.Amount
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Date != nil {
		date, err := dto.ParseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		e.Date = date
	}
	e.UpdatedBy = &actor.ID

	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := s.expenses.WithTx(tx).Save(ctx, e); err != nil {
			return err
		}
		return s.recorder.Updated(ctx, tx, actor.ID, model.LogExpense, e.ID,
			"Expense was updated", before, expenseAttrs(e))
	})
	if err != nil {
		return nil, err
	}
	return s.expenses.FindByID(ctx, e.ID)
}

func (s *expenseService) Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if err := authz.Authorize(actor, authz.ResourceExpenses, authz.ActionDelete); err != nil {
		return err
	}
	e, err := s.expenses.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if e.MaintenanceID != nil {
		return fmt.Errorf("expense is derived from a maintenance record and follows it: %w", apperror.ErrConflict)
	}
	return s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := s.expenses.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}
		return s.recorder.Deleted(ctx, tx, actor.ID, model.LogExpense, id,
			"Expense was deleted", expenseAttrs(e))
	})
}

func expenseAttrs(e *model.Expense) map[string]any {
	attrs := map[string]any{
		"vehicle_id":  e.VehicleID.String(),
		"amount":      e.Amount,
		"description": e.Description,
		"date":        e.Date.Format("2006-01-02"),
	}
	if e.MaintenanceID != nil {
		attrs["maintenance_id"] = e.MaintenanceID.String()
	}
	return attrs
}
