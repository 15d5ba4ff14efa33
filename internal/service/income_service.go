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

type IncomeService interface {
	List(ctx context.Context, actor authz.Actor, search string) ([]*model.Income, error)
	Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.Income, error)
	Create(ctx context.Context, actor authz.Actor, req dto.CreateIncomeRequest) (*model.Income, error)
	Update(ctx context.Context, actor authz.Actor, id uuid.UUID, req dto.UpdateIncomeRequest) (*model.Income, error)
	Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error
}

type incomeService struct {
	tx       database.TxManager
	incomes  repository.IncomeRepository
	vehicles repository.VehicleRepository
	drivers  repository.DriverRepository
	recorder *audit.Recorder
}

func NewIncomeService(tx database.TxManager, incomes repository.IncomeRepository, vehicles repository.VehicleRepository, drivers repository.DriverRepository, recorder *audit.Recorder) IncomeService {
	return &incomeService{tx: tx, incomes: incomes, vehicles: vehicles, drivers: drivers, recorder: recorder}
}

func (s *incomeService) List(ctx context.Context, actor authz.Actor, search string) ([]*model.Income, error) {
	if err := authz.Authorize(actor, authz.ResourceIncomes, authz.ActionView); err != nil {
		return nil, err
	}
	return s.incomes.FindAll(ctx, search)
}

func (s *incomeService) Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.Income, error) {
	if err := authz.Authorize(actor, authz.ResourceIncomes, authz.ActionView); err != nil {
		return nil, err
	}
	return s.incomes.FindByID(ctx, id)
}

func (s *incomeService) Create(ctx context.Context, actor authz.Actor, req dto.CreateIncomeRequest) (*model.Income, error) {
	if err := authz.Authorize(actor, authz.ResourceIncomes, authz.ActionCreate); err != nil {
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

	in := &model.Income{
		VehicleID:   vehicleID,
		Source:      req.Source,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
	}
	if req.DriverID != nil {
		driverID, err := uuid.Parse(*req.DriverID)
		if err != nil {
			return nil, fmt.Errorf("invalid driver id: %w", apperror.ErrInvalidInput)
		}
		if _, err := s.drivers.FindByID(ctx, driverID); err != nil {
			return nil, err
		}
		in.DriverID = &driverID
	}

	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := s.incomes.WithTx(tx).Create(ctx, in); err != nil {
			return err
		}
		return s.recorder.Created(ctx, tx, actor.ID, model.LogIncome, in.ID,
			"Income was recorded", incomeAttrs(in))
	})
	if err != nil {
		return nil, err
	}
	return s.incomes.FindByID(ctx, in.ID)
}

func (s *incomeService) Update(ctx context.Context, actor authz.Actor, id uuid.UUID, req dto.UpdateIncomeRequest) (*model.Income, error) {
	if err := authz.Authorize(actor, authz.ResourceIncomes, authz.ActionUpdate); err != nil {
		return nil, err
	}
	in, err := s.incomes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.TripID != nil {
		return nil, fmt.Errorf("income is derived from a trip and follows it: %w", apperror.ErrConflict)
	}
	before := incomeAttrs(in)

	if req.VehicleID != nil {
		vehicleID, err := uuid.Parse(*req.VehicleID)
		if err != nil {
			return nil, fmt.Errorf("invalid vehicle id: %w", apperror.ErrInvalidInput)
		}
		if _, err := s.vehicles.FindByID(ctx, vehicleID); err != nil {
			return nil, err
		}
		in.VehicleID = vehicleID
	}
	if req.DriverID != nil {
		driverID, err := uuid.Parse(*req.DriverID)
		if err != nil {
			return nil, fmt.Errorf("invalid driver id: %w", apperror.ErrInvalidInput)
		}
		if _, err := s.drivers.FindByID(ctx, driverID); err != nil {
			return nil, err
		}
		in.DriverID = &driverID
	}
	if req.Source != nil {
		in.Source = *req.Source
	}
	if req.Amount != nil {
		in.Amount = *req.Amount
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Date != nil {
		date, err := dto.ParseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		in.Date = date
	}

	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := s.incomes.WithTx(tx).Save(ctx, in); err != nil {
			return err
		}
		return s.recorder.Updated(ctx, tx, actor.ID, model.LogIncome, in.ID,
			"Income was updated", before, incomeAttrs(in))
	})
	if err != nil {
		return nil, err
	}
	return s.incomes.FindByID(ctx, in.ID)
}

func (s *incomeService) Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if err := authz.Authorize(actor, authz.ResourceIncomes, authz.ActionDelete); err != nil {
		return err
	}
	in, err := s.incomes.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if in.TripID != nil {
		return fmt.Errorf("income is derived from a trip and follows it: %w", apperror.ErrConflict)
	}
	return s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := s.incomes.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}
		return s.recorder.Deleted(ctx, tx, actor.ID, model.LogIncome, id,
			"Income was deleted", incomeAttrs(in))
	})
}

func incomeAttrs(in *model.Income) map[string]any {
	attrs := map[string]any{
		"vehicle_id":  in.VehicleID.String(),
		"source":      in.Source,
		"amount":      in.Amount,
		"description": in.Description,
		"date":        in.Date.Format("2006-01-02"),
	}
	if in.DriverID != nil {
		attrs["driver_id"] = in.DriverID.String()
	}
	if in.TripID != nil {
		attrs["trip_id"] = in.TripID.String()
	}
	return attrs
}
