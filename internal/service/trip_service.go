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

type TripService interface {
	List(ctx context.Context, actor authz.Actor) ([]*model.Trip, error)
	Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.Trip, error)
	Create(ctx context.Context, actor authz.Actor, req dto.CreateTripRequest) (*model.Trip, error)
	Update(ctx context.Context, actor authz.Actor, id uuid.UUID, req dto.UpdateTripRequest) (*model.Trip, error)
	Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error
}

type tripService struct {
	tx       database.TxManager
	trips    repository.TripRepository
	incomes  repository.IncomeRepository
	vehicles repository.VehicleRepository
	drivers  repository.DriverRepository
	recorder *audit.Recorder
}

func NewTripService(tx database.TxManager, trips repository.TripRepository, incomes repository.IncomeRepository, vehicles repository.VehicleRepository, drivers repository.DriverRepository, recorder *audit.Recorder) TripService {
	return &tripService{tx: tx, trips: trips, incomes: incomes, vehicles: vehicles, drivers: drivers, recorder: recorder}
}

func (s *tripService) List(ctx context.Context, actor authz.Actor) ([]*model.Trip, error) {
	if err := authz.Authorize(actor, authz.ResourceTrips, authz.ActionView); err != nil {
		return nil, err
	}
	scope, err := tripScopeFor(ctx, actor, s.drivers)
	if err != nil {
		return nil, err
	}
	return s.trips.FindAll(ctx, scope)
}

func (s *tripService) Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.Trip, error) {
	if err := authz.Authorize(actor, authz.ResourceTrips, authz.ActionView); err != nil {
		return nil, err
	}
	scope, err := tripScopeFor(ctx, actor, s.drivers)
	if err != nil {
		return nil, err
	}
	return s.trips.FindByID(ctx, id, scope)
}

func (s *tripService) Create(ctx context.Context, actor authz.Actor, req dto.CreateTripRequest) (*model.Trip, error) {
	if err := authz.Authorize(actor, authz.ResourceTrips, authz.ActionCreate); err != nil {
		return nil, err
	}

	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle id: %w", apperror.ErrInvalidInput)
	}
	if req.EndTime != nil && req.EndTime.Before(req.StartTime) {
		return nil, fmt.Errorf("end time precedes start time: %w", apperror.ErrConflict)
	}

	// The trip's driver is whoever holds the vehicle assignment; a
	// vehicle with no assigned driver cannot run trips.
	d, err := s.drivers.FindByVehicleID(ctx, vehicleID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("vehicle has no assigned driver: %w", apperror.ErrConflict)
		}
		return nil, err
	}
	if actor.Role == model.RoleDriver && d.UserID != actor.ID {
		return nil, fmt.Errorf("drivers may only record trips on their own vehicle: %w", apperror.ErrForbidden)
	}

	t := &model.Trip{
		DriverID:      d.ID,
		VehicleID:     vehicleID,
		StartLocation: req.StartLocation,
		EndLocation:   req.EndLocation,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Amount:        req.Amount,
	}

	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := s.trips.WithTx(tx).Create(ctx, t); err != nil {
			return err
		}
		if err := s.syncIncome(ctx, tx, actor, t); err != nil {
			return err
		}
		return s.recorder.Created(ctx, tx, actor.ID, model.LogTrip, t.ID,
			fmt.Sprintf("Trip from %s to %s was recorded", t.StartLocation, t.EndLocation), tripAttrs(t))
	})
	if err != nil {
		return nil, err
	}
	return s.trips.FindByID(ctx, t.ID)
}

func (s *tripService) Update(ctx context.Context, actor authz.Actor, id uuid.UUID, req dto.UpdateTripRequest) (*model.Trip, error) {
	if err := authz.Authorize(actor, authz.ResourceTrips, authz.ActionUpdate); err != nil {
		return nil, err
	}
	scope, err := tripScopeFor(ctx, actor, s.drivers)
	if err != nil {
		return nil, err
	}
	t, err := s.trips.FindByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	before := tripAttrs(t)

	if req.VehicleID != nil {
		vehicleID, err := uuid.Parse(*req.VehicleID)
		if err != nil {
			return nil, fmt.Errorf("invalid vehicle id: %w", apperror.ErrInvalidInput)
		}
		if vehicleID != t.VehicleID {
			d, err := s.drivers.FindByVehicleID(ctx, vehicleID)
			if err != nil {
				if repository.IsNotFound(err) {
					return nil, fmt.Errorf("vehicle has no assigned driver: %w", apperror.ErrConflict)
				}
				return nil, err
			}
			if actor.Role == model.RoleDriver && d.UserID != actor.ID {
				return nil, fmt.Errorf("drivers may only record trips on their own vehicle: %w", apperror.ErrForbidden)
			}
			t.VehicleID = vehicleID
			t.DriverID = d.ID
		}
	}
	if req.StartLocation != nil {
		t.StartLocation = *req.StartLocation
	}
	if req.EndLocation != nil {
		t.EndLocation = *req.EndLocation
	}
	if req.StartTime != nil {
		t.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		t.EndTime = req.EndTime
	}
	if req.Amount != nil {
		t.Amount = req.Amount
	}
	if t.EndTime != nil && t.EndTime.Before(t.StartTime) {
		return nil, fmt.Errorf("end time precedes start time: %w", apperror.ErrConflict)
	}

	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := s.trips.WithTx(tx).Save(ctx, t); err != nil {
			return err
		}
		if err := s.syncIncome(ctx, tx, actor, t); err != nil {
			return err
		}
		return s.recorder.Updated(ctx, tx, actor.ID, model.LogTrip, t.ID,
			"Trip was updated", before, tripAttrs(t))
	})
	if err != nil {
		return nil, err
	}
	return s.trips.FindByID(ctx, t.ID)
}

func (s *tripService) Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if err := authz.Authorize(actor, authz.ResourceTrips, authz.ActionDelete); err != nil {
		return err
	}
	t, err := s.trips.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := s.incomes.WithTx(tx).DeleteByTrip(ctx, t.ID); err != nil {
			return err
		}
		if err := s.trips.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}
		return s.recorder.Deleted(ctx, tx, actor.ID, model.LogTrip, id,
			"Trip was deleted", tripAttrs(t))
	})
}

// syncIncome keeps the derived income row in lockstep with the trip: a
// completed trip with a fare has exactly one income row, anything else
// has none.
func (s *tripService) syncIncome(ctx context.Context, tx *gorm.DB, actor authz.Actor, t *model.Trip) error {
	incomes := s.incomes.WithTx(tx)
	existing, err := incomes.FindByTrip(ctx, t.ID)
	if err != nil && !repository.IsNotFound(err) {
		return err
	}

	if !t.IsCompleted() || t.Amount == nil || *t.Amount <= 0 {
		if existing == nil {
			return nil
		}
		if err := incomes.DeleteByTrip(ctx, t.ID); err != nil {
			return err
		}
		return s.recorder.Deleted(ctx, tx, actor.ID, model.LogIncome, existing.ID,
			"Trip income was withdrawn", incomeAttrs(existing))
	}

	if existing != nil {
		before := incomeAttrs(existing)
		existing.VehicleID = t.VehicleID
		existing.DriverID = &t.DriverID
		existing.Amount = *t.Amount
		existing.Description = fmt.Sprintf("Trip: %s to %s", t.StartLocation, t.EndLocation)
		existing.Date = *t.EndTime
		if err := incomes.Save(ctx, existing); err != nil {
			return err
		}
		return s.recorder.Updated(ctx, tx, actor.ID, model.LogIncome, existing.ID,
			"Trip income was updated", before, incomeAttrs(existing))
	}

	in := &model.Income{
		VehicleID:   t.VehicleID,
		DriverID:    &t.DriverID,
		TripID:      &t.ID,
		Source:      "Trip",
		Amount:      *t.Amount,
		Description: fmt.Sprintf("Trip: %s to %s", t.StartLocation, t.EndLocation),
		Date:        *t.EndTime,
	}
	if err := incomes.Create(ctx, in); err != nil {
		return err
	}
	return s.recorder.Created(ctx, tx, actor.ID, model.LogIncome, in.ID,
		"Trip income was recorded", incomeAttrs(in))
}

func tripAttrs(t *model.Trip) map[string]any {
	attrs := map[string]any{
		"driver_id":      t.DriverID.String(),
		"vehicle_id":     t.VehicleID.String(),
		"start_location": t.StartLocation,
		"end_location":   t.EndLocation,
		"start_time":     t.StartTime.Format("2006-01-02 15:04:05"),
		"status":         t.Status,
	}
	if t.EndTime != nil {
		attrs["end_time"] = t.EndTime.Format("2006-01-02 15:04:05")
	}
	if t.Amount != nil {
		attrs["amount"] = *t.Amount
	}
	return attrs
}
