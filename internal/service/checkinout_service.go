package service

import (
	"context"
	"fmt"
	"time"

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

type CheckInOutService interface {
	List(ctx context.Context, actor authz.Actor, search string) ([]*model.CheckInOut, error)
	Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.CheckInOut, error)
	CheckIn(ctx context.Context, actor authz.Actor, req dto.CheckInRequest) (*model.CheckInOut, error)
	CheckOut(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.CheckInOut, error)
	Update(ctx context.Context, actor authz.Actor, id uuid.UUID, req dto.UpdateCheckInOutRequest) (*model.CheckInOut, error)
	Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error
}

type checkInOutService struct {
	tx       database.TxManager
	checkins repository.CheckInOutRepository
	vehicles repository.VehicleRepository
	drivers  repository.DriverRepository
	recorder *audit.Recorder
}

func NewCheckInOutService(tx database.TxManager, checkins repository.CheckInOutRepository, vehicles repository.VehicleRepository, drivers repository.DriverRepository, recorder *audit.Recorder) CheckInOutService {
	return &checkInOutService{tx: tx, checkins: checkins, vehicles: vehicles, drivers: drivers, recorder: recorder}
}

func (s *checkInOutService) List(ctx context.Context, actor authz.Actor, search string) ([]*model.CheckInOut, error) {
	if err := authz.Authorize(actor, authz.ResourceCheckIns, authz.ActionView); err != nil {
		return nil, err
	}
	scope, err := checkInScopeFor(ctx, actor, s.drivers)
	if err != nil {
		return nil, err
	}
	return s.checkins.FindAll(ctx, search, scope)
}

func (s *checkInOutService) Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.CheckInOut, error) {
	if err := authz.Authorize(actor, authz.ResourceCheckIns, authz.ActionView); err != nil {
		return nil, err
	}
	c, err := s.checkins.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == model.RoleDriver {
		d, err := s.drivers.FindByUserID(ctx, actor.ID)
		if err != nil || d.ID != c.DriverID {
			return nil, fmt.Errorf("check-in record: %w", apperror.ErrNotFound)
		}
	}
	return c, nil
}

// CheckIn opens a gate record for a vehicle. The vehicle row is locked
// so two guards racing on the same plate cannot both open a record.
func (s *checkInOutService) CheckIn(ctx context.Context, actor authz.Actor, req dto.CheckInRequest) (*model.CheckInOut, error) {
	if err := authz.Authorize(actor, authz.ResourceCheckIns, authz.ActionCreate); err != nil {
		return nil, err
	}
	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle id: %w", apperror.ErrInvalidInput)
	}

	var rec *model.CheckInOut
	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		v, err := s.vehicles.WithTx(tx).LockByID(ctx, vehicleID)
		if err != nil {
			return err
		}
		d, err := s.drivers.WithTx(tx).FindByVehicleID(ctx, v.ID)
		if err != nil {
			if repository.IsNotFound(err) {
				return fmt.Errorf("vehicle %s has no assigned driver: %w", v.PlateNumber, apperror.ErrConflict)
			}
			return err
		}
		checkins := s.checkins.WithTx(tx)
		if open, err := checkins.FindOpenByVehicle(ctx, v.ID); err == nil && open != nil {
			return fmt.Errorf("vehicle %s is already checked in: %w", v.PlateNumber, apperror.ErrConflict)
		} else if err != nil && !repository.IsNotFound(err) {
			return err
		}

		rec = &model.CheckInOut{
			VehicleID:   v.ID,
			DriverID:    d.ID,
			CheckedInAt: time.Now(),
			CheckedInBy: &actor.ID,
		}
		if err := checkins.Create(ctx, rec); err != nil {
			return err
		}
		return s.recorder.Created(ctx, tx, actor.ID, model.LogCheckInOut, rec.ID,
			fmt.Sprintf("Vehicle %s checked in", v.PlateNumber), checkInOutAttrs(rec))
	})
	if err != nil {
		return nil, err
	}
	return s.checkins.FindByID(ctx, rec.ID)
}

// CheckOut closes an open record. A missing id is not found; an already
// closed record is a conflict, never a silent second close.
func (s *checkInOutService) CheckOut(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.CheckInOut, error) {
	if err := authz.Authorize(actor, authz.ResourceCheckIns, authz.ActionUpdate); err != nil {
		return nil, err
	}

	err := s.tx.Do(ctx, func(tx *gorm.DB) error {
		checkins := s.checkins.WithTx(tx)
		rec, err := checkins.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !rec.IsOpen() {
			return fmt.Errorf("record is already checked out: %w", apperror.ErrConflict)
		}
		before := checkInOutAttrs(rec)
		now := time.Now()
		rec.CheckedOutAt = &now
		rec.CheckedOutBy = &actor.ID
		if err := checkins.Save(ctx, rec); err != nil {
			return err
		}
		plate := ""
		if rec.Vehicle != nil {
			plate = rec.Vehicle.PlateNumber
		}
		return s.recorder.Updated(ctx, tx, actor.ID, model.LogCheckInOut, rec.ID,
			fmt.Sprintf("Vehicle %s checked out", plate), before, checkInOutAttrs(rec))
	})
	if err != nil {
		return nil, err
	}
	return s.checkins.FindByID(ctx, id)
}

func (s *checkInOutService) Update(ctx context.Context, actor authz.Actor, id uuid.UUID, req dto.UpdateCheckInOutRequest) (*model.CheckInOut, error) {
	if err := authz.Authorize(actor, authz.ResourceCheckIns, authz.ActionUpdate); err != nil {
		return nil, err
	}
	err := s.tx.Do(ctx, func(tx *gorm.DB) error {
		checkins := s.checkins.WithTx(tx)
		rec, err := checkins.FindByID(ctx, id)
		if err != nil {
			return err
		}
		before := checkInOutAttrs(rec)
		if req.CheckedOutAt != nil {
			if req.CheckedOutAt.Before(rec.CheckedInAt) {
				return fmt.Errorf("check-out time precedes check-in time: %w", apperror.ErrInvalidInput)
			}
			rec.CheckedOutAt = req.CheckedOutAt
			if rec.CheckedOutBy == nil {
				rec.CheckedOutBy = &actor.ID
			}
		}
		if err := checkins.Save(ctx, rec); err != nil {
			return err
		}
		return s.recorder.Updated(ctx, tx, actor.ID, model.LogCheckInOut, rec.ID,
			"Gate record was updated", before, checkInOutAttrs(rec))
	})
	if err != nil {
		return nil, err
	}
	return s.checkins.FindByID(ctx, id)
}

func (s *checkInOutService) Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if err := authz.Authorize(actor, authz.ResourceCheckIns, authz.ActionDelete); err != nil {
		return err
	}
	rec, err := s.checkins.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := s.checkins.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}
		return s.recorder.Deleted(ctx, tx, actor.ID, model.LogCheckInOut, id,
			"Gate record was deleted", checkInOutAttrs(rec))
	})
}

func checkInOutAttrs(c *model.CheckInOut) map[string]any {
	attrs := map[string]any{
		"vehicle_id":    c.VehicleID.String(),
		"driver_id":     c.DriverID.String(),
		"checked_in_at": c.CheckedInAt.Format(time.RFC3339),
	}
	if c.CheckedOutAt != nil {
		attrs["checked_out_at"] = c.CheckedOutAt.Format(time.RFC3339)
	}
	return attrs
}
