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

type DriverService interface {
	List(ctx context.Context, actor authz.Actor) ([]*model.Driver, error)
	Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.Driver, error)
	Create(ctx context.Context, actor authz.Actor, req dto.CreateDriverRequest) (*model.Driver, error)
	Update(ctx context.Context, actor authz.Actor, id uuid.UUID, req dto.UpdateDriverRequest) (*model.Driver, error)
	Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error
	AvailableUsers(ctx context.Context, actor authz.Actor, keepUserID *uuid.UUID) ([]*model.User, error)
}

type driverService struct {
	tx       database.TxManager
	drivers  repository.DriverRepository
	vehicles repository.VehicleRepository
	users    repository.UserRepository
	recorder *audit.Recorder
}

func NewDriverService(tx database.TxManager, drivers repository.DriverRepository, vehicles repository.VehicleRepository, users repository.UserRepository, recorder *audit.Recorder) DriverService {
	return &driverService{tx: tx, drivers: drivers, vehicles: vehicles, users: users, recorder: recorder}
}

func (s *driverService) List(ctx context.Context, actor authz.Actor) ([]*model.Driver, error) {
	if err := authz.Authorize(actor, authz.ResourceDrivers, authz.ActionView); err != nil {
		return nil, err
	}
	return s.drivers.FindAll(ctx, driverScopeFor(actor))
}

func (s *driverService) Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.Driver, error) {
	if err := authz.Authorize(actor, authz.ResourceDrivers, authz.ActionView); err != nil {
		return nil, err
	}
	return s.drivers.FindByID(ctx, id, driverScopeFor(actor))
}

func (s *driverService) Create(ctx context.Context, actor authz.Actor, req dto.CreateDriverRequest) (*model.Driver, error) {
	if err := authz.Authorize(actor, authz.ResourceDrivers, authz.ActionCreate); err != nil {
		return nil, err
	}
	if actor.Role == model.RoleGateSecurity && req.DriverType != model.DriverTypeVisitor {
		return nil, fmt.Errorf("gate security may only register visitor drivers: %w", apperror.ErrForbidden)
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", apperror.ErrInvalidInput)
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing, err := s.drivers.FindByUserID(ctx, userID); err == nil && existing != nil {
		return nil, fmt.Errorf("user %s already has a driver profile: %w", user.Email, apperror.ErrConflict)
	}

	d := &model.Driver{
		UserID:        userID,
		LicenseNumber: req.LicenseNumber,
		PhoneNumber:   req.PhoneNumber,
		HomeAddress:   req.HomeAddress,
		Sex:           req.Sex,
		DriverType:    req.DriverType,
		CreatedBy:     &actor.ID,
		UpdatedBy:     &actor.ID,
	}
	if d.DriverType == "" {
		d.DriverType = model.DriverTypeStaff
	}

	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		if req.VehicleID != nil {
			vehicleID, err := uuid.Parse(*req.VehicleID)
			if err != nil {
				return fmt.Errorf("invalid vehicle id: %w", apperror.ErrInvalidInput)
			}
			if err := s.assignVehicle(ctx, tx, d, vehicleID); err != nil {
				return err
			}
		}
		if err := s.drivers.WithTx(tx).Create(ctx, d); err != nil {
			return err
		}
		if err := s.grantDriverRole(ctx, tx, user); err != nil {
			return err
		}
		return s.recorder.Created(ctx, tx, actor.ID, model.LogDriver, d.ID,
			fmt.Sprintf("Driver %s was registered", user.Name), driverAttrs(d))
	})
	if err != nil {
		return nil, err
	}
	return s.drivers.FindByID(ctx, d.ID)
}

func (s *driverService) Update(ctx context.Context, actor authz.Actor, id uuid.UUID, req dto.UpdateDriverRequest) (*model.Driver, error) {
	if err := authz.Authorize(actor, authz.ResourceDrivers, authz.ActionUpdate); err != nil {
		return nil, err
	}

	d, err := s.drivers.FindByID(ctx, id, driverScopeFor(actor))
	if err != nil {
		return nil, err
	}
	before := driverAttrs(d)

	if req.LicenseNumber != nil {
		d.LicenseNumber = *req.LicenseNumber
	}
	if req.PhoneNumber != nil {
		d.PhoneNumber = *req.PhoneNumber
	}
	if req.HomeAddress != nil {
		d.HomeAddress = *req.HomeAddress
	}
	if req.Sex != nil {
		d.Sex = *req.Sex
	}
	if req.DriverType != nil {
		if actor.Role == model.RoleGateSecurity && *req.DriverType != model.DriverTypeVisitor {
			return nil, fmt.Errorf("gate security may only register visitor drivers: %w", apperror.ErrForbidden)
		}
		d.DriverType = *req.DriverType
	}
	d.UpdatedBy = &actor.ID

	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		switch {
		case req.ClearVehicle:
			d.VehicleID = nil
		case req.VehicleID != nil:
			vehicleID, err := uuid.Parse(*req.VehicleID)
			if err != nil {
				return fmt.Errorf("invalid vehicle id: %w", apperror.ErrInvalidInput)
			}
			if d.VehicleID == nil || *d.VehicleID != vehicleID {
				if err := s.assignVehicle(ctx, tx, d, vehicleID); err != nil {
					return err
				}
			}
		}
		if err := s.drivers.WithTx(tx).Save(ctx, d); err != nil {
			return err
		}
		return s.recorder.Updated(ctx, tx, actor.ID, model.LogDriver, d.ID,
			fmt.Sprintf("Driver %s was updated", d.LicenseNumber), before, driverAttrs(d))
	})
	if err != nil {
		return nil, err
	}
	return s.drivers.FindByID(ctx, d.ID)
}

func (s *driverService) Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if err := authz.Authorize(actor, authz.ResourceDrivers, authz.ActionDelete); err != nil {
		return err
	}
	d, err := s.drivers.FindByID(ctx, id)
	if err != nil {
		return err
	}
	// The linked user account survives; only the driver profile goes.
	return s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := s.drivers.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}
		return s.recorder.Deleted(ctx, tx, actor.ID, model.LogDriver, id,
			fmt.Sprintf("Driver %s was deleted", d.LicenseNumber), driverAttrs(d))
	})
}

func (s *driverService) AvailableUsers(ctx context.Context, actor authz.Actor, keepUserID *uuid.UUID) ([]*model.User, error) {
	if err := authz.Authorize(actor, authz.ResourceDrivers, authz.ActionCreate); err != nil {
		return nil, err
	}
	return s.users.FindAvailableDrivers(ctx, keepUserID)
}

// assignVehicle claims a vehicle for the driver under a row lock so two
// concurrent assignments cannot both win the same vehicle.
func (s *driverService) assignVehicle(ctx context.Context, tx *gorm.DB, d *model.Driver, vehicleID uuid.UUID) error {
	vehicles := s.vehicles.WithTx(tx)
	v, err := vehicles.LockByID(ctx, vehicleID)
	if err != nil {
		return err
	}
	holder, err := s.drivers.WithTx(tx).FindByVehicleID(ctx, v.ID)
	if err != nil && !repository.IsNotFound(err) {
		return err
	}
	if holder != nil && holder.ID != d.ID {
		return fmt.Errorf("vehicle %s is already assigned to another driver: %w", v.PlateNumber, apperror.ErrConflict)
	}
	d.VehicleID = &v.ID
	return nil
}

// grantDriverRole promotes a role-less account to driver. Accounts that
// already hold a role keep it.
func (s *driverService) grantDriverRole(ctx context.Context, tx *gorm.DB, user *model.User) error {
	if user.RoleID != nil {
		return nil
	}
	users := s.users.WithTx(tx)
	role, err := users.FindRoleByName(ctx, model.RoleDriver)
	if err != nil {
		return err
	}
	user.RoleID = &role.ID
	return users.Save(ctx, user)
}

func driverAttrs(d *model.Driver) map[string]any {
	attrs := map[string]any{
		"user_id":        d.UserID.String(),
		"license_number": d.LicenseNumber,
		"phone_number":   d.PhoneNumber,
		"home_address":   d.HomeAddress,
		"sex":            d.Sex,
		"driver_type":    d.DriverType,
	}
	if d.VehicleID != nil {
		attrs["vehicle_id"] = d.VehicleID.String()
	}
	return attrs
}
