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

type VehicleService interface {
	List(ctx context.Context, actor authz.Actor) ([]*model.Vehicle, error)
	Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.Vehicle, error)
	Create(ctx context.Context, actor authz.Actor, req dto.CreateVehicleRequest) (*model.Vehicle, error)
	Update(ctx context.Context, actor authz.Actor, id uuid.UUID, req dto.UpdateVehicleRequest) (*model.Vehicle, error)
	Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error
	// AvailableForDriver lists vehicles that no driver is assigned to.
	AvailableForDriver(ctx context.Context, actor authz.Actor, keepDriverID *uuid.UUID) ([]*model.Vehicle, error)
}

type vehicleService struct {
	tx       database.TxManager
	vehicles repository.VehicleRepository
	drivers  repository.DriverRepository
	users    repository.UserRepository
	recorder *audit.Recorder
}

func NewVehicleService(tx database.TxManager, vehicles repository.VehicleRepository, drivers repository.DriverRepository, users repository.UserRepository, recorder *audit.Recorder) VehicleService {
	return &vehicleService{tx: tx, vehicles: vehicles, drivers: drivers, users: users, recorder: recorder}
}

func (s *vehicleService) List(ctx context.Context, actor authz.Actor) ([]*model.Vehicle, error) {
	if err := authz.Authorize(actor, authz.ResourceVehicles, authz.ActionView); err != nil {
		return nil, err
	}
	scope, err := vehicleScopeFor(ctx, actor, s.drivers)
	if err != nil {
		return nil, err
	}
	return s.vehicles.FindAll(ctx, scope)
}

func (s *vehicleService) Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.Vehicle, error) {
	if err := authz.Authorize(actor, authz.ResourceVehicles, authz.ActionView); err != nil {
		return nil, err
	}
	scope, err := vehicleScopeFor(ctx, actor, s.drivers)
	if err != nil {
		return nil, err
	}
	// An out-of-scope id reads as absent, not forbidden.
	return s.vehicles.FindByID(ctx, id, scope)
}

func (s *vehicleService) Create(ctx context.Context, actor authz.Actor, req dto.CreateVehicleRequest) (*model.Vehicle, error) {
	if err := authz.Authorize(actor, authz.ResourceVehicles, authz.ActionCreate); err != nil {
		return nil, err
	}

	v := &model.Vehicle{
		Manufacturer:  req.Manufacturer,
		Model:         req.Model,
		Year:          req.Year,
		PlateNumber:   req.PlateNumber,
		OwnershipType: req.OwnershipType,
		CreatedBy:     &actor.ID,
		UpdatedBy:     &actor.ID,
	}
	if v.OwnershipType == "" {
		v.OwnershipType = model.OwnershipOrganization
	}

	if err := s.applyOwnership(ctx, actor, v, req.OwnerID); err != nil {
		return nil, err
	}

	if existing, err := s.vehicles.FindByPlate(ctx, req.PlateNumber); err == nil && existing != nil {
		return nil, fmt.Errorf("plate number %s already registered: %w", req.PlateNumber, apperror.ErrConflict)
	}

	err := s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := s.vehicles.WithTx(tx).Create(ctx, v); err != nil {
			return err
		}
		return s.recorder.Created(ctx, tx, actor.ID, model.LogVehicle, v.ID,
			fmt.Sprintf("Vehicle %s was registered", v.PlateNumber), vehicleAttrs(v))
	})
	if err != nil {
		return nil, err
	}
	return s.vehicles.FindByID(ctx, v.ID)
}

func (s *vehicleService) Update(ctx context.Context, actor authz.Actor, id uuid.UUID, req dto.UpdateVehicleRequest) (*model.Vehicle, error) {
	if err := authz.Authorize(actor, authz.ResourceVehicles, authz.ActionUpdate); err != nil {
		return nil, err
	}

	scope, err := vehicleScopeFor(ctx, actor, s.drivers)
	if err != nil {
		return nil, err
	}
	v, err := s.vehicles.FindByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	before := vehicleAttrs(v)

	if req.Manufacturer != nil {
		v.Manufacturer = *req.Manufacturer
	}
	if req.Model != nil {
		v.Model = *req.Model
	}
	if req.Year != nil {
		v.Year = *req.Year
	}
	if req.PlateNumber != nil && *req.PlateNumber != v.PlateNumber {
		if existing, err := s.vehicles.FindByPlate(ctx, *req.PlateNumber); err == nil && existing != nil {
			return nil, fmt.Errorf("plate number %s already registered: %w", *req.PlateNumber, apperror.ErrConflict)
		}
		v.PlateNumber = *req.PlateNumber
	}
	if req.OwnershipType != nil {
		v.OwnershipType = *req.OwnershipType
	}
	if err := s.applyOwnership(ctx, actor, v, req.OwnerID); err != nil {
		return nil, err
	}
	v.UpdatedBy = &actor.ID

	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := s.vehicles.WithTx(tx).Save(ctx, v); err != nil {
			return err
		}
		return s.recorder.Updated(ctx, tx, actor.ID, model.LogVehicle, v.ID,
			fmt.Sprintf("Vehicle %s was updated", v.PlateNumber), before, vehicleAttrs(v))
	})
	if err != nil {
		return nil, err
	}
	return s.vehicles.FindByID(ctx, v.ID)
}

func (s *vehicleService) Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if err := authz.Authorize(actor, authz.ResourceVehicles, authz.ActionDelete); err != nil {
		return err
	}
	v, err := s.vehicles.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := s.vehicles.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}
		return s.recorder.Deleted(ctx, tx, actor.ID, model.LogVehicle, id,
			fmt.Sprintf("Vehicle %s was deleted", v.PlateNumber), vehicleAttrs(v))
	})
}

func (s *vehicleService) AvailableForDriver(ctx context.Context, actor authz.Actor, keepDriverID *uuid.UUID) ([]*model.Vehicle, error) {
	if err := authz.Authorize(actor, authz.ResourceDrivers, authz.ActionView); err != nil {
		return nil, err
	}
	return s.vehicles.FindUnassigned(ctx, keepDriverID)
}

// applyOwnership enforces the ownership invariant: individual vehicles
// carry an owner, organization vehicles never do. A vehicle owner's
// writes are always forced onto themselves.
func (s *vehicleService) applyOwnership(ctx context.Context, actor authz.Actor, v *model.Vehicle, ownerID *string) error {
	if actor.Role == model.RoleVehicleOwner {
		v.OwnershipType = model.OwnershipIndividual
		id := actor.ID
		v.OwnerID = &id
		return nil
	}

	switch v.OwnershipType {
	case model.OwnershipIndividual:
		if ownerID == nil {
			if v.OwnerID == nil {
				return fmt.Errorf("an owner must be selected for individual ownership: %w", apperror.ErrInvalidInput)
			}
			return nil
		}
		parsed, err := uuid.Parse(*ownerID)
		if err != nil {
			return fmt.Errorf("invalid owner id: %w", apperror.ErrInvalidInput)
		}
		owner, err := s.users.FindByID(ctx, parsed)
		if err != nil {
			return fmt.Errorf("owner not found: %w", apperror.ErrInvalidInput)
		}
		if owner.RoleName() != model.RoleVehicleOwner && owner.RoleName() != model.RoleAdmin {
			return fmt.Errorf("selected owner lacks vehicle owner privileges: %w", apperror.ErrInvalidInput)
		}
		v.OwnerID = &parsed
	default:
		v.OwnerID = nil
	}
	return nil
}

func vehicleAttrs(v *model.Vehicle) map[string]any {
	attrs := map[string]any{
		"manufacturer":   v.Manufacturer,
		"model":          v.Model,
		"year":           v.Year,
		"plate_number":   v.PlateNumber,
		"ownership_type": v.OwnershipType,
	}
	if v.OwnerID != nil {
		attrs["owner_id"] = v.OwnerID.String()
	}
	return attrs
}
