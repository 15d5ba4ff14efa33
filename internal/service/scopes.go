package service

import (
	"context"

	"github.com/fleetms/vms-backend/internal/authz"
	"github.com/fleetms/vms-backend/internal/model"
	"github.com/fleetms/vms-backend/internal/repository"
)

// Phase two of the access decision: given a coarse-allowed actor,
// resolve which rows are visible. Admin, manager and gate security see
// everything; vehicle owners see their own vehicles; drivers see their
// assigned vehicle only.

func vehicleScopeFor(ctx context.Context, actor authz.Actor, drivers repository.DriverRepository) (authz.Scope, error) {
	switch actor.Role {
	case model.RoleVehicleOwner:
		return authz.OwnedVehicles(actor.ID), nil
	case model.RoleDriver:
		d, err := drivers.FindByUserID(ctx, actor.ID)
		if err != nil {
			if repository.IsNotFound(err) {
				return authz.None(), nil
			}
			return nil, err
		}
		if d.VehicleID == nil {
			return authz.None(), nil
		}
		return authz.AssignedVehicle(*d.VehicleID), nil
	default:
		return authz.All(), nil
	}
}

func driverScopeFor(actor authz.Actor) authz.Scope {
	switch actor.Role {
	case model.RoleVehicleOwner:
		return authz.DriversOfOwner(actor.ID)
	case model.RoleGateSecurity:
		return authz.CreatedBy(actor.ID)
	default:
		return authz.All()
	}
}

func tripScopeFor(ctx context.Context, actor authz.Actor, drivers repository.DriverRepository) (authz.Scope, error) {
	switch actor.Role {
	case model.RoleDriver:
		d, err := drivers.FindByUserID(ctx, actor.ID)
		if err != nil {
			if repository.IsNotFound(err) {
				return authz.None(), nil
			}
			return nil, err
		}
		return authz.OfDriver(d.ID), nil
	case model.RoleVehicleOwner:
		return authz.OnVehicles(actor.ID), nil
	default:
		return authz.All(), nil
	}
}

func checkInScopeFor(ctx context.Context, actor authz.Actor, drivers repository.DriverRepository) (authz.Scope, error) {
	if actor.Role != model.RoleDriver {
		return authz.All(), nil
	}
	d, err := drivers.FindByUserID(ctx, actor.ID)
	if err != nil {
		if repository.IsNotFound(err) {
			return authz.None(), nil
		}
		return nil, err
	}
	return authz.OfDriver(d.ID), nil
}

func maintenanceScopeFor(ctx context.Context, actor authz.Actor, drivers repository.DriverRepository) (authz.Scope, error) {
	switch actor.Role {
	case model.RoleVehicleOwner:
		return authz.OnVehicles(actor.ID), nil
	case model.RoleDriver:
		d, err := drivers.FindByUserID(ctx, actor.ID)
		if err != nil {
			if repository.IsNotFound(err) {
				return authz.None(), nil
			}
			return nil, err
		}
		if d.VehicleID == nil {
			return authz.None(), nil
		}
		return authz.OnVehicle(*d.VehicleID), nil
	default:
		return authz.All(), nil
	}
}
