package authz

import (
	"github.com/fleetms/vms-backend/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scope narrows a query to the rows visible (or writable) for a
// caller. Scopes compose with gorm's db.Scopes.
type Scope func(db *gorm.DB) *gorm.DB

// All leaves the query unrestricted.
func All() Scope {
	return func(db *gorm.DB) *gorm.DB { return db }
}

// None matches no rows. Used when a role passes the coarse check but
// has nothing resolvable to see, e.g. a driver with no profile.
func None() Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Where("1 = 0") }
}

// OwnedVehicles restricts to individually owned vehicles of ownerID.
func OwnedVehicles(ownerID uuid.UUID) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ? AND ownership_type = ?", ownerID, model.OwnershipIndividual)
	}
}

// AssignedVehicle restricts to the single vehicle assigned to a driver.
func AssignedVehicle(vehicleID uuid.UUID) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", vehicleID)
	}
}

// DriversOfOwner restricts driver rows to those assigned to vehicles
// owned by ownerID.
func DriversOfOwner(ownerID uuid.UUID) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"vehicle_id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Model(&model.Vehicle{}).
				Select("id").
				Where("owner_id = ? AND ownership_type = ?", ownerID, model.OwnershipIndividual),
		)
	}
}

// CreatedBy restricts rows to those created by userID. Gate security
// sees only the drivers it registered.
func CreatedBy(userID uuid.UUID) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("created_by = ?", userID)
	}
}

// OfDriver restricts rows carrying a driver_id column to one driver.
func OfDriver(driverID uuid.UUID) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("driver_id = ?", driverID)
	}
}

// OnVehicle restricts rows carrying a vehicle_id column to one vehicle.
func OnVehicle(vehicleID uuid.UUID) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("vehicle_id = ?", vehicleID)
	}
}

// OnVehicles restricts rows carrying a vehicle_id column to the vehicles
// owned by ownerID. Used for maintenance and trips of a vehicle owner.
func OnVehicles(ownerID uuid.UUID) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"vehicle_id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Model(&model.Vehicle{}).
				Select("id").
				Where("owner_id = ? AND ownership_type = ?", ownerID, model.OwnershipIndividual),
		)
	}
}
