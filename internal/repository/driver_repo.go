package repository

import (
	"context"
	"errors"

	"github.com/fleetms/vms-backend/internal/authz"
	"github.com/fleetms/vms-backend/internal/model"
	"github.com/fleetms/vms-backend/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DriverRepository interface {
	WithTx(tx *gorm.DB) DriverRepository
	Create(ctx context.Context, d *model.Driver) error
	FindByID(ctx context.Context, id uuid.UUID, scopes ...authz.Scope) (*model.Driver, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Driver, error)
	FindByVehicleID(ctx context.Context, vehicleID uuid.UUID) (*model.Driver, error)
	FindAll(ctx context.Context, scopes ...authz.Scope) ([]*model.Driver, error)
	Save(ctx context.Context, d *model.Driver) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type driverRepository struct {
	db *gorm.DB
}

func NewDriverRepository(db *gorm.DB) DriverRepository {
	return &driverRepository{db: db}
}

func (r *driverRepository) WithTx(tx *gorm.DB) DriverRepository {
	if tx == nil {
		return r
	}
	return &driverRepository{db: tx}
}

func (r *driverRepository) Create(ctx context.Context, d *model.Driver) error {
	return translate(r.db.WithContext(ctx).Create(d).Error)
}

func (r *driverRepository) FindByID(ctx context.Context, id uuid.UUID, scopes ...authz.Scope) (*model.Driver, error) {
	var d model.Driver
	q := apply(r.db.WithContext(ctx), scopes).
		Preload("User.Role").
		Preload("Vehicle")
	if err := q.Where("id = ?", id).First(&d).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *driverRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Driver, error) {
	var d model.Driver
	if err := r.db.WithContext(ctx).
		Preload("Vehicle").
		Where("user_id = ?", userID).
		First(&d).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *driverRepository) FindByVehicleID(ctx context.Context, vehicleID uuid.UUID) (*model.Driver, error) {
	var d model.Driver
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("vehicle_id = ?", vehicleID).
		First(&d).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *driverRepository) FindAll(ctx context.Context, scopes ...authz.Scope) ([]*model.Driver, error) {
	var drivers []*model.Driver
	q := apply(r.db.WithContext(ctx), scopes).
		Preload("User.Role").
		Preload("Vehicle").
		Order("created_at desc")
	if err := q.Find(&drivers).Error; err != nil {
		return nil, translate(err)
	}
	return drivers, nil
}

func (r *driverRepository) Save(ctx context.Context, d *model.Driver) error {
	return translate(r.db.WithContext(ctx).Save(d).Error)
}

func (r *driverRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Deleting a driver must never cascade to the linked user account.
	return translate(r.db.WithContext(ctx).Delete(&model.Driver{}, "id = ?", id).Error)
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}
