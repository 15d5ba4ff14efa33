package repository

import (
	"context"

	"github.com/fleetms/vms-backend/internal/authz"
	"github.com/fleetms/vms-backend/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VehicleRepository interface {
	WithTx(tx *gorm.DB) VehicleRepository
	Create(ctx context.Context, v *model.Vehicle) error
	FindByID(ctx context.Context, id uuid.UUID, scopes ...authz.Scope) (*model.Vehicle, error)
	FindByPlate(ctx context.Context, plate string) (*model.Vehicle, error)
	FindAll(ctx context.Context, scopes ...authz.Scope) ([]*model.Vehicle, error)
	FindUnassigned(ctx context.Context, keepDriverID *uuid.UUID) ([]*model.Vehicle, error)
	// LockByID loads the vehicle row under FOR UPDATE so that
	// check-then-write invariants (open check-in, driver assignment)
	// cannot race.
	LockByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error)
	Save(ctx context.Context, v *model.Vehicle) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type vehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) WithTx(tx *gorm.DB) VehicleRepository {
	if tx == nil {
		return r
	}
	return &vehicleRepository{db: tx}
}

func (r *vehicleRepository) Create(ctx context.Context, v *model.Vehicle) error {
	return translate(r.db.WithContext(ctx).Create(v).Error)
}

func (r *vehicleRepository) FindByID(ctx context.Context, id uuid.UUID, scopes ...authz.Scope) (*model.Vehicle, error) {
	var v model.Vehicle
	q := apply(r.db.WithContext(ctx), scopes).
		Preload("Driver.User").
		Preload("Owner")
	if err := q.Where("id = ?", id).First(&v).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *vehicleRepository) FindByPlate(ctx context.Context, plate string) (*model.Vehicle, error) {
	var v model.Vehicle
	if err := r.db.WithContext(ctx).Where("plate_number = ?", plate).First(&v).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *vehicleRepository) FindAll(ctx context.Context, scopes ...authz.Scope) ([]*model.Vehicle, error) {
	var vehicles []*model.Vehicle
	q := apply(r.db.WithContext(ctx), scopes).
		Preload("Driver.User").
		Preload("Owner").
		Order("created_at desc")
	if err := q.Find(&vehicles).Error; err != nil {
		return nil, translate(err)
	}
	return vehicles, nil
}

// FindUnassigned lists vehicles without a driver. keepDriverID, when
// set, keeps that driver's current vehicle in the result so an edit
// form can re-select it.
func (r *vehicleRepository) FindUnassigned(ctx context.Context, keepDriverID *uuid.UUID) ([]*model.Vehicle, error) {
	assigned := r.db.WithContext(ctx).
		Model(&model.Driver{}).
		Select("vehicle_id").
		Where("vehicle_id IS NOT NULL")
	if keepDriverID != nil {
		assigned = assigned.Where("id <> ?", *keepDriverID)
	}

	var vehicles []*model.Vehicle
	if err := r.db.WithContext(ctx).
		Where("id NOT IN (?)", assigned).
		Order("plate_number").
		Find(&vehicles).Error; err != nil {
		return nil, translate(err)
	}
	return vehicles, nil
}

func (r *vehicleRepository) LockByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	var v model.Vehicle
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&v).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *vehicleRepository) Save(ctx context.Context, v *model.Vehicle) error {
	return translate(r.db.WithContext(ctx).Save(v).Error)
}

func (r *vehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(r.db.WithContext(ctx).Delete(&model.Vehicle{}, "id = ?", id).Error)
}
