package repository

import (
	"context"
	"time"

	"github.com/fleetms/vms-backend/internal/authz"
	"github.com/fleetms/vms-backend/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TripRepository interface {
	WithTx(tx *gorm.DB) TripRepository
	Create(ctx context.Context, t *model.Trip) error
	FindByID(ctx context.Context, id uuid.UUID, scopes ...authz.Scope) (*model.Trip, error)
	FindAll(ctx context.Context, scopes ...authz.Scope) ([]*model.Trip, error)
	CountActive(ctx context.Context) (int64, error)
	Save(ctx context.Context, t *model.Trip) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type tripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) TripRepository {
	return &tripRepository{db: db}
}

func (r *tripRepository) WithTx(tx *gorm.DB) TripRepository {
	if tx == nil {
		return r
	}
	return &tripRepository{db: tx}
}

func (r *tripRepository) Create(ctx context.Context, t *model.Trip) error {
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

func (r *tripRepository) FindByID(ctx context.Context, id uuid.UUID, scopes ...authz.Scope) (*model.Trip, error) {
	var t model.Trip
	q := apply(r.db.WithContext(ctx), scopes).
		Preload("Driver.User").
		Preload("Vehicle")
	if err := q.Where("id = ?", id).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *tripRepository) FindAll(ctx context.Context, scopes ...authz.Scope) ([]*model.Trip, error) {
	var trips []*model.Trip
	q := apply(r.db.WithContext(ctx), scopes).
		Preload("Driver.User").
		Preload("Vehicle").
		Order("created_at desc")
	if err := q.Find(&trips).Error; err != nil {
		return nil, translate(err)
	}
	return trips, nil
}

func (r *tripRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Trip{}).
		Where("end_time IS NULL AND start_time <= ?", time.Now()).
		Count(&count).Error
	return count, translate(err)
}

func (r *tripRepository) Save(ctx context.Context, t *model.Trip) error {
	return translate(r.db.WithContext(ctx).Save(t).Error)
}

func (r *tripRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(r.db.WithContext(ctx).Delete(&model.Trip{}, "id = ?", id).Error)
}
