package repository

import (
	"context"
	"time"

	"github.com/fleetms/vms-backend/internal/authz"
	"github.com/fleetms/vms-backend/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CheckInOutRepository interface {
	WithTx(tx *gorm.DB) CheckInOutRepository
	Create(ctx context.Context, c *model.CheckInOut) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CheckInOut, error)
	// FindOpenByVehicle returns the vehicle's open record, or
	// apperror.ErrNotFound when the vehicle is not on premises.
	FindOpenByVehicle(ctx context.Context, vehicleID uuid.UUID) (*model.CheckInOut, error)
	FindAll(ctx context.Context, search string, scopes ...authz.Scope) ([]*model.CheckInOut, error)
	FindOpen(ctx context.Context, olderThan *time.Time) ([]*model.CheckInOut, error)
	FindRecent(ctx context.Context, limit int) ([]*model.CheckInOut, error)
	CountOpen(ctx context.Context) (int64, error)
	CountCheckedInSince(ctx context.Context, t time.Time) (int64, error)
	CountCheckedOutSince(ctx context.Context, t time.Time) (int64, error)
	Save(ctx context.Context, c *model.CheckInOut) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type checkInOutRepository struct {
	db *gorm.DB
}

func NewCheckInOutRepository(db *gorm.DB) CheckInOutRepository {
	return &checkInOutRepository{db: db}
}

func (r *checkInOutRepository) WithTx(tx *gorm.DB) CheckInOutRepository {
	if tx == nil {
		return r
	}
	return &checkInOutRepository{db: tx}
}

func (r *checkInOutRepository) Create(ctx context.Context, c *model.CheckInOut) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *checkInOutRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.CheckInOut, error) {
	var c model.CheckInOut
	if err := r.db.WithContext(ctx).
		Preload("Vehicle").
		Preload("Driver.User").
		Where("id = ?", id).
		First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *checkInOutRepository) FindOpenByVehicle(ctx context.Context, vehicleID uuid.UUID) (*model.CheckInOut, error) {
	var c model.CheckInOut
	if err := r.db.WithContext(ctx).
		Where("vehicle_id = ? AND checked_out_at IS NULL", vehicleID).
		First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *checkInOutRepository) FindAll(ctx context.Context, search string, scopes ...authz.Scope) ([]*model.CheckInOut, error) {
	q := apply(r.db.WithContext(ctx), scopes).
		Preload("Vehicle").
		Preload("Driver.User").
		Order("created_at desc")

	if search != "" {
		q = q.Where(
			"vehicle_id IN (?)",
			r.db.WithContext(ctx).
				Model(&model.Vehicle{}).
				Select("id").
				Where("plate_number ILIKE ?", "%"+search+"%"),
		)
	}

	var records []*model.CheckInOut
	if err := q.Find(&records).Error; err != nil {
		return nil, translate(err)
	}
	return records, nil
}

func (r *checkInOutRepository) FindOpen(ctx context.Context, olderThan *time.Time) ([]*model.CheckInOut, error) {
	q := r.db.WithContext(ctx).
		Preload("Vehicle").
		Preload("Driver.User").
		Where("checked_out_at IS NULL")
	if olderThan != nil {
		q = q.Where("checked_in_at < ?", *olderThan).Order("checked_in_at asc")
	} else {
		q = q.Order("checked_in_at desc")
	}

	var records []*model.CheckInOut
	if err := q.Find(&records).Error; err != nil {
		return nil, translate(err)
	}
	return records, nil
}

func (r *checkInOutRepository) FindRecent(ctx context.Context, limit int) ([]*model.CheckInOut, error) {
	if limit <= 0 {
		limit = 10
	}
	var records []*model.CheckInOut
	if err := r.db.WithContext(ctx).
		Preload("Vehicle").
		Preload("Driver.User").
		Order("checked_in_at desc").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, translate(err)
	}
	return records, nil
}

func (r *checkInOutRepository) CountOpen(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CheckInOut{}).
		Where("checked_out_at IS NULL").
		Count(&count).Error
	return count, translate(err)
}

func (r *checkInOutRepository) CountCheckedInSince(ctx context.Context, t time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CheckInOut{}).
		Where("checked_in_at >= ?", t).
		Count(&count).Error
	return count, translate(err)
}

func (r *checkInOutRepository) CountCheckedOutSince(ctx context.Context, t time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CheckInOut{}).
		Where("checked_out_at >= ?", t).
		Count(&count).Error
	return count, translate(err)
}

func (r *checkInOutRepository) Save(ctx context.Context, c *model.CheckInOut) error {
	return translate(r.db.WithContext(ctx).Save(c).Error)
}

func (r *checkInOutRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(r.db.WithContext(ctx).Delete(&model.CheckInOut{}, "id = ?", id).Error)
}
