package repository

import (
	"context"

	"github.com/fleetms/vms-backend/internal/authz"
	"github.com/fleetms/vms-backend/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IncomeRepository interface {
	WithTx(tx *gorm.DB) IncomeRepository
	Create(ctx context.Context, i *model.Income) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Income, error)
	// FindByTrip returns the derived income row for a trip, or
	// apperror.ErrNotFound.
	FindByTrip(ctx context.Context, tripID uuid.UUID) (*model.Income, error)
	FindAll(ctx context.Context, search string, scopes ...authz.Scope) ([]*model.Income, error)
	Save(ctx context.Context, i *model.Income) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByTrip(ctx context.Context, tripID uuid.UUID) error
}

type incomeRepository struct {
	db *gorm.DB
}

func NewIncomeRepository(db *gorm.DB) IncomeRepository {
	return &incomeRepository{db: db}
}

func (r *incomeRepository) WithTx(tx *gorm.DB) IncomeRepository {
	if tx == nil {
		return r
	}
	return &incomeRepository{db: tx}
}

func (r *incomeRepository) Create(ctx context.Context, i *model.Income) error {
	return translate(r.db.WithContext(ctx).Create(i).Error)
}

func (r *incomeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Income, error) {
	var i model.Income
	if err := r.db.WithContext(ctx).
		Preload("Vehicle").
		Preload("Driver.User").
		Preload("Trip").
		Where("id = ?", id).
		First(&i).Error; err != nil {
		return nil, translate(err)
	}
	return &i, nil
}

func (r *incomeRepository) FindByTrip(ctx context.Context, tripID uuid.UUID) (*model.Income, error) {
	var i model.Income
	if err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		First(&i).Error; err != nil {
		return nil, translate(err)
	}
	return &i, nil
}

func (r *incomeRepository) FindAll(ctx context.Context, search string, scopes ...authz.Scope) ([]*model.Income, error) {
	q := apply(r.db.WithContext(ctx), scopes).
		Preload("Vehicle").
		Preload("Driver.User").
		Preload("Trip").
		Order("created_at desc")
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("source ILIKE ? OR description ILIKE ?", like, like)
	}

	var incomes []*model.Income
	if err := q.Find(&incomes).Error; err != nil {
		return nil, translate(err)
	}
	return incomes, nil
}

func (r *incomeRepository) Save(ctx context.Context, i *model.Income) error {
	return translate(r.db.WithContext(ctx).Save(i).Error)
}

func (r *incomeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(r.db.WithContext(ctx).Delete(&model.Income{}, "id = ?", id).Error)
}

func (r *incomeRepository) DeleteByTrip(ctx context.Context, tripID uuid.UUID) error {
	return translate(r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Delete(&model.Income{}).Error)
}
