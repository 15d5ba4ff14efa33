package repository

import (
	"context"

	"github.com/fleetms/vms-backend/internal/authz"
	"github.com/fleetms/vms-backend/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExpenseRepository interface {
	WithTx(tx *gorm.DB) ExpenseRepository
	Create(ctx context.Context, e *model.Expense) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error)
	// FindByMaintenance returns the derived expense for a maintenance
	// record, or apperror.ErrNotFound.
	FindByMaintenance(ctx context.Context, maintenanceID uuid.UUID) (*model.Expense, error)
	FindAll(ctx context.Context, scopes ...authz.Scope) ([]*model.Expense, error)
	Sum(ctx context.Context) (float64, error)
	Save(ctx context.Context, e *model.Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByMaintenance(ctx context.Context, maintenanceID uuid.UUID) error
}

type expenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) WithTx(tx *gorm.DB) ExpenseRepository {
	if tx == nil {
		return r
	}
	return &expenseRepository{db: tx}
}

func (r *expenseRepository) Create(ctx context.Context, e *model.Expense) error {
	return translate(r.db.WithContext(ctx).Create(e).Error)
}

func (r *expenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	var e model.Expense
	if err := r.db.WithContext(ctx).
		Preload("Vehicle").
		Preload("Maintenance").
		Where("id = ?", id).
		First(&e).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *expenseRepository) FindByMaintenance(ctx context.Context, maintenanceID uuid.UUID) (*model.Expense, error) {
	var e model.Expense
	if err := r.db.WithContext(ctx).
		Where("maintenance_id = ?", maintenanceID).
		First(&e).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *expenseRepository) FindAll(ctx context.Context, scopes ...authz.Scope) ([]*model.Expense, error) {
	var expenses []*model.Expense
	q := apply(r.db.WithContext(ctx), scopes).
		Preload("Vehicle").
		Preload("Maintenance").
		Order("created_at desc")
	if err := q.Find(&expenses).Error; err != nil {
		return nil, translate(err)
	}
	return expenses, nil
}

func (r *expenseRepository) Sum(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&model.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, translate(err)
}

func (r *expenseRepository) Save(ctx context.Context, e *model.Expense) error {
	return translate(r.db.WithContext(ctx).Save(e).Error)
}

func (r *expenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(r.db.WithContext(ctx).Delete(&model.Expense{}, "id = ?", id).Error)
}

func (r *expenseRepository) DeleteByMaintenance(ctx context.Context, maintenanceID uuid.UUID) error {
	return translate(r.db.WithContext(ctx).
		Where("maintenance_id = ?", maintenanceID).
		Delete(&model.Expense{}).Error)
}
