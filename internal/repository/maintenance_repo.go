package repository

import (
	"context"

	"github.com/fleetms/vms-backend/internal/authz"
	"github.com/fleetms/vms-backend/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MaintenanceRepository interface {
	WithTx(tx *gorm.DB) MaintenanceRepository
	Create(ctx context.Context, m *model.Maintenance) error
	FindByID(ctx context.Context, id uuid.UUID, scopes ...authz.Scope) (*model.Maintenance, error)
	FindAll(ctx context.Context, scopes ...authz.Scope) ([]*model.Maintenance, error)
	FindByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]*model.Maintenance, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	Save(ctx context.Context, m *model.Maintenance) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type maintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

func (r *maintenanceRepository) WithTx(tx *gorm.DB) MaintenanceRepository {
	if tx == nil {
		return r
	}
	return &maintenanceRepository{db: tx}
}

func (r *maintenanceRepository) Create(ctx context.Context, m *model.Maintenance) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

func (r *maintenanceRepository) FindByID(ctx context.Context, id uuid.UUID, scopes ...authz.Scope) (*model.Maintenance, error) {
	var m model.Maintenance
	q := apply(r.db.WithContext(ctx), scopes).
		Preload("Vehicle").
		Preload("Expense")
	if err := q.Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *maintenanceRepository) FindAll(ctx context.Context, scopes ...authz.Scope) ([]*model.Maintenance, error) {
	var records []*model.Maintenance
	q := apply(r.db.WithContext(ctx), scopes).
		Preload("Vehicle").
		Preload("Expense").
		Order("created_at desc")
	if err := q.Find(&records).Error; err != nil {
		return nil, translate(err)
	}
	return records, nil
}

func (r *maintenanceRepository) FindByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]*model.Maintenance, error) {
	var records []*model.Maintenance
	if err := r.db.WithContext(ctx).
		Preload("Expense").
		Where("vehicle_id = ?", vehicleID).
		Order("date desc").
		Find(&records).Error; err != nil {
		return nil, translate(err)
	}
	return records, nil
}

func (r *maintenanceRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Maintenance{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, translate(err)
}

func (r *maintenanceRepository) Save(ctx context.Context, m *model.Maintenance) error {
	return translate(r.db.WithContext(ctx).Save(m).Error)
}

func (r *maintenanceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return translate(r.db.WithContext(ctx).Delete(&model.Maintenance{}, "id = ?", id).Error)
}
