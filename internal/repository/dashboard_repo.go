package repository

import (
	"context"
	"time"

	"github.com/fleetms/vms-backend/internal/model"
	"gorm.io/gorm"
)

// MonthBucket is one month of an aggregation series.
type MonthBucket struct {
	Month time.Time `gorm:"column:month"`
	Count int64     `gorm:"column:count"`
	Sum   float64   `gorm:"column:sum"`
}

// DashboardRepository serves the read-only cross-entity rollups. It has
// no write methods.
type DashboardRepository interface {
	Count(ctx context.Context, entity any) (int64, error)
	MonthlyCounts(ctx context.Context, entity any, from time.Time) ([]MonthBucket, error)
	MonthlySums(ctx context.Context, entity any, column string, from time.Time) ([]MonthBucket, error)
	RecentVehicles(ctx context.Context, limit int) ([]*model.Vehicle, error)
	RecentDrivers(ctx context.Context, limit int) ([]*model.Driver, error)
	RecentCheckIns(ctx context.Context, limit int) ([]*model.CheckInOut, error)
	RecentMaintenances(ctx context.Context, limit int) ([]*model.Maintenance, error)
	RecentExpenses(ctx context.Context, limit int) ([]*model.Expense, error)
	RecentTrips(ctx context.Context, limit int) ([]*model.Trip, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) Count(ctx context.Context, entity any) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(entity).Count(&count).Error
	return count, translate(err)
}

func (r *dashboardRepository) MonthlyCounts(ctx context.Context, entity any, from time.Time) ([]MonthBucket, error) {
	var buckets []MonthBucket
	err := r.db.WithContext(ctx).
		Model(entity).
		Select("date_trunc('month', created_at) AS month, COUNT(*) AS count, 0 AS sum").
		Where("created_at >= ?", from).
		Group("month").
		Order("month").
		Scan(&buckets).Error
	return buckets, translate(err)
}

func (r *dashboardRepository) MonthlySums(ctx context.Context, entity any, column string, from time.Time) ([]MonthBucket, error) {
	var buckets []MonthBucket
	err := r.db.WithContext(ctx).
		Model(entity).
		Select("date_trunc('month', created_at) AS month, COUNT(*) AS count, COALESCE(SUM("+column+"), 0) AS sum").
		Where("created_at >= ?", from).
		Group("month").
		Order("month").
		Scan(&buckets).Error
	return buckets, translate(err)
}

func (r *dashboardRepository) RecentVehicles(ctx context.Context, limit int) ([]*model.Vehicle, error) {
	var out []*model.Vehicle
	err := r.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&out).Error
	return out, translate(err)
}

func (r *dashboardRepository) RecentDrivers(ctx context.Context, limit int) ([]*model.Driver, error) {
	var out []*model.Driver
	err := r.db.WithContext(ctx).Preload("User").Order("created_at desc").Limit(limit).Find(&out).Error
	return out, translate(err)
}

func (r *dashboardRepository) RecentCheckIns(ctx context.Context, limit int) ([]*model.CheckInOut, error) {
	var out []*model.CheckInOut
	err := r.db.WithContext(ctx).Preload("Vehicle").Preload("Driver.User").Order("created_at desc").Limit(limit).Find(&out).Error
	return out, translate(err)
}

func (r *dashboardRepository) RecentMaintenances(ctx context.Context, limit int) ([]*model.Maintenance, error) {
	var out []*model.Maintenance
	err := r.db.WithContext(ctx).Preload("Vehicle").Order("created_at desc").Limit(limit).Find(&out).Error
	return out, translate(err)
}

func (r *dashboardRepository) RecentExpenses(ctx context.Context, limit int) ([]*model.Expense, error) {
	var out []*model.Expense
	err := r.db.WithContext(ctx).Preload("Vehicle").Order("created_at desc").Limit(limit).Find(&out).Error
	return out, translate(err)
}

func (r *dashboardRepository) RecentTrips(ctx context.Context, limit int) ([]*model.Trip, error) {
	var out []*model.Trip
	err := r.db.WithContext(ctx).Preload("Vehicle").Preload("Driver.User").Order("created_at desc").Limit(limit).Find(&out).Error
	return out, translate(err)
}
