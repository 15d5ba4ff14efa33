package repository

import (
	"context"
	"time"

	"github.com/fleetms/vms-backend/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditFilter narrows an audit trail listing. TimeRange accepts the
// relative windows the SPA offers (24h, 7d, 30d) or "custom" with
// From/To set.
type AuditFilter struct {
	LogName   string
	Search    string
	TimeRange string
	From      *time.Time
	To        *time.Time
	Page      int
	PerPage   int
}

type AuditLogRepository interface {
	WithTx(tx *gorm.DB) AuditLogRepository
	// Create appends an entry. Audit rows are never updated or deleted.
	Create(ctx context.Context, entry *model.AuditLog) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.AuditLog, error)
	Find(ctx context.Context, filter AuditFilter) ([]*model.AuditLog, int64, error)
}

type auditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) WithTx(tx *gorm.DB) AuditLogRepository {
	if tx == nil {
		return r
	}
	return &auditLogRepository{db: tx}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	return translate(r.db.WithContext(ctx).Create(entry).Error)
}

func (r *auditLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.AuditLog, error) {
	var entry model.AuditLog
	if err := r.db.WithContext(ctx).
		Preload("Causer").
		Where("id = ?", id).
		First(&entry).Error; err != nil {
		return nil, translate(err)
	}
	return &entry, nil
}

func (r *auditLogRepository) Find(ctx context.Context, filter AuditFilter) ([]*model.AuditLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.AuditLog{})

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("description ILIKE ? OR log_name ILIKE ?", like, like)
	}
	if filter.LogName != "" && filter.LogName != "all" {
		q = q.Where("log_name = ?", filter.LogName)
	}

	now := time.Now()
	switch filter.TimeRange {
	case "24h":
		q = q.Where("created_at >= ?", now.Add(-24*time.Hour))
	case "7d":
		q = q.Where("created_at >= ?", now.AddDate(0, 0, -7))
	case "30d":
		q = q.Where("created_at >= ?", now.AddDate(0, 0, -30))
	case "custom":
		if filter.From != nil && filter.To != nil {
			q = q.Where("created_at BETWEEN ? AND ?", *filter.From, *filter.To)
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 10
	}

	var entries []*model.AuditLog
	if err := q.
		Preload("Causer").
		Order("created_at desc").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&entries).Error; err != nil {
		return nil, 0, translate(err)
	}
	return entries, total, nil
}
