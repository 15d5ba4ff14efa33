package service

import (
	"context"

	"github.com/fleetms/vms-backend/internal/authz"
	"github.com/fleetms/vms-backend/internal/dto"
	"github.com/fleetms/vms-backend/internal/model"
	"github.com/fleetms/vms-backend/internal/repository"
	"github.com/google/uuid"
)

type AuditService interface {
	List(ctx context.Context, actor authz.Actor, q dto.AuditLogQuery) ([]*model.AuditLog, int64, error)
	Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.AuditLog, error)
}

type auditService struct {
	logs repository.AuditLogRepository
}

func NewAuditService(logs repository.AuditLogRepository) AuditService {
	return &auditService{logs: logs}
}

func (s *auditService) List(ctx context.Context, actor authz.Actor, q dto.AuditLogQuery) ([]*model.AuditLog, int64, error) {
	if err := authz.Authorize(actor, authz.ResourceAudit, authz.ActionView); err != nil {
		return nil, 0, err
	}

	filter := repository.AuditFilter{
		LogName:   q.LogName,
		Search:    q.Search,
		TimeRange: q.TimeRange,
		Page:      q.Page,
		PerPage:   q.PerPage,
	}
	if q.StartDate != "" {
		if t, err := dto.ParseDate(q.StartDate); err == nil {
			filter.From = &t
		}
	}
	if q.EndDate != "" {
		if t, err := dto.ParseDate(q.EndDate); err == nil {
			end := t.AddDate(0, 0, 1)
			filter.To = &end
		}
	}
	return s.logs.Find(ctx, filter)
}

func (s *auditService) Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.AuditLog, error) {
	if err := authz.Authorize(actor, authz.ResourceAudit, authz.ActionView); err != nil {
		return nil, err
	}
	return s.logs.FindByID(ctx, id)
}
