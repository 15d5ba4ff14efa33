package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fleetms/vms-backend/internal/authz"
	"github.com/fleetms/vms-backend/internal/dto"
	"github.com/fleetms/vms-backend/internal/model"
	"github.com/fleetms/vms-backend/pkg/apperror"
	"github.com/google/uuid"
)

func TestAuditTrailIsAdminOnly(t *testing.T) {
	logs := newFakeAuditRepo()
	entry := &model.AuditLog{LogName: model.LogVehicle, Description: "Vehicle B 1 AA was registered"}
	if err := logs.Create(context.Background(), entry); err != nil {
		t.Fatalf("seed entry: %v", err)
	}
	svc := NewAuditService(logs)

	admin := authz.Actor{ID: uuid.New(), Role: model.RoleAdmin}
	entries, total, err := svc.List(context.Background(), admin, dto.AuditLogQuery{})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if total != 1 || len(entries) != 1 {
		t.Fatalf("admin list = %d entries (total %d), want 1", len(entries), total)
	}
	if _, err := svc.Get(context.Background(), admin, entry.ID); err != nil {
		t.Fatalf("admin get: %v", err)
	}

	manager := authz.Actor{ID: uuid.New(), Role: model.RoleManager}
	if _, _, err := svc.List(context.Background(), manager, dto.AuditLogQuery{}); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("manager list: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Get(context.Background(), manager, entry.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("manager get: expected ErrForbidden, got %v", err)
	}
}
