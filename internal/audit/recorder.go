// Package audit appends who-changed-what-when entries for every
// mutating operation. Entries are written inside the caller's
// transaction so a mutation and its audit row commit or roll back
// together.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fleetms/vms-backend/internal/model"
	"github.com/fleetms/vms-backend/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Recorder struct {
	logs repository.AuditLogRepository
}

func NewRecorder(logs repository.AuditLogRepository) *Recorder {
	return &Recorder{logs: logs}
}

func (r *Recorder) Created(ctx context.Context, tx *gorm.DB, causer uuid.UUID, logName string, subjectID uuid.UUID, description string, attrs map[string]any) error {
	return r.append(ctx, tx, causer, logName, subjectID, description, nil, attrs)
}

// Updated records the changed fields only. A no-op update produces no
// entry at all.
func (r *Recorder) Updated(ctx context.Context, tx *gorm.DB, causer uuid.UUID, logName string, subjectID uuid.UUID, description string, old, new map[string]any) error {
	oldDiff, newDiff := Changed(old, new)
	if newDiff == nil && oldDiff == nil {
		return nil
	}
	return r.append(ctx, tx, causer, logName, subjectID, description, oldDiff, newDiff)
}

func (r *Recorder) Deleted(ctx context.Context, tx *gorm.DB, causer uuid.UUID, logName string, subjectID uuid.UUID, description string, attrs map[string]any) error {
	return r.append(ctx, tx, causer, logName, subjectID, description, attrs, nil)
}

func (r *Recorder) append(ctx context.Context, tx *gorm.DB, causer uuid.UUID, logName string, subjectID uuid.UUID, description string, old, new map[string]any) error {
	entry := &model.AuditLog{
		LogName:     logName,
		Description: description,
		SubjectType: logName,
		SubjectID:   subjectID,
	}
	if causer != uuid.Nil {
		id := causer
		entry.CauserID = &id
	}

	var err error
	if entry.OldValues, err = marshal(old); err != nil {
		return err
	}
	if entry.NewValues, err = marshal(new); err != nil {
		return err
	}

	return r.logs.WithTx(tx).Create(ctx, entry)
}

func marshal(attrs map[string]any) (datatypes.JSON, error) {
	if attrs == nil {
		return nil, nil
	}
	raw, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("marshal audit attributes: %w", err)
	}
	return datatypes.JSON(raw), nil
}
