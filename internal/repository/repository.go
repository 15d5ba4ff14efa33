// Package repository holds the persistence layer: one interface + gorm
// implementation per entity. Multi-entity transactions compose repos
// via WithTx.
package repository

import (
	"errors"

	"github.com/fleetms/vms-backend/internal/authz"
	"github.com/fleetms/vms-backend/pkg/apperror"
	"gorm.io/gorm"
)

// translate maps store errors onto the application taxonomy.
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.ErrConflict
	}
	return err
}

// apply chains ownership scopes onto a query.
func apply(db *gorm.DB, scopes []authz.Scope) *gorm.DB {
	for _, s := range scopes {
		db = s(db)
	}
	return db
}
