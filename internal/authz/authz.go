// Package authz is the single source of truth for who may act on which
// resource type. The decision is two-phase: Authorize answers whether
// the caller's role may perform the action at all; the Scope
// constructors then narrow queries to the rows the caller may see or
// write.
package authz

import (
	"fmt"

	"github.com/fleetms/vms-backend/pkg/apperror"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Resource string

const (
	ResourceVehicles     Resource = "vehicles"
	ResourceDrivers      Resource = "drivers"
	ResourceCheckIns     Resource = "checkins"
	ResourceMaintenances Resource = "maintenances"
	ResourceExpenses     Resource = "expenses"
	ResourceIncomes      Resource = "incomes"
	ResourceTrips        Resource = "trips"
	ResourceUsers        Resource = "users"
	ResourceAudit        Resource = "audit"
	ResourceDashboard    Resource = "dashboard"
)

type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Actor is the authenticated caller, threaded explicitly into every
// decision and repository call. The zero value is anonymous.
type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) IsAnonymous() bool {
	return a.ID == uuid.Nil
}

func (a Actor) IsAdmin() bool {
	return a.Role == "admin"
}

// Authorize returns nil when the actor's role may perform action on
// resource. Denials are never silent: each one is logged with the
// acting user id (or "anonymous") for the security audit.
func Authorize(actor Actor, resource Resource, action Action) error {
	if Can(actor.Role, resource, action) {
		return nil
	}

	causer := "anonymous"
	if !actor.IsAnonymous() {
		causer = actor.ID.String()
	}
	logrus.WithFields(logrus.Fields{
		"actor_id": causer,
		"role":     actor.Role,
		"resource": resource,
		"action":   action,
	}).Warn("authorization denied")

	return fmt.Errorf("cannot %s %s: %w", action, resource, apperror.ErrForbidden)
}

// Can reports whether role appears in the configured allow-list for
// (resource, action).
func Can(role string, resource Resource, action Action) bool {
	actions, ok := policy[resource]
	if !ok {
		return false
	}
	allowed, ok := actions[action]
	if !ok {
		return false
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
