package authz

import (
	"strings"
	"testing"

	"github.com/fleetms/vms-backend/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"
)

// buildQuery renders the scoped query against a dry-run session so the
// generated WHERE clauses can be inspected without a database.
func buildQuery(t *testing.T, scope Scope, dest any) (string, []any) {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	tx := db.Scopes(scope).Find(dest)
	if tx.Error != nil {
		t.Fatalf("build query: %v", tx.Error)
	}
	return tx.Statement.SQL.String(), tx.Statement.Vars
}

func hasVar(vars []any, want any) bool {
	for _, v := range vars {
		if v == want {
			return true
		}
	}
	return false
}

func TestOwnedVehiclesScope(t *testing.T) {
	owner := uuid.New()
	sql, vars := buildQuery(t, OwnedVehicles(owner), &[]model.Vehicle{})
	if !strings.Contains(sql, "owner_id = ? AND ownership_type = ?") {
		t.Fatalf("sql lacks ownership clause: %s", sql)
	}
	if !hasVar(vars, owner) || !hasVar(vars, model.OwnershipIndividual) {
		t.Fatalf("vars = %v, want owner id and individual", vars)
	}
}

func TestDriversOfOwnerScopeSubquery(t *testing.T) {
	owner := uuid.New()
	sql, vars := buildQuery(t, DriversOfOwner(owner), &[]model.Driver{})
	if !strings.Contains(sql, "vehicle_id IN (SELECT") {
		t.Fatalf("sql lacks vehicle subquery: %s", sql)
	}
	if !strings.Contains(sql, "vehicles") {
		t.Fatalf("subquery must select from vehicles: %s", sql)
	}
	if !hasVar(vars, owner) || !hasVar(vars, model.OwnershipIndividual) {
		t.Fatalf("vars = %v, want owner id and individual", vars)
	}
}

func TestOnVehiclesScopeSubquery(t *testing.T) {
	owner := uuid.New()
	sql, vars := buildQuery(t, OnVehicles(owner), &[]model.Maintenance{})
	if !strings.Contains(sql, "vehicle_id IN (SELECT") {
		t.Fatalf("sql lacks vehicle subquery: %s", sql)
	}
	if !hasVar(vars, owner) || !hasVar(vars, model.OwnershipIndividual) {
		t.Fatalf("vars = %v, want owner id and individual", vars)
	}
}

func TestRowFilterScopes(t *testing.T) {
	id := uuid.New()
	cases := []struct {
		name   string
		scope  Scope
		clause string
	}{
		{"AssignedVehicle", AssignedVehicle(id), "id = ?"},
		{"CreatedBy", CreatedBy(id), "created_by = ?"},
		{"OfDriver", OfDriver(id), "driver_id = ?"},
		{"OnVehicle", OnVehicle(id), "vehicle_id = ?"},
	}
	for _, tc := range cases {
		sql, vars := buildQuery(t, tc.scope, &[]model.Trip{})
		if !strings.Contains(sql, tc.clause) {
			t.Errorf("%s: sql %q lacks %q", tc.name, sql, tc.clause)
		}
		if !hasVar(vars, id) {
			t.Errorf("%s: vars = %v, want %v", tc.name, vars, id)
		}
	}
}

func TestNoneScopeMatchesNothing(t *testing.T) {
	sql, _ := buildQuery(t, None(), &[]model.Vehicle{})
	if !strings.Contains(sql, "1 = 0") {
		t.Fatalf("sql lacks contradiction clause: %s", sql)
	}
}

func TestAllScopeLeavesQueryUnrestricted(t *testing.T) {
	sql, vars := buildQuery(t, All(), &[]model.Vehicle{})
	if strings.Contains(sql, "WHERE") {
		t.Fatalf("unrestricted query must carry no WHERE: %s", sql)
	}
	if len(vars) != 0 {
		t.Fatalf("unrestricted query must bind no vars: %v", vars)
	}
}
