package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fleetms/vms-backend/internal/authz"
	"github.com/fleetms/vms-backend/internal/model"
	"github.com/fleetms/vms-backend/internal/repository"
	"github.com/fleetms/vms-backend/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes. WithTx returns the fake itself and the
// fake TxManager invokes the callback with a nil tx, so transactional
// service code runs against the same in-memory state.

type fakeTx struct{}

func (fakeTx) Do(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, apperror.ErrNotFound)
}

type fakeVehicleRepo struct {
	vehicles map[uuid.UUID]*model.Vehicle
	locked   []uuid.UUID
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: make(map[uuid.UUID]*model.Vehicle)}
}

func (r *fakeVehicleRepo) WithTx(tx *gorm.DB) repository.VehicleRepository { return r }

func (r *fakeVehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	r.vehicles[v.ID] = v
	return nil
}

func (r *fakeVehicleRepo) FindByID(ctx context.Context, id uuid.UUID, scopes ...authz.Scope) (*model.Vehicle, error) {
	v, ok := r.vehicles[id]
	if !ok {
		return nil, notFound("vehicle")
	}
	return v, nil
}

func (r *fakeVehicleRepo) FindByPlate(ctx context.Context, plate string) (*model.Vehicle, error) {
	for _, v := range r.vehicles {
		if v.PlateNumber == plate {
			return v, nil
		}
	}
	return nil, notFound("vehicle")
}

func (r *fakeVehicleRepo) FindAll(ctx context.Context, scopes ...authz.Scope) ([]*model.Vehicle, error) {
	out := make([]*model.Vehicle, 0, len(r.vehicles))
	for _, v := range r.vehicles {
		out = append(out, v)
	}
	return out, nil
}

func (r *fakeVehicleRepo) FindUnassigned(ctx context.Context, keepDriverID *uuid.UUID) ([]*model.Vehicle, error) {
	return r.FindAll(ctx)
}

func (r *fakeVehicleRepo) LockByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	r.locked = append(r.locked, id)
	return r.FindByID(ctx, id)
}

func (r *fakeVehicleRepo) Save(ctx context.Context, v *model.Vehicle) error {
	r.vehicles[v.ID] = v
	return nil
}

func (r *fakeVehicleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.vehicles, id)
	return nil
}

type fakeDriverRepo struct {
	drivers map[uuid.UUID]*model.Driver
}

func newFakeDriverRepo() *fakeDriverRepo {
	return &fakeDriverRepo{drivers: make(map[uuid.UUID]*model.Driver)}
}

func (r *fakeDriverRepo) WithTx(tx *gorm.DB) repository.DriverRepository { return r }

func (r *fakeDriverRepo) Create(ctx context.Context, d *model.Driver) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	r.drivers[d.ID] = d
	return nil
}

func (r *fakeDriverRepo) FindByID(ctx context.Context, id uuid.UUID, scopes ...authz.Scope) (*model.Driver, error) {
	d, ok := r.drivers[id]
	if !ok {
		return nil, notFound("driver")
	}
	return d, nil
}

func (r *fakeDriverRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Driver, error) {
	for _, d := range r.drivers {
		if d.UserID == userID {
			return d, nil
		}
	}
	return nil, notFound("driver")
}

func (r *fakeDriverRepo) FindByVehicleID(ctx context.Context, vehicleID uuid.UUID) (*model.Driver, error) {
	for _, d := range r.drivers {
		if d.VehicleID != nil && *d.VehicleID == vehicleID {
			return d, nil
		}
	}
	return nil, notFound("driver")
}

func (r *fakeDriverRepo) FindAll(ctx context.Context, scopes ...authz.Scope) ([]*model.Driver, error) {
	out := make([]*model.Driver, 0, len(r.drivers))
	for _, d := range r.drivers {
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeDriverRepo) Save(ctx context.Context, d *model.Driver) error {
	r.drivers[d.ID] = d
	return nil
}

func (r *fakeDriverRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.drivers, id)
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
	roles map[string]*model.Role
}

func newFakeUserRepo() *fakeUserRepo {
	roles := map[string]*model.Role{}
	for i, name := range []string{
		model.RoleAdmin, model.RoleManager, model.RoleDriver,
		model.RoleGateSecurity, model.RoleVehicleOwner, model.RoleStaff, model.RoleVisitor,
	} {
		roles[name] = &model.Role{ID: uint(i + 1), Name: name}
	}
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User), roles: roles}
}

func (r *fakeUserRepo) WithTx(tx *gorm.DB) repository.UserRepository { return r }

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, notFound("user")
	}
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, notFound("user")
}

func (r *fakeUserRepo) FindAll(ctx context.Context) ([]*model.User, error) {
	out := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) FindRoleByName(ctx context.Context, name string) (*model.Role, error) {
	role, ok := r.roles[name]
	if !ok {
		return nil, notFound("role")
	}
	return role, nil
}

func (r *fakeUserRepo) FindRoles(ctx context.Context) ([]*model.Role, error) {
	out := make([]*model.Role, 0, len(r.roles))
	for _, role := range r.roles {
		out = append(out, role)
	}
	return out, nil
}

func (r *fakeUserRepo) FindAvailableDrivers(ctx context.Context, keepUserID *uuid.UUID) ([]*model.User, error) {
	return r.FindAll(ctx)
}

func (r *fakeUserRepo) Save(ctx context.Context, user *model.User) error {
	r.users[user.ID] = user
	// Mimic gorm's preload behavior after a role change.
	if user.Role == nil && user.RoleID != nil {
		for _, role := range r.roles {
			if role.ID == *user.RoleID {
				user.Role = role
			}
		}
	}
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

// addUser registers an account with the given role and returns it.
func (r *fakeUserRepo) addUser(name, roleName string) *model.User {
	u := &model.User{
		ID:    uuid.New(),
		Name:  name,
		Email: strings.ToLower(name) + "@fleet.local",
	}
	if roleName != "" {
		role := r.roles[roleName]
		u.RoleID = &role.ID
		u.Role = role
	}
	r.users[u.ID] = u
	return u
}

type fakeCheckInRepo struct {
	records map[uuid.UUID]*model.CheckInOut
}

func newFakeCheckInRepo() *fakeCheckInRepo {
	return &fakeCheckInRepo{records: make(map[uuid.UUID]*model.CheckInOut)}
}

func (r *fakeCheckInRepo) WithTx(tx *gorm.DB) repository.CheckInOutRepository { return r }

func (r *fakeCheckInRepo) Create(ctx context.Context, c *model.CheckInOut) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.records[c.ID] = c
	return nil
}

func (r *fakeCheckInRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CheckInOut, error) {
	c, ok := r.records[id]
	if !ok {
		return nil, notFound("check-in record")
	}
	return c, nil
}

func (r *fakeCheckInRepo) FindOpenByVehicle(ctx context.Context, vehicleID uuid.UUID) (*model.CheckInOut, error) {
	for _, c := range r.records {
		if c.VehicleID == vehicleID && c.IsOpen() {
			return c, nil
		}
	}
	return nil, notFound("open check-in")
}

func (r *fakeCheckInRepo) FindAll(ctx context.Context, search string, scopes ...authz.Scope) ([]*model.CheckInOut, error) {
	out := make([]*model.CheckInOut, 0, len(r.records))
	for _, c := range r.records {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCheckInRepo) FindOpen(ctx context.Context, olderThan *time.Time) ([]*model.CheckInOut, error) {
	var out []*model.CheckInOut
	for _, c := range r.records {
		if !c.IsOpen() {
			continue
		}
		if olderThan != nil && !c.CheckedInAt.Before(*olderThan) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCheckInRepo) FindRecent(ctx context.Context, limit int) ([]*model.CheckInOut, error) {
	return r.FindAll(ctx, "")
}

func (r *fakeCheckInRepo) CountOpen(ctx context.Context) (int64, error) {
	var n int64
	for _, c := range r.records {
		if c.IsOpen() {
			n++
		}
	}
	return n, nil
}

func (r *fakeCheckInRepo) CountCheckedInSince(ctx context.Context, t time.Time) (int64, error) {
	var n int64
	for _, c := range r.records {
		if !c.CheckedInAt.Before(t) {
			n++
		}
	}
	return n, nil
}

func (r *fakeCheckInRepo) CountCheckedOutSince(ctx context.Context, t time.Time) (int64, error) {
	var n int64
	for _, c := range r.records {
		if c.CheckedOutAt != nil && !c.CheckedOutAt.Before(t) {
			n++
		}
	}
	return n, nil
}

func (r *fakeCheckInRepo) Save(ctx context.Context, c *model.CheckInOut) error {
	r.records[c.ID] = c
	return nil
}

func (r *fakeCheckInRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.records, id)
	return nil
}

type fakeMaintenanceRepo struct {
	records map[uuid.UUID]*model.Maintenance
}

func newFakeMaintenanceRepo() *fakeMaintenanceRepo {
	return &fakeMaintenanceRepo{records: make(map[uuid.UUID]*model.Maintenance)}
}

func (r *fakeMaintenanceRepo) WithTx(tx *gorm.DB) repository.MaintenanceRepository { return r }

func (r *fakeMaintenanceRepo) Create(ctx context.Context, m *model.Maintenance) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.records[m.ID] = m
	return nil
}

func (r *fakeMaintenanceRepo) FindByID(ctx context.Context, id uuid.UUID, scopes ...authz.Scope) (*model.Maintenance, error) {
	m, ok := r.records[id]
	if !ok {
		return nil, notFound("maintenance record")
	}
	return m, nil
}

func (r *fakeMaintenanceRepo) FindAll(ctx context.Context, scopes ...authz.Scope) ([]*model.Maintenance, error) {
	out := make([]*model.Maintenance, 0, len(r.records))
	for _, m := range r.records {
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeMaintenanceRepo) FindByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]*model.Maintenance, error) {
	var out []*model.Maintenance
	for _, m := range r.records {
		if m.VehicleID == vehicleID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMaintenanceRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	for _, m := range r.records {
		if m.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeMaintenanceRepo) Save(ctx context.Context, m *model.Maintenance) error {
	r.records[m.ID] = m
	return nil
}

func (r *fakeMaintenanceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.records, id)
	return nil
}

type fakeExpenseRepo struct {
	records map[uuid.UUID]*model.Expense
}

func newFakeExpenseRepo() *fakeExpenseRepo {
	return &fakeExpenseRepo{records: make(map[uuid.UUID]*model.Expense)}
}

func (r *fakeExpenseRepo) WithTx(tx *gorm.DB) repository.ExpenseRepository { return r }

func (r *fakeExpenseRepo) Create(ctx context.Context, e *model.Expense) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.records[e.ID] = e
	return nil
}

func (r *fakeExpenseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	e, ok := r.records[id]
	if !ok {
		return nil, notFound("expense")
	}
	return e, nil
}

func (r *fakeExpenseRepo) FindByMaintenance(ctx context.Context, maintenanceID uuid.UUID) (*model.Expense, error) {
	for _, e := range r.records {
		if e.MaintenanceID != nil && *e.MaintenanceID == maintenanceID {
			return e, nil
		}
	}
	return nil, notFound("expense")
}

func (r *fakeExpenseRepo) FindAll(ctx context.Context, scopes ...authz.Scope) ([]*model.Expense, error) {
	out := make([]*model.Expense, 0, len(r.records))
	for _, e := range r.records {
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeExpenseRepo) Sum(ctx context.Context) (float64, error) {
	var total float64
	for _, e := range r.records {
		total += e.Amount
	}
	return total, nil
}

func (r *fakeExpenseRepo) Save(ctx context.Context, e *model.Expense) error {
	r.records[e.ID] = e
	return nil
}

func (r *fakeExpenseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.records, id)
	return nil
}

func (r *fakeExpenseRepo) DeleteByMaintenance(ctx context.Context, maintenanceID uuid.UUID) error {
	for id, e := range r.records {
		if e.MaintenanceID != nil && *e.MaintenanceID == maintenanceID {
			delete(r.records, id)
		}
	}
	return nil
}

type fakeTripRepo struct {
	records map[uuid.UUID]*model.Trip
}

func newFakeTripRepo() *fakeTripRepo {
	return &fakeTripRepo{records: make(map[uuid.UUID]*model.Trip)}
}

func (r *fakeTripRepo) WithTx(tx *gorm.DB) repository.TripRepository { return r }

func (r *fakeTripRepo) Create(ctx context.Context, t *model.Trip) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.Status = model.DeriveTripStatus(t.StartTime, t.EndTime, time.Now())
	r.records[t.ID] = t
	return nil
}

func (r *fakeTripRepo) FindByID(ctx context.Context, id uuid.UUID, scopes ...authz.Scope) (*model.Trip, error) {
	t, ok := r.records[id]
	if !ok {
		return nil, notFound("trip")
	}
	return t, nil
}

func (r *fakeTripRepo) FindAll(ctx context.Context, scopes ...authz.Scope) ([]*model.Trip, error) {
	out := make([]*model.Trip, 0, len(r.records))
	for _, t := range r.records {
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeTripRepo) CountActive(ctx context.Context) (int64, error) {
	var n int64
	now := time.Now()
	for _, t := range r.records {
		if t.EndTime == nil && !t.StartTime.After(now) {
			n++
		}
	}
	return n, nil
}

func (r *fakeTripRepo) Save(ctx context.Context, t *model.Trip) error {
	t.Status = model.DeriveTripStatus(t.StartTime, t.EndTime, time.Now())
	r.records[t.ID] = t
	return nil
}

func (r *fakeTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.records, id)
	return nil
}

type fakeIncomeRepo struct {
	records map[uuid.UUID]*model.Income
}

func newFakeIncomeRepo() *fakeIncomeRepo {
	return &fakeIncomeRepo{records: make(map[uuid.UUID]*model.Income)}
}

func (r *fakeIncomeRepo) WithTx(tx *gorm.DB) repository.IncomeRepository { return r }

func (r *fakeIncomeRepo) Create(ctx context.Context, i *model.Income) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	r.records[i.ID] = i
	return nil
}

func (r *fakeIncomeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Income, error) {
	i, ok := r.records[id]
	if !ok {
		return nil, notFound("income")
	}
	return i, nil
}

func (r *fakeIncomeRepo) FindByTrip(ctx context.Context, tripID uuid.UUID) (*model.Income, error) {
	for _, i := range r.records {
		if i.TripID != nil && *i.TripID == tripID {
			return i, nil
		}
	}
	return nil, notFound("income")
}

func (r *fakeIncomeRepo) FindAll(ctx context.Context, search string, scopes ...authz.Scope) ([]*model.Income, error) {
	out := make([]*model.Income, 0, len(r.records))
	for _, i := range r.records {
		out = append(out, i)
	}
	return out, nil
}

func (r *fakeIncomeRepo) Save(ctx context.Context, i *model.Income) error {
	r.records[i.ID] = i
	return nil
}

func (r *fakeIncomeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.records, id)
	return nil
}

func (r *fakeIncomeRepo) DeleteByTrip(ctx context.Context, tripID uuid.UUID) error {
	for id, i := range r.records {
		if i.TripID != nil && *i.TripID == tripID {
			delete(r.records, id)
		}
	}
	return nil
}

type fakeAuditRepo struct {
	entries []*model.AuditLog
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (r *fakeAuditRepo) WithTx(tx *gorm.DB) repository.AuditLogRepository { return r }

func (r *fakeAuditRepo) Create(ctx context.Context, entry *model.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.AuditLog, error) {
	for _, e := range r.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, notFound("audit log")
}

func (r *fakeAuditRepo) Find(ctx context.Context, filter repository.AuditFilter) ([]*model.AuditLog, int64, error) {
	return r.entries, int64(len(r.entries)), nil
}

// count returns the audit entries recorded for logName.
func (r *fakeAuditRepo) count(logName string) int {
	n := 0
	for _, e := range r.entries {
		if e.LogName == logName {
			n++
		}
	}
	return n
}
