package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fleetms/vms-backend/internal/audit"
	"github.com/fleetms/vms-backend/internal/authz"
	"github.com/fleetms/vms-backend/internal/dto"
	"github.com/fleetms/vms-backend/internal/model"
	"github.com/fleetms/vms-backend/pkg/apperror"
	"golang.org/x/crypto/bcrypt"
)

type userFixture struct {
	svc     UserService
	users   *fakeUserRepo
	admin   authz.Actor
	manager authz.Actor
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	users := newFakeUserRepo()
	audits := newFakeAuditRepo()

	admin := users.addUser("Root", model.RoleAdmin)
	manager := users.addUser("Mgmt", model.RoleManager)

	svc := NewUserService(fakeTx{}, users, audit.NewRecorder(audits))
	return &userFixture{
		svc:     svc,
		users:   users,
		admin:   authz.Actor{ID: admin.ID, Role: model.RoleAdmin},
		manager: authz.Actor{ID: manager.ID, Role: model.RoleManager},
	}
}

func userReq(email, role string) dto.CreateUserRequest {
	return dto.CreateUserRequest{
		Name:     "New User",
		Email:    email,
		Password: "secret1",
		Role:     role,
	}
}

func TestCreateUserHashesPassword(t *testing.T) {
	f := newUserFixture(t)

	u, err := f.svc.Create(context.Background(), f.admin, userReq("staff@fleet.local", model.RoleStaff))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.PasswordHash == "secret1" {
		t.Fatal("password must not be stored in the clear")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")); err != nil {
		t.Fatalf("stored hash must verify the password: %v", err)
	}
}

func TestDuplicateEmailConflicts(t *testing.T) {
	f := newUserFixture(t)

	if _, err := f.svc.Create(context.Background(), f.admin, userReq("dup@fleet.local", model.RoleStaff)); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := f.svc.Create(context.Background(), f.admin, userReq("dup@fleet.local", model.RoleManager))
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestUnknownRoleRejected(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.svc.Create(context.Background(), f.admin, userReq("x@fleet.local", "superuser"))
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestManagerCannotMintAdmins(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.svc.Create(context.Background(), f.manager, userReq("evil@fleet.local", model.RoleAdmin))
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.Create(context.Background(), f.admin, userReq("ok@fleet.local", model.RoleAdmin)); err != nil {
		t.Fatalf("admin minting admin: %v", err)
	}
}

func TestSelfDeleteRejected(t *testing.T) {
	f := newUserFixture(t)

	err := f.svc.Delete(context.Background(), f.admin, f.admin.ID)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := f.users.FindByID(context.Background(), f.admin.ID); err != nil {
		t.Fatal("account must still exist")
	}
}

func TestUpdateRoleChange(t *testing.T) {
	f := newUserFixture(t)

	u, err := f.svc.Create(context.Background(), f.admin, userReq("promote@fleet.local", model.RoleStaff))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	role := model.RoleManager
	u, err = f.svc.Update(context.Background(), f.admin, u.ID, dto.UpdateUserRequest{Role: &role})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.RoleName() != model.RoleManager {
		t.Fatalf("role = %q, want manager", u.RoleName())
	}
}

func TestManagerCannotChangeRoles(t *testing.T) {
	f := newUserFixture(t)

	u, err := f.svc.Create(context.Background(), f.admin, userReq("locked@fleet.local", model.RoleStaff))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	role := model.RoleDriver
	_, err = f.svc.Update(context.Background(), f.manager, u.ID, dto.UpdateUserRequest{Role: &role})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
