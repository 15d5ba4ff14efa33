package service

import (
	"context"
	"fmt"

	"github.com/fleetms/vms-backend/internal/audit"
	"github.com/fleetms/vms-backend/internal/authz"
	"github.com/fleetms/vms-backend/internal/dto"
	"github.com/fleetms/vms-backend/internal/model"
	"github.com/fleetms/vms-backend/internal/repository"
	"github.com/fleetms/vms-backend/pkg/apperror"
	"github.com/fleetms/vms-backend/pkg/database"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService interface {
	List(ctx context.Context, actor authz.Actor) ([]*model.User, error)
	Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.User, error)
	Create(ctx context.Context, actor authz.Actor, req dto.CreateUserRequest) (*model.User, error)
	Update(ctx context.Context, actor authz.Actor, id uuid.UUID, req dto.UpdateUserRequest) (*model.User, error)
	Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error
	Roles(ctx context.Context, actor authz.Actor) ([]*model.Role, error)
}

type userService struct {
	tx       database.TxManager
	users    repository.UserRepository
	recorder *audit.Recorder
}

func NewUserService(tx database.TxManager, users repository.UserRepository, recorder *audit.Recorder) UserService {
	return &userService{tx: tx, users: users, recorder: recorder}
}

func (s *userService) List(ctx context.Context, actor authz.Actor) ([]*model.User, error) {
	if err := authz.Authorize(actor, authz.ResourceUsers, authz.ActionView); err != nil {
		return nil, err
	}
	return s.users.FindAll(ctx)
}

func (s *userService) Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.User, error) {
	if err := authz.Authorize(actor, authz.ResourceUsers, authz.ActionView); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, id)
}

func (s *userService) Create(ctx context.Context, actor authz.Actor, req dto.CreateUserRequest) (*model.User, error) {
	if err := authz.Authorize(actor, authz.ResourceUsers, authz.ActionCreate); err != nil {
		return nil, err
	}
	if existing, err := s.users.FindByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("email %s is already registered: %w", req.Email, apperror.ErrConflict)
	}
	role, err := s.users.FindRoleByName(ctx, req.Role)
	if err != nil {
		return nil, fmt.Errorf("unknown role %q: %w", req.Role, apperror.ErrInvalidInput)
	}
	// Only admins may mint other admins.
	if role.Name == model.RoleAdmin && actor.Role != model.RoleAdmin {
		return nil, fmt.Errorf("only admins may create admin accounts: %w", apperror.ErrForbidden)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", apperror.ErrInternal)
	}
	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		RoleID:       &role.ID,
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}

	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		return s.recorder.Created(ctx, tx, actor.ID, model.LogUser, user.ID,
			fmt.Sprintf("User %s was created", user.Email), userAttrs(user, role.Name))
	})
	if err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, user.ID)
}

func (s *userService) Update(ctx context.Context, actor authz.Actor, id uuid.UUID, req dto.UpdateUserRequest) (*model.User, error) {
	if err := authz.Authorize(actor, authz.ResourceUsers, authz.ActionUpdate); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := userAttrs(user, user.RoleName())

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		if existing, err := s.users.FindByEmail(ctx, *req.Email); err == nil && existing != nil {
			return nil, fmt.Errorf("email %s is already registered: %w", *req.Email, apperror.ErrConflict)
		}
		user.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", apperror.ErrInternal)
		}
		user.PasswordHash = string(hash)
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	roleName := user.RoleName()
	if req.Role != nil && *req.Role != roleName {
		role, err := s.users.FindRoleByName(ctx, *req.Role)
		if err != nil {
			return nil, fmt.Errorf("unknown role %q: %w", *req.Role, apperror.ErrInvalidInput)
		}
		user.RoleID = &role.ID
		user.Role = nil
		roleName = role.Name
	}

	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).Save(ctx, user); err != nil {
			return err
		}
		return s.recorder.Updated(ctx, tx, actor.ID, model.LogUser, user.ID,
			fmt.Sprintf("User %s was updated", user.Email), before, userAttrs(user, roleName))
	})
	if err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, user.ID)
}

func (s *userService) Delete(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	if err := authz.Authorize(actor, authz.ResourceUsers, authz.ActionDelete); err != nil {
		return err
	}
	if id == actor.ID {
		return fmt.Errorf("cannot delete own account: %w", apperror.ErrConflict)
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return s.tx.Do(ctx, func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).Delete(ctx, id); err != nil {
			return err
		}
		return s.recorder.Deleted(ctx, tx, actor.ID, model.LogUser, id,
			fmt.Sprintf("User %s was deleted", user.Email), userAttrs(user, user.RoleName()))
	})
}

func (s *userService) Roles(ctx context.Context, actor authz.Actor) ([]*model.Role, error) {
	if err := authz.Authorize(actor, authz.ResourceUsers, authz.ActionView); err != nil {
		return nil, err
	}
	return s.users.FindRoles(ctx)
}

func userAttrs(u *model.User, roleName string) map[string]any {
	attrs := map[string]any{
		"name":  u.Name,
		"email": u.Email,
		"role":  roleName,
	}
	if u.Phone != nil {
		attrs["phone"] = *u.Phone
	}
	return attrs
}
