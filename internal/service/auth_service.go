package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/fleetms/vms-backend/internal/dto"
	"github.com/fleetms/vms-backend/internal/model"
	"github.com/fleetms/vms-backend/internal/repository"
	"github.com/fleetms/vms-backend/pkg/apperror"
	"github.com/fleetms/vms-backend/pkg/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, r io.Reader, fileName string) (*model.User, error)
}

type authService struct {
	users    repository.UserRepository
	avatars  storage.AvatarStorage
	secret   string
	tokenTTL time.Duration
}

func NewAuthService(users repository.UserRepository, avatars storage.AvatarStorage) AuthService {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "change-me"
	}

	ttl := 24 * time.Hour
	if ttlStr := os.Getenv("JWT_TTL_MINUTES"); ttlStr != "" {
		if minutes, err := strconv.Atoi(ttlStr); err == nil {
			ttl = time.Duration(minutes) * time.Minute
		}
	}

	return &authService{users: users, avatars: avatars, secret: secret, tokenTTL: ttl}
}

// Register creates a role-less account. Roles are granted by an admin
// or implied later, e.g. when a driver profile is created.
func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	if existing, err := s.users.FindByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("email %s is already registered: %w", req.Email, apperror.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", apperror.ErrInternal)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if req.Phone != "" {
		user.Phone = &req.Phone
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthenticated)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthenticated)
	}
	return s.buildAuthResponse(user)
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *authService) UpdateAvatar(ctx context.Context, userID uuid.UUID, r io.Reader, fileName string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	url, err := s.avatars.UploadAvatar(ctx, r, fileName)
	if err != nil {
		return nil, err
	}
	if user.AvatarURL != nil {
		// Best effort; the new avatar is already live.
		_ = s.avatars.DeleteAvatar(ctx, *user.AvatarURL)
	}
	user.AvatarURL = &url
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) buildAuthResponse(user *model.User) (*dto.AuthResponse, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", apperror.ErrInternal)
	}

	return &dto.AuthResponse{
		Token: token,
		User: dto.AuthUser{
			ID:    user.ID.String(),
			Name:  user.Name,
			Email: user.Email,
			Role:  user.RoleName(),
		},
	}, nil
}
