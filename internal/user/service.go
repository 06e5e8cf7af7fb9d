package user

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/anuvataru/jewelry-catalog/internal/apperr"
	"github.com/anuvataru/jewelry-catalog/internal/auth"
)

// ErrInvalidCredentials never says whether the email or the password was wrong.
var ErrInvalidCredentials = &apperr.Error{
	Kind:           apperr.InvalidCredential,
	Message:        "invalid credentials",
	StatusOverride: http.StatusUnauthorized,
}

// compared against when the email is unknown so both failure paths cost a bcrypt round
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(ctx context.Context, id int64) (AdminUser, error) {
	user, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return AdminUser{}, apperr.New(apperr.NotFound, "user not found")
	}
	return user, apperr.Storage("user: get", err)
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (AdminUser, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return AdminUser{}, apperr.Storage("user: get by email", err)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return AdminUser{}, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return AdminUser{}, ErrInvalidCredentials
	}

	return user, nil
}

// Create stores a new admin with a hashed password.
func (s *Service) Create(ctx context.Context, email, password string, role auth.Role) (AdminUser, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return AdminUser{}, fmt.Errorf("user: hash password: %w", err)
	}
	if role == "" {
		role = auth.RoleAdmin
	}
	return s.repo.Create(ctx, AdminUser{Email: email, Password: string(hashed), Role: role})
}

// EnsureDefaultAdmin provisions one admin when no users exist yet. It reports
// whether an account was created.
func (s *Service) EnsureDefaultAdmin(ctx context.Context, email, password string) (bool, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("user: count: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.Create(ctx, email, password, auth.RoleAdmin); err != nil {
		return false, fmt.Errorf("user: create default admin: %w", err)
	}
	zap.L().Info("default admin user created", zap.String("email", email))
	return true, nil
}
