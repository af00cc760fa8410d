package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=auth
type Repository interface {
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	CreateUser(ctx context.Context, u *User) error
	UpdateCredentials(ctx context.Context, username, passwordHash string, role Role) error
}

type Service struct {
	repo Repository
	cost int
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost}
}

func (s *Service) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	return string(h), nil
}

func isBcrypt(stored string) bool {
	_, err := bcrypt.Cost([]byte(stored))
	return err == nil
}

// Authenticate checks the password. A stored value that is not a bcrypt hash
// but equals the password is a pre-hashing account: it is upgraded and accepted.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if isBcrypt(u.PasswordHash) {
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
			return nil, ErrInvalidCredentials
		}

		return u, nil
	}

	if subtle.ConstantTimeCompare([]byte(u.PasswordHash), []byte(password)) != 1 {
		return nil, ErrInvalidCredentials
	}

	h, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateCredentials(ctx, u.Username, h, u.Role); err != nil {
		return nil, fmt.Errorf("upgrading legacy password: %w", err)
	}

	slog.Info("upgraded legacy password hash", "username", u.Username)

	u.PasswordHash = h

	return u, nil
}

func (s *Service) CreateUser(ctx context.Context, username, password string, role Role) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" || role == "" {
		return nil, ErrInvalidUser
	}

	h, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	u := &User{Username: username, PasswordHash: h, Role: role}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// EnsureAdmin creates the administrator account, or resets it when its stored
// password is not a bcrypt hash. A valid existing admin is left untouched.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return ErrNotConfigured
	}

	u, err := s.repo.GetUserByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		_, err := s.CreateUser(ctx, username, password, RoleAdmin)
		if err == nil {
			slog.Info("created admin user", "username", username)
		}

		return err
	}

	if err != nil {
		return err
	}

	if isBcrypt(u.PasswordHash) {
		return nil
	}

	h, err := s.hash(password)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateCredentials(ctx, username, h, RoleAdmin); err != nil {
		return fmt.Errorf("resetting admin credentials: %w", err)
	}

	slog.Warn("reset admin user with legacy password", "username", username)

	return nil
}
