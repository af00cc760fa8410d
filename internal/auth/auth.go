package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrForbidden          = errors.New("operation not allowed for role")
	ErrNotFound           = errors.New("user not found")
	ErrUserExists         = errors.New("username already taken")
	ErrInvalidUser        = errors.New("username, password and role are required")
	ErrNotConfigured      = errors.New("credentials not configured")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Role grants permissions. Roles other than ADMIN and DEMANDANTE are read-only.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleRequester Role = "DEMANDANTE"
	RoleViewer    Role = "LEITOR"
)

func (r Role) CanCreateContracts() bool {
	return r == RoleAdmin || r == RoleRequester
}

func (r Role) CanMoveContracts() bool {
	return r == RoleAdmin
}

func (r Role) CanDeleteContracts() bool {
	return r == RoleAdmin
}

func (r Role) CanManageUsers() bool {
	return r == RoleAdmin
}

type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID   string
	Username string
	Role     Role
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
