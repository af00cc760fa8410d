package auth_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/contratos/internal/auth"
)

func newService(t *testing.T) (*auth.Service, *auth.MockRepository) {
	ctrl := gomock.NewController(t)
	repo := auth.NewMockRepository(ctrl)

	return auth.NewService(repo), repo
}

func mustHash(t *testing.T, password string) string {
	t.Helper()

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return string(h)
}

// matchesPassword matches a bcrypt hash of the given password.
type matchesPassword string

func (m matchesPassword) Matches(x any) bool {
	h, ok := x.(string)
	return ok && bcrypt.CompareHashAndPassword([]byte(h), []byte(m)) == nil
}

func (m matchesPassword) String() string {
	return "is a bcrypt hash of " + string(m)
}

func TestService_Authenticate(t *testing.T) {
	type testCase struct {
		name      string
		password  string
		setupMock func(repo *auth.MockRepository)
		wantErr   error
	}

	hashed := &auth.User{ID: uuid.New(), Username: "maria", PasswordHash: mustHash(t, "s3nha-forte"), Role: auth.RoleRequester}

	tests := []testCase{
		{
			name:     "Success",
			password: "s3nha-forte",
			setupMock: func(repo *auth.MockRepository) {
				repo.EXPECT().GetUserByUsername(gomock.Any(), "maria").Return(hashed, nil)
			},
		},
		{
			name:     "WrongPassword",
			password: "outra",
			setupMock: func(repo *auth.MockRepository) {
				repo.EXPECT().GetUserByUsername(gomock.Any(), "maria").Return(hashed, nil)
			},
			wantErr: auth.ErrInvalidCredentials,
		},
		{
			name:     "UnknownUser",
			password: "s3nha-forte",
			setupMock: func(repo *auth.MockRepository) {
				repo.EXPECT().GetUserByUsername(gomock.Any(), "maria").Return(nil, auth.ErrNotFound)
			},
			wantErr: auth.ErrInvalidCredentials,
		},
		{
			name:     "LegacyPlaintextIsUpgraded",
			password: "antiga123",
			setupMock: func(repo *auth.MockRepository) {
				repo.EXPECT().GetUserByUsername(gomock.Any(), "maria").
					Return(&auth.User{Username: "maria", PasswordHash: "antiga123", Role: auth.RoleRequester}, nil)
				repo.EXPECT().UpdateCredentials(gomock.Any(), "maria", matchesPassword("antiga123"), auth.RoleRequester).Return(nil)
			},
		},
		{
			name:     "LegacyPlaintextMismatch",
			password: "errada",
			setupMock: func(repo *auth.MockRepository) {
				repo.EXPECT().GetUserByUsername(gomock.Any(), "maria").
					Return(&auth.User{Username: "maria", PasswordHash: "antiga123", Role: auth.RoleRequester}, nil)
			},
			wantErr: auth.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newService(t)
			tt.setupMock(repo)

			u, err := svc.Authenticate(context.Background(), "maria", tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, u)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "maria", u.Username)
			assert.Equal(t, auth.RoleRequester, u.Role)
		})
	}
}

func TestService_EnsureAdmin(t *testing.T) {
	t.Run("CreatesMissingAdmin", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().GetUserByUsername(gomock.Any(), "admin").Return(nil, auth.ErrNotFound)
		repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *auth.User) error {
			assert.Equal(t, "admin", u.Username)
			assert.Equal(t, auth.RoleAdmin, u.Role)
			assert.True(t, matchesPassword("Troque!2026").Matches(u.PasswordHash))
			return nil
		})

		require.NoError(t, svc.EnsureAdmin(context.Background(), "admin", "Troque!2026"))
	})

	t.Run("ResetsLegacyAdmin", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().GetUserByUsername(gomock.Any(), "admin").
			Return(&auth.User{Username: "admin", PasswordHash: "admin", Role: auth.RoleViewer}, nil)
		repo.EXPECT().UpdateCredentials(gomock.Any(), "admin", matchesPassword("Troque!2026"), auth.RoleAdmin).Return(nil)

		require.NoError(t, svc.EnsureAdmin(context.Background(), "admin", "Troque!2026"))
	})

	t.Run("KeepsValidAdmin", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().GetUserByUsername(gomock.Any(), "admin").
			Return(&auth.User{Username: "admin", PasswordHash: mustHash(t, "changed-later"), Role: auth.RoleAdmin}, nil)

		require.NoError(t, svc.EnsureAdmin(context.Background(), "admin", "Troque!2026"))
	})

	t.Run("NotConfigured", func(t *testing.T) {
		svc, _ := newService(t)

		assert.ErrorIs(t, svc.EnsureAdmin(context.Background(), "admin", ""), auth.ErrNotConfigured)
	})
}

func TestService_CreateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(nil)

		u, err := svc.CreateUser(context.Background(), "  joao ", "s3nha", auth.RoleViewer)
		require.NoError(t, err)
		assert.Equal(t, "joao", u.Username)
		assert.NotEqual(t, "s3nha", u.PasswordHash)
	})

	t.Run("Duplicate", func(t *testing.T) {
		svc, repo := newService(t)
		repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(auth.ErrUserExists)

		_, err := svc.CreateUser(context.Background(), "joao", "s3nha", auth.RoleViewer)
		assert.ErrorIs(t, err, auth.ErrUserExists)
	})

	t.Run("MissingFields", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.CreateUser(context.Background(), " ", "s3nha", auth.RoleViewer)
		assert.ErrorIs(t, err, auth.ErrInvalidUser)
	})
}

func TestRole_Permissions(t *testing.T) {
	assert.True(t, auth.RoleAdmin.CanMoveContracts())
	assert.True(t, auth.RoleAdmin.CanDeleteContracts())
	assert.True(t, auth.RoleAdmin.CanManageUsers())
	assert.True(t, auth.RoleRequester.CanCreateContracts())
	assert.False(t, auth.RoleRequester.CanMoveContracts())
	assert.False(t, auth.RoleViewer.CanCreateContracts())
	assert.False(t, auth.Role("JURIDICO").CanDeleteContracts())
}
