package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/contratos/internal/auth"
	"github.com/MrJamesThe3rd/contratos/internal/http/middleware"
)

func TestAuthenticateAndRequire(t *testing.T) {
	tokens, err := auth.NewTokens("segredo", time.Hour)
	require.NoError(t, err)

	issue := func(role auth.Role) string {
		s, _, err := tokens.Issue(&auth.User{ID: uuid.New(), Username: "maria", Role: role})
		require.NoError(t, err)
		return "Bearer " + s
	}

	handler := middleware.Authenticate(tokens)(
		middleware.Require(auth.Role.CanMoveContracts)(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(middleware.Actor(r)))
			}),
		),
	)

	type testCase struct {
		name       string
		header     string
		wantStatus int
	}

	tests := []testCase{
		{name: "Admin", header: issue(auth.RoleAdmin), wantStatus: http.StatusOK},
		{name: "Requester", header: issue(auth.RoleRequester), wantStatus: http.StatusForbidden},
		{name: "Missing", header: "", wantStatus: http.StatusUnauthorized},
		{name: "WrongScheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "BadToken", header: "Bearer abc", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "maria", rec.Body.String())
			}
		})
	}
}
