package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/campuslearn-be/internal/auth"
	"github.com/hongminglow/campuslearn-be/internal/models"
)

func identityEcho(t *testing.T, seen *auth.Identity) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFrom(r.Context())
		require.True(t, ok)
		*seen = id
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	tokens := auth.NewTokenManager("mw-secret", "campuslearn-test", time.Hour)
	valid, err := tokens.Generate("user-1", models.Teacher)
	require.NoError(t, err)
	expired, err := auth.NewTokenManager("mw-secret", "campuslearn-test", -time.Minute).Generate("user-1", models.Teacher)
	require.NoError(t, err)
	forged, err := auth.NewTokenManager("other-secret", "campuslearn-test", time.Hour).Generate("user-1", models.Teacher)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid", "Bearer " + valid, http.StatusNoContent, ""},
		{"lowercase scheme", "bearer " + valid, http.StatusNoContent, ""},
		{"missing header", "", http.StatusUnauthorized, "not authenticated"},
		{"basic scheme", "Basic dXNlcjpwdw==", http.StatusUnauthorized, "not authenticated"},
		{"empty token", "Bearer   ", http.StatusUnauthorized, "not authenticated"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "invalid or expired token"},
		{"forged", "Bearer " + forged, http.StatusUnauthorized, "invalid or expired token"},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized, "invalid or expired token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var seen auth.Identity
			h := Authenticate(tokens, zerolog.Nop())(identityEcho(t, &seen))

			req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.body != "" {
				assert.Contains(t, rec.Body.String(), tc.body)
				assert.Empty(t, seen.UserID)
				return
			}
			assert.Equal(t, "user-1", seen.UserID)
			assert.Equal(t, models.Teacher, seen.Role)
		})
	}
}
