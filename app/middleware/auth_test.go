package appMiddleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims(userID uuid.UUID) Claims {
	return Claims{
		UserID: userID.String(),
		Role:   "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{"travel-planner"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestAuthenticate(t *testing.T) {
	auth := NewAuthenticator(secret, "travel-planner", "", slog.New(slog.NewTextHandler(io.Discard, nil)))
	userID := uuid.New()

	var gotID uuid.UUID
	h := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		require.True(t, ok)
		gotID = id
		w.WriteHeader(http.StatusNoContent)
	}))

	expired := validClaims(userID)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongAud := validClaims(userID)
	wrongAud.Audience = jwt.ClaimStrings{"someone-else"}
	badUser := validClaims(userID)
	badUser.UserID = "not-a-uuid"

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), validClaims(userID)), http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), validClaims(userID)), http.StatusUnauthorized},
		{"wrong algorithm", "Bearer " + sign(t, jwt.SigningMethodHS512, []byte(secret), validClaims(userID)), http.StatusUnauthorized},
		{"expired", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), expired), http.StatusUnauthorized},
		{"wrong audience", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), wrongAud), http.StatusUnauthorized},
		{"user id not a uuid", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret), badUser), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID = uuid.Nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/itineraries", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNoContent {
				assert.Equal(t, userID, gotID)
			} else {
				assert.Contains(t, rec.Body.String(), `"success":false`)
			}
		})
	}
}

func TestVerifyAudience(t *testing.T) {
	assert.True(t, verifyAudience(nil, ""))
	assert.False(t, verifyAudience(nil, "travel-planner"))
	assert.True(t, verifyAudience(jwt.ClaimStrings{"a", "travel-planner"}, "travel-planner"))
}
