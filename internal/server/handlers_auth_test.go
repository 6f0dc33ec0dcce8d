package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purunsolnp/sonagi-stock/internal/common"
	"github.com/purunsolnp/sonagi-stock/internal/models"
)

func TestRegister_FirstUserIsAdmin(t *testing.T) {
	h := newHarness(t, 5)

	rec := h.do(t, http.MethodPost, "/api/users", map[string]string{"email": "Kim@Example.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var first struct {
		Data map[string]string `json:"data"`
	}
	decode(t, rec, &first)
	assert.Equal(t, models.RoleAdmin, first.Data["role"])
	assert.Equal(t, "kim@example.com", first.Data["email"])

	rec = h.do(t, http.MethodPost, "/api/users", map[string]string{"email": "lee@example.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var second struct {
		Data map[string]string `json:"data"`
	}
	decode(t, rec, &second)
	assert.Equal(t, models.RoleUser, second.Data["role"])
	assert.NotEqual(t, first.Data["user_id"], second.Data["user_id"])
}

func TestRegister_Validation(t *testing.T) {
	h := newHarness(t, 5)

	rec := h.do(t, http.MethodPost, "/api/users", map[string]string{"email": "nobody", "password": "secret123"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/users", map[string]string{"email": "a@b.c", "password": "123"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h.register(t, "dup@example.com")
	rec = h.do(t, http.MethodPost, "/api/users", map[string]string{"email": "DUP@example.com", "password": "secret123"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/users", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	h := newHarness(t, 5)
	h.register(t, "kim@example.com")

	rec := h.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "kim@example.com", "password": "wrong-pass"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "ghost@example.com", "password": "secret123"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerToken_Rejected(t *testing.T) {
	h := newHarness(t, 5)

	rec := h.do(t, http.MethodGet, "/api/quota", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")

	// valid signature, unknown user
	user := &models.InternalUser{UserID: "ghost", Email: "ghost@example.com"}
	token, err := signJWT(user, &common.AuthConfig{JWTSecret: "test-secret", TokenExpiry: "1h"})
	require.NoError(t, err)
	rec = h.do(t, http.MethodGet, "/api/quota", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// wrong secret
	token, err = signJWT(user, &common.AuthConfig{JWTSecret: "other", TokenExpiry: "1h"})
	require.NoError(t, err)
	rec = h.do(t, http.MethodGet, "/api/quota", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidateJWT_RejectsExpired(t *testing.T) {
	claims := jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Minute).Unix()}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s"))
	require.NoError(t, err)

	_, _, err = validateJWT(signed, []byte("s"))
	assert.Error(t, err)
}

func TestBearerToken_PopulatesUser(t *testing.T) {
	h := newHarness(t, 5)
	token := h.register(t, "kim@example.com")

	rec := h.do(t, http.MethodGet, "/api/quota", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var st models.QuotaStatus
	decode(t, rec, &st)
	assert.NotEqual(t, "default", st.UserID)
	assert.Equal(t, 5, st.Limit)
}
