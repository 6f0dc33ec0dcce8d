package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/purunsolnp/sonagi-stock/internal/common"
	"github.com/purunsolnp/sonagi-stock/internal/models"
)

const minPasswordLength = 6

// --- JWT helpers ---

// signJWT creates a signed HMAC-SHA256 JWT for the given user.
func signJWT(user *models.InternalUser, config *common.AuthConfig) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"jti":   uuid.New().String(),
		"sub":   user.UserID,
		"email": user.Email,
		"role":  user.Role,
		"iss":   "sonagi-server",
		"iat":   now.Unix(),
		"exp":   now.Add(config.GetTokenExpiry()).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWTSecret))
}

// validateJWT parses and validates a JWT token string using the given secret.
func validateJWT(tokenString string, secret []byte) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return token, claims, nil
}

// passwordBytes truncates to bcrypt's 72-byte input limit.
func passwordBytes(password string) []byte {
	b := []byte(password)
	if len(b) > 72 {
		b = b[:72]
	}
	return b
}

func userResponse(user *models.InternalUser) map[string]interface{} {
	return map[string]interface{}{
		"user_id": user.UserID,
		"email":   user.Email,
		"name":    user.Name,
		"role":    user.Role,
	}
}

// handleUserCreate handles POST /api/users. The first registered account
// becomes admin.
func (s *Server) handleUserCreate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		WriteErrorWithCode(w, http.StatusBadRequest, "a valid email is required", CodeValidation)
		return
	}
	if len(req.Password) < minPasswordLength {
		WriteErrorWithCode(w, http.StatusBadRequest, fmt.Sprintf("password must be at least %d characters", minPasswordLength), CodeValidation)
		return
	}

	ctx := r.Context()
	store := s.app.Storage.InternalStore()

	if _, err := store.GetUserByEmail(ctx, email); err == nil {
		WriteErrorWithCode(w, http.StatusConflict, fmt.Sprintf("user '%s' already exists", email), CodeDuplicate)
		return
	} else if !errors.Is(err, models.ErrNotFound) {
		s.writeServiceError(w, r, err)
		return
	}

	existing, err := store.ListUsers(ctx)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	role := models.RoleUser
	if len(existing) == 0 {
		role = models.RoleAdmin
	}

	hash, err := bcrypt.GenerateFromPassword(passwordBytes(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		WriteErrorWithCode(w, http.StatusInternalServerError, "failed to create user", CodeInternal)
		return
	}

	now := time.Now()
	user := &models.InternalUser{
		UserID:       uuid.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		ModifiedAt:   now,
	}
	if err := store.SaveUser(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("Failed to save user")
		WriteErrorWithCode(w, http.StatusInternalServerError, "failed to save user", CodeInternal)
		return
	}

	s.logger.Info().Str("user_id", user.UserID).Str("role", role).Msg("User registered")

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "ok",
		"data":   userResponse(user),
	})
}

// handleAuthLogin handles POST /api/auth/login.
func (s *Server) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	user, err := s.app.Storage.InternalStore().GetUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		WriteErrorWithCode(w, http.StatusUnauthorized, "invalid credentials", "unauthorized")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordBytes(req.Password)); err != nil {
		WriteErrorWithCode(w, http.StatusUnauthorized, "invalid credentials", "unauthorized")
		return
	}

	token, err := signJWT(user, &s.app.Config.Auth)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign JWT for login")
		WriteErrorWithCode(w, http.StatusInternalServerError, "failed to sign token", CodeInternal)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data": map[string]interface{}{
			"token":      token,
			"expires_in": int(s.app.Config.Auth.GetTokenExpiry().Seconds()),
			"user":       userResponse(user),
		},
	})
}
