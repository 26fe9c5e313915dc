package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Lavindu17/ai-project-l2/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAdminLogin(t *testing.T) {
	plain := NewAuthService("s3cret", "", "")
	assert.NoError(t, plain.AdminLogin("s3cret"))
	assert.ErrorIs(t, plain.AdminLogin("nope"), ErrBadCredentials)

	assert.ErrorIs(t, NewAuthService("", "", "").AdminLogin(""), ErrBadCredentials, "an unset password never matches")

	hash, err := bcrypt.GenerateFromPassword([]byte("hashed"), bcrypt.MinCost)
	require.NoError(t, err)
	hashed := NewAuthService("ignored", string(hash), "")
	assert.NoError(t, hashed.AdminLogin("hashed"))
	assert.ErrorIs(t, hashed.AdminLogin("ignored"), ErrBadCredentials)
}

func loginRequest(t *testing.T, token, userID, role string) model.AuthLoginRequest {
	t.Helper()
	body := map[string]interface{}{
		"access_token": token,
		"user": map[string]interface{}{
			"id":            userID,
			"email":         "ana@example.com",
			"user_metadata": map[string]string{"role": role, "full_name": "Ana"},
		},
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	var req model.AuthLoginRequest
	require.NoError(t, json.Unmarshal(raw, &req))
	return req
}

func signed(t *testing.T, secret, sub string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestUserLoginWithoutSecret(t *testing.T) {
	auth := NewAuthService("", "", "")

	id, err := auth.UserLogin(loginRequest(t, "opaque", "u1", ""))
	require.NoError(t, err)
	assert.Equal(t, model.Identity{UserID: "u1", Email: "ana@example.com", Name: "Ana", Role: "member"}, id)

	id, err = auth.UserLogin(loginRequest(t, "opaque", "u1", "leader"))
	require.NoError(t, err)
	assert.Equal(t, "leader", id.Role)
	assert.False(t, id.IsAdmin, "an unverified token never grants admin")

	_, err = auth.UserLogin(model.AuthLoginRequest{AccessToken: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUserLoginVerifiesToken(t *testing.T) {
	auth := NewAuthService("", "", "jwt-secret")

	id, err := auth.UserLogin(loginRequest(t, signed(t, "jwt-secret", "u1"), "u1", "member"))
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UserID)
	assert.False(t, id.IsAdmin)

	id, err = auth.UserLogin(loginRequest(t, signed(t, "jwt-secret", "u1"), "u1", "leader"))
	require.NoError(t, err)
	assert.True(t, id.IsAdmin)

	_, err = auth.UserLogin(loginRequest(t, signed(t, "jwt-secret", "u2"), "u1", "member"))
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = auth.UserLogin(loginRequest(t, signed(t, "other", "u1"), "u1", "member"))
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = auth.UserLogin(loginRequest(t, "not-a-jwt", "u1", "member"))
	assert.ErrorIs(t, err, ErrBadCredentials)
}
