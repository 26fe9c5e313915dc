package service

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/Lavindu17/ai-project-l2/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrBadCredentials = errors.New("invalid credentials")

// AdminIdentity is the identity granted by the shared admin password.
var AdminIdentity = model.Identity{UserID: "admin", Name: "Admin", Role: "leader", IsAdmin: true}

// AuthService checks the admin password and verifies access tokens issued
// by the external identity provider.
type AuthService struct {
	adminPassword     string
	adminPasswordHash string
	jwtSecret         []byte
}

func NewAuthService(adminPassword, adminPasswordHash, jwtSecret string) *AuthService {
	return &AuthService{
		adminPassword:     adminPassword,
		adminPasswordHash: adminPasswordHash,
		jwtSecret:         []byte(jwtSecret),
	}
}

func (s *AuthService) AdminLogin(password string) error {
	if s.adminPasswordHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(s.adminPasswordHash), []byte(password)) != nil {
			return ErrBadCredentials
		}
		return nil
	}
	if s.adminPassword == "" || subtle.ConstantTimeCompare([]byte(s.adminPassword), []byte(password)) != 1 {
		return ErrBadCredentials
	}
	return nil
}

// UserLogin turns the identity provider's login payload into an identity.
// The access token is verified only when a signing secret is configured,
// and only a verified leader is granted admin rights.
func (s *AuthService) UserLogin(req model.AuthLoginRequest) (model.Identity, error) {
	if req.AccessToken == "" || req.User == nil || req.User.ID == "" {
		return model.Identity{}, fmt.Errorf("%w: missing credentials", ErrInvalidInput)
	}
	verified := len(s.jwtSecret) > 0
	if verified {
		token, err := jwt.Parse(req.AccessToken, func(t *jwt.Token) (interface{}, error) {
			return s.jwtSecret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return model.Identity{}, fmt.Errorf("%w: %v", ErrBadCredentials, err)
		}
		sub, _ := token.Claims.GetSubject()
		if sub != req.User.ID {
			return model.Identity{}, fmt.Errorf("%w: token subject mismatch", ErrBadCredentials)
		}
	}

	role := req.User.UserMetadata.Role
	if role == "" {
		role = "member"
	}
	name := req.User.UserMetadata.FullName
	if name == "" {
		name = "User"
	}
	return model.Identity{
		UserID:  req.User.ID,
		Email:   req.User.Email,
		Name:    name,
		Role:    role,
		IsAdmin: verified && role == "leader",
	}, nil
}
