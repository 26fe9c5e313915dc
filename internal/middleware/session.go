package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Lavindu17/ai-project-l2/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	CookieName     = "retro_session"
	RenewHeader    = "X-New-Token"
	identityCtxKey = "identity"
	renewWindow    = 24 * time.Hour
)

// Sessions signs and verifies the identity token carried in the session
// cookie (or an Authorization: Bearer header).
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewSessions(secret string, ttl time.Duration, secure bool) *Sessions {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Sessions{secret: []byte(secret), ttl: ttl, secure: secure}
}

type identityClaims struct {
	model.Identity
	jwt.RegisteredClaims
}

func (s *Sessions) Issue(id model.Identity) (string, error) {
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, identityClaims{
		Identity: id,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}).SignedString(s.secret)
}

func (s *Sessions) Parse(token string) (model.Identity, time.Time, error) {
	var claims identityClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return model.Identity{}, time.Time{}, err
	}
	if !parsed.Valid {
		return model.Identity{}, time.Time{}, errors.New("invalid token")
	}
	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	return claims.Identity, exp, nil
}

// Load decodes the caller's identity into the context. A missing or invalid
// token yields an empty identity; it never aborts.
func (s *Sessions) Load() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c)
		if token == "" {
			token, _ = c.Cookie(CookieName)
		}
		var id model.Identity
		if token != "" {
			parsed, exp, err := s.Parse(token)
			if err == nil {
				id = parsed
				// renew when less than a day remains
				if !exp.IsZero() && time.Until(exp) < renewWindow {
					s.Save(c, id)
				}
			}
		}
		c.Set(identityCtxKey, id)
		c.Next()
	}
}

// Save stores id in the context and writes a fresh cookie for it.
func (s *Sessions) Save(c *gin.Context, id model.Identity) {
	c.Set(identityCtxKey, id)
	if id.Empty() {
		s.Clear(c)
		return
	}
	token, err := s.Issue(id)
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(s.ttl.Seconds()), "/", "", s.secure, true)
	c.Header(RenewHeader, token)
}

func (s *Sessions) Clear(c *gin.Context) {
	c.Set(identityCtxKey, model.Identity{})
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", s.secure, true)
}

func IdentityFrom(c *gin.Context) model.Identity {
	if v, ok := c.Get(identityCtxKey); ok {
		if id, ok := v.(model.Identity); ok {
			return id
		}
	}
	return model.Identity{}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IdentityFrom(c).IsAdmin {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IdentityFrom(c).LoggedIn() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func bearer(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return auth[7:]
}
