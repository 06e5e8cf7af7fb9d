// Package auth issues and verifies the signed bearer tokens that guard the
// admin API.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/anuvataru/jewelry-catalog/internal/apperr"
)

// Role is attached to every identity. The gate only checks that a valid
// credential is present; it never branches on the role.
type Role string

const RoleAdmin Role = "admin"

const (
	tokenKey    = "user"
	identityKey = "identity"
)

var (
	ErrAuthenticationRequired = apperr.New(apperr.AuthenticationRequired, "authentication required")
	ErrInvalidCredential      = apperr.New(apperr.InvalidCredential, "invalid or expired credential")
)

// Identity is the verified caller.
type Identity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// TokenIssuer signs and verifies HS256 tokens with a shared secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is how long issued tokens stay valid.
func (t *TokenIssuer) TTL() time.Duration { return t.ttl }

func (t *TokenIssuer) Issue(id Identity) (string, error) {
	now := t.now()
	claims := jwt.MapClaims{
		"id":    id.ID,
		"email": id.Email,
		"role":  string(id.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(t.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies a raw token and returns the identity it carries.
func (t *TokenIssuer) Parse(raw string) (Identity, error) {
	token, err := jwt.Parse(raw, t.keyFunc)
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidCredential
	}
	return identityFromToken(token)
}

func (t *TokenIssuer) keyFunc(token *jwt.Token) (any, error) {
	if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}
	return t.secret, nil
}

// Middleware rejects requests without a valid bearer token before any handler
// runs and stores the caller's Identity for IdentityFromCtx.
func (t *TokenIssuer) Middleware() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    t.secret,
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		ContextKey:    tokenKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if c.Get(fiber.HeaderAuthorization) == "" {
				return ErrAuthenticationRequired
			}
			return ErrInvalidCredential
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals(tokenKey).(*jwt.Token)
			if !ok {
				return ErrInvalidCredential
			}
			id, err := identityFromToken(token)
			if err != nil {
				return err
			}
			c.Locals(identityKey, id)
			return c.Next()
		},
	})
}

// IdentityFromCtx returns the identity stored by Middleware.
func IdentityFromCtx(c *fiber.Ctx) (Identity, error) {
	id, ok := c.Locals(identityKey).(Identity)
	if !ok {
		return Identity{}, ErrAuthenticationRequired
	}
	return id, nil
}

func identityFromToken(token *jwt.Token) (Identity, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidCredential
	}
	id, err := claimInt(claims["id"])
	if err != nil {
		return Identity{}, ErrInvalidCredential
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	return Identity{ID: id, Email: email, Role: Role(role)}, nil
}

func claimInt(v any) (int64, error) {
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case int64:
		return n, nil
	case json.Number:
		return n.Int64()
	}
	return 0, errors.New("missing numeric claim")
}
