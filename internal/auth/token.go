package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/inventory-service/internal/domain"
)

// Verification failures. Neither escapes the context resolver; they
// only select the guest fallback.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// TokenManager issues and verifies signed identity tokens. The signing
// secret is injected at construction; verification is stateless.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager. A zero TTL issues tokens
// without an expiry claim.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Claims describes the JWT payload: the subject plus its role.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issue signs a token carrying the identity's subject and role.
func (tm *TokenManager) Issue(identity domain.Identity) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: string(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  identity.Subject,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if tm.ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(tm.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// Verify validates signature and expiry and returns the identity the
// token encodes.
func (tm *TokenManager) Verify(tokenStr string) (domain.Identity, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.GuestIdentity(), ErrExpiredToken
		}
		return domain.GuestIdentity(), ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return domain.GuestIdentity(), ErrInvalidToken
	}

	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		return domain.GuestIdentity(), ErrInvalidToken
	}
	return domain.Identity{Subject: claims.Subject, Role: role}, nil
}
