package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/inventory-service/internal/domain"
)

const identityKey = "auth_identity"

// Resolver turns a bearer token into an Identity for both transports:
// the Authorization header on HTTP calls and the token query parameter
// on streaming handshakes. A missing, malformed or expired token is
// never an error; the caller proceeds as guest.
type Resolver struct {
	tokens *TokenManager
	logger *zap.Logger
}

// NewResolver constructs a resolver.
func NewResolver(tokens *TokenManager, logger *zap.Logger) *Resolver {
	return &Resolver{tokens: tokens, logger: logger}
}

// Middleware resolves the caller identity once per request and stores
// it on the request context.
func (r *Resolver) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := domain.GuestIdentity()

		authHeader := c.Get("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				identity = r.Resolve(parts[1])
			} else {
				r.logger.Debug("malformed authorization header; continuing as guest")
			}
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// Resolve verifies a raw token, degrading to guest on any failure.
// Streaming handshakes call this directly with the connection-level
// token parameter.
func (r *Resolver) Resolve(token string) domain.Identity {
	if token == "" {
		return domain.GuestIdentity()
	}
	identity, err := r.tokens.Verify(token)
	if err != nil {
		r.logger.Debug("ignoring unverifiable token", zap.Error(err))
		return domain.GuestIdentity()
	}
	return identity
}

// IdentityFromContext retrieves the resolved caller, defaulting to
// guest when the middleware did not run.
func IdentityFromContext(c *fiber.Ctx) domain.Identity {
	if val, ok := c.Locals(identityKey).(domain.Identity); ok {
		return val
	}
	return domain.GuestIdentity()
}
