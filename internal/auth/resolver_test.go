package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/inventory-service/internal/domain"
)

// Resolve is the shared verification path for both transports: the
// HTTP middleware and the streaming handshake feed raw tokens into it.
func TestResolveDegradesToGuest(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	r := NewResolver(tm, zap.NewNop())

	assert.Equal(t, domain.GuestIdentity(), r.Resolve(""))
	assert.Equal(t, domain.GuestIdentity(), r.Resolve("garbage"))

	expired, err := NewTokenManager("test-secret", -time.Minute).Issue(domain.Identity{Subject: "admin", Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, domain.GuestIdentity(), r.Resolve(expired))

	foreign, err := NewTokenManager("other-secret", time.Hour).Issue(domain.Identity{Subject: "admin", Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, domain.GuestIdentity(), r.Resolve(foreign))
}

func TestResolveValidToken(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	r := NewResolver(tm, zap.NewNop())

	token, err := tm.Issue(domain.Identity{Subject: "manager", Role: domain.RoleManager})
	require.NoError(t, err)

	identity := r.Resolve(token)
	assert.Equal(t, "manager", identity.Subject)
	assert.Equal(t, domain.RoleManager, identity.Role)
}
