package auth

import (
	"fmt"

	"github.com/spec-kit/inventory-service/internal/domain"
	apperrors "github.com/spec-kit/inventory-service/pkg/util"
)

// Require permits the operation only when the identity carries exactly
// the required role. No hierarchy: admin does not satisfy a manager
// requirement. Every gated operation calls this before touching a
// repository.
func Require(identity domain.Identity, role domain.Role) error {
	if identity.Role != role {
		return apperrors.NewUnauthorized(fmt.Sprintf("requires %s role", role))
	}
	return nil
}
