package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/darshan-pass-service/internal/domain"
	apperrors "github.com/spec-kit/darshan-pass-service/pkg/util/errorutil"
)

// RequireRole ensures the session holds one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := SessionFromContext(c)
		if !session.Authenticated {
			return apperrors.NewUnauthorized("authentication required")
		}
		for _, role := range allowed {
			if session.HasRole(role) {
				return c.Next()
			}
		}
		return apperrors.NewForbidden("insufficient role")
	}
}

// RequireAnyRole ensures caller is authenticated.
func RequireAnyRole() fiber.Handler {
	return RequireRole(domain.RoleTrustee, domain.RoleProTeam)
}
