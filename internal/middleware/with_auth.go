package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/edusphere-api/internal/utils"
)

// Auth role constants used by the WithAuth helper.
const (
	AuthRoleAny     = "any"
	AuthRoleStudent = "student"
	AuthRoleTeacher = "teacher"
	AuthRoleAdmin   = "admin"
	// AuthRoleStaff admits teachers and admins.
	AuthRoleStaff = "staff"
)

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	Role string
	// AllowAnonymous lets unauthenticated callers through when Role is AuthRoleAny.
	AllowAnonymous bool
}

// WithAuth wraps a handler with authentication and role guards.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := strings.ToLower(strings.TrimSpace(opts.Role))
	if role == "" {
		role = AuthRoleAny
	}
	requireUser := !opts.AllowAnonymous || role != AuthRoleAny

	return func(c *fiber.Ctx) error {
		if requireUser && c.Locals("user_id") == nil {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}

		if role != AuthRoleAny && !roleAllowed(role, normalizeRoleValue(c.Locals("user_role"))) {
			return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", fiber.Map{"required_role": role})
		}

		return handler(c)
	}
}

func roleAllowed(required, current string) bool {
	switch required {
	case AuthRoleStaff:
		return current == AuthRoleTeacher || current == AuthRoleAdmin
	default:
		return current == required
	}
}
