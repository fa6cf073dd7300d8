package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/hackathon-go-api/internal/utils"
)

// Auth role constants used by WithAuth.
const (
	AuthRoleAny         = "any"
	AuthRoleAdmin       = "admin"
	AuthRoleParticipant = "participant"
)

// AuthOptions configures WithAuth.
type AuthOptions struct {
	Role        string
	RequireUser bool
}

// WithAuth wraps a handler with authentication and authorization guards.
// Participants are team leaders and members that belong to a team.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := strings.ToLower(strings.TrimSpace(opts.Role))
	if role == "" {
		role = AuthRoleAny
	}

	requireUser := opts.RequireUser || role != AuthRoleAny

	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id")
		if requireUser && userID == nil {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}

		currentRole := normalizeRoleValue(c.Locals("user_role"))
		switch role {
		case AuthRoleAny:
		case AuthRoleParticipant:
			if currentRole != "leader" && currentRole != "member" {
				return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
			}
			if c.Locals("team_id") == nil {
				return utils.Fail(c, fiber.StatusForbidden, "team membership required", nil)
			}
		default:
			if currentRole != role {
				return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
			}
		}

		return handler(c)
	}
}

// RequireParticipant is the middleware form of WithAuth for participant groups.
func RequireParticipant() fiber.Handler {
	return WithAuth(func(c *fiber.Ctx) error { return c.Next() }, AuthOptions{Role: AuthRoleParticipant})
}
