package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"cargo-delivery/models/user"
	"cargo-delivery/services/token"
	"cargo-delivery/types"
)

// LocalsUserKey is where validated claims are bound for the request.
const LocalsUserKey = "user"

// RequireAuth admits any caller holding a valid token, regardless of role.
func RequireAuth(tokens *token.Service) fiber.Handler {
	return isAuthenticated(tokens, "")
}

// RequireRole admits only callers whose token carries the given role.
func RequireRole(tokens *token.Service, role user.Role) fiber.Handler {
	return isAuthenticated(tokens, role)
}

// isAuthenticated extracts the bearer token, validates it and binds the
// claims to the request context. It runs before any handler logic; a failed
// check ends the request.
func isAuthenticated(tokens *token.Service, requiredRole user.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var raw string

		authHeader := c.Get("Authorization")
		if authHeader != "" {
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
					Message: "Invalid authorization header format",
					Status:  fiber.StatusUnauthorized,
				})
			}
			raw = tokenParts[1]
		} else {
			// Cookie fallback for browser clients.
			raw = c.Cookies("access")
			if raw == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
					Message: "Authorization token missing",
					Status:  fiber.StatusUnauthorized,
				})
			}
		}

		claims, err := tokens.Validate(raw)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Message: "Session expired. Login again.",
				Status:  fiber.StatusUnauthorized,
			})
		}

		if requiredRole != "" && claims.Role != requiredRole {
			return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
				Message: "Insufficient permissions",
				Status:  fiber.StatusForbidden,
			})
		}

		c.Locals(LocalsUserKey, claims)
		return c.Next()
	}
}

// ClaimsFromContext returns the claims bound by the guard, or nil on public
// routes.
func ClaimsFromContext(c *fiber.Ctx) *token.Claims {
	claims, ok := c.Locals(LocalsUserKey).(*token.Claims)
	if !ok {
		return nil
	}
	return claims
}
