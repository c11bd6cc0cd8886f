package middleware

import (
	"github.com/gleam/dashboard/internal/domain"
	"github.com/gleam/dashboard/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// Roles lets the request through only when the session role is one of roles. It must run
// after Required.
func Roles(roles ...domain.UserRole) fiber.Handler {
	allowed := make(map[domain.UserRole]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *fiber.Ctx) error {
		role := GetUserRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
				"UNAUTHORIZED",
				"User tidak terautentikasi",
			))
		}

		if !allowed[role] {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse(
				"FORBIDDEN",
				"Anda tidak memiliki akses untuk fitur ini",
			))
		}

		return c.Next()
	}
}

// Staff covers the roles that manage content and moderate the forum.
var Staff = []domain.UserRole{domain.RoleAdmin, domain.RoleManajemen}
