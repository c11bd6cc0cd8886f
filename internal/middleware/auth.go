package middleware

import (
	"strings"
	"time"

	"github.com/gleam/dashboard/internal/auth"
	"github.com/gleam/dashboard/internal/domain"
	"github.com/gleam/dashboard/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// SessionCookie carries the dashboard session token for browser clients.
const SessionCookie = "token"

// SessionResolver loads the stored session behind validated token claims.
type SessionResolver interface {
	Session(claims *auth.SessionClaims) (*domain.Session, error)
}

type AuthMiddleware struct {
	jwtService *auth.JWTService
	sessions   SessionResolver
}

func NewAuthMiddleware(jwtService *auth.JWTService, sessions SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		sessions:   sessions,
	}
}

// Required authentication. The token comes from the Authorization header, the session
// cookie, or a token query parameter (websocket upgrades cannot set headers).
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := extractToken(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
				"UNAUTHORIZED",
				"Token tidak ada",
			))
		}

		claims, err := m.jwtService.ValidateSessionToken(tokenString)
		if err != nil {
			if strings.Contains(err.Error(), "expired") {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
					"TOKEN_EXPIRED",
					"Sesi sudah berakhir, silakan login ulang",
				))
			}
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
				"INVALID_TOKEN",
				"Token tidak valid",
			))
		}

		session, err := m.sessions.Session(claims)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
				"TOKEN_REVOKED",
				"Sesi tidak berlaku lagi, silakan login ulang",
			))
		}

		c.Locals("claims", claims)
		c.Locals("session", session)
		c.Locals("sessionID", session.ID.String())
		c.Locals("userID", session.UserID)
		c.Locals("userRole", session.Role)
		c.Locals("upstreamToken", session.UpstreamToken)

		return c.Next()
	}
}

func extractToken(c *fiber.Ctx) (string, bool) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return "", false
		}
		return strings.TrimPrefix(header, "Bearer "), true
	}
	if cookie := c.Cookies(SessionCookie); cookie != "" {
		return cookie, true
	}
	if q := c.Query("token"); q != "" {
		return q, true
	}
	return "", false
}

// Get current session from context
func GetSession(c *fiber.Ctx) *domain.Session {
	session, _ := c.Locals("session").(*domain.Session)
	return session
}

func GetClaims(c *fiber.Ctx) *auth.SessionClaims {
	claims, _ := c.Locals("claims").(*auth.SessionClaims)
	return claims
}

func GetSessionID(c *fiber.Ctx) string {
	id, _ := c.Locals("sessionID").(string)
	return id
}

func GetUserID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}

// Get current user role from context
func GetUserRole(c *fiber.Ctx) domain.UserRole {
	role, _ := c.Locals("userRole").(domain.UserRole)
	return role
}

// GetUpstreamToken returns the backend bearer token stored in the session.
func GetUpstreamToken(c *fiber.Ctx) string {
	token, _ := c.Locals("upstreamToken").(string)
	return token
}

// TokenExpiry returns when the current session token stops being valid.
func TokenExpiry(c *fiber.Ctx) time.Time {
	if claims := GetClaims(c); claims != nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return time.Now()
}

// GetJWTService returns the JWT service for token validation
func (m *AuthMiddleware) GetJWTService() *auth.JWTService {
	return m.jwtService
}
