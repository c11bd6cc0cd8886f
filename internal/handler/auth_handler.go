package handler

import (
	"time"

	"github.com/gleam/dashboard/internal/dto"
	"github.com/gleam/dashboard/internal/middleware"
	"github.com/gleam/dashboard/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	auth      *service.AuthService
	locations *service.LocationService
}

func NewAuthHandler(auth *service.AuthService, locations *service.LocationService) *AuthHandler {
	return &AuthHandler{auth: auth, locations: locations}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.auth.Login(c.UserContext(), req, c.Get(fiber.HeaderUserAgent), c.IP())
	if err != nil {
		return respondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    resp.AccessToken,
		Path:     "/",
		Expires:  resp.ExpiresAt,
		HTTPOnly: true,
		Secure:   c.Protocol() == "https",
		SameSite: "Lax",
	})

	return c.JSON(dto.SuccessResponse(resp, "Login berhasil"))
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims := middleware.GetClaims(c)
	sessionID, err := uuid.Parse(middleware.GetSessionID(c))
	if claims == nil || err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse("UNAUTHORIZED", "User tidak terautentikasi"))
	}

	if err := h.auth.Logout(sessionID, claims.JTI, middleware.TokenExpiry(c)); err != nil {
		return respondError(c, err)
	}
	if h.locations != nil {
		h.locations.ForgetSession(sessionID.String())
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   c.Protocol() == "https",
		SameSite: "Lax",
	})

	return c.JSON(dto.SuccessResponse(nil, "Logout berhasil"))
}
