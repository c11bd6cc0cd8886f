package handler

import (
	"github.com/gleam/dashboard/internal/dto"
	"github.com/gleam/dashboard/internal/middleware"
	"github.com/gleam/dashboard/internal/service"
	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	auth *service.AuthService
}

func NewProfileHandler(auth *service.AuthService) *ProfileHandler {
	return &ProfileHandler{auth: auth}
}

// GetMe serves the cached profile; ?refresh=true reloads it from the backend first.
func (h *ProfileHandler) GetMe(c *fiber.Ctx) error {
	profile, err := h.auth.Profile(c.UserContext(), middleware.GetSession(c), c.QueryBool("refresh"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(profile, ""))
}

func (h *ProfileHandler) UpdateMe(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	profile, err := h.auth.UpdateProfile(c.UserContext(), middleware.GetSession(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(profile, "Profil berhasil diperbarui"))
}

func (h *ProfileHandler) UpdatePassword(c *fiber.Ctx) error {
	var req dto.UpdatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	if err := h.auth.UpdatePassword(c.UserContext(), middleware.GetSession(c), req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(nil, "Password berhasil diubah"))
}
