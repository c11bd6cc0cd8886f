package handler

import (
	"net/url"

	"github.com/gleam/dashboard/internal/dto"
	"github.com/gleam/dashboard/internal/middleware"
	"github.com/gleam/dashboard/internal/service"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	admin *service.AdminService
}

func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// User Handlers
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	query := url.Values{}
	for _, key := range []string{"search", "role", "page", "limit"} {
		if v := c.Query(key); v != "" {
			query.Set(key, v)
		}
	}

	users, err := h.admin.ListUsers(c.UserContext(), middleware.GetUpstreamToken(c), query)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(users, ""))
}

func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.AccountRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	user, err := h.admin.CreateUser(c.UserContext(), middleware.GetUpstreamToken(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(user, "User berhasil dibuat"))
}

func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	var req dto.AccountRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	user, err := h.admin.UpdateUser(c.UserContext(), middleware.GetUpstreamToken(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(user, "User berhasil diperbarui"))
}

func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	if c.Params("id") == middleware.GetUserID(c) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("CANNOT_DELETE_SELF", "Tidak dapat menghapus akun sendiri"))
	}
	if err := h.admin.DeleteUser(c.UserContext(), middleware.GetUpstreamToken(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(nil, "User berhasil dihapus"))
}

// Dashboard Stats
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse(h.admin.DashboardStats(c.UserContext(), middleware.GetUpstreamToken(c), middleware.GetUserRole(c)), ""))
}
