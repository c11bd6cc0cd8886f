package handler

import (
	"github.com/gleam/dashboard/internal/dto"
	"github.com/gleam/dashboard/internal/middleware"
	"github.com/gleam/dashboard/internal/service"
	"github.com/gofiber/fiber/v2"
)

type KontenHandler struct {
	konten *service.KontenService
}

func NewKontenHandler(konten *service.KontenService) *KontenHandler {
	return &KontenHandler{konten: konten}
}

func (h *KontenHandler) List(c *fiber.Ctx) error {
	items, err := h.konten.List(c.UserContext(), middleware.GetUpstreamToken(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(items, ""))
}

func (h *KontenHandler) Get(c *fiber.Ctx) error {
	item, err := h.konten.Get(c.UserContext(), middleware.GetUpstreamToken(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(item, ""))
}

func (h *KontenHandler) Create(c *fiber.Ctx) error {
	var req dto.KontenRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	item, err := h.konten.Create(c.UserContext(), middleware.GetUpstreamToken(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(item, "Konten berhasil dibuat"))
}

func (h *KontenHandler) Update(c *fiber.Ctx) error {
	var req dto.KontenRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	item, err := h.konten.Update(c.UserContext(), middleware.GetUpstreamToken(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(item, "Konten berhasil diperbarui"))
}

func (h *KontenHandler) Delete(c *fiber.Ctx) error {
	if err := h.konten.Delete(c.UserContext(), middleware.GetUpstreamToken(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(nil, "Konten berhasil dihapus"))
}
