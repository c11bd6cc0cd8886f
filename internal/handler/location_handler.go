package handler

import (
	"strconv"

	"github.com/gleam/dashboard/internal/dto"
	"github.com/gleam/dashboard/internal/middleware"
	"github.com/gleam/dashboard/internal/service"
	"github.com/gofiber/fiber/v2"
)

type LocationHandler struct {
	locations *service.LocationService
}

func NewLocationHandler(locations *service.LocationService) *LocationHandler {
	return &LocationHandler{locations: locations}
}

func (h *LocationHandler) Kelurahan(c *fiber.Ctx) error {
	entries, err := h.locations.Catalogue(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(entries, ""))
}

// Boundary answers 409 when a newer selection from the same session overtook this one.
func (h *LocationHandler) Boundary(c *fiber.Ctx) error {
	resp, err := h.locations.Boundary(c.UserContext(), middleware.GetSessionID(c), c.Query("kelurahan"), c.Query("rw"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(resp, ""))
}

func (h *LocationHandler) CurrentBoundary(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse(h.locations.CurrentBoundary(middleware.GetSessionID(c)), ""))
}

func (h *LocationHandler) Reverse(c *fiber.Ctx) error {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_COORDINATES", "Parameter lat dan lon wajib berupa angka"))
	}

	resp, err := h.locations.Reverse(c.UserContext(), lat, lon)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(resp, ""))
}

func (h *LocationHandler) Users(c *fiber.Ctx) error {
	locs, err := h.locations.UserLocations(c.UserContext(), middleware.GetUpstreamToken(c), c.Query("kelurahan"), c.Query("rw"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(locs, ""))
}

func (h *LocationHandler) SaveMine(c *fiber.Ctx) error {
	var req dto.SaveLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	loc, err := h.locations.SaveMine(c.UserContext(), middleware.GetUpstreamToken(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(loc, "Lokasi berhasil disimpan"))
}
