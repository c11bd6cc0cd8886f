package handler

import (
	"net/url"

	"github.com/gleam/dashboard/internal/dto"
	"github.com/gleam/dashboard/internal/middleware"
	"github.com/gleam/dashboard/internal/service"
	"github.com/gofiber/fiber/v2"
)

type ScreeningHandler struct {
	screenings *service.ScreeningService
}

func NewScreeningHandler(screenings *service.ScreeningService) *ScreeningHandler {
	return &ScreeningHandler{screenings: screenings}
}

// Calculate previews BMI and blood pressure classes without storing anything.
func (h *ScreeningHandler) Calculate(c *fiber.Ctx) error {
	var req dto.CalculateRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.screenings.Calculate(req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(resp, ""))
}

func (h *ScreeningHandler) Submit(c *fiber.Ctx) error {
	var req dto.ScreeningInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	detail, err := h.screenings.Submit(c.UserContext(), middleware.GetUpstreamToken(c), middleware.GetUserRole(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(detail, "Skrining berhasil disimpan"))
}

func (h *ScreeningHandler) List(c *fiber.Ctx) error {
	query := url.Values{}
	for _, key := range []string{"search", "kelurahan", "rw", "risk_label", "from", "to", "page", "limit"} {
		if v := c.Query(key); v != "" {
			query.Set(key, v)
		}
	}

	rows, err := h.screenings.List(c.UserContext(), middleware.GetUpstreamToken(c), middleware.GetUserRole(c), query)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(rows, ""))
}

func (h *ScreeningHandler) Get(c *fiber.Ctx) error {
	detail, err := h.screenings.Get(c.UserContext(), middleware.GetUpstreamToken(c), middleware.GetUserRole(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(detail, ""))
}

func (h *ScreeningHandler) SearchPatients(c *fiber.Ctx) error {
	patients, err := h.screenings.SearchPatients(c.UserContext(), middleware.GetUpstreamToken(c), c.Query("search"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(patients, ""))
}
