package handler

import (
	"github.com/gleam/dashboard/internal/dto"
	"github.com/gleam/dashboard/internal/middleware"
	"github.com/gleam/dashboard/internal/service"
	"github.com/gofiber/fiber/v2"
)

type ReviewHandler struct {
	reviews *service.ReviewService
}

func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

func (h *ReviewHandler) Submit(c *fiber.Ctx) error {
	var req dto.Review
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	review, err := h.reviews.Submit(c.UserContext(), middleware.GetUpstreamToken(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(review, "Terima kasih atas penilaian Anda"))
}

func (h *ReviewHandler) List(c *fiber.Ctx) error {
	list, err := h.reviews.List(c.UserContext(), middleware.GetUpstreamToken(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(list, ""))
}
