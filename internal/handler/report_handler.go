package handler

import (
	"fmt"
	"time"

	"github.com/gleam/dashboard/internal/dto"
	"github.com/gleam/dashboard/internal/middleware"
	"github.com/gleam/dashboard/internal/report"
	"github.com/gleam/dashboard/internal/service"
	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	reports *service.ReportService
	reviews *service.ReviewService
}

func NewReportHandler(reports *service.ReportService, reviews *service.ReviewService) *ReportHandler {
	return &ReportHandler{reports: reports, reviews: reviews}
}

func (h *ReportHandler) Screening(c *fiber.Ctx) error {
	filter, err := service.ParseReportFilter(c.Query("from"), c.Query("to"), c.Query("kelurahan"))
	if err != nil {
		return respondError(c, err)
	}

	rep, err := h.reports.Screening(c.UserContext(), middleware.GetUpstreamToken(c), middleware.GetUserRole(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SuccessResponse(rep, ""))
}

func (h *ReportHandler) ScreeningXLSX(c *fiber.Ctx) error {
	filter, err := service.ParseReportFilter(c.Query("from"), c.Query("to"), c.Query("kelurahan"))
	if err != nil {
		return respondError(c, err)
	}

	buf, err := h.reports.ScreeningXLSX(c.UserContext(), middleware.GetUpstreamToken(c), middleware.GetUserRole(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return sendWorkbook(c, "laporan-skrining", buf.Bytes())
}

func (h *ReportHandler) ReviewXLSX(c *fiber.Ctx) error {
	buf, err := h.reviews.ListXLSX(c.UserContext(), middleware.GetUpstreamToken(c))
	if err != nil {
		return respondError(c, err)
	}
	return sendWorkbook(c, "review-website", buf.Bytes())
}

func sendWorkbook(c *fiber.Ctx, name string, data []byte) error {
	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, report.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(data)
}
