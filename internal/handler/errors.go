package handler

import (
	"context"
	"errors"
	"log"

	"github.com/gleam/dashboard/internal/dto"
	"github.com/gleam/dashboard/internal/geo"
	"github.com/gleam/dashboard/internal/service"
	"github.com/gleam/dashboard/internal/upstream"
	"github.com/gofiber/fiber/v2"
)

// respondError renders err in the standard envelope with the matching status.
func respondError(c *fiber.Ctx, err error) error {
	var verr *service.ValidationError
	var uerr *upstream.Error

	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse(
			"VALIDATION_ERROR", "Data tidak valid", verr.Fields...,
		))
	case errors.As(err, &uerr):
		return c.Status(uerr.Status).JSON(dto.ErrorResponse(uerr.Code, uerr.Message, uerr.Fields...))
	case errors.Is(err, geo.ErrSuperseded):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
			"SUPERSEDED", "Permintaan digantikan oleh pilihan wilayah yang lebih baru",
		))
	case errors.Is(err, geo.ErrInvalidCoordinates):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
			"INVALID_COORDINATES", "Koordinat tidak valid",
		))
	case errors.Is(err, service.ErrSessionRevoked):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
			"SESSION_EXPIRED", "Sesi telah berakhir, silakan login kembali",
		))
	case errors.Is(err, service.ErrNoUpstreamToken):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse(
			"UPSTREAM_INVALID_RESPONSE", "Respons login dari server tidak valid",
		))
	case errors.Is(err, service.ErrPredictionUnavailable):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse(
			"PREDICTION_UNAVAILABLE", "Layanan prediksi risiko tidak tersedia",
		))
	case errors.Is(err, context.DeadlineExceeded):
		return c.Status(fiber.StatusGatewayTimeout).JSON(dto.ErrorResponse(
			"TIMEOUT", "Permintaan melebihi batas waktu",
		))
	case errors.Is(err, context.Canceled):
		return c.Status(fiber.StatusRequestTimeout).JSON(dto.ErrorResponse(
			"CANCELLED", "Permintaan dibatalkan",
		))
	}

	log.Printf("[API] %s %s failed: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse(
		"INTERNAL_ERROR", "Terjadi kesalahan pada server",
	))
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("VALIDATION_ERROR", "Request body tidak valid"))
}

// ErrorHandler renders errors that escape a handler, e.g. fiber's own 404 and 405.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "INTERNAL_ERROR"
		switch fe.Code {
		case fiber.StatusNotFound:
			code = "NOT_FOUND"
		case fiber.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		case fiber.StatusUpgradeRequired:
			code = "UPGRADE_REQUIRED"
		case fiber.StatusRequestEntityTooLarge:
			code = "PAYLOAD_TOO_LARGE"
		}
		return c.Status(fe.Code).JSON(dto.ErrorResponse(code, fe.Message))
	}
	return respondError(c, err)
}
