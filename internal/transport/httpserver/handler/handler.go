// Package handler provides HTTP handlers for the review UI and JSON API.
package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"photo-curator-service/internal/app/service"
	"photo-curator-service/internal/domain"
	"photo-curator-service/internal/transport/httpserver/dto"
)

// Site holds values every page renders.
type Site struct {
	ProjectName string
}

// page merges per-page data with the site values.
func (s Site) page(title string, data fiber.Map) fiber.Map {
	out := fiber.Map{
		"Title":       title,
		"ProjectName": s.ProjectName,
	}
	for k, v := range data {
		out[k] = v
	}

	return out
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownProvider), errors.Is(err, domain.ErrUnknownAction):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrRecordNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrDownloadInProgress):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func codeFor(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "INVALID_REQUEST"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusConflict:
		return "CONFLICT"
	default:
		return "INTERNAL_ERROR"
	}
}

// jsonError writes err as an ErrorResponse with the mapped status.
func jsonError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "internal server error"
	}

	return c.Status(status).JSON(dto.ErrorResponse{Error: msg, Code: codeFor(status)})
}

// pageError returns err as a fiber error so the error handler renders it.
func pageError(err error) error {
	return fiber.NewError(statusFor(err), err.Error())
}
