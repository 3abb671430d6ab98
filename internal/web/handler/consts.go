// Package handler holds constants and helpers shared by all web handlers.
package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/siga-admin/siga/internal/apperr"
	"github.com/siga-admin/siga/internal/auth"
)

const (
	// APIPath is the base path for the JSON API.
	APIPath = "/api"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"
)

// ErrorJSON maps a domain error onto the matching HTTP status and sends it
// as a JSON body. Validation maps to 400, not-found to 404, conflict to
// 409, missing session to 401, denied permission to 403; anything else is
// an internal error with a generic body.
func ErrorJSON(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, apperr.ErrValidation):
		status = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, apperr.ErrNotFound):
		status = fiber.StatusNotFound
		message = err.Error()
	case errors.Is(err, apperr.ErrConflict):
		status = fiber.StatusConflict
		message = err.Error()
	case errors.Is(err, auth.ErrUnauthenticated):
		status = fiber.StatusUnauthorized
		message = "unauthorized"
	case errors.Is(err, auth.ErrForbidden):
		status = fiber.StatusForbidden
		message = "forbidden"
	}

	return c.Status(status).JSON(fiber.Map{"error": message})
}
