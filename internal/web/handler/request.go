package handler

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/siga-admin/siga/internal/apperr"
)

// Validate is the shared request body validator.
var Validate = validator.New()

// ParseBody decodes the JSON request body into out and validates it.
// Failures surface as validation errors so ErrorJSON maps them to 400.
func ParseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Validationf("invalid request body")
	}

	if err := Validate.Struct(out); err != nil {
		return apperr.Validationf("%s", err)
	}

	return nil
}

// IDParam parses a numeric route parameter into a uint.
func IDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Validationf("invalid %s parameter", name)
	}

	return uint(id), nil
}

// ID64Param parses a numeric route parameter into a uint64.
func ID64Param(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validationf("invalid %s parameter", name)
	}

	return id, nil
}
