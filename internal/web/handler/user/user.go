// Package user provides the web handlers for personnel accounts.
package user

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/siga-admin/siga/internal/auth"
	"github.com/siga-admin/siga/internal/config"
	userctl "github.com/siga-admin/siga/internal/db/controller/user"
	"github.com/siga-admin/siga/internal/web/handler"
)

// Path is the base path of the user endpoints.
const Path = handler.APIPath + "/users"

// Service is the user handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
}

// Handler is the user handler.
var Handler = Service{}

// createRequest is the request body for creating a user.
type createRequest struct {
	Username   string `json:"username" validate:"required,min=3"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	FullName   string `json:"full_name" validate:"required"`
	HomeUnitID uint   `json:"home_unit_id" validate:"required"`
}

// updateRequest is the request body for updating a user. The username is
// immutable and deliberately absent.
type updateRequest struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	FullName *string `json:"full_name"`
	Active   *bool   `json:"active"`
	HomeUnit *uint   `json:"home_unit_id"`
}

// passwordRequest is the request body for setting a password.
type passwordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// Init initializes the user handler. Reads and writes are authorized
// against the target user's home unit, which only becomes known after
// loading the account, so most checks happen inside the handlers.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService

	app.Get(Path, auth.RequireAnywhere(authService, auth.ResourceUser, auth.ActionRead), s.List)
	app.Get(Path+"/:id", auth.RequireAnywhere(authService, auth.ResourceUser, auth.ActionRead), s.Get)
	app.Post(Path, auth.RequireAnywhere(authService, auth.ResourceUser, auth.ActionCreate), s.Create)
	app.Put(Path+"/:id", auth.RequireAnywhere(authService, auth.ResourceUser, auth.ActionUpdate), s.Update)
	app.Put(Path+"/:id/password", s.SetPassword)
	app.Delete(Path+"/:id", auth.RequireAnywhere(authService, auth.ResourceUser, auth.ActionDelete), s.Delete)
}

// List returns every user.
func (s *Service) List(c *fiber.Ctx) error {
	users, err := userctl.GetAll(s.db)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.JSON(users)
}

// Get returns one user after checking read permission on their home unit.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ID64Param(c, "id")
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	u, err := userctl.Get(s.db, id)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	if err := auth.CheckForUnit(
		c, s.authService, auth.ResourceUser, auth.ActionRead, u.HomeUnitID); err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.JSON(u)
}

// Create creates a user account assigned to a home unit.
func (s *Service) Create(c *fiber.Ctx) error {
	req := new(createRequest)
	if err := handler.ParseBody(c, req); err != nil {
		return handler.ErrorJSON(c, err)
	}

	if err := auth.CheckForUnit(
		c, s.authService, auth.ResourceUser, auth.ActionCreate, req.HomeUnitID); err != nil {
		return handler.ErrorJSON(c, err)
	}

	u, err := userctl.Create(s.db, userctl.CreateInput{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		FullName:   req.FullName,
		HomeUnitID: req.HomeUnitID,
	})
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	log.Info().Str("username", u.Username).Uint("home_unit_id", u.HomeUnitID).Msg("user created")

	return c.Status(fiber.StatusCreated).JSON(u)
}

// Update changes a user's mutable fields. The caller needs the update
// permission on the current home unit, and on the new one when the user is
// being reassigned.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ID64Param(c, "id")
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	current, err := userctl.Get(s.db, id)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	if err := auth.CheckForUnit(
		c, s.authService, auth.ResourceUser, auth.ActionUpdate, current.HomeUnitID); err != nil {
		return handler.ErrorJSON(c, err)
	}

	req := new(updateRequest)
	if err := handler.ParseBody(c, req); err != nil {
		return handler.ErrorJSON(c, err)
	}

	if req.HomeUnit != nil && *req.HomeUnit != current.HomeUnitID {
		if err := auth.CheckForUnit(
			c, s.authService, auth.ResourceUser, auth.ActionUpdate, *req.HomeUnit); err != nil {
			return handler.ErrorJSON(c, err)
		}
	}

	u, err := userctl.Update(s.db, id, userctl.UpdateInput{
		Email:    req.Email,
		FullName: req.FullName,
		Active:   req.Active,
		HomeUnit: req.HomeUnit,
	})
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.JSON(u)
}

// SetPassword rotates a password. Users may always change their own; for
// anyone else the update permission on the target's home unit is required.
func (s *Service) SetPassword(c *fiber.Ctx) error {
	id, err := handler.ID64Param(c, "id")
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	caller, err := auth.SessionUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	if caller.ID != id {
		target, err := userctl.Get(s.db, id)
		if err != nil {
			return handler.ErrorJSON(c, err)
		}

		if err := auth.CheckForUnit(
			c, s.authService, auth.ResourceUser, auth.ActionUpdate, target.HomeUnitID); err != nil {
			return handler.ErrorJSON(c, err)
		}
	}

	req := new(passwordRequest)
	if err := handler.ParseBody(c, req); err != nil {
		return handler.ErrorJSON(c, err)
	}

	if err := userctl.SetPassword(s.db, id, req.Password); err != nil {
		return handler.ErrorJSON(c, err)
	}

	log.Info().Uint64("user_id", id).Msg("password changed")

	return c.SendStatus(fiber.StatusNoContent)
}

// Delete removes a user account unless assignments still reference it.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ID64Param(c, "id")
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	u, err := userctl.Get(s.db, id)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	if err := auth.CheckForUnit(
		c, s.authService, auth.ResourceUser, auth.ActionDelete, u.HomeUnitID); err != nil {
		return handler.ErrorJSON(c, err)
	}

	if err := userctl.Delete(s.db, id); err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
