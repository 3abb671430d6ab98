// Package assignment provides the web handlers for scoped role assignments.
package assignment

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/siga-admin/siga/internal/apperr"
	"github.com/siga-admin/siga/internal/auth"
	"github.com/siga-admin/siga/internal/config"
	assignmentctl "github.com/siga-admin/siga/internal/db/controller/assignment"
	"github.com/siga-admin/siga/internal/db/models"
	"github.com/siga-admin/siga/internal/web/handler"
)

const (
	// Path is the base path of the assignment endpoints.
	Path = handler.APIPath + "/assignments"
	// UserPath lists the assignments of one user.
	UserPath = handler.APIPath + "/users/:id/assignments"
)

// Service is the assignment handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
}

// Handler is the assignment handler.
var Handler = Service{}

// createRequest is the request body for granting a role to a user.
type createRequest struct {
	UserID      uint64 `json:"user_id" validate:"required"`
	RoleID      uint   `json:"role_id" validate:"required"`
	ScopeUnitID uint   `json:"scope_unit_id" validate:"required"`
}

// Init initializes the assignment handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService

	app.Get(UserPath,
		auth.RequireAnywhere(authService, auth.ResourceAssignment, auth.ActionRead), s.ListForUser)
	app.Post(Path,
		auth.RequireAnywhere(authService, auth.ResourceAssignment, auth.ActionCreate), s.Create)
	app.Delete(Path+"/:id",
		auth.RequireAnywhere(authService, auth.ResourceAssignment, auth.ActionDelete), s.Delete)
}

// ListForUser returns the assignments of one user with role and unit data
// joined in for display.
func (s *Service) ListForUser(c *fiber.Ctx) error {
	userID, err := handler.ID64Param(c, "id")
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	assignments, err := assignmentctl.ListForUser(s.db, userID)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.JSON(assignments)
}

// Create grants a role to a user scoped to a unit subtree. The caller needs
// the create permission on the scope unit itself.
func (s *Service) Create(c *fiber.Ctx) error {
	req := new(createRequest)
	if err := handler.ParseBody(c, req); err != nil {
		return handler.ErrorJSON(c, err)
	}

	if err := auth.CheckForUnit(
		c, s.authService, auth.ResourceAssignment, auth.ActionCreate, req.ScopeUnitID); err != nil {
		return handler.ErrorJSON(c, err)
	}

	a, err := assignmentctl.Assign(s.db, req.UserID, req.RoleID, req.ScopeUnitID)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	log.Info().Uint64("user_id", req.UserID).Uint("role_id", req.RoleID).
		Uint("scope_unit_id", req.ScopeUnitID).Msg("role assigned")

	return c.Status(fiber.StatusCreated).JSON(a)
}

// Delete revokes an assignment. The caller needs the delete permission on
// the assignment's scope unit, which only becomes known after loading it.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.IDParam(c, "id")
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	var a models.RoleAssignment
	if err := s.db.First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return handler.ErrorJSON(c, apperr.NotFoundf("assignment %d", id))
		}
		return handler.ErrorJSON(c, err)
	}

	if err := auth.CheckForUnit(
		c, s.authService, auth.ResourceAssignment, auth.ActionDelete, a.ScopeUnitID); err != nil {
		return handler.ErrorJSON(c, err)
	}

	if err := assignmentctl.Revoke(s.db, a.UserID, a.ID); err != nil {
		return handler.ErrorJSON(c, err)
	}

	log.Info().Uint64("user_id", a.UserID).Uint("assignment_id", a.ID).Msg("role revoked")

	return c.SendStatus(fiber.StatusNoContent)
}
