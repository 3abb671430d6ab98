// Package role provides the web handlers for roles, their permission sets
// and the permission catalog.
package role

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/siga-admin/siga/internal/auth"
	"github.com/siga-admin/siga/internal/config"
	rolectl "github.com/siga-admin/siga/internal/db/controller/role"
	"github.com/siga-admin/siga/internal/db/models"
	"github.com/siga-admin/siga/internal/web/handler"
)

const (
	// Path is the base path of the role endpoints.
	Path = handler.APIPath + "/roles"
	// PermissionsPath is the path of the permission catalog endpoint.
	PermissionsPath = handler.APIPath + "/permissions"
)

// Service is the role handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
}

// Handler is the role handler.
var Handler = Service{}

// createRequest is the request body for creating a role.
type createRequest struct {
	Name          string `json:"name" validate:"required"`
	Description   string `json:"description"`
	Level         int    `json:"level" validate:"required"`
	PermissionIDs []uint `json:"permission_ids"`
}

// updateRequest is the request body for updating a role. A non-nil
// permission_ids replaces the whole permission set.
type updateRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	Level         *int    `json:"level"`
	PermissionIDs *[]uint `json:"permission_ids"`
}

// Init initializes the role handler. Roles and the permission catalog are
// global, so every route checks the permission under any scope.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService

	app.Get(PermissionsPath,
		auth.RequireAnywhere(authService, auth.ResourceRole, auth.ActionRead), s.ListPermissions)

	app.Get(Path, auth.RequireAnywhere(authService, auth.ResourceRole, auth.ActionRead), s.List)
	app.Get(Path+"/:id", auth.RequireAnywhere(authService, auth.ResourceRole, auth.ActionRead), s.Get)
	app.Get(Path+"/:id/permissions",
		auth.RequireAnywhere(authService, auth.ResourceRole, auth.ActionRead), s.Permissions)
	app.Post(Path, auth.RequireAnywhere(authService, auth.ResourceRole, auth.ActionCreate), s.Create)
	app.Put(Path+"/:id", auth.RequireAnywhere(authService, auth.ResourceRole, auth.ActionUpdate), s.Update)
	app.Delete(Path+"/:id", auth.RequireAnywhere(authService, auth.ResourceRole, auth.ActionDelete), s.Delete)
}

// ListPermissions returns the seeded permission catalog.
func (s *Service) ListPermissions(c *fiber.Ctx) error {
	var perms []models.Permission
	if err := s.db.Order("resource, action").Find(&perms).Error; err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.JSON(perms)
}

// List returns every role ordered by level.
func (s *Service) List(c *fiber.Ctx) error {
	roles, err := rolectl.GetAll(s.db)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.JSON(roles)
}

// Get returns one role.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.IDParam(c, "id")
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	r, err := rolectl.Get(s.db, id)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.JSON(r)
}

// Permissions returns the permission set of a role.
func (s *Service) Permissions(c *fiber.Ctx) error {
	id, err := handler.IDParam(c, "id")
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	perms, err := rolectl.Permissions(s.db, id)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.JSON(perms)
}

// Create creates a role with its initial permission set.
func (s *Service) Create(c *fiber.Ctx) error {
	req := new(createRequest)
	if err := handler.ParseBody(c, req); err != nil {
		return handler.ErrorJSON(c, err)
	}

	r, err := rolectl.Create(s.db, rolectl.CreateInput{
		Name:          req.Name,
		Description:   req.Description,
		Level:         req.Level,
		PermissionIDs: req.PermissionIDs,
	})
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	log.Info().Str("name", r.Name).Int("level", r.Level).Msg("role created")

	return c.Status(fiber.StatusCreated).JSON(r)
}

// Update changes a role and optionally replaces its permission set.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.IDParam(c, "id")
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	req := new(updateRequest)
	if err := handler.ParseBody(c, req); err != nil {
		return handler.ErrorJSON(c, err)
	}

	r, err := rolectl.Update(s.db, id, rolectl.UpdateInput{
		Name:          req.Name,
		Description:   req.Description,
		Level:         req.Level,
		PermissionIDs: req.PermissionIDs,
	})
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.JSON(r)
}

// Delete removes a role unless assignments still reference it.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.IDParam(c, "id")
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	if err := rolectl.Delete(s.db, id); err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
