// Package unit provides the web handlers for the organizational unit tree.
package unit

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/siga-admin/siga/internal/auth"
	"github.com/siga-admin/siga/internal/config"
	unitctl "github.com/siga-admin/siga/internal/db/controller/unit"
	"github.com/siga-admin/siga/internal/db/models"
	"github.com/siga-admin/siga/internal/web/handler"
)

// Path is the base path of the unit endpoints.
const Path = handler.APIPath + "/units"

// Service is the unit handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
}

// Handler is the unit handler.
var Handler = Service{}

// createRequest is the request body for creating a unit.
type createRequest struct {
	Name        string `json:"name" validate:"required"`
	Code        string `json:"code"`
	Type        string `json:"type" validate:"required"`
	ParentID    *uint  `json:"parent_id"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// updateRequest is the request body for updating a unit.
type updateRequest struct {
	Name        *string `json:"name"`
	Code        *string `json:"code"`
	Active      *bool   `json:"active"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
}

// moveRequest is the request body for reparenting a unit.
type moveRequest struct {
	NewParentID uint `json:"new_parent_id" validate:"required"`
}

// Init initializes the unit handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService

	app.Get(Path, auth.RequireAnywhere(authService, auth.ResourceUnit, auth.ActionRead), s.List)
	app.Get(Path+"/:id", auth.RequireForUnit(
		authService, auth.ResourceUnit, auth.ActionRead, auth.UnitFromParam("id")), s.Get)
	app.Get(Path+"/:id/children", auth.RequireForUnit(
		authService, auth.ResourceUnit, auth.ActionRead, auth.UnitFromParam("id")), s.Children)
	app.Get(Path+"/:id/path", auth.RequireForUnit(
		authService, auth.ResourceUnit, auth.ActionRead, auth.UnitFromParam("id")), s.Path)
	app.Post(Path, auth.RequireAnywhere(authService, auth.ResourceUnit, auth.ActionCreate), s.Create)
	app.Put(Path+"/:id", auth.RequireForUnit(
		authService, auth.ResourceUnit, auth.ActionUpdate, auth.UnitFromParam("id")), s.Update)
	app.Post(Path+"/:id/move", auth.RequireForUnit(
		authService, auth.ResourceUnit, auth.ActionUpdate, auth.UnitFromParam("id")), s.Move)
	app.Delete(Path+"/:id", auth.RequireForUnit(
		authService, auth.ResourceUnit, auth.ActionDelete, auth.UnitFromParam("id")), s.Delete)
}

// List returns every unit ordered by code.
func (s *Service) List(c *fiber.Ctx) error {
	units, err := unitctl.GetAll(s.db)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.JSON(units)
}

// Get returns one unit.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.IDParam(c, "id")
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	u, err := unitctl.Get(s.db, id)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.JSON(u)
}

// Children returns the direct children of a unit.
func (s *Service) Children(c *fiber.Ctx) error {
	id, err := handler.IDParam(c, "id")
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	children, err := unitctl.Children(s.db, id)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.JSON(children)
}

// Path returns the ancestor chain codes of a unit, zona first.
func (s *Service) Path(c *fiber.Ctx) error {
	id, err := handler.IDParam(c, "id")
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	codes, err := unitctl.PathCodes(s.db, id)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.JSON(fiber.Map{"path": codes})
}

// Create creates a unit. For non-zona units the caller needs the create
// permission scoped to the designated parent, which only becomes known
// after parsing the body.
func (s *Service) Create(c *fiber.Ctx) error {
	req := new(createRequest)
	if err := handler.ParseBody(c, req); err != nil {
		return handler.ErrorJSON(c, err)
	}

	if req.ParentID != nil {
		if err := auth.CheckForUnit(
			c, s.authService, auth.ResourceUnit, auth.ActionCreate, *req.ParentID); err != nil {
			return handler.ErrorJSON(c, err)
		}
	}

	u, err := unitctl.Create(s.db, unitctl.CreateInput{
		Name:        req.Name,
		Code:        req.Code,
		Type:        models.UnitType(req.Type),
		ParentID:    req.ParentID,
		Location:    req.Location,
		Description: req.Description,
	})
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	log.Info().Str("code", u.Code).Str("type", string(u.Type)).Msg("unit created")

	return c.Status(fiber.StatusCreated).JSON(u)
}

// Update changes the mutable fields of a unit.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.IDParam(c, "id")
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	req := new(updateRequest)
	if err := handler.ParseBody(c, req); err != nil {
		return handler.ErrorJSON(c, err)
	}

	u, err := unitctl.Update(s.db, id, unitctl.UpdateInput{
		Name:        req.Name,
		Code:        req.Code,
		Active:      req.Active,
		Location:    req.Location,
		Description: req.Description,
	})
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.JSON(u)
}

// Move reparents a unit. The caller needs the update permission on both the
// moved unit and the receiving parent.
func (s *Service) Move(c *fiber.Ctx) error {
	id, err := handler.IDParam(c, "id")
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	req := new(moveRequest)
	if err := handler.ParseBody(c, req); err != nil {
		return handler.ErrorJSON(c, err)
	}

	if err := auth.CheckForUnit(
		c, s.authService, auth.ResourceUnit, auth.ActionUpdate, req.NewParentID); err != nil {
		return handler.ErrorJSON(c, err)
	}

	u, err := unitctl.Move(s.db, id, req.NewParentID)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	log.Info().Uint("unit_id", u.ID).Str("code", u.Code).Msg("unit moved")

	return c.JSON(u)
}

// Delete removes a unit if nothing references it.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.IDParam(c, "id")
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	if err := unitctl.Delete(s.db, id); err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
