// Package vehicle provides the web handlers for the vehicle fleet.
package vehicle

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/siga-admin/siga/internal/auth"
	"github.com/siga-admin/siga/internal/config"
	vehiclectl "github.com/siga-admin/siga/internal/db/controller/vehicle"
	"github.com/siga-admin/siga/internal/web/handler"
)

const (
	// Path is the base path of the vehicle endpoints.
	Path = handler.APIPath + "/vehicles"
	// UnitPath lists the vehicles assigned to one unit.
	UnitPath = handler.APIPath + "/units/:id/vehicles"
)

// Service is the vehicle handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
}

// Handler is the vehicle handler.
var Handler = Service{}

// createRequest is the request body for registering a vehicle.
type createRequest struct {
	Plate    string `json:"plate" validate:"required"`
	Brand    string `json:"brand" validate:"required"`
	Model    string `json:"model" validate:"required"`
	UnitID   uint   `json:"unit_id" validate:"required"`
	Odometer int    `json:"odometer" validate:"min=0"`
}

// updateRequest is the request body for updating a vehicle. The plate is
// immutable and deliberately absent.
type updateRequest struct {
	Brand    *string `json:"brand"`
	Model    *string `json:"model"`
	UnitID   *uint   `json:"unit_id"`
	Odometer *int    `json:"odometer"`
	Active   *bool   `json:"active"`
}

// Init initializes the vehicle handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService

	app.Get(Path, auth.RequireAnywhere(authService, auth.ResourceVehicle, auth.ActionRead), s.List)
	app.Get(UnitPath, auth.RequireForUnit(
		authService, auth.ResourceVehicle, auth.ActionRead, auth.UnitFromParam("id")), s.ListForUnit)
	app.Get(Path+"/:id",
		auth.RequireAnywhere(authService, auth.ResourceVehicle, auth.ActionRead), s.Get)
	app.Post(Path,
		auth.RequireAnywhere(authService, auth.ResourceVehicle, auth.ActionCreate), s.Create)
	app.Put(Path+"/:id",
		auth.RequireAnywhere(authService, auth.ResourceVehicle, auth.ActionUpdate), s.Update)
	app.Delete(Path+"/:id",
		auth.RequireAnywhere(authService, auth.ResourceVehicle, auth.ActionDelete), s.Delete)
}

// List returns every vehicle.
func (s *Service) List(c *fiber.Ctx) error {
	vehicles, err := vehiclectl.GetAll(s.db)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.JSON(vehicles)
}

// ListForUnit returns the vehicles assigned to one unit.
func (s *Service) ListForUnit(c *fiber.Ctx) error {
	unitID, err := handler.IDParam(c, "id")
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	vehicles, err := vehiclectl.ListForUnit(s.db, unitID)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.JSON(vehicles)
}

// Get returns one vehicle after checking read permission on its unit.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.IDParam(c, "id")
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	v, err := vehiclectl.Get(s.db, id)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	if err := auth.CheckForUnit(
		c, s.authService, auth.ResourceVehicle, auth.ActionRead, v.UnitID); err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.JSON(v)
}

// Create registers a vehicle on a unit.
func (s *Service) Create(c *fiber.Ctx) error {
	req := new(createRequest)
	if err := handler.ParseBody(c, req); err != nil {
		return handler.ErrorJSON(c, err)
	}

	if err := auth.CheckForUnit(
		c, s.authService, auth.ResourceVehicle, auth.ActionCreate, req.UnitID); err != nil {
		return handler.ErrorJSON(c, err)
	}

	v, err := vehiclectl.Create(s.db, vehiclectl.CreateInput{
		Plate:    req.Plate,
		Brand:    req.Brand,
		Model:    req.Model,
		UnitID:   req.UnitID,
		Odometer: req.Odometer,
	})
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	log.Info().Str("plate", v.Plate).Uint("unit_id", v.UnitID).Msg("vehicle registered")

	return c.Status(fiber.StatusCreated).JSON(v)
}

// Update changes a vehicle's mutable fields. The caller needs the update
// permission on the current unit, and on the receiving unit when the
// vehicle is being transferred.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.IDParam(c, "id")
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	current, err := vehiclectl.Get(s.db, id)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	if err := auth.CheckForUnit(
		c, s.authService, auth.ResourceVehicle, auth.ActionUpdate, current.UnitID); err != nil {
		return handler.ErrorJSON(c, err)
	}

	req := new(updateRequest)
	if err := handler.ParseBody(c, req); err != nil {
		return handler.ErrorJSON(c, err)
	}

	if req.UnitID != nil && *req.UnitID != current.UnitID {
		if err := auth.CheckForUnit(
			c, s.authService, auth.ResourceVehicle, auth.ActionUpdate, *req.UnitID); err != nil {
			return handler.ErrorJSON(c, err)
		}
	}

	v, err := vehiclectl.Update(s.db, id, vehiclectl.UpdateInput{
		Brand:    req.Brand,
		Model:    req.Model,
		UnitID:   req.UnitID,
		Odometer: req.Odometer,
		Active:   req.Active,
	})
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.JSON(v)
}

// Delete removes a vehicle and its maintenance history.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.IDParam(c, "id")
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	v, err := vehiclectl.Get(s.db, id)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	if err := auth.CheckForUnit(
		c, s.authService, auth.ResourceVehicle, auth.ActionDelete, v.UnitID); err != nil {
		return handler.ErrorJSON(c, err)
	}

	if err := vehiclectl.Delete(s.db, id); err != nil {
		return handler.ErrorJSON(c, err)
	}

	log.Info().Str("plate", v.Plate).Msg("vehicle deleted")

	return c.SendStatus(fiber.StatusNoContent)
}
