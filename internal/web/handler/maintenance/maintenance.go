// Package maintenance provides the web handlers for the maintenance type
// catalog, service records and due status reports.
package maintenance

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/siga-admin/siga/internal/auth"
	"github.com/siga-admin/siga/internal/config"
	maintctl "github.com/siga-admin/siga/internal/db/controller/maintenance"
	vehiclectl "github.com/siga-admin/siga/internal/db/controller/vehicle"
	"github.com/siga-admin/siga/internal/web/handler"
)

const (
	// TypesPath is the base path of the maintenance type catalog.
	TypesPath = handler.APIPath + "/maintenance/types"
	// RecordsPath holds the per-vehicle service history.
	RecordsPath = handler.APIPath + "/vehicles/:id/maintenance"
	// DuePath reports the per-vehicle due status of every type.
	DuePath = handler.APIPath + "/vehicles/:id/maintenance/due"
)

// Service is the maintenance handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
}

// Handler is the maintenance handler.
var Handler = Service{}

// typeRequest is the request body for creating a maintenance type. At least
// one frequency dimension must be set; the controller enforces that.
type typeRequest struct {
	Name            string `json:"name" validate:"required"`
	Description     string `json:"description"`
	FrequencyKM     *int   `json:"frequency_km" validate:"omitempty,gt=0"`
	FrequencyMonths *int   `json:"frequency_months" validate:"omitempty,gt=0"`
	WarnMarginKM    *int   `json:"warn_margin_km" validate:"omitempty,gte=0"`
	WarnMarginDays  *int   `json:"warn_margin_days" validate:"omitempty,gte=0"`
}

// recordRequest is the request body for registering a performed service.
type recordRequest struct {
	TypeID      uint      `json:"type_id" validate:"required"`
	Odometer    int       `json:"odometer" validate:"min=0"`
	PerformedAt time.Time `json:"performed_at" validate:"required"`
	Notes       string    `json:"notes"`
}

// Init initializes the maintenance handler. The type catalog is global;
// records and due reports are authorized against the vehicle's unit.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService

	app.Get(TypesPath,
		auth.RequireAnywhere(authService, auth.ResourceMaintenance, auth.ActionRead), s.ListTypes)
	app.Post(TypesPath,
		auth.RequireAnywhere(authService, auth.ResourceMaintenance, auth.ActionCreate), s.CreateType)
	app.Delete(TypesPath+"/:id",
		auth.RequireAnywhere(authService, auth.ResourceMaintenance, auth.ActionDelete), s.DeleteType)

	app.Get(RecordsPath,
		auth.RequireAnywhere(authService, auth.ResourceMaintenance, auth.ActionRead), s.ListRecords)
	app.Post(RecordsPath,
		auth.RequireAnywhere(authService, auth.ResourceMaintenance, auth.ActionCreate), s.AddRecord)
	app.Get(DuePath,
		auth.RequireAnywhere(authService, auth.ResourceMaintenance, auth.ActionRead), s.DueStatuses)
}

// ListTypes returns the maintenance type catalog.
func (s *Service) ListTypes(c *fiber.Ctx) error {
	types, err := maintctl.ListTypes(s.db)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.JSON(types)
}

// CreateType adds a maintenance type to the catalog.
func (s *Service) CreateType(c *fiber.Ctx) error {
	req := new(typeRequest)
	if err := handler.ParseBody(c, req); err != nil {
		return handler.ErrorJSON(c, err)
	}

	mt, err := maintctl.CreateType(s.db, maintctl.TypeInput{
		Name:            req.Name,
		Description:     req.Description,
		FrequencyKM:     req.FrequencyKM,
		FrequencyMonths: req.FrequencyMonths,
		WarnMarginKM:    req.WarnMarginKM,
		WarnMarginDays:  req.WarnMarginDays,
	})
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	log.Info().Str("name", mt.Name).Msg("maintenance type created")

	return c.Status(fiber.StatusCreated).JSON(mt)
}

// DeleteType removes a maintenance type unless service history references it.
func (s *Service) DeleteType(c *fiber.Ctx) error {
	id, err := handler.IDParam(c, "id")
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	if err := maintctl.DeleteType(s.db, id); err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListRecords returns the service history of one vehicle.
func (s *Service) ListRecords(c *fiber.Ctx) error {
	vehicleID, err := s.vehicleUnit(c, auth.ActionRead)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	records, err := maintctl.ListRecords(s.db, vehicleID)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.JSON(records)
}

// AddRecord registers a performed service, advancing the vehicle odometer
// when the reading is newer.
func (s *Service) AddRecord(c *fiber.Ctx) error {
	vehicleID, err := s.vehicleUnit(c, auth.ActionCreate)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	req := new(recordRequest)
	if err := handler.ParseBody(c, req); err != nil {
		return handler.ErrorJSON(c, err)
	}

	rec, err := maintctl.AddRecord(s.db, maintctl.RecordInput{
		VehicleID:   vehicleID,
		TypeID:      req.TypeID,
		Odometer:    req.Odometer,
		PerformedAt: req.PerformedAt,
		Notes:       req.Notes,
	})
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	log.Info().Uint("vehicle_id", vehicleID).Uint("type_id", req.TypeID).
		Int("odometer", req.Odometer).Msg("maintenance recorded")

	return c.Status(fiber.StatusCreated).JSON(rec)
}

// DueStatuses classifies every maintenance type for one vehicle.
func (s *Service) DueStatuses(c *fiber.Ctx) error {
	vehicleID, err := s.vehicleUnit(c, auth.ActionRead)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	statuses, err := maintctl.DueStatuses(s.db, vehicleID, time.Now())
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.JSON(statuses)
}

// vehicleUnit loads the vehicle of the route and checks the maintenance
// permission against its unit.
func (s *Service) vehicleUnit(c *fiber.Ctx, action auth.Action) (uint, error) {
	id, err := handler.IDParam(c, "id")
	if err != nil {
		return 0, err
	}

	v, err := vehiclectl.Get(s.db, id)
	if err != nil {
		return 0, err
	}

	if err := auth.CheckForUnit(
		c, s.authService, auth.ResourceMaintenance, action, v.UnitID); err != nil {
		return 0, err
	}

	return id, nil
}
