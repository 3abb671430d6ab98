// Package appointment provides the web handlers for unit appointments.
package appointment

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/siga-admin/siga/internal/auth"
	"github.com/siga-admin/siga/internal/config"
	appointmentctl "github.com/siga-admin/siga/internal/db/controller/appointment"
	"github.com/siga-admin/siga/internal/db/models"
	"github.com/siga-admin/siga/internal/web/handler"
)

const (
	// Path is the base path of the appointment endpoints.
	Path = handler.APIPath + "/appointments"
	// UnitPath lists the appointments of one unit.
	UnitPath = handler.APIPath + "/units/:id/appointments"
)

// Service is the appointment handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
}

// Handler is the appointment handler.
var Handler = Service{}

// createRequest is the request body for scheduling an appointment.
type createRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	UnitID      uint      `json:"unit_id" validate:"required"`
	VehicleID   *uint     `json:"vehicle_id"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
}

// statusRequest is the request body for changing an appointment status.
type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Init initializes the appointment handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService

	app.Get(UnitPath, auth.RequireForUnit(
		authService, auth.ResourceAppointment, auth.ActionRead, auth.UnitFromParam("id")), s.ListForUnit)
	app.Post(Path,
		auth.RequireAnywhere(authService, auth.ResourceAppointment, auth.ActionCreate), s.Create)
	app.Put(Path+"/:id/status",
		auth.RequireAnywhere(authService, auth.ResourceAppointment, auth.ActionUpdate), s.SetStatus)
	app.Delete(Path+"/:id",
		auth.RequireAnywhere(authService, auth.ResourceAppointment, auth.ActionDelete), s.Delete)
}

// ListForUnit returns the appointments of one unit ordered by date.
func (s *Service) ListForUnit(c *fiber.Ctx) error {
	unitID, err := handler.IDParam(c, "id")
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	appointments, err := appointmentctl.ListForUnit(s.db, unitID)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.JSON(appointments)
}

// Create schedules an appointment on a unit.
func (s *Service) Create(c *fiber.Ctx) error {
	req := new(createRequest)
	if err := handler.ParseBody(c, req); err != nil {
		return handler.ErrorJSON(c, err)
	}

	if err := auth.CheckForUnit(
		c, s.authService, auth.ResourceAppointment, auth.ActionCreate, req.UnitID); err != nil {
		return handler.ErrorJSON(c, err)
	}

	a, err := appointmentctl.Create(s.db, appointmentctl.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		UnitID:      req.UnitID,
		VehicleID:   req.VehicleID,
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	log.Info().Str("title", a.Title).Uint("unit_id", a.UnitID).
		Time("scheduled_at", a.ScheduledAt).Msg("appointment scheduled")

	return c.Status(fiber.StatusCreated).JSON(a)
}

// SetStatus moves an appointment through its lifecycle.
func (s *Service) SetStatus(c *fiber.Ctx) error {
	id, err := handler.IDParam(c, "id")
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	current, err := appointmentctl.Get(s.db, id)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	if err := auth.CheckForUnit(
		c, s.authService, auth.ResourceAppointment, auth.ActionUpdate, current.UnitID); err != nil {
		return handler.ErrorJSON(c, err)
	}

	req := new(statusRequest)
	if err := handler.ParseBody(c, req); err != nil {
		return handler.ErrorJSON(c, err)
	}

	a, err := appointmentctl.SetStatus(s.db, id, models.AppointmentStatus(req.Status))
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.JSON(a)
}

// Delete removes an appointment.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.IDParam(c, "id")
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	a, err := appointmentctl.Get(s.db, id)
	if err != nil {
		return handler.ErrorJSON(c, err)
	}

	if err := auth.CheckForUnit(
		c, s.authService, auth.ResourceAppointment, auth.ActionDelete, a.UnitID); err != nil {
		return handler.ErrorJSON(c, err)
	}

	if err := appointmentctl.Delete(s.db, id); err != nil {
		return handler.ErrorJSON(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
