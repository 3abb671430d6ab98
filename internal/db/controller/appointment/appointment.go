// Package appointment provides CRUD operations for unit appointments.
package appointment

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/siga-admin/siga/internal/apperr"
	"github.com/siga-admin/siga/internal/db/models"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// CreateInput carries the fields needed to schedule an appointment.
type CreateInput struct {
	Title       string
	Description string
	UnitID      uint
	VehicleID   *uint
	ScheduledAt time.Time
}

// Get retrieves an appointment by ID.
func Get(db *gorm.DB, id uint) (*models.Appointment, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var a models.Appointment
	if err := db.First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("appointment %d", id)
		}
		return nil, err
	}

	return &a, nil
}

// ListForUnit retrieves a unit's appointments ordered by schedule.
func ListForUnit(db *gorm.DB, unitID uint) ([]models.Appointment, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var appts []models.Appointment
	if err := db.Where("unit_id = ?", unitID).Order("scheduled_at").Find(&appts).Error; err != nil {
		return nil, err
	}

	return appts, nil
}

// Create validates and schedules a new appointment.
func Create(db *gorm.DB, in CreateInput) (*models.Appointment, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if in.Title == "" {
		return nil, apperr.Validationf("appointment title is required")
	}

	if in.ScheduledAt.IsZero() {
		return nil, apperr.Validationf("appointment date is required")
	}

	a := models.Appointment{
		Title:       in.Title,
		Description: in.Description,
		UnitID:      in.UnitID,
		VehicleID:   in.VehicleID,
		ScheduledAt: in.ScheduledAt,
		Status:      models.AppointmentProgramada,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64

		if err := tx.Model(&models.Unit{}).Where("id = ?", in.UnitID).Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			return apperr.NotFoundf("unit %d", in.UnitID)
		}

		if in.VehicleID != nil {
			if err := tx.Model(&models.Vehicle{}).
				Where("id = ?", *in.VehicleID).Count(&count).Error; err != nil {
				return err
			}

			if count == 0 {
				return apperr.NotFoundf("vehicle %d", *in.VehicleID)
			}
		}

		return tx.Create(&a).Error
	})
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// SetStatus moves an appointment to a new lifecycle state.
func SetStatus(db *gorm.DB, id uint, status models.AppointmentStatus) (*models.Appointment, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if !status.Valid() {
		return nil, apperr.Validationf("unknown appointment status %q", status)
	}

	a, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	a.Status = status
	if err := db.Save(a).Error; err != nil {
		return nil, err
	}

	return a, nil
}

// Delete removes an appointment.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	if _, err := Get(db, id); err != nil {
		return err
	}

	return db.Delete(&models.Appointment{}, id).Error
}
