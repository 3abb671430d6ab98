// Package vehicle provides CRUD operations for fleet vehicles.
package vehicle

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/siga-admin/siga/internal/apperr"
	"github.com/siga-admin/siga/internal/db/models"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// CreateInput carries the fields needed to create a vehicle.
type CreateInput struct {
	Plate    string
	Brand    string
	Model    string
	UnitID   uint
	Odometer int
}

// UpdateInput carries optional fields for updating a vehicle.
type UpdateInput struct {
	Brand    *string
	Model    *string
	UnitID   *uint
	Odometer *int
	Active   *bool
}

// Get retrieves a vehicle by ID.
func Get(db *gorm.DB, id uint) (*models.Vehicle, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var v models.Vehicle
	if err := db.First(&v, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("vehicle %d", id)
		}
		return nil, err
	}

	return &v, nil
}

// ListForUnit retrieves all vehicles assigned to a unit ordered by plate.
func ListForUnit(db *gorm.DB, unitID uint) ([]models.Vehicle, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var vehicles []models.Vehicle
	if err := db.Where("unit_id = ?", unitID).Order("plate").Find(&vehicles).Error; err != nil {
		return nil, err
	}

	return vehicles, nil
}

// GetAll retrieves all vehicles ordered by plate.
func GetAll(db *gorm.DB) ([]models.Vehicle, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var vehicles []models.Vehicle
	if err := db.Order("plate").Find(&vehicles).Error; err != nil {
		return nil, err
	}

	return vehicles, nil
}

// Create validates and inserts a new vehicle.
func Create(db *gorm.DB, in CreateInput) (*models.Vehicle, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	in.Plate = strings.ToUpper(strings.TrimSpace(in.Plate))

	if in.Plate == "" {
		return nil, apperr.Validationf("vehicle plate is required")
	}

	if in.Odometer < 0 {
		return nil, apperr.Validationf("odometer cannot be negative")
	}

	v := models.Vehicle{
		Plate:    in.Plate,
		Brand:    in.Brand,
		Model:    in.Model,
		UnitID:   in.UnitID,
		Odometer: in.Odometer,
		Active:   true,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64

		if err := tx.Model(&models.Unit{}).Where("id = ?", in.UnitID).Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			return apperr.NotFoundf("unit %d", in.UnitID)
		}

		if err := tx.Model(&models.Vehicle{}).Where("plate = ?", in.Plate).Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return apperr.Conflictf("vehicle plate %q already exists", in.Plate)
		}

		if err := tx.Create(&v).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflictf("vehicle plate %q already exists", in.Plate)
			}
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &v, nil
}

// Update changes vehicle fields. The odometer may only move forward.
func Update(db *gorm.DB, id uint, in UpdateInput) (*models.Vehicle, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var updated *models.Vehicle

	err := db.Transaction(func(tx *gorm.DB) error {
		v, err := Get(tx, id)
		if err != nil {
			return err
		}

		if in.Brand != nil {
			v.Brand = *in.Brand
		}

		if in.Model != nil {
			v.Model = *in.Model
		}

		if in.UnitID != nil {
			var count int64
			if err := tx.Model(&models.Unit{}).Where("id = ?", *in.UnitID).Count(&count).Error; err != nil {
				return err
			}

			if count == 0 {
				return apperr.NotFoundf("unit %d", *in.UnitID)
			}

			v.UnitID = *in.UnitID
		}

		if in.Odometer != nil {
			if *in.Odometer < v.Odometer {
				return apperr.Validationf("odometer cannot decrease (%d < %d)", *in.Odometer, v.Odometer)
			}

			v.Odometer = *in.Odometer
		}

		if in.Active != nil {
			v.Active = *in.Active
		}

		if err := tx.Save(v).Error; err != nil {
			return err
		}

		updated = v

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes a vehicle together with its maintenance history.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := Get(tx, id); err != nil {
			return err
		}

		if err := tx.Where("vehicle_id = ?", id).Delete(&models.MaintenanceRecord{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Vehicle{}, id).Error
	})
}
