// Package maintenance provides CRUD operations for maintenance types and
// records and exposes the due-state computation for a vehicle.
package maintenance

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/siga-admin/siga/internal/apperr"
	"github.com/siga-admin/siga/internal/db/models"
	domain "github.com/siga-admin/siga/internal/maintenance"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// TypeInput carries the fields needed to create a maintenance type.
type TypeInput struct {
	Name            string
	Description     string
	FrequencyKM     *int
	FrequencyMonths *int
	WarnMarginKM    *int
	WarnMarginDays  *int
}

// RecordInput carries the fields needed to register a performed service.
type RecordInput struct {
	VehicleID   uint
	TypeID      uint
	Odometer    int
	PerformedAt time.Time
	Notes       string
}

// VehicleDue is the due status of one maintenance type for a vehicle.
type VehicleDue struct {
	TypeID   uint          `json:"type_id"`
	TypeName string        `json:"type_name"`
	Status   domain.Status `json:"status"`
}

// GetType retrieves a maintenance type by ID.
func GetType(db *gorm.DB, id uint) (*models.MaintenanceType, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var t models.MaintenanceType
	if err := db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("maintenance type %d", id)
		}
		return nil, err
	}

	return &t, nil
}

// ListTypes retrieves all maintenance types ordered by name.
func ListTypes(db *gorm.DB) ([]models.MaintenanceType, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var types []models.MaintenanceType
	if err := db.Order("name").Find(&types).Error; err != nil {
		return nil, err
	}

	return types, nil
}

// CreateType validates and inserts a maintenance type. A type with neither
// a km nor a month frequency is invalid.
func CreateType(db *gorm.DB, in TypeInput) (*models.MaintenanceType, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if in.Name == "" {
		return nil, apperr.Validationf("maintenance type name is required")
	}

	if err := domain.ValidateSchedule(domain.Schedule{
		FrequencyKM:     in.FrequencyKM,
		FrequencyMonths: in.FrequencyMonths,
		WarnMarginKM:    in.WarnMarginKM,
		WarnMarginDays:  in.WarnMarginDays,
	}); err != nil {
		return nil, err
	}

	t := models.MaintenanceType{
		Name:            in.Name,
		Description:     in.Description,
		FrequencyKM:     in.FrequencyKM,
		FrequencyMonths: in.FrequencyMonths,
		WarnMarginKM:    in.WarnMarginKM,
		WarnMarginDays:  in.WarnMarginDays,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.MaintenanceType{}).
			Where("name = ?", in.Name).Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return apperr.Conflictf("maintenance type %q already exists", in.Name)
		}

		return tx.Create(&t).Error
	})
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// DeleteType removes a maintenance type without history.
func DeleteType(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := GetType(tx, id); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.MaintenanceRecord{}).
			Where("type_id = ?", id).Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return apperr.Conflictf("maintenance type %d has recorded services", id)
		}

		return tx.Delete(&models.MaintenanceType{}, id).Error
	})
}

// AddRecord registers a performed service for a vehicle and advances the
// vehicle odometer when the reading is newer.
func AddRecord(db *gorm.DB, in RecordInput) (*models.MaintenanceRecord, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if in.Odometer < 0 {
		return nil, apperr.Validationf("odometer cannot be negative")
	}

	if in.PerformedAt.IsZero() {
		return nil, apperr.Validationf("service date is required")
	}

	r := models.MaintenanceRecord{
		VehicleID:   in.VehicleID,
		TypeID:      in.TypeID,
		Odometer:    in.Odometer,
		PerformedAt: in.PerformedAt,
		Notes:       in.Notes,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var v models.Vehicle
		if err := tx.First(&v, in.VehicleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("vehicle %d", in.VehicleID)
			}
			return err
		}

		if _, err := GetType(tx, in.TypeID); err != nil {
			return err
		}

		if err := tx.Create(&r).Error; err != nil {
			return err
		}

		if in.Odometer > v.Odometer {
			if err := tx.Model(&models.Vehicle{}).Where("id = ?", v.ID).
				Update("odometer", in.Odometer).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// ListRecords retrieves the service history of a vehicle, newest first.
func ListRecords(db *gorm.DB, vehicleID uint) ([]models.MaintenanceRecord, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var records []models.MaintenanceRecord
	if err := db.Where("vehicle_id = ?", vehicleID).
		Order("performed_at DESC, id DESC").Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

// LatestRecord retrieves the most recent service of a given type for a
// vehicle, or a not-found error when the vehicle has no history for it.
func LatestRecord(db *gorm.DB, vehicleID, typeID uint) (*models.MaintenanceRecord, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var r models.MaintenanceRecord
	err := db.Where("vehicle_id = ? AND type_id = ?", vehicleID, typeID).
		Order("performed_at DESC, id DESC").First(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("no %d maintenance history for vehicle %d", typeID, vehicleID)
		}
		return nil, err
	}

	return &r, nil
}

// DueStatus classifies one maintenance type for a vehicle against the
// vehicle's current odometer and the given time.
func DueStatus(db *gorm.DB, vehicleID, typeID uint, now time.Time) (*VehicleDue, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	t, err := GetType(db, typeID)
	if err != nil {
		return nil, err
	}

	var v models.Vehicle
	if err := db.First(&v, vehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("vehicle %d", vehicleID)
		}
		return nil, err
	}

	last, err := LatestRecord(db, vehicleID, typeID)
	if err != nil {
		return nil, err
	}

	status := domain.Classify(
		domain.Schedule{
			FrequencyKM:     t.FrequencyKM,
			FrequencyMonths: t.FrequencyMonths,
			WarnMarginKM:    t.WarnMarginKM,
			WarnMarginDays:  t.WarnMarginDays,
		},
		domain.Reference{Odometer: last.Odometer, PerformedAt: last.PerformedAt},
		v.Odometer,
		now,
	)

	return &VehicleDue{TypeID: t.ID, TypeName: t.Name, Status: status}, nil
}

// DueStatuses classifies every maintenance type with history for a vehicle.
func DueStatuses(db *gorm.DB, vehicleID uint, now time.Time) ([]VehicleDue, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var typeIDs []uint
	if err := db.Model(&models.MaintenanceRecord{}).
		Where("vehicle_id = ?", vehicleID).
		Distinct("type_id").Pluck("type_id", &typeIDs).Error; err != nil {
		return nil, err
	}

	out := make([]VehicleDue, 0, len(typeIDs))

	for _, tid := range typeIDs {
		due, err := DueStatus(db, vehicleID, tid, now)
		if err != nil {
			return nil, err
		}

		out = append(out, *due)
	}

	return out, nil
}
