package models

import "time"

// MaintenanceRecord is one performed maintenance event for a vehicle.
// The latest record per (vehicle, type) anchors the due-state computation.
type MaintenanceRecord struct {
	// ID is the unique identifier for the record.
	ID uint `gorm:"primaryKey"`
	// VehicleID is the ID of the serviced vehicle.
	VehicleID uint `gorm:"not null;index"`
	// Vehicle is the associated vehicle (loaded via foreign key).
	// Deleting a vehicle removes its maintenance history (CASCADE).
	Vehicle Vehicle `gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE"`
	// TypeID is the ID of the maintenance type performed.
	TypeID uint `gorm:"not null;index"`
	// Type is the associated maintenance type (RESTRICT: types with history
	// cannot be removed).
	Type MaintenanceType `gorm:"foreignKey:TypeID;constraint:OnDelete:RESTRICT"`
	// Odometer is the odometer reading in kilometers at service time.
	Odometer int `gorm:"not null"`
	// PerformedAt is when the maintenance was carried out.
	PerformedAt time.Time `gorm:"not null"`
	// Notes is free-text commentary from the workshop.
	Notes string `gorm:"size:500"`
	// CreatedAt is the timestamp when the record was created (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the MaintenanceRecord model.
// This overrides GORM's default pluralized table naming.
func (MaintenanceRecord) TableName() string {
	return "maintenance_records"
}
