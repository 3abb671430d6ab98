package models

import "time"

// Vehicle represents a fleet vehicle attached to a unit.
// Units with vehicles cannot be deleted until the vehicles are reassigned.
type Vehicle struct {
	// ID is the unique identifier for the vehicle.
	ID uint `gorm:"primaryKey"`
	// Plate is the unique license plate.
	Plate string `gorm:"unique;size:20;not null"`
	// Brand is the vehicle manufacturer.
	Brand string `gorm:"size:50"`
	// Model is the vehicle model name.
	Model string `gorm:"size:50"`
	// UnitID is the ID of the unit the vehicle is assigned to.
	UnitID uint `gorm:"not null;index"`
	// Unit is the associated unit (enforced with a foreign key constraint).
	Unit Unit `gorm:"foreignKey:UnitID;constraint:OnDelete:RESTRICT"`
	// Odometer is the current odometer reading in kilometers.
	Odometer int `gorm:"not null;default:0"`
	// Active indicates whether the vehicle is in service.
	Active bool `gorm:"default:true"`
	// CreatedAt is the timestamp when the vehicle was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the vehicle was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Vehicle model.
// This overrides GORM's default pluralized table naming.
func (Vehicle) TableName() string {
	return "vehicles"
}
