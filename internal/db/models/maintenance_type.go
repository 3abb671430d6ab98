package models

import "time"

// MaintenanceType defines a recurring maintenance obligation.
// At least one of FrequencyKM or FrequencyMonths must be set; a type with
// neither is rejected at creation time. Warn margins widen the "proximo"
// window before the obligation becomes "vencido".
type MaintenanceType struct {
	// ID is the unique identifier for the maintenance type.
	ID uint `gorm:"primaryKey"`
	// Name is the unique name of the maintenance type (e.g., "Cambio de aceite").
	Name string `gorm:"unique;size:100;not null"`
	// Description provides a human-readable description of the work involved.
	Description string `gorm:"size:255"`
	// FrequencyKM is the distance interval in kilometers between services; nil if not km-based.
	FrequencyKM *int
	// FrequencyMonths is the time interval in months between services; nil if not date-based.
	FrequencyMonths *int
	// WarnMarginKM is how many kilometers before the due odometer the state turns "proximo".
	WarnMarginKM *int
	// WarnMarginDays is how many days before the due date the state turns "proximo".
	WarnMarginDays *int
	// CreatedAt is the timestamp when the type was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the type was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the MaintenanceType model.
// This overrides GORM's default pluralized table naming.
func (MaintenanceType) TableName() string {
	return "maintenance_types"
}
