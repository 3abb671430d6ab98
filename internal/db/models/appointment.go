package models

import "time"

// AppointmentStatus represents the lifecycle state of an appointment.
type AppointmentStatus string

const (
	// AppointmentProgramada is a scheduled, pending appointment.
	AppointmentProgramada AppointmentStatus = "programada"
	// AppointmentCompletada is a completed appointment.
	AppointmentCompletada AppointmentStatus = "completada"
	// AppointmentCancelada is a cancelled appointment.
	AppointmentCancelada AppointmentStatus = "cancelada"
)

// Valid reports whether s is a known appointment status.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentProgramada, AppointmentCompletada, AppointmentCancelada:
		return true
	}

	return false
}

// Appointment represents a scheduled event for a unit, optionally tied to a
// vehicle (e.g., a workshop visit).
type Appointment struct {
	// ID is the unique identifier for the appointment.
	ID uint `gorm:"primaryKey"`
	// Title is the short subject of the appointment.
	Title string `gorm:"size:150;not null"`
	// Description provides free-text details.
	Description string `gorm:"size:500"`
	// UnitID is the ID of the unit the appointment belongs to.
	UnitID uint `gorm:"not null;index"`
	// Unit is the associated unit (enforced with a foreign key constraint).
	Unit Unit `gorm:"foreignKey:UnitID;constraint:OnDelete:RESTRICT"`
	// VehicleID is the optional ID of the vehicle involved.
	VehicleID *uint `gorm:"index"`
	// Vehicle is the associated vehicle, if any.
	Vehicle *Vehicle `gorm:"foreignKey:VehicleID;constraint:OnDelete:SET NULL"`
	// ScheduledAt is when the appointment takes place.
	ScheduledAt time.Time `gorm:"not null"`
	// Status is the lifecycle state (programada, completada, cancelada).
	Status AppointmentStatus `gorm:"type:varchar(20);not null;default:'programada'"`
	// CreatedAt is the timestamp when the appointment was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the appointment was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Appointment model.
// This overrides GORM's default pluralized table naming.
func (Appointment) TableName() string {
	return "appointments"
}
