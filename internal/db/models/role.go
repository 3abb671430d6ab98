package models

import "time"

const (
	// RoleLevelHighest is the numeric level with the most authority.
	RoleLevelHighest = 1
	// RoleLevelLowest is the numeric level with the least authority.
	RoleLevelLowest = 10
	// RoleNameMinLen is the minimum length of a role name.
	RoleNameMinLen = 3
)

// Role represents a named bundle of permissions with a hierarchy level.
// Roles are granted to users through scoped assignments, never globally.
// A lower Level means more authority (1 = highest, 10 = lowest).
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey"`
	// Name is the unique name of the role (e.g., "Administrador").
	Name string `gorm:"unique;size:100;not null"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"size:255"`
	// Level is the hierarchy level in [1,10]; 1 carries the most authority.
	Level int `gorm:"not null"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Role model.
// This overrides GORM's default pluralized table naming.
func (Role) TableName() string {
	return "roles"
}
