package models

import "time"

// RoleAssignment grants a role to a user within the scope of a unit subtree.
// The grant applies to the scope unit and all of its descendants; multiple
// assignments are additive, never restrictive.
// The (user, role, scope unit) triple is unique at the database level so
// concurrent duplicate assignment attempts cannot both succeed.
type RoleAssignment struct {
	// ID is the unique identifier for the assignment.
	ID uint `gorm:"primaryKey"`
	// UserID is the ID of the user receiving the grant.
	UserID uint64 `gorm:"not null;uniqueIndex:idx_user_role_scope"`
	// RoleID is the ID of the granted role.
	RoleID uint `gorm:"not null;uniqueIndex:idx_user_role_scope"`
	// ScopeUnitID is the ID of the unit bounding the grant. The permission
	// applies to this unit and its whole subtree.
	ScopeUnitID uint `gorm:"not null;uniqueIndex:idx_user_role_scope"`
	// User is the associated user (loaded via foreign key).
	// When a user is deleted, their assignments are removed (CASCADE).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// Role is the associated role. Deleting a role with active assignments
	// is blocked at the application level (RESTRICT).
	Role Role `gorm:"foreignKey:RoleID;constraint:OnDelete:RESTRICT"`
	// ScopeUnit is the associated scope unit. Deleting a unit with active
	// assignments is blocked at the application level (RESTRICT).
	ScopeUnit Unit `gorm:"foreignKey:ScopeUnitID;constraint:OnDelete:RESTRICT"`
	// CreatedAt is the timestamp when the assignment was created (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the RoleAssignment model.
// This overrides GORM's default pluralized table naming.
func (RoleAssignment) TableName() string {
	return "role_assignments"
}
