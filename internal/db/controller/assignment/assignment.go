// Package assignment provides operations on scoped role assignments: the
// (user, role, scope unit) triples that bound every permission grant to a
// unit subtree.
package assignment

import (
	"errors"

	"gorm.io/gorm"

	"github.com/siga-admin/siga/internal/apperr"
	"github.com/siga-admin/siga/internal/db/models"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// UserAssignment is a read-time join of an assignment with the role and
// unit data the UI displays. The denormalized fields are never stored.
type UserAssignment struct {
	ID              uint            `json:"id"`
	UserID          uint64          `json:"user_id"`
	RoleID          uint            `json:"role_id"`
	RoleName        string          `json:"role_name"`
	RoleDescription string          `json:"role_description"`
	RoleLevel       int             `json:"role_level"`
	ScopeUnitID     uint            `json:"scope_unit_id"`
	UnitName        string          `json:"unit_name"`
	UnitCode        string          `json:"unit_code"`
	UnitType        models.UnitType `json:"unit_type"`
}

// Assign grants a role to a user scoped to a unit subtree.
// The exact triple must not already exist; the database uniqueness
// constraint backs the application pre-check so concurrent duplicate
// attempts cannot both succeed.
func Assign(db *gorm.DB, userID uint64, roleID, scopeUnitID uint) (*models.RoleAssignment, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	a := models.RoleAssignment{
		UserID:      userID,
		RoleID:      roleID,
		ScopeUnitID: scopeUnitID,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64

		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			return apperr.NotFoundf("user %d", userID)
		}

		if err := tx.Model(&models.Role{}).Where("id = ?", roleID).Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			return apperr.NotFoundf("role %d", roleID)
		}

		if err := tx.Model(&models.Unit{}).Where("id = ?", scopeUnitID).Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			return apperr.NotFoundf("unit %d", scopeUnitID)
		}

		if err := tx.Model(&models.RoleAssignment{}).
			Where("user_id = ? AND role_id = ? AND scope_unit_id = ?", userID, roleID, scopeUnitID).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return apperr.Conflictf(
				"user %d already holds role %d scoped to unit %d", userID, roleID, scopeUnitID,
			)
		}

		if err := tx.Create(&a).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflictf(
					"user %d already holds role %d scoped to unit %d", userID, roleID, scopeUnitID,
				)
			}
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// Revoke removes an assignment belonging to the given user.
// Revoking an assignment that does not exist, or that belongs to another
// user, fails with a not-found error.
func Revoke(db *gorm.DB, userID uint64, assignmentID uint) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where("id = ? AND user_id = ?", assignmentID, userID).
		Delete(&models.RoleAssignment{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return apperr.NotFoundf("assignment %d for user %d", assignmentID, userID)
	}

	return nil
}

// ListForUser returns all current assignments of a user, each annotated with
// the role and unit display data.
func ListForUser(db *gorm.DB, userID uint64) ([]UserAssignment, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var out []UserAssignment
	err := db.Table("role_assignments").
		Select(`role_assignments.id, role_assignments.user_id, role_assignments.role_id,
			roles.name AS role_name, roles.description AS role_description, roles.level AS role_level,
			role_assignments.scope_unit_id,
			units.name AS unit_name, units.code AS unit_code, units.type AS unit_type`).
		Joins("JOIN roles ON roles.id = role_assignments.role_id").
		Joins("JOIN units ON units.id = role_assignments.scope_unit_id").
		Where("role_assignments.user_id = ?", userID).
		Order("roles.level, units.code").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}

	return out, nil
}
