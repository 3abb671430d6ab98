// Package role provides CRUD operations for roles and their permission sets.
package role

import (
	"errors"

	"gorm.io/gorm"

	"github.com/siga-admin/siga/internal/apperr"
	"github.com/siga-admin/siga/internal/db/models"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// CreateInput carries the fields needed to create a role.
type CreateInput struct {
	Name          string
	Description   string
	Level         int
	PermissionIDs []uint
}

// UpdateInput carries optional fields for updating a role. Nil fields are
// left unchanged. A non-nil PermissionIDs REPLACES the whole permission set;
// the set is never merged or diffed.
type UpdateInput struct {
	Name          *string
	Description   *string
	Level         *int
	PermissionIDs *[]uint
}

// Get retrieves a role by its ID.
func Get(db *gorm.DB, id uint) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var r models.Role
	if err := db.First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("role %d", id)
		}
		return nil, err
	}

	return &r, nil
}

// GetAll retrieves all roles ordered by level (most authority first) then name.
func GetAll(db *gorm.DB) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var roles []models.Role
	if err := db.Order("level, name").Find(&roles).Error; err != nil {
		return nil, err
	}

	return roles, nil
}

// Create validates and inserts a new role with its permission set.
// Duplicate permission ids in the input are ignored.
func Create(db *gorm.DB, in CreateInput) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := validate(in.Name, in.Level); err != nil {
		return nil, err
	}

	r := models.Role{
		Name:        in.Name,
		Description: in.Description,
		Level:       in.Level,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Role{}).Where("name = ?", in.Name).Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return apperr.Conflictf("role name %q already exists", in.Name)
		}

		if err := tx.Create(&r).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflictf("role name %q already exists", in.Name)
			}
			return err
		}

		return replacePermissions(tx, r.ID, in.PermissionIDs)
	})
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// Update changes role fields; a supplied permission set replaces the
// previous one wholesale.
func Update(db *gorm.DB, id uint, in UpdateInput) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var updated *models.Role

	err := db.Transaction(func(tx *gorm.DB) error {
		r, err := Get(tx, id)
		if err != nil {
			return err
		}

		name := r.Name
		if in.Name != nil {
			name = *in.Name
		}

		level := r.Level
		if in.Level != nil {
			level = *in.Level
		}

		if err := validate(name, level); err != nil {
			return err
		}

		if in.Name != nil && *in.Name != r.Name {
			var count int64
			if err := tx.Model(&models.Role{}).
				Where("name = ? AND id <> ?", *in.Name, id).Count(&count).Error; err != nil {
				return err
			}

			if count > 0 {
				return apperr.Conflictf("role name %q already exists", *in.Name)
			}
		}

		r.Name = name
		r.Level = level

		if in.Description != nil {
			r.Description = *in.Description
		}

		if err := tx.Save(r).Error; err != nil {
			return err
		}

		if in.PermissionIDs != nil {
			if err := replacePermissions(tx, r.ID, *in.PermissionIDs); err != nil {
				return err
			}
		}

		updated = r

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes a role. It is blocked while any scoped role assignment
// references the role.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := Get(tx, id); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.RoleAssignment{}).
			Where("role_id = ?", id).Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return apperr.Conflictf("role %d has active assignments", id)
		}

		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Role{}, id).Error
	})
}

// Permissions retrieves the permission set of a role in stable order
// (resource, then action).
func Permissions(db *gorm.DB, roleID uint) ([]models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var perms []models.Permission
	err := db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Order("permissions.resource, permissions.action").
		Find(&perms).Error
	if err != nil {
		return nil, err
	}

	return perms, nil
}

// HasPermission reports whether the role holds the (resource, action) pair.
func HasPermission(db *gorm.DB, roleID uint, resource, action string) (bool, error) {
	if db == nil {
		return false, ErrDBNil
	}

	var count int64
	err := db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ? AND permissions.resource = ? AND permissions.action = ?",
			roleID, resource, action).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// validate checks the role name and hierarchy level invariants.
func validate(name string, level int) error {
	if len(name) < models.RoleNameMinLen {
		return apperr.Validationf("role name must be at least %d characters", models.RoleNameMinLen)
	}

	if level < models.RoleLevelHighest || level > models.RoleLevelLowest {
		return apperr.Validationf(
			"role level must be between %d and %d", models.RoleLevelHighest, models.RoleLevelLowest,
		)
	}

	return nil
}

// replacePermissions swaps the role's permission set for exactly the given
// ids: delete everything, insert the deduplicated new set. Unknown ids are
// rejected so a role can never point at a permission outside the catalog.
func replacePermissions(tx *gorm.DB, roleID uint, permissionIDs []uint) error {
	if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
		return err
	}

	seen := make(map[uint]bool, len(permissionIDs))
	unique := make([]uint, 0, len(permissionIDs))

	for _, pid := range permissionIDs {
		if !seen[pid] {
			seen[pid] = true
			unique = append(unique, pid)
		}
	}

	if len(unique) == 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&models.Permission{}).Where("id IN ?", unique).Count(&count).Error; err != nil {
		return err
	}

	if int(count) != len(unique) {
		return apperr.Validationf("permission set contains unknown permission ids")
	}

	for _, pid := range unique {
		if err := tx.Create(&models.RolePermission{RoleID: roleID, PermissionID: pid}).Error; err != nil {
			return err
		}
	}

	return nil
}
