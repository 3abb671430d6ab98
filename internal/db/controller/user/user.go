// Package user provides CRUD operations for user accounts.
package user

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/siga-admin/siga/internal/apperr"
	"github.com/siga-admin/siga/internal/db/models"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// CreateInput carries the fields needed to create a user.
// New accounts are created with MustChangePassword set so the initial
// operator-issued password is rotated on first login.
type CreateInput struct {
	Username   string
	Email      string
	Password   string
	FullName   string
	HomeUnitID uint
}

// UpdateInput carries optional fields for updating a user. The username is
// immutable post-creation and deliberately absent here.
type UpdateInput struct {
	Email    *string
	FullName *string
	Active   *bool
	HomeUnit *uint
}

// Get retrieves a user by ID.
func Get(db *gorm.DB, id uint64) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var u models.User
	if err := db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("user %d", id)
		}
		return nil, err
	}

	return &u, nil
}

// GetByUsername retrieves a user by username.
func GetByUsername(db *gorm.DB, username string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var u models.User
	if err := db.Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("user %q", username)
		}
		return nil, err
	}

	return &u, nil
}

// GetAll retrieves all users ordered by username.
func GetAll(db *gorm.DB) ([]models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var users []models.User
	if err := db.Order("username").Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

// Create validates and inserts a new user with a hashed password.
func Create(db *gorm.DB, in CreateInput) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	in.Username = strings.TrimSpace(in.Username)

	if in.Username == "" {
		return nil, apperr.Validationf("username is required")
	}

	if in.Password == "" {
		return nil, apperr.Validationf("password is required")
	}

	if in.HomeUnitID == 0 {
		return nil, apperr.Validationf("home unit is required")
	}

	u := models.User{
		Active:             true,
		Username:           in.Username,
		Email:              in.Email,
		Password:           models.HashPassword(in.Password),
		FullName:           in.FullName,
		HomeUnitID:         in.HomeUnitID,
		MustChangePassword: true,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64

		if err := tx.Model(&models.Unit{}).Where("id = ?", in.HomeUnitID).Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			return apperr.NotFoundf("unit %d", in.HomeUnitID)
		}

		if err := tx.Model(&models.User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return apperr.Conflictf("username %q already exists", in.Username)
		}

		if err := tx.Create(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflictf("username %q already exists", in.Username)
			}
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// Update changes mutable account fields. The username cannot change.
func Update(db *gorm.DB, id uint64, in UpdateInput) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var updated *models.User

	err := db.Transaction(func(tx *gorm.DB) error {
		u, err := Get(tx, id)
		if err != nil {
			return err
		}

		if in.Email != nil {
			u.Email = *in.Email
		}

		if in.FullName != nil {
			u.FullName = *in.FullName
		}

		if in.Active != nil {
			u.Active = *in.Active
		}

		if in.HomeUnit != nil {
			var count int64
			if err := tx.Model(&models.Unit{}).Where("id = ?", *in.HomeUnit).Count(&count).Error; err != nil {
				return err
			}

			if count == 0 {
				return apperr.NotFoundf("unit %d", *in.HomeUnit)
			}

			u.HomeUnitID = *in.HomeUnit
		}

		if err := tx.Save(u).Error; err != nil {
			return err
		}

		updated = u

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// SetPassword replaces the user's password hash and clears the
// forced-password-change flag.
func SetPassword(db *gorm.DB, id uint64, newPassword string) error {
	if db == nil {
		return ErrDBNil
	}

	if newPassword == "" {
		return apperr.Validationf("password is required")
	}

	result := db.Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
		"password":             models.HashPassword(newPassword),
		"must_change_password": false,
	})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return apperr.NotFoundf("user %d", id)
	}

	return nil
}

// Delete removes a user account. Accounts still holding scoped role
// assignments must be deactivated or have the assignments revoked first.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := Get(tx, id); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.RoleAssignment{}).Where("user_id = ?", id).Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return apperr.Conflictf("user %d has active role assignments", id)
		}

		return tx.Delete(&models.User{}, id).Error
	})
}
