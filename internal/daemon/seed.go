package daemon

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/siga-admin/siga/internal/auth"
	"github.com/siga-admin/siga/internal/config"
	"github.com/siga-admin/siga/internal/db/models"
)

// seed synchronizes the permission catalog and, on an empty database,
// creates a root zona, an administrator role with every permission and an
// administrator account whose assignment is scoped to the zona. Permission
// sync runs on every start so catalog additions reach existing databases.
func seed(_ *config.Config, db *gorm.DB) {
	syncPermissions(db)

	var count int64

	db.Model(&models.Unit{}).Count(&count)
	if count > 0 {
		return
	}

	zona := models.Unit{
		Name:   "Zona General",
		Code:   "ZONA01",
		Type:   models.UnitTypeZona,
		Active: true,
	}

	if err := db.Create(&zona).Error; err != nil {
		log.Error().Err(err).Msg("failed to seed root zona")
		return
	}

	role := models.Role{
		Name:        "Administrador",
		Description: "Acceso completo a todos los recursos",
		Level:       models.RoleLevelHighest,
	}

	if err := db.Create(&role).Error; err != nil {
		log.Error().Err(err).Msg("failed to seed admin role")
		return
	}

	var perms []models.Permission
	if err := db.Find(&perms).Error; err != nil {
		log.Error().Err(err).Msg("failed to load permissions for seeding")
		return
	}

	for _, p := range perms {
		if err := db.Create(&models.RolePermission{
			RoleID:       role.ID,
			PermissionID: p.ID,
		}).Error; err != nil {
			log.Error().Err(err).Msg("failed to seed admin role permission")
			return
		}
	}

	admin := models.User{
		Username:           "admin",
		Email:              "admin@localhost",
		Password:           models.HashPassword("changeme"),
		FullName:           "Administrador",
		HomeUnitID:         zona.ID,
		Active:             true,
		MustChangePassword: true,
	}

	if err := db.Create(&admin).Error; err != nil {
		log.Error().Err(err).Msg("failed to seed admin user")
		return
	}

	if err := db.Create(&models.RoleAssignment{
		UserID:      admin.ID,
		RoleID:      role.ID,
		ScopeUnitID: zona.ID,
	}).Error; err != nil {
		log.Error().Err(err).Msg("failed to seed admin assignment")
		return
	}

	log.Info().Str("username", admin.Username).Str("zona", zona.Code).
		Msg("seeded initial administrator; the password must be changed on first login")
}

// syncPermissions inserts catalog permissions missing from the database.
// Existing rows are left untouched so descriptions edited in place survive.
func syncPermissions(db *gorm.DB) {
	for _, p := range auth.CatalogModels() {
		var count int64

		if err := db.Model(&models.Permission{}).
			Where("resource = ? AND action = ?", p.Resource, p.Action).
			Count(&count).Error; err != nil {
			log.Error().Err(err).Str("permission", p.Name).Msg("failed to check permission")
			continue
		}

		if count == 0 {
			if err := db.Create(&p).Error; err != nil {
				log.Error().Err(err).Str("permission", p.Name).Msg("failed to seed permission")
			}
		}
	}
}
