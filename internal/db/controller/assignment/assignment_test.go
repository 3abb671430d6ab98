package assignment

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/siga-admin/siga/internal/apperr"
	"github.com/siga-admin/siga/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(
		&models.Unit{}, &models.User{}, &models.Role{}, &models.RoleAssignment{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// fixtures creates a unit, a user and a role and returns them.
func fixtures(t *testing.T, db *gorm.DB) (*models.Unit, *models.User, *models.Role) {
	t.Helper()

	u := models.Unit{Name: "Zona Norte", Code: "ZNORTE", Type: models.UnitTypeZona, Active: true}
	require.NoError(t, db.Create(&u).Error)

	usr := models.User{
		Username: "jperez", Email: "jperez@example.org",
		FullName: "Juan Pérez", HomeUnitID: u.ID, Active: true,
	}
	require.NoError(t, db.Create(&usr).Error)

	r := models.Role{Name: "Gestor", Level: 5}
	require.NoError(t, db.Create(&r).Error)

	return &u, &usr, &r
}

func TestAssign(t *testing.T) {
	db := setupTestDB(t)
	unit, user, role := fixtures(t, db)

	a, err := Assign(db, user.ID, role.ID, unit.ID)
	require.NoError(t, err)

	assert.Equal(t, user.ID, a.UserID)
	assert.Equal(t, role.ID, a.RoleID)
	assert.Equal(t, unit.ID, a.ScopeUnitID)
	assert.NotZero(t, a.ID)
}

func TestAssignMissingReferences(t *testing.T) {
	db := setupTestDB(t)
	unit, user, role := fixtures(t, db)

	testCases := []struct {
		name        string
		userID      uint64
		roleID      uint
		scopeUnitID uint
	}{
		{name: "missing user", userID: 9999, roleID: role.ID, scopeUnitID: unit.ID},
		{name: "missing role", userID: user.ID, roleID: 9999, scopeUnitID: unit.ID},
		{name: "missing unit", userID: user.ID, roleID: role.ID, scopeUnitID: 9999},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Assign(db, tc.userID, tc.roleID, tc.scopeUnitID)
			require.ErrorIs(t, err, apperr.ErrNotFound)
		})
	}
}

func TestAssignDuplicateTriple(t *testing.T) {
	db := setupTestDB(t)
	unit, user, role := fixtures(t, db)

	_, err := Assign(db, user.ID, role.ID, unit.ID)
	require.NoError(t, err)

	_, err = Assign(db, user.ID, role.ID, unit.ID)
	require.ErrorIs(t, err, apperr.ErrConflict)

	// a different scope for the same user and role is a new assignment
	other := models.Unit{Name: "Zona Sur", Code: "ZSUR", Type: models.UnitTypeZona, Active: true}
	require.NoError(t, db.Create(&other).Error)

	_, err = Assign(db, user.ID, role.ID, other.ID)
	require.NoError(t, err)
}

func TestRevoke(t *testing.T) {
	db := setupTestDB(t)
	unit, user, role := fixtures(t, db)

	a, err := Assign(db, user.ID, role.ID, unit.ID)
	require.NoError(t, err)

	require.NoError(t, Revoke(db, user.ID, a.ID))

	var count int64
	require.NoError(t, db.Model(&models.RoleAssignment{}).
		Where("id = ?", a.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRevokeNotFound(t *testing.T) {
	db := setupTestDB(t)
	unit, user, role := fixtures(t, db)

	a, err := Assign(db, user.ID, role.ID, unit.ID)
	require.NoError(t, err)

	t.Run("unknown assignment", func(t *testing.T) {
		require.ErrorIs(t, Revoke(db, user.ID, 9999), apperr.ErrNotFound)
	})

	t.Run("assignment of another user", func(t *testing.T) {
		require.ErrorIs(t, Revoke(db, user.ID+1, a.ID), apperr.ErrNotFound)
	})
}

func TestListForUser(t *testing.T) {
	db := setupTestDB(t)
	unit, user, role := fixtures(t, db)

	child := models.Unit{
		Name: "Comandancia 01", Code: "ZNORTE-CMD01",
		Type: models.UnitTypeComandancia, ParentID: &unit.ID, Active: true,
	}
	require.NoError(t, db.Create(&child).Error)

	_, err := Assign(db, user.ID, role.ID, unit.ID)
	require.NoError(t, err)
	_, err = Assign(db, user.ID, role.ID, child.ID)
	require.NoError(t, err)

	got, err := ListForUser(db, user.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	for _, a := range got {
		assert.Equal(t, user.ID, a.UserID)
		assert.Equal(t, "Gestor", a.RoleName)
		assert.Equal(t, 5, a.RoleLevel)
		assert.NotEmpty(t, a.UnitCode)
		assert.NotEmpty(t, a.UnitName)
	}

	t.Run("user without assignments", func(t *testing.T) {
		got, err := ListForUser(db, 9999)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestNilDB(t *testing.T) {
	_, err := Assign(nil, 1, 1, 1)
	require.ErrorIs(t, err, ErrDBNil)

	require.ErrorIs(t, Revoke(nil, 1, 1), ErrDBNil)

	_, err = ListForUser(nil, 1)
	require.ErrorIs(t, err, ErrDBNil)
}
