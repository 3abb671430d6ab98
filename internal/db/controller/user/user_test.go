package user

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
func setupTestDB(t *testing.T) (*gorm.DB, *models.Unit) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Unit{}, &models.User{}, &models.RoleAssignment{})
	require.NoError(t, err, "failed to migrate test database")

	unit := models.Unit{Name: "Zona Norte", Code: "ZNORTE", Type: models.UnitTypeZona, Active: true}
	require.NoError(t, db.Create(&unit).Error)

	return db, &unit
}

func TestCreate(t *testing.T) {
	db, unit := setupTestDB(t)

	testCases := []struct {
		name    string
		input   CreateInput
		wantErr error
	}{
		{
			name: "valid user",
			input: CreateInput{
				Username: "jperez", Email: "jperez@example.org",
				Password: "initial-secret", FullName: "Juan Pérez", HomeUnitID: unit.ID,
			},
		},
		{
			name: "username is trimmed",
			input: CreateInput{
				Username: "  mgarcia  ", Email: "mgarcia@example.org",
				Password: "initial-secret", HomeUnitID: unit.ID,
			},
		},
		{
			name: "duplicate username",
			input: CreateInput{
				Username: "jperez", Email: "otro@example.org",
				Password: "initial-secret", HomeUnitID: unit.ID,
			},
			wantErr: apperr.ErrConflict,
		},
		{
			name: "missing username",
			input: CreateInput{
				Password: "initial-secret", HomeUnitID: unit.ID,
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "missing password",
			input: CreateInput{
				Username: "sinclave", HomeUnitID: unit.ID,
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "missing home unit",
			input: CreateInput{
				Username: "sinunidad", Password: "initial-secret",
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "unknown home unit",
			input: CreateInput{
				Username: "perdido", Password: "initial-secret", HomeUnitID: 9999,
			},
			wantErr: apperr.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := Create(db, tc.input)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, u)
				return
			}

			require.NoError(t, err)
			assert.True(t, u.Active)
			assert.True(t, u.MustChangePassword, "new accounts must rotate the issued password")
			assert.NotEqual(t, tc.input.Password, u.Password, "password must be stored hashed")
			assert.True(t, u.VerifyPassword(tc.input.Password))
			assert.NotContains(t, u.Username, " ")
		})
	}
}

func TestUpdateCannotTouchUsername(t *testing.T) {
	db, unit := setupTestDB(t)

	u, err := Create(db, CreateInput{
		Username: "jperez", Password: "initial-secret", HomeUnitID: unit.ID,
	})
	require.NoError(t, err)

	email := "nuevo@example.org"
	inactive := false

	updated, err := Update(db, u.ID, UpdateInput{Email: &email, Active: &inactive})
	require.NoError(t, err)

	assert.Equal(t, "jperez", updated.Username)
	assert.Equal(t, email, updated.Email)
	assert.False(t, updated.Active)
}

func TestUpdateHomeUnitMustExist(t *testing.T) {
	db, unit := setupTestDB(t)

	u, err := Create(db, CreateInput{
		Username: "jperez", Password: "initial-secret", HomeUnitID: unit.ID,
	})
	require.NoError(t, err)

	bad := uint(9999)
	_, err = Update(db, u.ID, UpdateInput{HomeUnit: &bad})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	other := models.Unit{Name: "Zona Sur", Code: "ZSUR", Type: models.UnitTypeZona, Active: true}
	require.NoError(t, db.Create(&other).Error)

	updated, err := Update(db, u.ID, UpdateInput{HomeUnit: &other.ID})
	require.NoError(t, err)
	assert.Equal(t, other.ID, updated.HomeUnitID)
}

func TestSetPassword(t *testing.T) {
	db, unit := setupTestDB(t)

	u, err := Create(db, CreateInput{
		Username: "jperez", Password: "initial-secret", HomeUnitID: unit.ID,
	})
	require.NoError(t, err)
	require.True(t, u.MustChangePassword)

	require.NoError(t, SetPassword(db, u.ID, "rotated-secret"))

	got, err := Get(db, u.ID)
	require.NoError(t, err)

	assert.False(t, got.MustChangePassword, "rotating the password clears the flag")
	assert.True(t, got.VerifyPassword("rotated-secret"))
	assert.False(t, got.VerifyPassword("initial-secret"))

	t.Run("empty password", func(t *testing.T) {
		require.ErrorIs(t, SetPassword(db, u.ID, ""), apperr.ErrValidation)
	})

	t.Run("unknown user", func(t *testing.T) {
		require.ErrorIs(t, SetPassword(db, 9999, "whatever-secret"), apperr.ErrNotFound)
	})
}

func TestDeleteBlockedByAssignments(t *testing.T) {
	db, unit := setupTestDB(t)

	u, err := Create(db, CreateInput{
		Username: "jperez", Password: "initial-secret", HomeUnitID: unit.ID,
	})
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.RoleAssignment{
		UserID: u.ID, RoleID: 1, ScopeUnitID: unit.ID,
	}).Error)

	require.ErrorIs(t, Delete(db, u.ID), apperr.ErrConflict)

	require.NoError(t, db.Where("user_id = ?", u.ID).Delete(&models.RoleAssignment{}).Error)
	require.NoError(t, Delete(db, u.ID))

	_, err = Get(db, u.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetByUsername(t *testing.T) {
	db, unit := setupTestDB(t)

	_, err := Create(db, CreateInput{
		Username: "jperez", Password: "initial-secret", HomeUnitID: unit.ID,
	})
	require.NoError(t, err)

	got, err := GetByUsername(db, "jperez")
	require.NoError(t, err)
	assert.Equal(t, "jperez", got.Username)

	_, err = GetByUsername(db, "desconocido")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
