package appointment

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/siga-admin/siga/internal/apperr"
	"github.com/siga-admin/siga/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database with a unit and a vehicle.
func setupTestDB(t *testing.T) (*gorm.DB, *models.Unit, *models.Vehicle) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Unit{}, &models.Vehicle{}, &models.Appointment{})
	require.NoError(t, err, "failed to migrate test database")

	unit := models.Unit{Name: "Zona Norte", Code: "ZNORTE", Type: models.UnitTypeZona, Active: true}
	require.NoError(t, db.Create(&unit).Error)

	vehicle := models.Vehicle{
		Plate: "GC-1234-A", Brand: "Nissan", Model: "Patrol", UnitID: unit.ID, Active: true,
	}
	require.NoError(t, db.Create(&vehicle).Error)

	return db, &unit, &vehicle
}

func TestCreate(t *testing.T) {
	db, unit, vehicle := setupTestDB(t)
	when := time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		name    string
		input   CreateInput
		wantErr error
	}{
		{
			name: "valid without vehicle",
			input: CreateInput{
				Title: "Revista de unidad", UnitID: unit.ID, ScheduledAt: when,
			},
		},
		{
			name: "valid with vehicle",
			input: CreateInput{
				Title: "ITV programada", UnitID: unit.ID,
				VehicleID: &vehicle.ID, ScheduledAt: when,
			},
		},
		{
			name:    "missing title",
			input:   CreateInput{UnitID: unit.ID, ScheduledAt: when},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "missing date",
			input:   CreateInput{Title: "Sin fecha", UnitID: unit.ID},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "unknown unit",
			input:   CreateInput{Title: "Perdida", UnitID: 9999, ScheduledAt: when},
			wantErr: apperr.ErrNotFound,
		},
		{
			name: "unknown vehicle",
			input: CreateInput{
				Title: "Sin vehículo", UnitID: unit.ID,
				VehicleID: func() *uint { id := uint(9999); return &id }(),
				ScheduledAt: when,
			},
			wantErr: apperr.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, err := Create(db, tc.input)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, a)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, models.AppointmentProgramada, a.Status, "new appointments start as programada")
		})
	}
}

func TestSetStatus(t *testing.T) {
	db, unit, _ := setupTestDB(t)

	a, err := Create(db, CreateInput{
		Title: "Revista de unidad", UnitID: unit.ID,
		ScheduledAt: time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	updated, err := SetStatus(db, a.ID, models.AppointmentCompletada)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentCompletada, updated.Status)

	t.Run("unknown status", func(t *testing.T) {
		_, err := SetStatus(db, a.ID, "aplazada")
		require.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("unknown appointment", func(t *testing.T) {
		_, err := SetStatus(db, 9999, models.AppointmentCancelada)
		require.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestListForUnit(t *testing.T) {
	db, unit, _ := setupTestDB(t)

	other := models.Unit{Name: "Zona Sur", Code: "ZSUR", Type: models.UnitTypeZona, Active: true}
	require.NoError(t, db.Create(&other).Error)

	later := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	earlier := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)

	_, err := Create(db, CreateInput{Title: "Segunda", UnitID: unit.ID, ScheduledAt: later})
	require.NoError(t, err)
	_, err = Create(db, CreateInput{Title: "Primera", UnitID: unit.ID, ScheduledAt: earlier})
	require.NoError(t, err)
	_, err = Create(db, CreateInput{Title: "Ajena", UnitID: other.ID, ScheduledAt: earlier})
	require.NoError(t, err)

	got, err := ListForUnit(db, unit.ID)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "Primera", got[0].Title)
	assert.Equal(t, "Segunda", got[1].Title)
}

func TestDelete(t *testing.T) {
	db, unit, _ := setupTestDB(t)

	a, err := Create(db, CreateInput{
		Title: "Revista de unidad", UnitID: unit.ID,
		ScheduledAt: time.Date(2026, 9, 15, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NoError(t, Delete(db, a.ID))

	_, err = Get(db, a.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	require.ErrorIs(t, Delete(db, 9999), apperr.ErrNotFound)
}
