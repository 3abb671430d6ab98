package unit

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

	err = db.AutoMigrate(&models.Unit{}, &models.RoleAssignment{}, &models.Vehicle{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedZona creates a zona with the given code.
func seedZona(t *testing.T, db *gorm.DB, code string) *models.Unit {
	t.Helper()

	z, err := Create(db, CreateInput{
		Name: "Zona " + code,
		Code: code,
		Type: models.UnitTypeZona,
	})
	require.NoError(t, err)

	return z
}

// seedChild creates a child unit below the given parent.
func seedChild(t *testing.T, db *gorm.DB, parent *models.Unit, typ models.UnitType) *models.Unit {
	t.Helper()

	u, err := Create(db, CreateInput{
		Name:     "Unit below " + parent.Code,
		Type:     typ,
		ParentID: &parent.ID,
	})
	require.NoError(t, err)

	return u
}

func TestCreateZona(t *testing.T) {
	db := setupTestDB(t)

	testCases := []struct {
		name    string
		input   CreateInput
		wantErr error
	}{
		{
			name:  "valid zona",
			input: CreateInput{Name: "Zona Norte", Code: "ZNORTE", Type: models.UnitTypeZona},
		},
		{
			name:    "code too short",
			input:   CreateInput{Name: "Zona Sur", Code: "ZS", Type: models.UnitTypeZona},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "missing name",
			input:   CreateInput{Code: "ZESTE", Type: models.UnitTypeZona},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "unknown type",
			input:   CreateInput{Name: "X", Code: "XXX", Type: "distrito"},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "duplicate code",
			input:   CreateInput{Name: "Zona Norte Bis", Code: "ZNORTE", Type: models.UnitTypeZona},
			wantErr: apperr.ErrConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := Create(db, tc.input)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, u)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.input.Code, u.Code)
				assert.Nil(t, u.ParentID)
				assert.True(t, u.Active)
			}
		})
	}
}

func TestCreateZonaRejectsParent(t *testing.T) {
	db := setupTestDB(t)
	z := seedZona(t, db, "ZNORTE")

	_, err := Create(db, CreateInput{
		Name:     "Zona anidada",
		Code:     "ZSUB",
		Type:     models.UnitTypeZona,
		ParentID: &z.ID,
	})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateChildTypeInvariant(t *testing.T) {
	db := setupTestDB(t)
	zona := seedZona(t, db, "ZNORTE")
	cmd := seedChild(t, db, zona, models.UnitTypeComandancia)

	testCases := []struct {
		name     string
		typ      models.UnitType
		parentID *uint
		wantErr  error
	}{
		{name: "comandancia below zona", typ: models.UnitTypeComandancia, parentID: &zona.ID},
		{name: "compania below comandancia", typ: models.UnitTypeCompania, parentID: &cmd.ID},
		{
			name:     "compania below zona skips a level",
			typ:      models.UnitTypeCompania,
			parentID: &zona.ID,
			wantErr:  apperr.ErrValidation,
		},
		{
			name:     "puesto below zona skips two levels",
			typ:      models.UnitTypePuesto,
			parentID: &zona.ID,
			wantErr:  apperr.ErrValidation,
		},
		{
			name:    "comandancia without parent",
			typ:     models.UnitTypeComandancia,
			wantErr: apperr.ErrValidation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Create(db, CreateInput{Name: "X", Type: tc.typ, ParentID: tc.parentID})

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCreateDerivesSequentialCodes(t *testing.T) {
	db := setupTestDB(t)
	zona := seedZona(t, db, "ZNORTE")

	first := seedChild(t, db, zona, models.UnitTypeComandancia)
	second := seedChild(t, db, zona, models.UnitTypeComandancia)

	assert.Equal(t, "ZNORTE-CMD01", first.Code)
	assert.Equal(t, "ZNORTE-CMD02", second.Code)

	cia := seedChild(t, db, first, models.UnitTypeCompania)
	assert.Equal(t, "ZNORTE-CMD01-CIA01", cia.Code)

	pto := seedChild(t, db, cia, models.UnitTypePuesto)
	assert.Equal(t, "ZNORTE-CMD01-CIA01-PTO01", pto.Code)
}

func TestCreateSequenceContinuesAfterHighest(t *testing.T) {
	db := setupTestDB(t)
	zona := seedZona(t, db, "ZNORTE")

	first := seedChild(t, db, zona, models.UnitTypeComandancia)
	seedChild(t, db, zona, models.UnitTypeComandancia)

	// deleting a lower sequence must not cause reuse of the higher one
	require.NoError(t, Delete(db, first.ID))

	third := seedChild(t, db, zona, models.UnitTypeComandancia)
	assert.Equal(t, "ZNORTE-CMD03", third.Code)
}

func TestUpdateZonaCodeCascades(t *testing.T) {
	db := setupTestDB(t)
	zona := seedZona(t, db, "ZNORTE")
	cmd := seedChild(t, db, zona, models.UnitTypeComandancia)
	cia := seedChild(t, db, cmd, models.UnitTypeCompania)
	pto := seedChild(t, db, cia, models.UnitTypePuesto)

	newCode := "ZCENTRO"
	_, err := Update(db, zona.ID, UpdateInput{Code: &newCode})
	require.NoError(t, err)

	for id, want := range map[uint]string{
		cmd.ID: "ZCENTRO-CMD01",
		cia.ID: "ZCENTRO-CMD01-CIA01",
		pto.ID: "ZCENTRO-CMD01-CIA01-PTO01",
	} {
		u, err := Get(db, id)
		require.NoError(t, err)
		assert.Equal(t, want, u.Code)
	}
}

func TestUpdateRejectsCodeOnDerivedUnits(t *testing.T) {
	db := setupTestDB(t)
	zona := seedZona(t, db, "ZNORTE")
	cmd := seedChild(t, db, zona, models.UnitTypeComandancia)

	code := "CUSTOM"
	_, err := Update(db, cmd.ID, UpdateInput{Code: &code})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestMove(t *testing.T) {
	db := setupTestDB(t)
	zona := seedZona(t, db, "ZNORTE")
	cmd1 := seedChild(t, db, zona, models.UnitTypeComandancia)
	cmd2 := seedChild(t, db, zona, models.UnitTypeComandancia)
	cia := seedChild(t, db, cmd1, models.UnitTypeCompania)
	pto := seedChild(t, db, cia, models.UnitTypePuesto)

	moved, err := Move(db, cia.ID, cmd2.ID)
	require.NoError(t, err)

	assert.Equal(t, cmd2.ID, *moved.ParentID)
	assert.Equal(t, "ZNORTE-CMD02-CIA01", moved.Code)

	// descendant codes follow the new prefix, keeping their own sequence
	got, err := Get(db, pto.ID)
	require.NoError(t, err)
	assert.Equal(t, "ZNORTE-CMD02-CIA01-PTO01", got.Code)
}

func TestMoveRejectsWrongLevel(t *testing.T) {
	db := setupTestDB(t)
	zona := seedZona(t, db, "ZNORTE")
	cmd := seedChild(t, db, zona, models.UnitTypeComandancia)
	cia := seedChild(t, db, cmd, models.UnitTypeCompania)

	// a compania cannot hang directly below a zona
	_, err := Move(db, cia.ID, zona.ID)
	require.ErrorIs(t, err, apperr.ErrValidation)

	// a zona cannot be moved at all
	_, err = Move(db, zona.ID, cmd.ID)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestMoveRejectsOwnSubtree(t *testing.T) {
	db := setupTestDB(t)
	zona := seedZona(t, db, "ZNORTE")
	cmd := seedChild(t, db, zona, models.UnitTypeComandancia)
	cia := seedChild(t, db, cmd, models.UnitTypeCompania)

	_, err := Move(db, cmd.ID, cia.ID)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDeleteGuards(t *testing.T) {
	db := setupTestDB(t)
	zona := seedZona(t, db, "ZNORTE")
	cmd := seedChild(t, db, zona, models.UnitTypeComandancia)

	t.Run("blocked by children", func(t *testing.T) {
		err := Delete(db, zona.ID)
		require.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("blocked by assignments", func(t *testing.T) {
		require.NoError(t, db.Create(&models.RoleAssignment{
			UserID: 1, RoleID: 1, ScopeUnitID: cmd.ID,
		}).Error)

		err := Delete(db, cmd.ID)
		require.ErrorIs(t, err, apperr.ErrConflict)

		require.NoError(t, db.Where("scope_unit_id = ?", cmd.ID).
			Delete(&models.RoleAssignment{}).Error)
	})

	t.Run("blocked by vehicles", func(t *testing.T) {
		require.NoError(t, db.Create(&models.Vehicle{
			Plate: "GC-1234-A", Brand: "Nissan", Model: "Patrol", UnitID: cmd.ID, Active: true,
		}).Error)

		err := Delete(db, cmd.ID)
		require.ErrorIs(t, err, apperr.ErrConflict)

		require.NoError(t, db.Where("unit_id = ?", cmd.ID).Delete(&models.Vehicle{}).Error)
	})

	t.Run("leaf deletes cleanly", func(t *testing.T) {
		require.NoError(t, Delete(db, cmd.ID))

		_, err := Get(db, cmd.ID)
		require.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("missing unit", func(t *testing.T) {
		err := Delete(db, 9999)
		require.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestIsDescendantOrSelf(t *testing.T) {
	db := setupTestDB(t)
	zona := seedZona(t, db, "ZNORTE")
	cmd := seedChild(t, db, zona, models.UnitTypeComandancia)
	cia := seedChild(t, db, cmd, models.UnitTypeCompania)
	pto := seedChild(t, db, cia, models.UnitTypePuesto)

	otherZona := seedZona(t, db, "ZSUR")
	otherCmd := seedChild(t, db, otherZona, models.UnitTypeComandancia)

	testCases := []struct {
		name      string
		candidate uint
		ancestor  uint
		want      bool
	}{
		{name: "self", candidate: cmd.ID, ancestor: cmd.ID, want: true},
		{name: "direct child", candidate: cmd.ID, ancestor: zona.ID, want: true},
		{name: "deep descendant", candidate: pto.ID, ancestor: zona.ID, want: true},
		{name: "parent is not descendant", candidate: zona.ID, ancestor: cmd.ID, want: false},
		{name: "sibling tree", candidate: otherCmd.ID, ancestor: zona.ID, want: false},
		{name: "unrelated zonas", candidate: otherZona.ID, ancestor: zona.ID, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := IsDescendantOrSelf(db, tc.candidate, tc.ancestor)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("missing candidate", func(t *testing.T) {
		_, err := IsDescendantOrSelf(db, 9999, zona.ID)
		require.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestPathCodes(t *testing.T) {
	db := setupTestDB(t)
	zona := seedZona(t, db, "ZNORTE")
	cmd := seedChild(t, db, zona, models.UnitTypeComandancia)
	cia := seedChild(t, db, cmd, models.UnitTypeCompania)

	codes, err := PathCodes(db, cia.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"ZNORTE", "ZNORTE-CMD01", "ZNORTE-CMD01-CIA01"}, codes)
}

func TestChildrenOrdering(t *testing.T) {
	db := setupTestDB(t)
	zona := seedZona(t, db, "ZNORTE")
	seedChild(t, db, zona, models.UnitTypeComandancia)
	seedChild(t, db, zona, models.UnitTypeComandancia)

	children, err := Children(db, zona.ID)
	require.NoError(t, err)

	require.Len(t, children, 2)
	assert.Equal(t, "ZNORTE-CMD01", children[0].Code)
	assert.Equal(t, "ZNORTE-CMD02", children[1].Code)
}

func TestNilDB(t *testing.T) {
	_, err := Get(nil, 1)
	require.ErrorIs(t, err, ErrDBNil)

	_, err = Create(nil, CreateInput{})
	require.ErrorIs(t, err, ErrDBNil)

	require.ErrorIs(t, Delete(nil, 1), ErrDBNil)
}
