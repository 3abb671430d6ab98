package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnitTypeValid(t *testing.T) {
	for _, ut := range []UnitType{UnitTypeZona, UnitTypeComandancia, UnitTypeCompania, UnitTypePuesto} {
		assert.True(t, ut.Valid(), "%s should be valid", ut)
	}

	assert.False(t, UnitType("distrito").Valid())
	assert.False(t, UnitType("").Valid())
}

func TestUnitTypeChildType(t *testing.T) {
	testCases := []struct {
		parent UnitType
		child  UnitType
		ok     bool
	}{
		{parent: UnitTypeZona, child: UnitTypeComandancia, ok: true},
		{parent: UnitTypeComandancia, child: UnitTypeCompania, ok: true},
		{parent: UnitTypeCompania, child: UnitTypePuesto, ok: true},
		{parent: UnitTypePuesto, ok: false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.parent), func(t *testing.T) {
			child, ok := tc.parent.ChildType()
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.child, child)
		})
	}
}

func TestUnitTypeAbbr(t *testing.T) {
	assert.Equal(t, "", UnitTypeZona.Abbr(), "zona codes are operator supplied")
	assert.Equal(t, "CMD", UnitTypeComandancia.Abbr())
	assert.Equal(t, "CIA", UnitTypeCompania.Abbr())
	assert.Equal(t, "PTO", UnitTypePuesto.Abbr())
}
