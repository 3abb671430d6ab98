package auth

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogIsSortedAndUnique(t *testing.T) {
	catalog := Catalog()
	require.NotEmpty(t, catalog)

	assert.True(t, sort.SliceIsSorted(catalog, func(i, j int) bool {
		if catalog[i].Resource != catalog[j].Resource {
			return catalog[i].Resource < catalog[j].Resource
		}

		return catalog[i].Action < catalog[j].Action
	}))

	seen := make(map[string]bool)
	for _, p := range catalog {
		assert.False(t, seen[p.Name()], "duplicate permission %s", p.Name())
		seen[p.Name()] = true
	}
}

func TestCatalogCoversAllResources(t *testing.T) {
	want := []Resource{
		ResourceUnit, ResourceVehicle, ResourceMaintenance,
		ResourceAppointment, ResourceUser, ResourceRole, ResourceAssignment,
	}

	assert.ElementsMatch(t, want, Resources())
}

func TestAssignmentsHaveNoUpdateAction(t *testing.T) {
	// assignments are granted and revoked, never edited in place
	for _, p := range Catalog() {
		if p.Resource == ResourceAssignment {
			assert.NotEqual(t, ActionUpdate, p.Action)
		}
	}
}

func TestPermissionDefName(t *testing.T) {
	p := PermissionDef{Resource: ResourceUnit, Action: ActionCreate}
	assert.Equal(t, "unit.create", p.Name())
}

func TestCatalogModels(t *testing.T) {
	rows := CatalogModels()
	require.Len(t, rows, len(Catalog()))

	for _, row := range rows {
		assert.Equal(t, row.Resource+"."+row.Action, row.Name)
		assert.NotEmpty(t, row.Description)
	}
}
