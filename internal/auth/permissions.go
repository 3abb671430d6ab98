package auth

import (
	"sort"

	"github.com/siga-admin/siga/internal/db/models"
)

// Resource identifies a protected resource kind. Resources and actions are
// fixed enumerations; the stringly "resource.action" form only appears at
// the storage and API boundary.
type Resource string

// Action identifies an operation on a resource.
type Action string

// Resource kinds.
const (
	// ResourceUnit covers the organizational unit hierarchy.
	ResourceUnit Resource = "unit"
	// ResourceVehicle covers fleet vehicles.
	ResourceVehicle Resource = "vehicle"
	// ResourceMaintenance covers maintenance types and records.
	ResourceMaintenance Resource = "maintenance"
	// ResourceAppointment covers unit appointments.
	ResourceAppointment Resource = "appointment"
	// ResourceUser covers user accounts.
	ResourceUser Resource = "user"
	// ResourceRole covers roles and their permission sets.
	ResourceRole Resource = "role"
	// ResourceAssignment covers scoped role assignments.
	ResourceAssignment Resource = "assignment"
)

// Action kinds.
const (
	// ActionCreate allows creating a resource.
	ActionCreate Action = "create"
	// ActionRead allows reading a resource and listing it.
	ActionRead Action = "read"
	// ActionUpdate allows editing a resource.
	ActionUpdate Action = "update"
	// ActionDelete allows deleting a resource.
	ActionDelete Action = "delete"
)

// PermissionDef is one catalog entry: a (resource, action) pair with a
// display description. The catalog is static; the permissions table is
// seeded from it at startup and never edited by operators.
type PermissionDef struct {
	Resource    Resource
	Action      Action
	Description string
}

// Name returns the boundary identifier in resource.action format.
func (p PermissionDef) Name() string {
	return string(p.Resource) + "." + string(p.Action)
}

// catalog is the full permission catalog. Keep it grouped by resource;
// Catalog() re-sorts so order never depends on this literal.
var catalog = []PermissionDef{
	{ResourceUnit, ActionCreate, "Create organizational units"},
	{ResourceUnit, ActionRead, "View the unit hierarchy"},
	{ResourceUnit, ActionUpdate, "Edit, rename and move units"},
	{ResourceUnit, ActionDelete, "Delete units"},

	{ResourceVehicle, ActionCreate, "Register vehicles"},
	{ResourceVehicle, ActionRead, "View vehicles"},
	{ResourceVehicle, ActionUpdate, "Edit vehicles and odometers"},
	{ResourceVehicle, ActionDelete, "Remove vehicles"},

	{ResourceMaintenance, ActionCreate, "Register maintenance services"},
	{ResourceMaintenance, ActionRead, "View maintenance history and due states"},
	{ResourceMaintenance, ActionUpdate, "Manage maintenance types"},
	{ResourceMaintenance, ActionDelete, "Remove maintenance types"},

	{ResourceAppointment, ActionCreate, "Schedule appointments"},
	{ResourceAppointment, ActionRead, "View appointments"},
	{ResourceAppointment, ActionUpdate, "Update appointment status"},
	{ResourceAppointment, ActionDelete, "Remove appointments"},

	{ResourceUser, ActionCreate, "Create user accounts"},
	{ResourceUser, ActionRead, "View user accounts"},
	{ResourceUser, ActionUpdate, "Edit user accounts and reset passwords"},
	{ResourceUser, ActionDelete, "Delete user accounts"},

	{ResourceRole, ActionCreate, "Create roles"},
	{ResourceRole, ActionRead, "View roles and their permissions"},
	{ResourceRole, ActionUpdate, "Edit roles and replace permission sets"},
	{ResourceRole, ActionDelete, "Delete roles"},

	{ResourceAssignment, ActionCreate, "Grant scoped role assignments"},
	{ResourceAssignment, ActionRead, "View scoped role assignments"},
	{ResourceAssignment, ActionDelete, "Revoke scoped role assignments"},
}

// Catalog returns all permission definitions in stable order: resource,
// then action.
func Catalog() []PermissionDef {
	out := make([]PermissionDef, len(catalog))
	copy(out, catalog)

	sort.Slice(out, func(i, j int) bool {
		if out[i].Resource != out[j].Resource {
			return out[i].Resource < out[j].Resource
		}

		return out[i].Action < out[j].Action
	})

	return out
}

// Resources returns the distinct resource kinds of the catalog in order.
func Resources() []Resource {
	seen := make(map[Resource]bool)

	var out []Resource

	for _, p := range Catalog() {
		if !seen[p.Resource] {
			seen[p.Resource] = true
			out = append(out, p.Resource)
		}
	}

	return out
}

// GroupByResource returns the catalog grouped by resource, each group in
// action order. The grouping is presentation only and carries no
// authorization logic.
func GroupByResource() map[Resource][]PermissionDef {
	out := make(map[Resource][]PermissionDef)

	for _, p := range Catalog() {
		out[p.Resource] = append(out[p.Resource], p)
	}

	return out
}

// CatalogModels converts the catalog into permission rows for seeding.
func CatalogModels() []models.Permission {
	defs := Catalog()
	out := make([]models.Permission, 0, len(defs))

	for _, d := range defs {
		out = append(out, models.Permission{
			Name:        d.Name(),
			Resource:    string(d.Resource),
			Action:      string(d.Action),
			Description: d.Description,
		})
	}

	return out
}
