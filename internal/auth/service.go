package auth

import (
	"fmt"

	"gorm.io/gorm"

	unitctl "github.com/siga-admin/siga/internal/db/controller/unit"
)

// Service answers authorization questions from scoped role assignments.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// EffectivePermission is one (resource, action, scope unit) grant a user
// holds, used by the SPA to gate buttons and routes.
type EffectivePermission struct {
	Resource    Resource `json:"resource"`
	Action      Action   `json:"action"`
	ScopeUnitID uint     `json:"scope_unit_id"`
}

// CheckPermission reports whether the user may perform action on resource
// in the context of the target unit. A grant requires some assignment whose
// role holds the permission AND whose scope unit contains the target unit
// (self-inclusive). Assignments are additive: any single match grants; a
// user with no assignments is denied everything.
func (s *Service) CheckPermission(
	userID uint64, resource Resource, action Action, targetUnitID uint,
) (bool, error) {
	scopes, err := s.scopesGranting(userID, resource, action)
	if err != nil {
		return false, err
	}

	for _, scopeUnitID := range scopes {
		inScope, err := unitctl.IsDescendantOrSelf(s.db, targetUnitID, scopeUnitID)
		if err != nil {
			return false, err
		}

		if inScope {
			return true, nil
		}
	}

	return false, nil
}

// HasPermissionAnywhere reports whether the user holds the permission under
// at least one scope, regardless of target unit. Used for catalog-level
// reads where no single unit gives the operation a context.
func (s *Service) HasPermissionAnywhere(userID uint64, resource Resource, action Action) (bool, error) {
	scopes, err := s.scopesGranting(userID, resource, action)
	if err != nil {
		return false, err
	}

	return len(scopes) > 0, nil
}

// ListEffectivePermissions retrieves every (resource, action, scope unit)
// grant the user holds across all assignments.
func (s *Service) ListEffectivePermissions(userID uint64) ([]EffectivePermission, error) {
	var out []EffectivePermission

	err := s.db.Table("permissions").
		Select(`DISTINCT permissions.resource, permissions.action,
			role_assignments.scope_unit_id`).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN role_assignments ON role_assignments.role_id = role_permissions.role_id").
		Where("role_assignments.user_id = ?", userID).
		Order("permissions.resource, permissions.action, role_assignments.scope_unit_id").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list effective permissions: %w", err)
	}

	return out, nil
}

// scopesGranting returns the scope unit ids of every assignment whose role
// holds the (resource, action) permission.
func (s *Service) scopesGranting(userID uint64, resource Resource, action Action) ([]uint, error) {
	var scopes []uint

	err := s.db.Table("role_assignments").
		Select("DISTINCT role_assignments.scope_unit_id").
		Joins("JOIN role_permissions ON role_permissions.role_id = role_assignments.role_id").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("role_assignments.user_id = ? AND permissions.resource = ? AND permissions.action = ?",
			userID, string(resource), string(action)).
		Pluck("role_assignments.scope_unit_id", &scopes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve permission scopes: %w", err)
	}

	return scopes, nil
}
