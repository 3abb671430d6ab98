// Package unit provides operations on the organizational unit hierarchy:
// creation with type validation and code derivation, moves with cascading
// code regeneration, guarded deletion and subtree-membership queries.
package unit

import (
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/siga-admin/siga/internal/apperr"
	"github.com/siga-admin/siga/internal/db/models"
)

const (
	// MinZonaCodeLen is the minimum length of an operator-supplied zona code.
	MinZonaCodeLen = 3

	// codeSeqDigits is the width of the per-parent sequence suffix in derived codes.
	codeSeqDigits = 2

	// maxDepth bounds upward walks; the hierarchy is four levels deep.
	maxDepth = 8
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// CreateInput carries the fields needed to create a unit.
type CreateInput struct {
	Name        string
	Code        string // only honored for zonas; derived otherwise
	Type        models.UnitType
	ParentID    *uint
	Location    string
	Description string
}

// UpdateInput carries optional fields for updating a unit. Nil fields are
// left unchanged. Code may only be changed on zonas and cascades code
// regeneration to all descendants.
type UpdateInput struct {
	Name        *string
	Code        *string
	Active      *bool
	Location    *string
	Description *string
}

// Get retrieves a unit by its ID.
func Get(db *gorm.DB, id uint) (*models.Unit, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var u models.Unit
	if err := db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("unit %d", id)
		}
		return nil, err
	}

	return &u, nil
}

// GetAll retrieves all units ordered by code.
func GetAll(db *gorm.DB) ([]models.Unit, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var units []models.Unit
	if err := db.Order("code").Find(&units).Error; err != nil {
		return nil, err
	}

	return units, nil
}

// Children retrieves the direct children of a unit ordered by code.
// The children index is derived on demand; it is never stored on the parent.
func Children(db *gorm.DB, parentID uint) ([]models.Unit, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var units []models.Unit
	if err := db.Where("parent_id = ?", parentID).Order("code").Find(&units).Error; err != nil {
		return nil, err
	}

	return units, nil
}

// Create validates the hierarchy invariant and inserts a new unit.
// A zona requires a nil parent and an operator-supplied code of at least
// three characters; any other type requires a parent exactly one level above
// and receives a derived code {parentCode}-{ABBR}{seq}.
func Create(db *gorm.DB, in CreateInput) (*models.Unit, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if !in.Type.Valid() {
		return nil, apperr.Validationf("unknown unit type %q", in.Type)
	}

	if in.Name == "" {
		return nil, apperr.Validationf("unit name is required")
	}

	u := models.Unit{
		Name:        in.Name,
		Type:        in.Type,
		ParentID:    in.ParentID,
		Active:      true,
		Location:    in.Location,
		Description: in.Description,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if in.Type == models.UnitTypeZona {
			if in.ParentID != nil {
				return apperr.Validationf("a zona cannot have a parent")
			}

			if len(in.Code) < MinZonaCodeLen {
				return apperr.Validationf("zona code must be at least %d characters", MinZonaCodeLen)
			}

			u.Code = in.Code
		} else {
			if in.ParentID == nil {
				return apperr.Validationf("unit of type %q requires a parent", in.Type)
			}

			parent, err := Get(tx, *in.ParentID)
			if err != nil {
				return err
			}

			expected, ok := parent.Type.ChildType()
			if !ok || expected != in.Type {
				return apperr.Validationf(
					"unit type %q cannot be a child of %q", in.Type, parent.Type,
				)
			}

			code, err := nextChildCode(tx, parent, in.Type)
			if err != nil {
				return err
			}

			u.Code = code
		}

		var count int64
		if err := tx.Model(&models.Unit{}).Where("code = ?", u.Code).Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return apperr.Conflictf("unit code %q already exists", u.Code)
		}

		if err := tx.Create(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflictf("unit code %q already exists", u.Code)
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

// Update changes name, activity flag, location, description and (for zonas)
// the code of a unit. A zona code change regenerates the codes of every
// descendant inside the same transaction.
func Update(db *gorm.DB, id uint, in UpdateInput) (*models.Unit, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var updated *models.Unit

	err := db.Transaction(func(tx *gorm.DB) error {
		u, err := Get(tx, id)
		if err != nil {
			return err
		}

		if in.Name != nil {
			if *in.Name == "" {
				return apperr.Validationf("unit name is required")
			}
			u.Name = *in.Name
		}

		if in.Active != nil {
			u.Active = *in.Active
		}

		if in.Location != nil {
			u.Location = *in.Location
		}

		if in.Description != nil {
			u.Description = *in.Description
		}

		codeChanged := false

		if in.Code != nil && *in.Code != u.Code {
			if u.Type != models.UnitTypeZona {
				return apperr.Validationf("only zona codes can be set directly")
			}

			if len(*in.Code) < MinZonaCodeLen {
				return apperr.Validationf("zona code must be at least %d characters", MinZonaCodeLen)
			}

			var count int64
			if err := tx.Model(&models.Unit{}).
				Where("code = ? AND id <> ?", *in.Code, id).Count(&count).Error; err != nil {
				return err
			}

			if count > 0 {
				return apperr.Conflictf("unit code %q already exists", *in.Code)
			}

			u.Code = *in.Code
			codeChanged = true
		}

		if err := tx.Save(u).Error; err != nil {
			return err
		}

		if codeChanged {
			if err := regenerateDescendantCodes(tx, u); err != nil {
				return err
			}
		}

		updated = u

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Move reparents a unit and regenerates the codes of the unit and all of its
// descendants in one atomic transaction. The unit's type must be exactly one
// level below the new parent's type, and the new parent may not lie inside
// the moved unit's own subtree.
func Move(db *gorm.DB, id, newParentID uint) (*models.Unit, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var moved *models.Unit

	err := db.Transaction(func(tx *gorm.DB) error {
		u, err := Get(tx, id)
		if err != nil {
			return err
		}

		if u.Type == models.UnitTypeZona {
			return apperr.Validationf("a zona cannot be moved below another unit")
		}

		parent, err := Get(tx, newParentID)
		if err != nil {
			return err
		}

		expected, ok := parent.Type.ChildType()
		if !ok || expected != u.Type {
			return apperr.Validationf(
				"unit type %q cannot be a child of %q", u.Type, parent.Type,
			)
		}

		inSubtree, err := IsDescendantOrSelf(tx, newParentID, id)
		if err != nil {
			return err
		}

		if inSubtree {
			return apperr.Validationf("cannot move a unit below its own subtree")
		}

		code, err := nextChildCode(tx, parent, u.Type)
		if err != nil {
			return err
		}

		u.ParentID = &parent.ID
		u.Code = code

		if err := tx.Save(u).Error; err != nil {
			return err
		}

		if err := regenerateDescendantCodes(tx, u); err != nil {
			return err
		}

		moved = u

		return nil
	})
	if err != nil {
		return nil, err
	}

	return moved, nil
}

// Delete removes a unit. It is blocked while the unit has children, active
// scoped role assignments or vehicles referencing it, mirroring the
// has-children rule so no scope or fleet reference is ever orphaned.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := Get(tx, id); err != nil {
			return err
		}

		var count int64

		if err := tx.Model(&models.Unit{}).Where("parent_id = ?", id).Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return apperr.Conflictf("unit %d has child units", id)
		}

		if err := tx.Model(&models.RoleAssignment{}).
			Where("scope_unit_id = ?", id).Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return apperr.Conflictf("unit %d has active role assignments", id)
		}

		if err := tx.Model(&models.Vehicle{}).Where("unit_id = ?", id).Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return apperr.Conflictf("unit %d has vehicles assigned", id)
		}

		return tx.Delete(&models.Unit{}, id).Error
	})
}

// IsDescendantOrSelf reports whether candidate lies in ancestor's subtree.
// The check is self-inclusive: a unit is a descendant-or-self of itself.
// Implemented as an upward parent walk; the hierarchy is at most four levels
// deep so the walk is bounded.
func IsDescendantOrSelf(db *gorm.DB, candidateID, ancestorID uint) (bool, error) {
	if db == nil {
		return false, ErrDBNil
	}

	current := candidateID

	for range maxDepth {
		if current == ancestorID {
			return true, nil
		}

		var u models.Unit
		if err := db.Select("id", "parent_id").First(&u, current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, apperr.NotFoundf("unit %d", current)
			}
			return false, err
		}

		if u.ParentID == nil {
			return false, nil
		}

		current = *u.ParentID
	}

	return false, fmt.Errorf("unit %d: parent chain exceeds maximum depth", candidateID)
}

// nextChildCode derives the code for a new child of parent: the parent code,
// the child type abbreviation and a two-digit per-parent sequence starting
// at 01. The sequence continues after the highest one in use.
func nextChildCode(tx *gorm.DB, parent *models.Unit, childType models.UnitType) (string, error) {
	children, err := Children(tx, parent.ID)
	if err != nil {
		return "", err
	}

	maxSeq := 0

	for _, c := range children {
		if seq, ok := codeSeq(c.Code); ok && seq > maxSeq {
			maxSeq = seq
		}
	}

	return fmt.Sprintf("%s-%s%0*d", parent.Code, childType.Abbr(), codeSeqDigits, maxSeq+1), nil
}

// codeSeq extracts the trailing numeric sequence from a derived code.
func codeSeq(code string) (int, bool) {
	i := len(code)
	for i > 0 && code[i-1] >= '0' && code[i-1] <= '9' {
		i--
	}

	if i == len(code) {
		return 0, false
	}

	seq, err := strconv.Atoi(code[i:])
	if err != nil {
		return 0, false
	}

	return seq, true
}

// regenerateDescendantCodes rewrites the codes of every descendant of u so
// each one equals {parentCode}-{ABBR}{seq}, keeping the sequence number the
// descendant already carries. Codes are derived data; only the prefix
// changes when an ancestor is renamed or moved.
func regenerateDescendantCodes(tx *gorm.DB, u *models.Unit) error {
	children, err := Children(tx, u.ID)
	if err != nil {
		return err
	}

	for i := range children {
		child := &children[i]

		seq, ok := codeSeq(child.Code)
		if !ok {
			return fmt.Errorf("unit %d: code %q has no sequence suffix", child.ID, child.Code)
		}

		child.Code = fmt.Sprintf("%s-%s%0*d", u.Code, child.Type.Abbr(), codeSeqDigits, seq)

		if err := tx.Model(&models.Unit{}).Where("id = ?", child.ID).
			Update("code", child.Code).Error; err != nil {
			return err
		}

		if err := regenerateDescendantCodes(tx, child); err != nil {
			return err
		}
	}

	return nil
}

// PathCodes returns the codes of the ancestor chain of a unit from the zona
// down to the unit itself. Used for display breadcrumbs.
func PathCodes(db *gorm.DB, id uint) ([]string, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var codes []string
	current := id

	for range maxDepth {
		u, err := Get(db, current)
		if err != nil {
			return nil, err
		}

		codes = append(codes, u.Code)

		if u.ParentID == nil {
			// reverse into root-first order
			for l, r := 0, len(codes)-1; l < r; l, r = l+1, r-1 {
				codes[l], codes[r] = codes[r], codes[l]
			}

			return codes, nil
		}

		current = *u.ParentID
	}

	return nil, fmt.Errorf("unit %d: parent chain exceeds maximum depth", id)
}
