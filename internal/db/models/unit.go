package models

import "time"

// UnitType represents one of the four fixed levels of the organizational
// hierarchy, outermost to innermost: zona, comandancia, compania, puesto.
type UnitType string

const (
	// UnitTypeZona is the root level of the hierarchy. Zonas have no parent.
	UnitTypeZona UnitType = "zona"
	// UnitTypeComandancia is the second level, directly below a zona.
	UnitTypeComandancia UnitType = "comandancia"
	// UnitTypeCompania is the third level, directly below a comandancia.
	UnitTypeCompania UnitType = "compania"
	// UnitTypePuesto is the innermost level. Puestos have no children.
	UnitTypePuesto UnitType = "puesto"
)

// unitTypeChildren maps each unit type to the only type its children may have.
var unitTypeChildren = map[UnitType]UnitType{
	UnitTypeZona:        UnitTypeComandancia,
	UnitTypeComandancia: UnitTypeCompania,
	UnitTypeCompania:    UnitTypePuesto,
}

// unitTypeAbbr holds the code abbreviation per derived-code unit type.
// Zona codes are operator supplied and carry no abbreviation.
var unitTypeAbbr = map[UnitType]string{
	UnitTypeComandancia: "CMD",
	UnitTypeCompania:    "CIA",
	UnitTypePuesto:      "PTO",
}

// Valid reports whether t is one of the four known unit types.
func (t UnitType) Valid() bool {
	switch t {
	case UnitTypeZona, UnitTypeComandancia, UnitTypeCompania, UnitTypePuesto:
		return true
	}

	return false
}

// ChildType returns the unit type that children of t must have.
// The second return value is false for puesto, which has no children.
func (t UnitType) ChildType() (UnitType, bool) {
	child, ok := unitTypeChildren[t]
	return child, ok
}

// Abbr returns the code abbreviation used when deriving codes for units of
// type t. It returns an empty string for zona.
func (t UnitType) Abbr() string {
	return unitTypeAbbr[t]
}

// Unit represents a node in the organizational hierarchy.
// A unit's type must be exactly one level below its parent's type; only
// zonas have a nil parent. Codes of non-zona units are derived from the
// ancestor chain and regenerated whenever the unit or an ancestor moves.
type Unit struct {
	// ID is the unique identifier for the unit.
	ID uint `gorm:"primaryKey"`
	// Name is the display name of the unit.
	Name string `gorm:"size:100;not null"`
	// Code is the unique unit code. Operator supplied for zonas, derived as
	// {parentCode}-{ABBR}{seq} for all descendants.
	Code string `gorm:"unique;size:100;not null"`
	// Type is the hierarchy level of this unit.
	Type UnitType `gorm:"type:varchar(20);not null"`
	// ParentID is the ID of the parent unit; nil only for zonas.
	ParentID *uint `gorm:"index"`
	// Parent is the associated parent unit (loaded via foreign key).
	Parent *Unit `gorm:"foreignKey:ParentID;constraint:OnDelete:RESTRICT"`
	// Active indicates whether the unit is operational.
	Active bool `gorm:"default:true"`
	// Location is a free-text location description.
	Location string `gorm:"size:255"`
	// Description provides a human-readable description of the unit.
	Description string `gorm:"size:255"`
	// CreatedAt is the timestamp when the unit was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the unit was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Unit model.
// This overrides GORM's default pluralized table naming.
func (Unit) TableName() string {
	return "units"
}
