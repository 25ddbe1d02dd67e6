package catalog

import (
	"github.com/erpsync/backend/internal/domain/shared"
)

// Family is the third level of the merchandise hierarchy; its composite key
// embeds both the grandparent department and the parent section.
type Family struct {
	shared.SyncTimestamps
	DepartmentNumber int    `gorm:"column:numdpto;primaryKey"`
	SectionNumber    int    `gorm:"column:numseccion;primaryKey"`
	Number           int    `gorm:"column:numfamilia;primaryKey"`
	Description      string `gorm:"column:descripcion;type:varchar(50);not null"`
}

// TableName returns the table name for GORM
func (Family) TableName() string {
	return "familias"
}

// EntityName returns the entity name used in error messages
func (Family) EntityName() string {
	return "Family"
}

// EntityKey returns the natural key of the family
func (f *Family) EntityKey() shared.Key {
	return shared.Key{"numdpto": f.DepartmentNumber, "numseccion": f.SectionNumber, "numfamilia": f.Number}
}

// SectionKey returns the key of the parent section
func (f *Family) SectionKey() shared.Key {
	return shared.Key{"numdpto": f.DepartmentNumber, "numseccion": f.SectionNumber}
}

// Validate performs shape validation
func (f *Family) Validate() error {
	if f.DepartmentNumber <= 0 {
		return shared.NewValidationError("department number must be positive, got %d", f.DepartmentNumber)
	}
	if f.SectionNumber <= 0 {
		return shared.NewValidationError("section number must be positive, got %d", f.SectionNumber)
	}
	if f.Number <= 0 {
		return shared.NewValidationError("family number must be positive, got %d", f.Number)
	}
	return validateDescription(f.Description, 50)
}

// ApplyFrom overwrites every non-key field from the incoming record
func (f *Family) ApplyFrom(src *Family) {
	f.Description = src.Description
}
