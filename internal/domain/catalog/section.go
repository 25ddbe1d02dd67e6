package catalog

import (
	"github.com/erpsync/backend/internal/domain/shared"
)

// Section is the second level of the merchandise hierarchy. Its composite
// key embeds the parent department number.
type Section struct {
	shared.SyncTimestamps
	DepartmentNumber int    `gorm:"column:numdpto;primaryKey"`
	Number           int    `gorm:"column:numseccion;primaryKey"`
	Description      string `gorm:"column:descripcion;type:varchar(50);not null"`
}

// TableName returns the table name for GORM
func (Section) TableName() string {
	return "secciones"
}

// EntityName returns the entity name used in error messages
func (Section) EntityName() string {
	return "Section"
}

// EntityKey returns the natural key of the section
func (s *Section) EntityKey() shared.Key {
	return shared.Key{"numdpto": s.DepartmentNumber, "numseccion": s.Number}
}

// DepartmentKey returns the key of the parent department
func (s *Section) DepartmentKey() shared.Key {
	return shared.Key{"numdpto": s.DepartmentNumber}
}

// Validate performs shape validation
func (s *Section) Validate() error {
	if s.DepartmentNumber <= 0 {
		return shared.NewValidationError("department number must be positive, got %d", s.DepartmentNumber)
	}
	if s.Number <= 0 {
		return shared.NewValidationError("section number must be positive, got %d", s.Number)
	}
	return validateDescription(s.Description, 50)
}

// ApplyFrom overwrites every non-key field from the incoming record
func (s *Section) ApplyFrom(src *Section) {
	s.Description = src.Description
}
