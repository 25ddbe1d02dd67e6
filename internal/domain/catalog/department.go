package catalog

import (
	"github.com/erpsync/backend/internal/domain/shared"
)

// Department is the root of the merchandise hierarchy. Keyed by the ERP's
// own department number.
type Department struct {
	shared.SyncTimestamps
	Number      int    `gorm:"column:numdpto;primaryKey;autoIncrement:false"`
	Description string `gorm:"column:descripcion;type:varchar(50);not null"`
}

// TableName returns the table name for GORM
func (Department) TableName() string {
	return "departamentos"
}

// EntityName returns the entity name used in error messages
func (Department) EntityName() string {
	return "Department"
}

// EntityKey returns the natural key of the department
func (d *Department) EntityKey() shared.Key {
	return shared.Key{"numdpto": d.Number}
}

// Validate performs shape validation
func (d *Department) Validate() error {
	if d.Number <= 0 {
		return shared.NewValidationError("department number must be positive, got %d", d.Number)
	}
	return validateDescription(d.Description, 50)
}

// ApplyFrom overwrites every non-key field from the incoming record
func (d *Department) ApplyFrom(src *Department) {
	d.Description = src.Description
}
