package partner

import (
	"github.com/erpsync/backend/internal/domain/shared"
)

// Salesperson is a flat reference entity keyed by the ERP salesperson code
type Salesperson struct {
	shared.SyncTimestamps
	Code int    `gorm:"column:codvendedor;primaryKey;autoIncrement:false"`
	Name string `gorm:"column:nomvendedor;type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (Salesperson) TableName() string {
	return "vendedores"
}

// EntityName returns the entity name used in error messages
func (Salesperson) EntityName() string {
	return "Salesperson"
}

// EntityKey returns the natural key of the salesperson
func (s *Salesperson) EntityKey() shared.Key {
	return shared.Key{"codvendedor": s.Code}
}

// Validate performs shape validation
func (s *Salesperson) Validate() error {
	if s.Code <= 0 {
		return shared.NewValidationError("salesperson code must be positive, got %d", s.Code)
	}
	if s.Name == "" {
		return shared.NewValidationError("salesperson name is required")
	}
	if len(s.Name) > 100 {
		return shared.NewValidationError("salesperson name cannot exceed 100 characters")
	}
	return nil
}

// ApplyFrom overwrites every non-key field from the incoming record
func (s *Salesperson) ApplyFrom(src *Salesperson) {
	s.Name = src.Name
}
