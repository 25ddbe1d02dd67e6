package catalog

import (
	"github.com/erpsync/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Tax is a VAT type referenced by articles and invoice lines
type Tax struct {
	shared.SyncTimestamps
	Type        int             `gorm:"column:tipoiva;primaryKey;autoIncrement:false"`
	Description string          `gorm:"column:descripcion;type:varchar(50);not null"`
	Rate        decimal.Decimal `gorm:"column:iva;type:decimal(5,2);not null"`
}

// TableName returns the table name for GORM
func (Tax) TableName() string {
	return "impuestos"
}

// EntityName returns the entity name used in error messages
func (Tax) EntityName() string {
	return "Tax"
}

// EntityKey returns the natural key of the tax type
func (t *Tax) EntityKey() shared.Key {
	return shared.Key{"tipoiva": t.Type}
}

// Validate performs shape validation
func (t *Tax) Validate() error {
	if t.Type <= 0 {
		return shared.NewValidationError("tax type must be positive, got %d", t.Type)
	}
	if err := validateDescription(t.Description, 50); err != nil {
		return err
	}
	return validatePercentage("tax rate", t.Rate)
}

// ApplyFrom overwrites every non-key field from the incoming record
func (t *Tax) ApplyFrom(src *Tax) {
	t.Description = src.Description
	t.Rate = src.Rate
}
