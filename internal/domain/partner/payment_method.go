package partner

import (
	"github.com/erpsync/backend/internal/domain/shared"
)

// PaymentMethod is a flat reference entity keyed by the ERP payment
// method code
type PaymentMethod struct {
	shared.SyncTimestamps
	Code         int    `gorm:"column:codformapago;primaryKey;autoIncrement:false"`
	Description  string `gorm:"column:descripcion;type:varchar(50);not null"`
	Installments int    `gorm:"column:numvencimientos;not null;default:1"`
}

// TableName returns the table name for GORM
func (PaymentMethod) TableName() string {
	return "formaspago"
}

// EntityName returns the entity name used in error messages
func (PaymentMethod) EntityName() string {
	return "PaymentMethod"
}

// EntityKey returns the natural key of the payment method
func (p *PaymentMethod) EntityKey() shared.Key {
	return shared.Key{"codformapago": p.Code}
}

// Validate performs shape validation
func (p *PaymentMethod) Validate() error {
	if p.Code <= 0 {
		return shared.NewValidationError("payment method code must be positive, got %d", p.Code)
	}
	if p.Description == "" {
		return shared.NewValidationError("description is required")
	}
	if len(p.Description) > 50 {
		return shared.NewValidationError("description cannot exceed 50 characters")
	}
	if p.Installments < 0 {
		return shared.NewValidationError("installments cannot be negative")
	}
	return nil
}

// ApplyFrom overwrites every non-key field from the incoming record
func (p *PaymentMethod) ApplyFrom(src *PaymentMethod) {
	p.Description = src.Description
	p.Installments = src.Installments
}
