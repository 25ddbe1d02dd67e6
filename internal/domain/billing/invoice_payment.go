package billing

import (
	"time"

	"github.com/erpsync/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoicePayment is one entry of an invoice payment schedule, keyed by
// its position within the schedule.
type InvoicePayment struct {
	shared.SyncTimestamps
	Series            string          `gorm:"column:numserie;type:varchar(10);primaryKey"`
	Number            int             `gorm:"column:numfactura;primaryKey"`
	Suffix            int             `gorm:"column:n;primaryKey"`
	Position          int             `gorm:"column:posicion;primaryKey"`
	PaymentMethodCode int             `gorm:"column:codformapago;not null"`
	Amount            decimal.Decimal `gorm:"column:importe;type:decimal(12,2);not null"`
	DueDate           time.Time       `gorm:"column:fechavencimiento;type:date;not null"`
}

// TableName returns the table name for GORM
func (InvoicePayment) TableName() string {
	return "facturasventapag"
}

// EntityName returns the entity name used in error messages
func (InvoicePayment) EntityName() string {
	return "InvoicePayment"
}

// EntityKey returns the natural key of the payment entry
func (p *InvoicePayment) EntityKey() shared.Key {
	return shared.Key{
		"numserie":   p.Series,
		"numfactura": p.Number,
		"n":          p.Suffix,
		"posicion":   p.Position,
	}
}

// InvoiceKey returns the key of the owning invoice header
func (p *InvoicePayment) InvoiceKey() shared.Key {
	return shared.Key{"numserie": p.Series, "numfactura": p.Number, "n": p.Suffix}
}

// PaymentMethodKey returns the key of the referenced payment method
func (p *InvoicePayment) PaymentMethodKey() shared.Key {
	return shared.Key{"codformapago": p.PaymentMethodCode}
}

// Validate performs shape validation on the payment entry
func (p *InvoicePayment) Validate() error {
	if p.Position <= 0 {
		return shared.NewValidationError("payment position must be positive, got %d", p.Position)
	}
	if p.PaymentMethodCode <= 0 {
		return shared.NewValidationError("payment method code must be positive, got %d", p.PaymentMethodCode)
	}
	if p.Amount.IsNegative() {
		return shared.NewValidationError("payment amount cannot be negative")
	}
	if p.DueDate.IsZero() {
		return shared.NewValidationError("payment due date is required")
	}
	return nil
}

// ApplyFrom overwrites every non-key field from the incoming record
func (p *InvoicePayment) ApplyFrom(src *InvoicePayment) {
	p.PaymentMethodCode = src.PaymentMethodCode
	p.Amount = src.Amount
	p.DueDate = src.DueDate
}
