// Package billing holds the sales invoice aggregate: the invoice header
// plus its detail lines and payment schedule. Invoices reference
// customers, salespeople, articles, taxes and payment methods by their
// natural keys only; the referenced rows are looked up on demand.
package billing

import (
	"time"

	"github.com/erpsync/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Invoice is the invoice header. The natural key is the series, the
// invoice number within the series and the fiscal year suffix.
type Invoice struct {
	shared.SyncTimestamps
	Series          string          `gorm:"column:numserie;type:varchar(10);primaryKey"`
	Number          int             `gorm:"column:numfactura;primaryKey"`
	Suffix          int             `gorm:"column:n;primaryKey"`
	Date            time.Time       `gorm:"column:fecha;type:date;not null"`
	CustomerCode    int             `gorm:"column:codcliente;not null"`
	SalespersonCode *int            `gorm:"column:codvendedor"`
	GrossTotal      decimal.Decimal `gorm:"column:totbruto;type:decimal(12,2);not null"`
	TaxTotal        decimal.Decimal `gorm:"column:totalimpuestos;type:decimal(12,2);not null"`
	DiscountTotal   decimal.Decimal `gorm:"column:totdtocomercial;type:decimal(12,2);not null"`
	NetTotal        decimal.Decimal `gorm:"column:totneto;type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "facturasventa"
}

// EntityName returns the entity name used in error messages
func (Invoice) EntityName() string {
	return "Invoice"
}

// EntityKey returns the natural key of the invoice
func (i *Invoice) EntityKey() shared.Key {
	return shared.Key{"numserie": i.Series, "numfactura": i.Number, "n": i.Suffix}
}

// CustomerKey returns the key of the referenced customer
func (i *Invoice) CustomerKey() shared.Key {
	return shared.Key{"codcliente": i.CustomerCode}
}

// SalespersonKey returns the key of the referenced salesperson, if one
// is assigned
func (i *Invoice) SalespersonKey() (shared.Key, bool) {
	if i.SalespersonCode == nil {
		return nil, false
	}
	return shared.Key{"codvendedor": *i.SalespersonCode}, true
}

// Validate performs shape validation on the header
func (i *Invoice) Validate() error {
	if i.Series == "" {
		return shared.NewValidationError("invoice series is required")
	}
	if len(i.Series) > 10 {
		return shared.NewValidationError("invoice series cannot exceed 10 characters")
	}
	if i.Number <= 0 {
		return shared.NewValidationError("invoice number must be positive, got %d", i.Number)
	}
	if i.Suffix < 0 {
		return shared.NewValidationError("invoice year suffix cannot be negative")
	}
	if i.Date.IsZero() {
		return shared.NewValidationError("invoice date is required")
	}
	if i.CustomerCode <= 0 {
		return shared.NewValidationError("customer code must be positive, got %d", i.CustomerCode)
	}
	if i.SalespersonCode != nil && *i.SalespersonCode <= 0 {
		return shared.NewValidationError("salesperson code must be positive, got %d", *i.SalespersonCode)
	}
	for _, total := range []struct {
		field string
		value decimal.Decimal
	}{
		{"totbruto", i.GrossTotal},
		{"totalimpuestos", i.TaxTotal},
		{"totdtocomercial", i.DiscountTotal},
		{"totneto", i.NetTotal},
	} {
		if total.value.IsNegative() {
			return shared.NewValidationError("%s cannot be negative", total.field)
		}
	}
	return nil
}

// ApplyFrom overwrites every non-key field from the incoming record
func (i *Invoice) ApplyFrom(src *Invoice) {
	i.Date = src.Date
	i.CustomerCode = src.CustomerCode
	i.SalespersonCode = src.SalespersonCode
	i.GrossTotal = src.GrossTotal
	i.TaxTotal = src.TaxTotal
	i.DiscountTotal = src.DiscountTotal
	i.NetTotal = src.NetTotal
}
