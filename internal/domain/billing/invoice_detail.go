package billing

import (
	"github.com/erpsync/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceDetail is a single invoice line. Lines carry a frozen copy of
// the article description and unit price as sold, so later catalog
// changes never rewrite past invoices.
type InvoiceDetail struct {
	shared.SyncTimestamps
	Series      string          `gorm:"column:numserie;type:varchar(10);primaryKey"`
	Number      int             `gorm:"column:numfactura;primaryKey"`
	Suffix      int             `gorm:"column:n;primaryKey"`
	LineNumber  int             `gorm:"column:numlinea;primaryKey"`
	ArticleCode int             `gorm:"column:codarticulo;not null"`
	Size        string          `gorm:"column:talla;type:varchar(10);not null"`
	Color       string          `gorm:"column:color;type:varchar(10);not null"`
	Description string          `gorm:"column:descripcion;type:varchar(100);not null"`
	Units       decimal.Decimal `gorm:"column:unidades;type:decimal(12,3);not null"`
	Price       decimal.Decimal `gorm:"column:precio;type:decimal(12,4);not null"`
	Discount    decimal.Decimal `gorm:"column:dto;type:decimal(5,2);not null"`
	TaxType     int             `gorm:"column:tipoimpuesto;not null"`
	LineTotal   decimal.Decimal `gorm:"column:totallinea;type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (InvoiceDetail) TableName() string {
	return "facturasventalin"
}

// EntityName returns the entity name used in error messages
func (InvoiceDetail) EntityName() string {
	return "InvoiceDetail"
}

// EntityKey returns the natural key of the invoice line
func (d *InvoiceDetail) EntityKey() shared.Key {
	return shared.Key{
		"numserie":   d.Series,
		"numfactura": d.Number,
		"n":          d.Suffix,
		"numlinea":   d.LineNumber,
	}
}

// InvoiceKey returns the key of the owning invoice header
func (d *InvoiceDetail) InvoiceKey() shared.Key {
	return shared.Key{"numserie": d.Series, "numfactura": d.Number, "n": d.Suffix}
}

// ArticleKey returns the key of the referenced article
func (d *InvoiceDetail) ArticleKey() shared.Key {
	return shared.Key{"codarticulo": d.ArticleCode}
}

// TaxKey returns the key of the referenced tax rate
func (d *InvoiceDetail) TaxKey() shared.Key {
	return shared.Key{"tipoiva": d.TaxType}
}

// Validate performs shape validation on the line
func (d *InvoiceDetail) Validate() error {
	if d.LineNumber <= 0 {
		return shared.NewValidationError("line number must be positive, got %d", d.LineNumber)
	}
	if d.ArticleCode <= 0 {
		return shared.NewValidationError("article code must be positive, got %d", d.ArticleCode)
	}
	if len(d.Size) > 10 {
		return shared.NewValidationError("size cannot exceed 10 characters")
	}
	if len(d.Color) > 10 {
		return shared.NewValidationError("color cannot exceed 10 characters")
	}
	if d.Units.IsZero() {
		return shared.NewValidationError("units cannot be zero")
	}
	if d.Price.IsNegative() {
		return shared.NewValidationError("price cannot be negative")
	}
	if d.Discount.IsNegative() || d.Discount.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewValidationError("discount must be between 0 and 100, got %s", d.Discount)
	}
	if d.TaxType <= 0 {
		return shared.NewValidationError("tax type must be positive, got %d", d.TaxType)
	}
	return nil
}

// ApplyFrom overwrites every non-key field from the incoming record
func (d *InvoiceDetail) ApplyFrom(src *InvoiceDetail) {
	d.ArticleCode = src.ArticleCode
	d.Size = src.Size
	d.Color = src.Color
	d.Description = src.Description
	d.Units = src.Units
	d.Price = src.Price
	d.Discount = src.Discount
	d.TaxType = src.TaxType
	d.LineTotal = src.LineTotal
}

// ComputeLineTotal returns units by price with the line discount
// applied, rounded half up to two decimals. Prices are tax inclusive.
func (d *InvoiceDetail) ComputeLineTotal() decimal.Decimal {
	gross := d.Units.Mul(d.Price)
	factor := decimal.NewFromInt(100).Sub(d.Discount).Div(decimal.NewFromInt(100))
	return gross.Mul(factor).Round(2)
}
