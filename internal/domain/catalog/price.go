package catalog

import (
	"github.com/erpsync/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Price is the selling price of one article variant under one tariff. It is
// the leaf of two independent hierarchies: the tariff and the article.
type Price struct {
	shared.SyncTimestamps
	TariffID    int             `gorm:"column:idtarifa;primaryKey"`
	ArticleCode int             `gorm:"column:codarticulo;primaryKey"`
	Size        string          `gorm:"column:talla;primaryKey;type:varchar(10)"`
	Color       string          `gorm:"column:color;primaryKey;type:varchar(10)"`
	GrossPrice  decimal.Decimal `gorm:"column:pbruto;type:decimal(18,4);not null"`
	Discount    decimal.Decimal `gorm:"column:dto;type:decimal(5,2);not null"`
	NetPrice    decimal.Decimal `gorm:"column:pneto;type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (Price) TableName() string {
	return "preciosventa"
}

// EntityName returns the entity name used in error messages
func (Price) EntityName() string {
	return "Price"
}

// EntityKey returns the natural key of the price row
func (p *Price) EntityKey() shared.Key {
	return shared.Key{
		"idtarifa":    p.TariffID,
		"codarticulo": p.ArticleCode,
		"talla":       p.Size,
		"color":       p.Color,
	}
}

// TariffKey returns the key of the parent tariff
func (p *Price) TariffKey() shared.Key {
	return shared.Key{"idtarifa": p.TariffID}
}

// ArticleKey returns the key of the parent article
func (p *Price) ArticleKey() shared.Key {
	return shared.Key{"codarticulo": p.ArticleCode}
}

// Validate performs shape validation
func (p *Price) Validate() error {
	if p.TariffID <= 0 {
		return shared.NewValidationError("tariff id must be positive, got %d", p.TariffID)
	}
	if p.ArticleCode <= 0 {
		return shared.NewValidationError("article code must be positive, got %d", p.ArticleCode)
	}
	if err := validateVariant(p.Size, p.Color); err != nil {
		return err
	}
	if err := validateNonNegative("gross price", p.GrossPrice); err != nil {
		return err
	}
	if err := validatePercentage("discount", p.Discount); err != nil {
		return err
	}
	return validateNonNegative("net price", p.NetPrice)
}

// ApplyFrom overwrites every non-key field from the incoming record
func (p *Price) ApplyFrom(src *Price) {
	p.GrossPrice = src.GrossPrice
	p.Discount = src.Discount
	p.NetPrice = src.NetPrice
}
