package catalog

import (
	"github.com/erpsync/backend/internal/domain/shared"
)

// ArticleLine is one size/color variant of an article. Each variant has an
// independent lifecycle: the ERP can retire one colour while the rest of
// the article keeps selling.
type ArticleLine struct {
	shared.SyncTimestamps
	ArticleCode  int    `gorm:"column:codarticulo;primaryKey"`
	Size         string `gorm:"column:talla;primaryKey;type:varchar(10)"`
	Color        string `gorm:"column:color;primaryKey;type:varchar(10)"`
	Barcode      string `gorm:"column:codbarras;type:varchar(30);index"`
	Discontinued bool   `gorm:"column:descatalogado;not null;default:false"`
}

// TableName returns the table name for GORM
func (ArticleLine) TableName() string {
	return "articuloslin"
}

// EntityName returns the entity name used in error messages
func (ArticleLine) EntityName() string {
	return "ArticleLine"
}

// EntityKey returns the natural key of the variant
func (l *ArticleLine) EntityKey() shared.Key {
	return shared.Key{"codarticulo": l.ArticleCode, "talla": l.Size, "color": l.Color}
}

// ArticleKey returns the key of the parent article
func (l *ArticleLine) ArticleKey() shared.Key {
	return shared.Key{"codarticulo": l.ArticleCode}
}

// Validate performs shape validation
func (l *ArticleLine) Validate() error {
	if l.ArticleCode <= 0 {
		return shared.NewValidationError("article code must be positive, got %d", l.ArticleCode)
	}
	if err := validateVariant(l.Size, l.Color); err != nil {
		return err
	}
	if len(l.Barcode) > 30 {
		return shared.NewValidationError("barcode cannot exceed 30 characters")
	}
	return nil
}

// ApplyFrom overwrites every non-key field from the incoming record
func (l *ArticleLine) ApplyFrom(src *ArticleLine) {
	l.Barcode = src.Barcode
	l.Discontinued = src.Discontinued
}
