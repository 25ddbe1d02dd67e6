package catalog

import (
	"github.com/erpsync/backend/internal/domain/shared"
)

// Article is the root of the article aggregate. It references a mandatory
// tax type and, optionally, a position in the merchandise hierarchy. Parent
// references are plain key fields resolved on demand through the store,
// never live object pointers.
type Article struct {
	shared.SyncTimestamps
	Code              int    `gorm:"column:codarticulo;primaryKey;autoIncrement:false"`
	Description       string `gorm:"column:descripcion;type:varchar(100);not null"`
	TaxType           int    `gorm:"column:tipoimpuesto;not null;index"`
	DepartmentNumber  *int   `gorm:"column:dpto;index"`
	SectionNumber     *int   `gorm:"column:seccion"`
	FamilyNumber      *int   `gorm:"column:familia"`
	SupplierReference string `gorm:"column:refproveedor;type:varchar(30)"`
	Discontinued      bool   `gorm:"column:descatalogado;not null;default:false"`
}

// TableName returns the table name for GORM
func (Article) TableName() string {
	return "articulos"
}

// EntityName returns the entity name used in error messages
func (Article) EntityName() string {
	return "Article"
}

// EntityKey returns the natural key of the article
func (a *Article) EntityKey() shared.Key {
	return shared.Key{"codarticulo": a.Code}
}

// TaxKey returns the key of the mandatory tax reference
func (a *Article) TaxKey() shared.Key {
	return shared.Key{"tipoiva": a.TaxType}
}

// DepartmentKey returns the key of the optional department reference.
// The second return is false when no department is assigned.
func (a *Article) DepartmentKey() (shared.Key, bool) {
	if a.DepartmentNumber == nil {
		return nil, false
	}
	return shared.Key{"numdpto": *a.DepartmentNumber}, true
}

// SectionKey returns the key of the optional section reference. A
// section is only addressable together with its department.
func (a *Article) SectionKey() (shared.Key, bool) {
	if a.DepartmentNumber == nil || a.SectionNumber == nil {
		return nil, false
	}
	return shared.Key{"numdpto": *a.DepartmentNumber, "numseccion": *a.SectionNumber}, true
}

// FamilyKey returns the key of the optional family reference
func (a *Article) FamilyKey() (shared.Key, bool) {
	if a.DepartmentNumber == nil || a.SectionNumber == nil || a.FamilyNumber == nil {
		return nil, false
	}
	return shared.Key{
		"numdpto":    *a.DepartmentNumber,
		"numseccion": *a.SectionNumber,
		"numfamilia": *a.FamilyNumber,
	}, true
}

// Validate performs shape validation
func (a *Article) Validate() error {
	if a.Code <= 0 {
		return shared.NewValidationError("article code must be positive, got %d", a.Code)
	}
	if err := validateDescription(a.Description, 100); err != nil {
		return err
	}
	if a.TaxType <= 0 {
		return shared.NewValidationError("article %d: tax type is required", a.Code)
	}
	if a.DepartmentNumber != nil && *a.DepartmentNumber <= 0 {
		return shared.NewValidationError("article %d: department number must be positive", a.Code)
	}
	if len(a.SupplierReference) > 30 {
		return shared.NewValidationError("supplier reference cannot exceed 30 characters")
	}
	return a.validateHierarchy()
}

// validateHierarchy rejects a section without a department and a family
// without a section; the levels only make sense nested.
func (a *Article) validateHierarchy() error {
	if a.SectionNumber != nil && a.DepartmentNumber == nil {
		return shared.NewValidationError("article %d: section requires a department", a.Code)
	}
	if a.FamilyNumber != nil && a.SectionNumber == nil {
		return shared.NewValidationError("article %d: family requires a section", a.Code)
	}
	return nil
}

// ApplyFrom overwrites every non-key field from the incoming record
func (a *Article) ApplyFrom(src *Article) {
	a.Description = src.Description
	a.TaxType = src.TaxType
	a.DepartmentNumber = src.DepartmentNumber
	a.SectionNumber = src.SectionNumber
	a.FamilyNumber = src.FamilyNumber
	a.SupplierReference = src.SupplierReference
	a.Discontinued = src.Discontinued
}
