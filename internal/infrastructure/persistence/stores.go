package persistence

import (
	"github.com/erpsync/backend/internal/domain/billing"
	"github.com/erpsync/backend/internal/domain/catalog"
	"github.com/erpsync/backend/internal/domain/partner"
	"github.com/erpsync/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// Per-entity store constructors. Sort whitelists cover the natural key
// columns plus the engine-owned timestamps.

// NewDepartmentStore creates the departamentos store
func NewDepartmentStore(db *gorm.DB) shared.EntityStore[catalog.Department] {
	return NewGormStore(db,
		WithSortFields[catalog.Department]("numdpto", "numdpto", "descripcion", "updated_at"),
		WithSearchColumn[catalog.Department]("descripcion"))
}

// NewSectionStore creates the secciones store
func NewSectionStore(db *gorm.DB) shared.EntityStore[catalog.Section] {
	return NewGormStore(db,
		WithSortFields[catalog.Section]("numdpto", "numdpto", "numseccion", "descripcion", "updated_at"),
		WithSearchColumn[catalog.Section]("descripcion"))
}

// NewFamilyStore creates the familias store
func NewFamilyStore(db *gorm.DB) shared.EntityStore[catalog.Family] {
	return NewGormStore(db,
		WithSortFields[catalog.Family]("numdpto", "numdpto", "numseccion", "numfamilia", "descripcion", "updated_at"),
		WithSearchColumn[catalog.Family]("descripcion"))
}

// NewTaxStore creates the impuestos store
func NewTaxStore(db *gorm.DB) shared.EntityStore[catalog.Tax] {
	return NewGormStore(db,
		WithSortFields[catalog.Tax]("tipoiva", "tipoiva", "descripcion", "updated_at"))
}

// NewTariffStore creates the tarifas store
func NewTariffStore(db *gorm.DB) shared.EntityStore[catalog.Tariff] {
	return NewGormStore(db,
		WithSortFields[catalog.Tariff]("idtarifa", "idtarifa", "fechaini", "fechafin", "updated_at"),
		WithSearchColumn[catalog.Tariff]("descripcion"))
}

// NewArticleStore creates the articulos store
func NewArticleStore(db *gorm.DB) shared.EntityStore[catalog.Article] {
	return NewGormStore(db,
		WithSortFields[catalog.Article]("codarticulo", "codarticulo", "descripcion", "updated_at"),
		WithSearchColumn[catalog.Article]("descripcion"))
}

// NewArticleLineStore creates the articuloslin store
func NewArticleLineStore(db *gorm.DB) shared.EntityStore[catalog.ArticleLine] {
	return NewGormStore(db,
		WithSortFields[catalog.ArticleLine]("codarticulo", "codarticulo", "talla", "color"))
}

// NewPriceStore creates the preciosventa store
func NewPriceStore(db *gorm.DB) shared.EntityStore[catalog.Price] {
	return NewGormStore(db,
		WithSortFields[catalog.Price]("codarticulo", "idtarifa", "codarticulo", "pneto", "updated_at"))
}

// NewCustomerStore creates the clientes store
func NewCustomerStore(db *gorm.DB) shared.EntityStore[partner.Customer] {
	return NewGormStore(db,
		WithSortFields[partner.Customer]("codcliente", "codcliente", "nombrecliente", "updated_at"),
		WithSearchColumn[partner.Customer]("nombrecliente"))
}

// NewSalespersonStore creates the vendedores store
func NewSalespersonStore(db *gorm.DB) shared.EntityStore[partner.Salesperson] {
	return NewGormStore(db,
		WithSortFields[partner.Salesperson]("codvendedor", "codvendedor", "nomvendedor", "updated_at"),
		WithSearchColumn[partner.Salesperson]("nomvendedor"))
}

// NewPaymentMethodStore creates the formaspago store
func NewPaymentMethodStore(db *gorm.DB) shared.EntityStore[partner.PaymentMethod] {
	return NewGormStore(db,
		WithSortFields[partner.PaymentMethod]("codformapago", "codformapago", "descripcion", "updated_at"))
}

// NewInvoiceStore creates the facturasventa store
func NewInvoiceStore(db *gorm.DB) shared.EntityStore[billing.Invoice] {
	return NewGormStore(db,
		WithSortFields[billing.Invoice]("fecha", "numserie", "numfactura", "fecha", "codcliente", "totneto", "updated_at"))
}

// NewInvoiceDetailStore creates the facturasventalin store
func NewInvoiceDetailStore(db *gorm.DB) shared.EntityStore[billing.InvoiceDetail] {
	return NewGormStore(db,
		WithSortFields[billing.InvoiceDetail]("numlinea", "numserie", "numfactura", "numlinea"))
}

// NewInvoicePaymentStore creates the facturasventapag store
func NewInvoicePaymentStore(db *gorm.DB) shared.EntityStore[billing.InvoicePayment] {
	return NewGormStore(db,
		WithSortFields[billing.InvoicePayment]("posicion", "numserie", "numfactura", "posicion", "fechavencimiento"))
}

var _ shared.EntityStore[catalog.Department] = (*GormStore[catalog.Department])(nil)
