package catalog

import (
	"time"

	"github.com/erpsync/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// Wire DTOs keep the source ERP's export field names, uppercase Spanish
// column mnemonics included, so exports can be forwarded unmodified.

// DepartmentInput is one department record as exported by the ERP
type DepartmentInput struct {
	Number      int    `json:"NUMDPTO"`
	Description string `json:"DESCRIPCION"`
}

// ToEntity converts the wire record to a domain entity
func (in DepartmentInput) ToEntity() *catalog.Department {
	return &catalog.Department{Number: in.Number, Description: in.Description}
}

// SectionInput is one section record as exported by the ERP
type SectionInput struct {
	DepartmentNumber int    `json:"NUMDPTO"`
	Number           int    `json:"NUMSECCION"`
	Description      string `json:"DESCRIPCION"`
}

// ToEntity converts the wire record to a domain entity
func (in SectionInput) ToEntity() *catalog.Section {
	return &catalog.Section{
		DepartmentNumber: in.DepartmentNumber,
		Number:           in.Number,
		Description:      in.Description,
	}
}

// FamilyInput is one family record as exported by the ERP
type FamilyInput struct {
	DepartmentNumber int    `json:"NUMDPTO"`
	SectionNumber    int    `json:"NUMSECCION"`
	Number           int    `json:"NUMFAMILIA"`
	Description      string `json:"DESCRIPCION"`
}

// ToEntity converts the wire record to a domain entity
func (in FamilyInput) ToEntity() *catalog.Family {
	return &catalog.Family{
		DepartmentNumber: in.DepartmentNumber,
		SectionNumber:    in.SectionNumber,
		Number:           in.Number,
		Description:      in.Description,
	}
}

// TaxInput is one tax rate record as exported by the ERP
type TaxInput struct {
	Type        int             `json:"TIPOIVA"`
	Description string          `json:"DESCRIPCION"`
	Rate        decimal.Decimal `json:"IVA"`
}

// ToEntity converts the wire record to a domain entity
func (in TaxInput) ToEntity() *catalog.Tax {
	return &catalog.Tax{Type: in.Type, Description: in.Description, Rate: in.Rate}
}

// TariffInput is one tariff record as exported by the ERP
type TariffInput struct {
	ID          int       `json:"IDTARIFA"`
	Description string    `json:"DESCRIPCION"`
	ValidFrom   time.Time `json:"FECHAINI"`
	ValidUntil  time.Time `json:"FECHAFIN"`
}

// ToEntity converts the wire record to a domain entity
func (in TariffInput) ToEntity() *catalog.Tariff {
	return &catalog.Tariff{
		ID:          in.ID,
		Description: in.Description,
		ValidFrom:   in.ValidFrom,
		ValidUntil:  in.ValidUntil,
	}
}

// ArticleInput is the article header of an article aggregate
type ArticleInput struct {
	Code              int    `json:"CODARTICULO"`
	Description       string `json:"DESCRIPCION"`
	TaxType           int    `json:"TIPOIMPUESTO"`
	DepartmentNumber  *int   `json:"DPTO"`
	SectionNumber     *int   `json:"SECCION"`
	FamilyNumber      *int   `json:"FAMILIA"`
	SupplierReference string `json:"REFPROVEEDOR"`
	Discontinued      bool   `json:"DESCATALOGADO"`
}

// ToEntity converts the wire record to a domain entity
func (in ArticleInput) ToEntity() *catalog.Article {
	return &catalog.Article{
		Code:              in.Code,
		Description:       in.Description,
		TaxType:           in.TaxType,
		DepartmentNumber:  in.DepartmentNumber,
		SectionNumber:     in.SectionNumber,
		FamilyNumber:      in.FamilyNumber,
		SupplierReference: in.SupplierReference,
		Discontinued:      in.Discontinued,
	}
}

// ArticleLineInput is one size/color variant of an article
type ArticleLineInput struct {
	Size         string `json:"TALLA"`
	Color        string `json:"COLOR"`
	Barcode      string `json:"CODBARRAS"`
	Discontinued bool   `json:"DESCATALOGADO"`
}

// ToEntity converts the wire record to a domain entity owned by the
// given article
func (in ArticleLineInput) ToEntity(articleCode int) *catalog.ArticleLine {
	return &catalog.ArticleLine{
		ArticleCode:  articleCode,
		Size:         in.Size,
		Color:        in.Color,
		Barcode:      in.Barcode,
		Discontinued: in.Discontinued,
	}
}

// PriceInput is one tariff price of an article variant
type PriceInput struct {
	TariffID   int             `json:"IDTARIFA"`
	Size       string          `json:"TALLA"`
	Color      string          `json:"COLOR"`
	GrossPrice decimal.Decimal `json:"PBRUTO"`
	Discount   decimal.Decimal `json:"DTO"`
	NetPrice   decimal.Decimal `json:"PNETO"`
}

// ToEntity converts the wire record to a domain entity owned by the
// given article
func (in PriceInput) ToEntity(articleCode int) *catalog.Price {
	return &catalog.Price{
		TariffID:    in.TariffID,
		ArticleCode: articleCode,
		Size:        in.Size,
		Color:       in.Color,
		GrossPrice:  in.GrossPrice,
		Discount:    in.Discount,
		NetPrice:    in.NetPrice,
	}
}

// ArticleSyncOptions tunes how an article aggregate is applied. Both
// switches default to on when the field is absent from the payload.
type ArticleSyncOptions struct {
	// ValidateIntegrity controls recomputing the derived statistics
	// (line, price and tariff counts, min/max/average net price) into
	// the result. Informational only; referential checks always run and
	// the switch never blocks the write.
	ValidateIntegrity *bool `json:"validateIntegrity"`
	// AutoCreateLines controls variant synthesis: the default empty
	// variant for articles pushed without lines, and lines for price
	// variants the aggregate does not declare.
	AutoCreateLines *bool `json:"autoCreateLines"`
}

func (o ArticleSyncOptions) validateIntegrity() bool {
	return o.ValidateIntegrity == nil || *o.ValidateIntegrity
}

func (o ArticleSyncOptions) autoCreateLines() bool {
	return o.AutoCreateLines == nil || *o.AutoCreateLines
}

// ArticleAggregateInput is one complete article as exported by the ERP:
// header plus variants plus tariff prices
type ArticleAggregateInput struct {
	Article ArticleInput       `json:"ARTICULO"`
	Lines   []ArticleLineInput `json:"LINEAS"`
	Prices  []PriceInput       `json:"PRECIOS"`
	Options ArticleSyncOptions `json:"options"`
}

// ArticleAggregateResult summarizes one applied article aggregate
type ArticleAggregateResult struct {
	ArticleCode  int              `json:"article_code"`
	Created      bool             `json:"created"`
	LineCount    int              `json:"line_count"`
	PriceCount   int              `json:"price_count"`
	TariffCount  int              `json:"tariff_count"`
	MinNetPrice  *decimal.Decimal `json:"min_net_price,omitempty"`
	MaxNetPrice  *decimal.Decimal `json:"max_net_price,omitempty"`
	AvgNetPrice  *decimal.Decimal `json:"avg_net_price,omitempty"`
	DefaultLine  bool             `json:"default_line"`
	Discontinued bool             `json:"discontinued"`
}

// Views carry the same ERP field names back out, plus the engine-owned
// timestamps.

// DepartmentView is the read model of a department
type DepartmentView struct {
	Number      int       `json:"NUMDPTO"`
	Description string    `json:"DESCRIPCION"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newDepartmentView(d *catalog.Department) *DepartmentView {
	return &DepartmentView{
		Number:      d.Number,
		Description: d.Description,
		CreatedAt:   d.GetCreatedAt(),
		UpdatedAt:   d.GetUpdatedAt(),
	}
}

// SectionView is the read model of a section
type SectionView struct {
	DepartmentNumber int       `json:"NUMDPTO"`
	Number           int       `json:"NUMSECCION"`
	Description      string    `json:"DESCRIPCION"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func newSectionView(s *catalog.Section) *SectionView {
	return &SectionView{
		DepartmentNumber: s.DepartmentNumber,
		Number:           s.Number,
		Description:      s.Description,
		CreatedAt:        s.GetCreatedAt(),
		UpdatedAt:        s.GetUpdatedAt(),
	}
}

// FamilyView is the read model of a family
type FamilyView struct {
	DepartmentNumber int       `json:"NUMDPTO"`
	SectionNumber    int       `json:"NUMSECCION"`
	Number           int       `json:"NUMFAMILIA"`
	Description      string    `json:"DESCRIPCION"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func newFamilyView(f *catalog.Family) *FamilyView {
	return &FamilyView{
		DepartmentNumber: f.DepartmentNumber,
		SectionNumber:    f.SectionNumber,
		Number:           f.Number,
		Description:      f.Description,
		CreatedAt:        f.GetCreatedAt(),
		UpdatedAt:        f.GetUpdatedAt(),
	}
}

// TaxView is the read model of a tax rate
type TaxView struct {
	Type        int             `json:"TIPOIVA"`
	Description string          `json:"DESCRIPCION"`
	Rate        decimal.Decimal `json:"IVA"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func newTaxView(t *catalog.Tax) *TaxView {
	return &TaxView{
		Type:        t.Type,
		Description: t.Description,
		Rate:        t.Rate,
		CreatedAt:   t.GetCreatedAt(),
		UpdatedAt:   t.GetUpdatedAt(),
	}
}

// TariffView is the read model of a tariff
type TariffView struct {
	ID          int       `json:"IDTARIFA"`
	Description string    `json:"DESCRIPCION"`
	ValidFrom   time.Time `json:"FECHAINI"`
	ValidUntil  time.Time `json:"FECHAFIN"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newTariffView(t *catalog.Tariff) *TariffView {
	return &TariffView{
		ID:          t.ID,
		Description: t.Description,
		ValidFrom:   t.ValidFrom,
		ValidUntil:  t.ValidUntil,
		CreatedAt:   t.GetCreatedAt(),
		UpdatedAt:   t.GetUpdatedAt(),
	}
}

// ArticleView is the read model of an article aggregate root
type ArticleView struct {
	Code              int                `json:"CODARTICULO"`
	Description       string             `json:"DESCRIPCION"`
	TaxType           int                `json:"TIPOIMPUESTO"`
	DepartmentNumber  *int               `json:"DPTO,omitempty"`
	SectionNumber     *int               `json:"SECCION,omitempty"`
	FamilyNumber      *int               `json:"FAMILIA,omitempty"`
	SupplierReference string             `json:"REFPROVEEDOR,omitempty"`
	Discontinued      bool               `json:"DESCATALOGADO"`
	Lines             []ArticleLineView  `json:"LINEAS,omitempty"`
	Prices            []ArticlePriceView `json:"PRECIOS,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// ArticleLineView is the read model of an article variant
type ArticleLineView struct {
	Size         string `json:"TALLA"`
	Color        string `json:"COLOR"`
	Barcode      string `json:"CODBARRAS,omitempty"`
	Discontinued bool   `json:"DESCATALOGADO"`
}

// ArticlePriceView is the read model of a variant price
type ArticlePriceView struct {
	TariffID   int             `json:"IDTARIFA"`
	Size       string          `json:"TALLA"`
	Color      string          `json:"COLOR"`
	GrossPrice decimal.Decimal `json:"PBRUTO"`
	Discount   decimal.Decimal `json:"DTO"`
	NetPrice   decimal.Decimal `json:"PNETO"`
}

// OverlapCheckInput asks whether a candidate validity range collides
// with stored tariffs
type OverlapCheckInput struct {
	TariffID   int       `json:"IDTARIFA"`
	ValidFrom  time.Time `json:"FECHAINI"`
	ValidUntil time.Time `json:"FECHAFIN"`
}

// OverlapCheckResult lists the stored tariffs the candidate collides
// with; an empty list means the range is clear
type OverlapCheckResult struct {
	Overlaps  bool     `json:"overlaps"`
	Conflicts []string `json:"conflicts"`
}
