package billing

import (
	"time"

	"github.com/erpsync/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// InvoiceInput is the invoice header as exported by the ERP
type InvoiceInput struct {
	Series          string          `json:"NUMSERIE"`
	Number          int             `json:"NUMFACTURA"`
	Suffix          int             `json:"N"`
	Date            time.Time       `json:"FECHA"`
	CustomerCode    int             `json:"CODCLIENTE"`
	SalespersonCode *int            `json:"CODVENDEDOR"`
	GrossTotal      decimal.Decimal `json:"TOTBRUTO"`
	TaxTotal        decimal.Decimal `json:"TOTALIMPUESTOS"`
	DiscountTotal   decimal.Decimal `json:"TOTDTOCOMERCIAL"`
	NetTotal        decimal.Decimal `json:"TOTNETO"`
}

// ToEntity converts the wire record to a domain entity
func (in InvoiceInput) ToEntity() *billing.Invoice {
	return &billing.Invoice{
		Series:          in.Series,
		Number:          in.Number,
		Suffix:          in.Suffix,
		Date:            in.Date,
		CustomerCode:    in.CustomerCode,
		SalespersonCode: in.SalespersonCode,
		GrossTotal:      in.GrossTotal,
		TaxTotal:        in.TaxTotal,
		DiscountTotal:   in.DiscountTotal,
		NetTotal:        in.NetTotal,
	}
}

// InvoiceLineInput is one invoice line as exported by the ERP
type InvoiceLineInput struct {
	LineNumber  int             `json:"NUMLINEA"`
	ArticleCode int             `json:"CODARTICULO"`
	Size        string          `json:"TALLA"`
	Color       string          `json:"COLOR"`
	Description string          `json:"DESCRIPCION"`
	Units       decimal.Decimal `json:"UNIDADES"`
	Price       decimal.Decimal `json:"PRECIO"`
	Discount    decimal.Decimal `json:"DTO"`
	TaxType     int             `json:"TIPOIMPUESTO"`
	LineTotal   decimal.Decimal `json:"TOTALLINEA"`
}

// ToEntity converts the wire record to a domain entity owned by the
// given invoice
func (in InvoiceLineInput) ToEntity(series string, number, suffix int) *billing.InvoiceDetail {
	return &billing.InvoiceDetail{
		Series:      series,
		Number:      number,
		Suffix:      suffix,
		LineNumber:  in.LineNumber,
		ArticleCode: in.ArticleCode,
		Size:        in.Size,
		Color:       in.Color,
		Description: in.Description,
		Units:       in.Units,
		Price:       in.Price,
		Discount:    in.Discount,
		TaxType:     in.TaxType,
		LineTotal:   in.LineTotal,
	}
}

// InvoicePaymentInput is one payment schedule entry as exported by the ERP
type InvoicePaymentInput struct {
	Position          int             `json:"POSICION"`
	PaymentMethodCode int             `json:"CODFORMAPAGO"`
	Amount            decimal.Decimal `json:"IMPORTE"`
	DueDate           time.Time       `json:"FECHAVENCIMIENTO"`
}

// ToEntity converts the wire record to a domain entity owned by the
// given invoice
func (in InvoicePaymentInput) ToEntity(series string, number, suffix int) *billing.InvoicePayment {
	return &billing.InvoicePayment{
		Series:            series,
		Number:            number,
		Suffix:            suffix,
		Position:          in.Position,
		PaymentMethodCode: in.PaymentMethodCode,
		Amount:            in.Amount,
		DueDate:           in.DueDate,
	}
}

// InvoiceSyncOptions tunes how an invoice aggregate is applied. Both
// switches default to on when the field is absent from the payload.
type InvoiceSyncOptions struct {
	// ValidateTotals controls the cross-checks: declared line and header
	// totals against the computed ones, and payment coverage of the net.
	ValidateTotals *bool `json:"validateTotals"`
	// CalculateTotalsAutomatic controls filling header totals from the
	// lines when all four declared totals are zero.
	CalculateTotalsAutomatic *bool `json:"calculateTotalsAutomatic"`
}

func (o InvoiceSyncOptions) validateTotals() bool {
	return o.ValidateTotals == nil || *o.ValidateTotals
}

func (o InvoiceSyncOptions) calculateTotals() bool {
	return o.CalculateTotalsAutomatic == nil || *o.CalculateTotalsAutomatic
}

// InvoiceAggregateInput is one complete invoice as exported by the ERP:
// header plus lines plus payment schedule
type InvoiceAggregateInput struct {
	Invoice  InvoiceInput          `json:"FACTURA"`
	Lines    []InvoiceLineInput    `json:"LINEAS"`
	Payments []InvoicePaymentInput `json:"PAGOS"`
	Options  InvoiceSyncOptions    `json:"options"`
}

// InvoiceTotals carries the header totals as applied
type InvoiceTotals struct {
	Gross    decimal.Decimal `json:"TOTBRUTO"`
	Tax      decimal.Decimal `json:"TOTALIMPUESTOS"`
	Discount decimal.Decimal `json:"TOTDTOCOMERCIAL"`
	Net      decimal.Decimal `json:"TOTNETO"`
}

// InvoiceAggregateResult summarizes one applied invoice aggregate
type InvoiceAggregateResult struct {
	Series       string        `json:"NUMSERIE"`
	Number       int           `json:"NUMFACTURA"`
	Suffix       int           `json:"N"`
	Created      bool          `json:"created"`
	LineCount    int           `json:"line_count"`
	PaymentCount int           `json:"payment_count"`
	SplitPayment bool          `json:"split_payment"`
	Totals       InvoiceTotals `json:"totals"`
}

// InvoiceView is the read model of a complete invoice
type InvoiceView struct {
	Series          string             `json:"NUMSERIE"`
	Number          int                `json:"NUMFACTURA"`
	Suffix          int                `json:"N"`
	Date            time.Time          `json:"FECHA"`
	CustomerCode    int                `json:"CODCLIENTE"`
	SalespersonCode *int               `json:"CODVENDEDOR,omitempty"`
	GrossTotal      decimal.Decimal    `json:"TOTBRUTO"`
	TaxTotal        decimal.Decimal    `json:"TOTALIMPUESTOS"`
	DiscountTotal   decimal.Decimal    `json:"TOTDTOCOMERCIAL"`
	NetTotal        decimal.Decimal    `json:"TOTNETO"`
	Lines           []InvoiceLineView  `json:"LINEAS,omitempty"`
	Payments        []InvoicePayView   `json:"PAGOS,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// InvoiceLineView is the read model of one invoice line
type InvoiceLineView struct {
	LineNumber  int             `json:"NUMLINEA"`
	ArticleCode int             `json:"CODARTICULO"`
	Size        string          `json:"TALLA"`
	Color       string          `json:"COLOR"`
	Description string          `json:"DESCRIPCION"`
	Units       decimal.Decimal `json:"UNIDADES"`
	Price       decimal.Decimal `json:"PRECIO"`
	Discount    decimal.Decimal `json:"DTO"`
	TaxType     int             `json:"TIPOIMPUESTO"`
	LineTotal   decimal.Decimal `json:"TOTALLINEA"`
}

// InvoicePayView is the read model of one payment schedule entry
type InvoicePayView struct {
	Position          int             `json:"POSICION"`
	PaymentMethodCode int             `json:"CODFORMAPAGO"`
	Amount            decimal.Decimal `json:"IMPORTE"`
	DueDate           time.Time       `json:"FECHAVENCIMIENTO"`
}
