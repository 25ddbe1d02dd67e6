package partner

import (
	"time"

	"github.com/erpsync/backend/internal/domain/partner"
)

// CustomerInput is one customer record as exported by the ERP
type CustomerInput struct {
	Code       int    `json:"CODCLIENTE"`
	Name       string `json:"NOMBRECLIENTE"`
	TradeName  string `json:"NOMBRECOMERCIAL"`
	TaxID      string `json:"CIF"`
	Address    string `json:"DIRECCION"`
	City       string `json:"POBLACION"`
	Province   string `json:"PROVINCIA"`
	PostalCode string `json:"CODPOSTAL"`
	Phone      string `json:"TELEFONO"`
	Email      string `json:"E_MAIL"`
}

// ToEntity converts the wire record to a domain entity
func (in CustomerInput) ToEntity() *partner.Customer {
	return &partner.Customer{
		Code:       in.Code,
		Name:       in.Name,
		TradeName:  in.TradeName,
		TaxID:      in.TaxID,
		Address:    in.Address,
		City:       in.City,
		Province:   in.Province,
		PostalCode: in.PostalCode,
		Phone:      in.Phone,
		Email:      in.Email,
	}
}

// SalespersonInput is one salesperson record as exported by the ERP
type SalespersonInput struct {
	Code int    `json:"CODVENDEDOR"`
	Name string `json:"NOMVENDEDOR"`
}

// ToEntity converts the wire record to a domain entity
func (in SalespersonInput) ToEntity() *partner.Salesperson {
	return &partner.Salesperson{Code: in.Code, Name: in.Name}
}

// PaymentMethodInput is one payment method record as exported by the ERP
type PaymentMethodInput struct {
	Code         int    `json:"CODFORMAPAGO"`
	Description  string `json:"DESCRIPCION"`
	Installments int    `json:"NUMVENCIMIENTOS"`
}

// ToEntity converts the wire record to a domain entity
func (in PaymentMethodInput) ToEntity() *partner.PaymentMethod {
	return &partner.PaymentMethod{
		Code:         in.Code,
		Description:  in.Description,
		Installments: in.Installments,
	}
}

// CustomerView is the read model of a customer
type CustomerView struct {
	Code       int       `json:"CODCLIENTE"`
	Name       string    `json:"NOMBRECLIENTE"`
	TradeName  string    `json:"NOMBRECOMERCIAL,omitempty"`
	TaxID      string    `json:"CIF,omitempty"`
	Address    string    `json:"DIRECCION,omitempty"`
	City       string    `json:"POBLACION,omitempty"`
	Province   string    `json:"PROVINCIA,omitempty"`
	PostalCode string    `json:"CODPOSTAL,omitempty"`
	Phone      string    `json:"TELEFONO,omitempty"`
	Email      string    `json:"E_MAIL,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func newCustomerView(c *partner.Customer) *CustomerView {
	return &CustomerView{
		Code:       c.Code,
		Name:       c.Name,
		TradeName:  c.TradeName,
		TaxID:      c.TaxID,
		Address:    c.Address,
		City:       c.City,
		Province:   c.Province,
		PostalCode: c.PostalCode,
		Phone:      c.Phone,
		Email:      c.Email,
		CreatedAt:  c.GetCreatedAt(),
		UpdatedAt:  c.GetUpdatedAt(),
	}
}

// SalespersonView is the read model of a salesperson
type SalespersonView struct {
	Code      int       `json:"CODVENDEDOR"`
	Name      string    `json:"NOMVENDEDOR"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newSalespersonView(s *partner.Salesperson) *SalespersonView {
	return &SalespersonView{
		Code:      s.Code,
		Name:      s.Name,
		CreatedAt: s.GetCreatedAt(),
		UpdatedAt: s.GetUpdatedAt(),
	}
}

// PaymentMethodView is the read model of a payment method
type PaymentMethodView struct {
	Code         int       `json:"CODFORMAPAGO"`
	Description  string    `json:"DESCRIPCION"`
	Installments int       `json:"NUMVENCIMIENTOS"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newPaymentMethodView(p *partner.PaymentMethod) *PaymentMethodView {
	return &PaymentMethodView{
		Code:         p.Code,
		Description:  p.Description,
		Installments: p.Installments,
		CreatedAt:    p.GetCreatedAt(),
		UpdatedAt:    p.GetUpdatedAt(),
	}
}
