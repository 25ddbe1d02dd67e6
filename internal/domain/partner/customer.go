package partner

import (
	"github.com/erpsync/backend/internal/domain/shared"
)

// Customer is a flat reference entity keyed by the ERP customer code
type Customer struct {
	shared.SyncTimestamps
	Code       int    `gorm:"column:codcliente;primaryKey;autoIncrement:false"`
	Name       string `gorm:"column:nombrecliente;type:varchar(100);not null"`
	TradeName  string `gorm:"column:nombrecomercial;type:varchar(100)"`
	TaxID      string `gorm:"column:cif;type:varchar(20)"`
	Address    string `gorm:"column:direccion;type:varchar(150)"`
	City       string `gorm:"column:poblacion;type:varchar(50)"`
	Province   string `gorm:"column:provincia;type:varchar(50)"`
	PostalCode string `gorm:"column:codpostal;type:varchar(10)"`
	Phone      string `gorm:"column:telefono;type:varchar(20)"`
	Email      string `gorm:"column:e_mail;type:varchar(100)"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "clientes"
}

// EntityName returns the entity name used in error messages
func (Customer) EntityName() string {
	return "Customer"
}

// EntityKey returns the natural key of the customer
func (c *Customer) EntityKey() shared.Key {
	return shared.Key{"codcliente": c.Code}
}

// Validate performs shape validation
func (c *Customer) Validate() error {
	if c.Code <= 0 {
		return shared.NewValidationError("customer code must be positive, got %d", c.Code)
	}
	if c.Name == "" {
		return shared.NewValidationError("customer name is required")
	}
	if len(c.Name) > 100 {
		return shared.NewValidationError("customer name cannot exceed 100 characters")
	}
	return nil
}

// ApplyFrom overwrites every non-key field from the incoming record
func (c *Customer) ApplyFrom(src *Customer) {
	c.Name = src.Name
	c.TradeName = src.TradeName
	c.TaxID = src.TaxID
	c.Address = src.Address
	c.City = src.City
	c.Province = src.Province
	c.PostalCode = src.PostalCode
	c.Phone = src.Phone
	c.Email = src.Email
}
