package catalog

import (
	"time"

	"github.com/erpsync/backend/internal/domain/shared"
)

// Tariff is a named price list valid over an inclusive date range. Overlap
// between tariffs is legal at write time; callers that need exclusivity
// pre-flight the overlap check explicitly.
type Tariff struct {
	shared.SyncTimestamps
	ID          int       `gorm:"column:idtarifa;primaryKey;autoIncrement:false"`
	Description string    `gorm:"column:descripcion;type:varchar(50);not null"`
	ValidFrom   time.Time `gorm:"column:fechaini;type:date;not null"`
	ValidUntil  time.Time `gorm:"column:fechafin;type:date;not null"`
}

// TableName returns the table name for GORM
func (Tariff) TableName() string {
	return "tarifas"
}

// EntityName returns the entity name used in error messages
func (Tariff) EntityName() string {
	return "Tariff"
}

// EntityKey returns the natural key of the tariff
func (t *Tariff) EntityKey() shared.Key {
	return shared.Key{"idtarifa": t.ID}
}

// Validate performs shape validation
func (t *Tariff) Validate() error {
	if t.ID <= 0 {
		return shared.NewValidationError("tariff id must be positive, got %d", t.ID)
	}
	if err := validateDescription(t.Description, 50); err != nil {
		return err
	}
	if t.ValidFrom.IsZero() || t.ValidUntil.IsZero() {
		return shared.NewValidationError("tariff %d: validity dates are required", t.ID)
	}
	if t.ValidFrom.After(t.ValidUntil) {
		return shared.NewValidationError("tariff %d: validity start is after its end", t.ID)
	}
	return nil
}

// ApplyFrom overwrites every non-key field from the incoming record
func (t *Tariff) ApplyFrom(src *Tariff) {
	t.Description = src.Description
	t.ValidFrom = src.ValidFrom
	t.ValidUntil = src.ValidUntil
}

// ActiveOn reports whether the tariff covers the given date, bounds included
func (t *Tariff) ActiveOn(date time.Time) bool {
	return !date.Before(t.ValidFrom) && !date.After(t.ValidUntil)
}
