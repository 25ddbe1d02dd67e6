package catalog

import (
	"github.com/erpsync/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// validateDescription checks the mandatory description field every
// hierarchy entity carries
func validateDescription(description string, maxLen int) error {
	if description == "" {
		return shared.NewValidationError("description is required")
	}
	if len(description) > maxLen {
		return shared.NewValidationError("description cannot exceed %d characters", maxLen)
	}
	return nil
}

// validateVariant checks a size/color pair. Empty values are legal: the ERP
// uses an empty size and color for articles without variants.
func validateVariant(size, color string) error {
	if len(size) > 10 {
		return shared.NewValidationError("size cannot exceed 10 characters")
	}
	if len(color) > 10 {
		return shared.NewValidationError("color cannot exceed 10 characters")
	}
	return nil
}

// validateNonNegative checks a monetary amount
func validateNonNegative(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewValidationError("%s cannot be negative", field)
	}
	return nil
}

// validatePercentage checks a 0-100 percentage field
func validatePercentage(field string, pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewValidationError("%s must be between 0 and 100", field)
	}
	return nil
}
