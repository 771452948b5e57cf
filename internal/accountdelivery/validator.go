package accountdelivery

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ValidKwh checks that the bound field holds a positive decimal energy amount.
var ValidKwh validator.Func = func(fieldLevel validator.FieldLevel) bool {
	if s, ok := fieldLevel.Field().Interface().(string); ok {
		d, err := decimal.NewFromString(s)
		return err == nil && d.IsPositive()
	}

	return false
}
