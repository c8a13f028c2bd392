// internal/validator/validator.go
package validator

import (
	"reflect"
	"regexp"
	"strings"

	"bestcard/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var Validate *validator.Validate

var (
	nonBlank     = regexp.MustCompile(`\S`)
	currencyCode = regexp.MustCompile(`^[A-Za-z]{3,}$`)
)

func init() {
	Validate = validator.New()

	// decimal.Decimal валидируем как float64, чтобы работали gte/lte
	Validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	// Регистрируем валидацию: строка не пустая и не только пробелы
	_ = Validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return nonBlank.MatchString(fl.Field().String())
	})

	// Код валюты: 3+ латинские буквы (USD, CNY, EUR)
	_ = Validate.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return currencyCode.MatchString(fl.Field().String())
	})

	_ = Validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return domain.IsAllowedCategory(strings.ToLower(fl.Field().String()))
	})
}
