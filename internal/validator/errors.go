package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Struct validates v and flattens field errors into one readable message.
func Struct(v any) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid input: %w", err)
	}
	errs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		errs = append(errs, fieldErrorToString(e))
	}
	return fmt.Errorf("invalid input: %s", strings.Join(errs, "; "))
}

func fieldErrorToString(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Namespace())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", e.Namespace())
	case "currency":
		return fmt.Sprintf("%s must be a currency code like USD", e.Namespace())
	case "category":
		return fmt.Sprintf("%s must be a known category", e.Namespace())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", e.Namespace(), e.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", e.Namespace(), e.Param())
	default:
		return fmt.Sprintf("%s is invalid", e.Namespace())
	}
}
