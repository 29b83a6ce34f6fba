package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Check runs v over s and reports the first failing field as a ValidationError.
func Check(v *validator.Validate, s interface{}) error {
	return FromValidator(v.Struct(s))
}

// FromValidator converts validator errors into a ValidationError coded by field name.
func FromValidator(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		if fe.Param() != "" {
			return Validationf(field, "%s must satisfy %s=%s, got %v", field, fe.Tag(), fe.Param(), fe.Value())
		}
		return Validationf(field, "%s must satisfy %s, got %v", field, fe.Tag(), fe.Value())
	}
	return Validation("input", fmt.Errorf("invalid input: %w", err))
}
