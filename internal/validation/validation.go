// Package validation applies field rules to incoming payloads and collects
// every violation instead of stopping at the first one.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/anuvataru/jewelry-catalog/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Collector accumulates violations for one payload.
type Collector struct {
	violations []apperr.Violation
}

// Add records a violation.
func (c *Collector) Add(field, message string) {
	c.violations = append(c.violations, apperr.Violation{Field: field, Message: message})
}

// Var checks a single value against a validator tag, e.g. "required,max=200".
func (c *Collector) Var(field string, value any, tag string) {
	err := validate.Var(value, tag)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			c.Add(field, message(field, fe))
		}
		return
	}
	c.Add(field, field+" is invalid")
}

// Struct checks every tagged field of s; field names come from json tags.
func (c *Collector) Struct(s any) {
	err := validate.Struct(s)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			c.Add(fe.Field(), message(fe.Field(), fe))
		}
		return
	}
	c.Add("", err.Error())
}

// Violations returns the collected violations.
func (c *Collector) Violations() []apperr.Violation {
	return c.violations
}

// Err returns a ValidationFailed error, or nil when nothing was collected.
func (c *Collector) Err() error {
	return apperr.Validation(c.violations)
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed the %q rule", field, fe.Tag())
	}
}
