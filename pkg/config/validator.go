package config

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError lists every invalid field, keyed by its dotted YAML path.
type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Errors[k])
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

// newValidator builds a validator that reports YAML field names and knows
// the custom "route" rule.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("route", func(fl validator.FieldLevel) bool {
		route := fl.Field().String()
		return strings.HasPrefix(route, "/") && !strings.ContainsAny(route, " \t\r\n")
	})
	return v
}

var validate = newValidator()

// Validate checks cfg and returns a *ValidationError describing every
// problem found.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	ve := &ValidationError{Errors: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		field := fieldPath(fe.Namespace())
		ve.Errors[field] = message(field, fe)
	}
	return ve
}

// fieldPath strips the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "route":
		return fmt.Sprintf("%s must start with '/' and contain no spaces, got %q", field, fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "min":
		return fmt.Sprintf("%s must be at least %s, got %v", field, fe.Param(), fe.Value())
	case "cidr|ip":
		return fmt.Sprintf("%s must be an IP address or CIDR, got %q", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
