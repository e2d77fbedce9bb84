package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// FieldError is the first rule a single field failed.
type FieldError struct {
	Field   string
	Message string
}

// Error reports every invalid field of a request body in declaration order.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type Validator struct {
	validate *validator.Validate
}

var customRules = map[string]validator.Func{
	"notblank": validators.NotBlank,
}

// New panics if a custom rule cannot be registered, since every request
// body would then fail validation.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := registerRules(v, customRules); err != nil {
		panic(err)
	}

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

func registerRules(v *validator.Validate, rules map[string]validator.Func) error {
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %q validation: %w", tag, err)
		}
	}
	return nil
}

// Struct checks s against its validate tags. It returns nil or an *Error;
// any other error means s could not be validated at all.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &Error{}
	seen := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		if seen[fe.Field()] {
			continue
		}
		seen[fe.Field()] = true
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s max %s chars", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
