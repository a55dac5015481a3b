package validator

import (
	"reflect"
	"strings"

	validators "github.com/go-playground/validator/v10"
)

// Validator interface
type Validator interface {
	ValidateStruct(inf interface{}) error
	ValidateVar(field interface{}, tag string) error
}

type validator struct {
	validator *validators.Validate
}

// New Validator func.
// Field names in errors come from the query tag when there is one, so
// API clients see the parameter they sent.
func New() Validator {
	v := validators.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("query"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return &validator{
		validator: v,
	}
}

// ValidateStruct func
func (v *validator) ValidateStruct(inf interface{}) error {
	return v.validator.Struct(inf)
}

// ValidateVar func
func (v *validator) ValidateVar(field interface{}, tag string) error {
	return v.validator.Var(field, tag)
}
