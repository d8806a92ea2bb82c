// Package validator holds the shared go-playground validator with the
// desk's custom tags registered.
package validator

import (
	"reflect"
	"strings"

	"byabshik_backend/platform/phone"

	"github.com/go-playground/validator/v10"
)

// Validator validates request DTOs.
type Validator struct {
	v *validator.Validate
}

// New returns a validator that reports fields by their json names and
// knows these extra tags:
//
//	bdphone  a Bangladeshi mobile number in any common notation
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("bdphone", func(fl validator.FieldLevel) bool {
		return phone.IsValidMobile(fl.Field().String())
	})
	return &Validator{v: v}
}

func (val *Validator) Struct(s any) error {
	return val.v.Struct(s)
}
