package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/segyhp/loan-ledger/pkg/utils"

	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewValidator returns a validator that knows the money tags used on
// request DTOs and reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// decimal string with at most 2 fractional digits
	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		_, err := utils.ParseMoney(fl.Field().String())
		return err == nil
	})
	// decimal string strictly greater than zero
	_ = v.RegisterValidation("decimal_gt0", func(fl validator.FieldLevel) bool {
		d, err := utils.ParseMoney(fl.Field().String())
		return err == nil && d.IsPositive()
	})

	return v
}

// ToFieldErrors maps validator.ValidationErrors to readable messages.
func ToFieldErrors(err error) []FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "money":
			out = append(out, FieldError{Field: field, Message: "must be a decimal with at most 2 decimal places"})
		case "decimal_gt0":
			out = append(out, FieldError{Field: field, Message: "must be greater than zero"})
		case "gt":
			out = append(out, FieldError{Field: field, Message: "must be greater than " + e.Param()})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
