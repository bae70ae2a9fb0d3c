package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var payloadValidator = newPayloadValidator()

func newPayloadValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldViolation names the first payload field that broke a size or shape limit.
type FieldViolation struct {
	Field string
	Rule  string
}

// CheckPayload enforces struct tag limits on a decoded payload.
func CheckPayload(payload any) *FieldViolation {
	err := payloadValidator.Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &FieldViolation{Field: fe.Field(), Rule: fe.Tag()}
	}
	return &FieldViolation{Rule: err.Error()}
}
