package validator

import (
	"context"
	"errors"
	"reflect"

	"github.com/go-playground/validator"
	"github.com/shopspring/decimal"

	"dancereg/internal/model"
)

var global *validator.Validate

const (
	ErrInvalidFormat      = "Invalid format"
	ErrFieldRequired      = "Field is required"
	ErrFieldExceedsMaxLen = "Field exceeds maximum length"
	ErrFieldBelowMinLen   = "Field is below minimum length"
	ErrFieldExceedsMaxVal = "Field exceeds maximum value"
	ErrFieldBelowMinVal   = "Field is below minimum value"
	ErrUnknownValidation  = "Unknown validation error"
)

func init() {
	SetValidator(New())
}

func New() *validator.Validate {
	v := validator.New()
	// Without this the validator treats decimal.Decimal as a nested
	// struct of unexported fields and field-level tags never run.
	v.RegisterCustomTypeFunc(decimalToFloat, decimal.Decimal{})
	_ = v.RegisterValidation("gender", validateGender)
	_ = v.RegisterValidation("pricing_option", validatePricingOption)
	_ = v.RegisterValidation("nonnegative", validateNonNegative)
	return v
}

func decimalToFloat(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return nil
}

func SetValidator(v *validator.Validate) {
	global = v
}

func Validator() *validator.Validate {
	return global
}

func validateGender(fl validator.FieldLevel) bool {
	g := model.Gender(fl.Field().String())
	return g == model.GenderMale || g == model.GenderFemale
}

func validatePricingOption(fl validator.FieldLevel) bool {
	return model.ValidPricingOption(fl.Field().String())
}

func validateNonNegative(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		return field.Float() >= 0
	}
	return false
}

func Validate(ctx context.Context, structure any) error {
	return parseValidationErrors(Validator().StructCtx(ctx, structure))
}

func parseValidationErrors(err error) error {
	if err == nil {
		return nil
	}
	vErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(vErrors) == 0 {
		return nil
	}
	ve := vErrors[0]
	var msg string
	switch ve.Tag() {
	case "required":
		msg = ErrFieldRequired
	case "max":
		msg = ErrFieldExceedsMaxLen
	case "min":
		msg = ErrFieldBelowMinLen
	case "lt", "lte":
		msg = ErrFieldExceedsMaxVal
	case "gt", "gte":
		msg = ErrFieldBelowMinVal
	case "oneof":
		msg = "Value is not one of the allowed options"
	case "gender":
		msg = "Gender must be male or female"
	case "pricing_option":
		msg = "Unknown pricing option"
	case "nonnegative":
		msg = "Value must not be negative"
	default:
		msg = ErrUnknownValidation
	}
	return errors.New(msg + ": " + ve.Namespace())
}
