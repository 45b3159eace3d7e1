// Package validation wraps go-playground/validator with the app's custom rules.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"townsquare/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	validate      *validator.Validate
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)
	maxPrice      = decimal.RequireFromString("9999999999999999.99")
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Prices are validated through their string form.
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		if d, ok := v.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	_ = validate.RegisterValidation("price", validatePrice)
	_ = validate.RegisterValidation("username", validateUsername)
	_ = validate.RegisterValidation("notblank", validateNotBlank)
}

func validatePrice(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	// numeric(18,2): positive, at most two decimal places.
	return d.IsPositive() && d.Equal(d.Round(2)) && d.LessThanOrEqual(maxPrice)
}

func validateUsername(fl validator.FieldLevel) bool {
	return usernameRegex.MatchString(fl.Field().String())
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Struct validates s and returns a VALIDATION_ERROR describing the first failing field.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return models.NewValidationError(describe(verrs[0]))
	}
	return models.NewValidationError(err.Error())
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gte", "lte", "gt", "lt":
		return fmt.Sprintf("%s is out of range", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "price":
		return fmt.Sprintf("%s must be a positive amount with at most two decimal places", field)
	case "username":
		return fmt.Sprintf("%s must be 3-50 letters, digits or underscores", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
