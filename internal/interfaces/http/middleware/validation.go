package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopcart/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// Prices are stored as NUMERIC(10,2)
const (
	maxDecimalIntegerDigits = 8
	maxDecimalPlaces        = 2
	maxDecimalInputLength   = 32
)

// SetupValidator reports fields by their json, form or uri name and registers
// the decimal tag, which accepts numbers that fit a NUMERIC(10,2) column
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form", "uri"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	_ = v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return false
		}
		return validDecimal(fl.Field().String())
	})
}

// validDecimal bounds the exponent before anything expands the coefficient,
// so inputs like 1e200000000 are rejected without allocating their digits
func validDecimal(s string) bool {
	if s == "" || len(s) > maxDecimalInputLength {
		return false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return false
	}
	exp := int(d.Exponent())
	if exp < -maxDecimalPlaces {
		return false
	}
	return d.NumDigits()+exp <= maxDecimalIntegerDigits
}

// FormatValidationErrors turns binding errors into a validation response.
// Errors other than validator.ValidationErrors produce a response without details.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	}

	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError writes a 400 validation response
func HandleValidationError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, FormatValidationErrors(err, c.GetString(requestIDKey)))
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Enter a valid email address"
	case "min":
		if e.Kind() == reflect.String {
			return "Ensure this field has at least " + e.Param() + " characters"
		}
		return "Ensure this value is greater than or equal to " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Ensure this field has no more than " + e.Param() + " characters"
		}
		return "Ensure this value is less than or equal to " + e.Param()
	case "gte":
		return "Ensure this value is greater than or equal to " + e.Param()
	case "lte":
		return "Ensure this value is less than or equal to " + e.Param()
	case "gt":
		return "Ensure this value is greater than " + e.Param()
	case "uuid":
		return "Must be a valid UUID"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "decimal":
		return "A valid number with at most 8 digits before and 2 after the decimal point is required"
	case "boolean":
		return "Must be a valid boolean"
	case "alphanum":
		return "Must contain only letters and digits"
	default:
		return "Invalid value"
	}
}
