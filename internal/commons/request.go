package commons

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	apperrors "stockledger/internal/errors"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeJSON reads a JSON body into dst and runs its validate tags.
func DecodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.UseNumber()
	if err := decoder.Decode(dst); err != nil {
		return apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
	}
	return Validate(dst)
}

func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError(err.Error())
	}

	details := make([]apperrors.ValidationDetail, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		details = append(details, apperrors.ValidationDetail{
			Field:   fieldErr.Field(),
			Message: describe(fieldErr),
		})
	}
	return apperrors.NewValidationError("validation failed", details...)
}

// ParseAmount accepts integral numbers only: "5" and "5.0" are 5, "5.5" and
// "abc" are rejected.
func ParseAmount(field string, raw json.Number) (int, error) {
	invalid := apperrors.NewValidationError("invalid amount", apperrors.ValidationDetail{
		Field:   field,
		Message: field + " must be an integer",
	})

	value, err := decimal.NewFromString(strings.TrimSpace(raw.String()))
	if err != nil || !value.IsInteger() {
		return 0, invalid
	}
	if value.GreaterThan(decimal.NewFromInt(math.MaxInt32)) || value.LessThan(decimal.NewFromInt(math.MinInt32)) {
		return 0, apperrors.NewValidationError("invalid amount", apperrors.ValidationDetail{
			Field:   field,
			Message: field + " is out of range",
		})
	}
	return int(value.IntPart()), nil
}

func describe(fieldErr validator.FieldError) string {
	name := fieldErr.Field()
	switch fieldErr.Tag() {
	case "required":
		return name + " is required"
	case "max":
		return name + " must be at most " + fieldErr.Param() + " characters"
	case "uuid":
		return name + " must be a valid UUID"
	default:
		return name + " is invalid"
	}
}
