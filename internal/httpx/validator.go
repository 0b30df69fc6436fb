package httpx

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// Prices are decimal strings persisted as NUMERIC(7,2): up to five integer
// digits and at most two fraction digits.
var moneyPattern = regexp.MustCompile(`^\d{1,5}(\.\d{1,2})?$`)

func init() {
	validate = validator.New()

	validate.RegisterValidation("money", validateMoney)
}

func validateMoney(fl validator.FieldLevel) bool {
	return moneyPattern.MatchString(fl.Field().String())
}

func ValidateStruct(s interface{}) []ErrorDetail {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var details []ErrorDetail
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		tag := err.Tag()
		param := err.Param()

		var message string
		switch tag {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s", field, param)
		case "max":
			message = fmt.Sprintf("%s must be at most %s", field, param)
		case "money":
			message = fmt.Sprintf("%s must be a decimal amount with at most 2 fraction digits", field)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		fieldName := strings.ToLower(field[:1]) + field[1:]
		details = append(details, ErrorDetail{
			Field:   fieldName,
			Message: message,
		})
	}

	return details
}
