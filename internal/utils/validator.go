// internal/utils/validator.go
package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/javajoker/rental-backend/internal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("contract_field", validateContractField)
	validate.RegisterValidation("signature", validateSignature)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateContractField(fl validator.FieldLevel) bool {
	return models.IsContractField(fl.Field().String())
}

// Signatures are opaque blobs, typically a data URL from a drawing pad.
func validateSignature(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must contain at least " + e.Param() + " item(s)"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "contract_field":
		return e.Field() + " must be one of: tenant_name, tenant_cin, tenant_address, monthly_rent, deposit, contract_duration, special_conditions, payment_terms"
	case "signature":
		return "Signature must not be empty"
	default:
		return e.Field() + " is invalid"
	}
}
