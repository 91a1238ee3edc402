package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Reservation status validation
	validate.RegisterValidation("reservation_status", func(fl validator.FieldLevel) bool {
		status := fl.Field().String()
		validStatuses := []string{
			"PENDING", "CONFIRMED", "PAID", "ACTIVE",
			"COMPLETED", "CANCELLED", "NO_SHOW",
		}
		for _, s := range validStatuses {
			if status == s {
				return true
			}
		}
		return false
	})

	// Role validation
	validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		role := fl.Field().String()
		validRoles := []string{"MANAGER", "CLIENT"}
		for _, r := range validRoles {
			if role == r {
				return true
			}
		}
		return false
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email format"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "datetime":
			errors[field] = "Invalid date, expected format " + err.Param()
		case "reservation_status":
			errors[field] = "Invalid status. Must be: PENDING, CONFIRMED, PAID, ACTIVE, COMPLETED, CANCELLED, or NO_SHOW"
		case "role":
			errors[field] = "Invalid role. Must be: MANAGER or CLIENT"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}
