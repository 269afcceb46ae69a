package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// allowed values for enum-like tags
var enums = map[string][]string{
	"room_type":      {"Single", "Double", "Suite"},
	"booking_status": {"all", "Active", "Canceled", "Completed"},
	"user_role":      {"guest", "admin"},
	"floor_pref":     {"High Floor", "Low Floor", "No Preference"},
	"location_pref":  {"Near Elevator", "Away from Elevator", "No Preference"},
	"trip_type":      {"solo", "couple", "family", "business"},
	"chat_role":      {"user", "assistant"},
}

var enumMessages = map[string]string{
	"room_type":      "Invalid room type. Must be: Single, Double, or Suite",
	"booking_status": "Invalid status. Must be: all, Active, Canceled, or Completed",
	"user_role":      "Invalid role. Must be: guest or admin",
	"floor_pref":     "Invalid floor preference",
	"location_pref":  "Invalid room location preference",
	"trip_type":      "Invalid trip type. Must be: solo, couple, family, or business",
	"chat_role":      "Invalid role. Must be: user or assistant",
}

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

	for tag, allowed := range enums {
		validate.RegisterValidation(tag, oneOf(allowed))
	}
}

// empty values pass; combine with required when the field is mandatory
func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		for _, a := range allowed {
			if value == a {
				return true
			}
		}
		return false
	}
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	errors := make(map[string]string)
	for _, err := range validationErrors {
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
		case "gt":
			errors[field] = "Value must be greater than " + err.Param()
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "eqfield":
			errors[field] = "Must match " + err.Param()
		case "url":
			errors[field] = "Invalid URL format"
		case "uuid":
			errors[field] = "Invalid ID format"
		case "required_without":
			errors[field] = "This field is required when " + err.Param() + " is not set"
		default:
			if msg, ok := enumMessages[err.Tag()]; ok {
				errors[field] = msg
			} else {
				errors[field] = "Invalid value"
			}
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
