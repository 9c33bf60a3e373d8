package handlers

import (
	"fmt"
	"regexp"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Global validator instance (reused across all handlers)
var validate = newValidator()

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func newValidator() *validator.Validate {
	v := validator.New()

	// Usernames: 5-18 chars, letters, digits and underscores.
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if len(value) < 5 || len(value) > 18 {
			return false
		}
		return usernamePattern.MatchString(value)
	})

	// Passwords: at least 8 chars with one digit and one special character.
	// The pool enforces its own policy too; matching it here gives a clean
	// 400 instead of a provider round trip.
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if len(value) < 8 {
			return false
		}
		var hasDigit, hasSpecial bool
		for _, r := range value {
			switch {
			case unicode.IsDigit(r):
				hasDigit = true
			case unicode.IsPunct(r) || unicode.IsSymbol(r):
				hasSpecial = true
			}
		}
		return hasDigit && hasSpecial
	})

	return v
}

// ValidateRequest validates a request struct using go-playground/validator.
// Returns a user-friendly error message if validation fails.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			fe := ve[0]
			return fmt.Errorf("validation failed: %s: %s", fe.Field(), formatValidationError(fe))
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "username":
		return "must be 5-18 characters using letters, numbers and underscores"
	case "password":
		return "must be at least 8 characters with a number and a special character"
	case "min":
		return fmt.Sprintf("must have a minimum of %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must have a maximum of %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
