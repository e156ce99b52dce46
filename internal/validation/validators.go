package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Report field names from json tags so error messages match the wire
	// format clients actually send.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// Message converts a validation failure into the client-facing message for
// the first failing field.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", fe.Field())
	case "email":
		return "Invalid email format"
	case "min":
		if fe.Field() == "password" {
			return "Password must be at least 8 characters"
		}
		return fmt.Sprintf("Field '%s' is too short", fe.Field())
	case "max":
		if fe.Field() == "password" {
			return "Password must be at most 72 characters"
		}
		return fmt.Sprintf("Field '%s' is too long", fe.Field())
	default:
		return fmt.Sprintf("Field '%s' is invalid", fe.Field())
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}
