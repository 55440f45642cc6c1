// Package validation turns validator failures on bound forms into the
// messages shown next to form fields.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Field limits shared by the auth and contact forms
const (
	PasswordMinLength = 6
	NameMinLength     = 2
	NameMaxLength     = 100
	MessageMinLength  = 10
)

// Messages keyed by form field and failing tag. "*" matches any tag.
var fieldMessages = map[string]map[string]string{
	"email": {
		"*": "Please enter a valid email address.",
	},
	"password": {
		"required": "Password must be at least 6 characters.",
		"min":      "Password must be at least 6 characters.",
		"*":        "Please enter a valid password.",
	},
	"confirm": {
		"eqfield": "Passwords do not match.",
		"*":       "Please confirm your password.",
	},
	"name": {
		"max": "Name must be at most 100 characters.",
		"*":   "Name must be at least 2 characters.",
	},
	"role": {
		"*": "Please choose whether you want to learn or to tutor.",
	},
	"academic_year": {
		"*": "Please choose your academic year.",
	},
	"message": {
		"max": "Message must be at most 5000 characters.",
		"*":   "Message must be at least 10 characters.",
	},
}

var registerOnce sync.Once

// Register makes gin's validator report fields by their form names
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(formName)
	})
}

func formName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return strings.ToLower(f.Name)
	}
	return name
}

// FieldErrors maps form field names to messages
type FieldErrors map[string]string

// First returns one message, preferring the order given by fields
func (fe FieldErrors) First(fields ...string) string {
	for _, f := range fields {
		if m, ok := fe[f]; ok {
			return m
		}
	}
	for _, m := range fe {
		return m
	}
	return ""
}

// Messages extracts per-field messages from a binding error. It reports
// false when err is not a validation failure.
func Messages(err error) (FieldErrors, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		if _, seen := out[field]; !seen {
			out[field] = Message(fe)
		}
	}
	return out, true
}

// Message returns the user-facing text for one field failure
func Message(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	if byTag, ok := fieldMessages[field]; ok {
		if m, ok := byTag[fe.Tag()]; ok {
			return m
		}
		if m, ok := byTag["*"]; ok {
			return m
		}
	}
	return formatValidationError(fe)
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
