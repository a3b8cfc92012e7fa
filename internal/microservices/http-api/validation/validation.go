// Package validation holds the field rules shared by request binding and the
// service layer.
package validation

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	UsernameMaxLength = 150
	EmailMaxLength    = 254
	NameMaxLength     = 256
	SlugMaxLength     = 50
	MinScore          = 1
	MaxScore          = 10
	MinYear           = 1

	// ReservedUsername is the path segment of the self profile endpoint.
	ReservedUsername = "me"
)

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// Username returns a user facing message when s is not an acceptable username.
func Username(s string) (string, bool) {
	switch {
	case s == "":
		return "this field is required", false
	case s == ReservedUsername:
		return `username "me" is not allowed`, false
	case len(s) > UsernameMaxLength:
		return "ensure this field has no more than 150 characters", false
	case !usernamePattern.MatchString(s):
		return "letters, digits and @/./+/-/_ only", false
	}
	return "", true
}

// Slug returns a user facing message when s is not an acceptable slug.
func Slug(s string) (string, bool) {
	switch {
	case s == "":
		return "this field is required", false
	case len(s) > SlugMaxLength:
		return "ensure this field has no more than 50 characters", false
	case !slugPattern.MatchString(s):
		return "letters, numbers, underscores or hyphens only", false
	}
	return "", true
}

// Year checks 1 <= year <= currentYear.
func Year(year, currentYear int) (string, bool) {
	if year < MinYear || year > currentYear {
		return "the year is specified incorrectly", false
	}
	return "", true
}

// Score checks the review score bounds.
func Score(score int) (string, bool) {
	if score < MinScore || score > MaxScore {
		return "score must be an integer from 1 to 10", false
	}
	return "", true
}

// Register installs the custom tags `username` and `slug` and makes field
// errors report json names.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		_, ok := Username(fl.Field().String())
		return ok
	}); err != nil {
		return err
	}
	return v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		_, ok := Slug(fl.Field().String())
		return ok
	})
}

// Messages flattens validator errors into field -> message.
func Messages(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "username":
		msg, _ := Username(stringValue(fe.Value()))
		return msg
	case "slug":
		msg, _ := Slug(stringValue(fe.Value()))
		return msg
	case "min":
		return "ensure this value is greater than or equal to " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "ensure this field has no more than " + fe.Param() + " characters"
		}
		return "ensure this value is less than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	}
	return "invalid value"
}

func stringValue(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case *string:
		if s != nil {
			return *s
		}
	}
	return ""
}
