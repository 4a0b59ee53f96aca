package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report form field names rather than Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// messages maps field -> validator tag -> message. The "*" tag catches the rest.
type messages map[string]map[string]string

func (m messages) lookup(field, tag string) string {
	byTag, ok := m[field]
	if !ok {
		return "Invalid value"
	}
	if msg, ok := byTag[tag]; ok {
		return msg
	}
	if msg, ok := byTag["*"]; ok {
		return msg
	}
	return "Invalid value"
}

// check runs struct validation and collects messages into errs
func check(fields interface{}, msgs messages, errs FieldErrors) {
	err := validate.Struct(fields)
	if err == nil {
		return
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError only happens for a non-struct argument
		panic(err)
	}

	for _, fe := range verrs {
		msg := msgs.lookup(fe.Field(), fe.Tag())
		if !containsMessage(errs[fe.Field()], msg) {
			errs.Add(fe.Field(), msg)
		}
	}
}

func containsMessage(list []string, msg string) bool {
	for _, m := range list {
		if m == msg {
			return true
		}
	}
	return false
}

// parseAmount coerces a form value to a decimal. Blank or malformed input
// coerces to zero so the positivity rule reports it.
func parseAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}
