package settings

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// NormalizeValue trims a setting value and checks it against the key's kind.
// Empty values are always accepted; consumers fall back to their defaults.
func NormalizeValue(key, value string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("setting key is required")
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	def, ok := Lookup(key)
	if !ok {
		return value, nil
	}
	switch def.Kind {
	case "email":
		if errVar := validate.Var(value, "email"); errVar != nil {
			return "", fmt.Errorf("%s must be a valid email", key)
		}
	case "url":
		if errVar := validate.Var(value, "http_url"); errVar != nil {
			return "", fmt.Errorf("%s must be an http(s) url", key)
		}
		value = strings.TrimRight(value, "/")
	}
	if key == WhatsAppNumberKey {
		digits := strings.Map(func(r rune) rune {
			if unicode.IsDigit(r) {
				return r
			}
			return -1
		}, value)
		if len(digits) < 10 {
			return "", fmt.Errorf("%s must contain at least 10 digits", key)
		}
		value = digits
	}
	return value, nil
}
