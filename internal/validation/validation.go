package validation

import (
	"strings"

	"github.com/google/uuid"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

// IsUUID reports whether s is a well-formed UUID.
func IsUUID(s string) bool {
	return uuid.Validate(s) == nil
}

// ValidateUUIDs checks a batch of UUIDs and returns the invalid ones.
func ValidateUUIDs(ids []string) (invalid []string) {
	for _, id := range ids {
		if !IsUUID(id) {
			invalid = append(invalid, id)
		}
	}
	return invalid
}

// SanitizeString strips control characters (except tab and newline) and trims
// surrounding whitespace. Applied to every free-text field coming from CSV or API.
func SanitizeString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 && r != '\t' && r != '\n' {
			continue
		}
		if r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
