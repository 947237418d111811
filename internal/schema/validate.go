package schema

import (
	"strconv"

	"github.com/dtxml/declarations/internal/canonical"
)

// baselineFields are always checked regardless of tenant configuration (P0).
var baselineFields = []string{"declaration_number", "date_issued", "declaration_type"}

// Validate checks mapped (the field_mapping output, before it's folded into
// a CanonicalRecord) against the tenant's required_for_search list and
// field_types, returning non-fatal ValidationErrors. Validate never errors
// out of ingestion: a missing field is reported, not rejected.
func Validate(mapped map[string]any, s *TenantSchema) []canonical.ValidationError {
	var errs []canonical.ValidationError

	checked := make(map[string]bool, len(baselineFields)+len(s.RequiredForSearch))
	for _, f := range baselineFields {
		checked[f] = true
	}
	for _, f := range s.RequiredForSearch {
		checked[f] = true
	}

	for field := range checked {
		if isEmpty(mapped[field]) {
			priority := "P1"
			if isBaseline(field) {
				priority = "P0"
			}
			errs = append(errs, canonical.ValidationError{
				Field:    field,
				Rule:     "required_for_search",
				Message:  "required field is missing or empty",
				Priority: priority,
			})
		}
	}

	for field, wantType := range s.FieldTypes {
		value, present := mapped[field]
		if !present || isEmpty(value) {
			continue
		}
		if !matchesType(value, wantType) {
			errs = append(errs, canonical.ValidationError{
				Field:    field,
				Rule:     "field_type:" + wantType,
				Message:  "value does not match expected type " + wantType,
				Priority: "P2",
			})
		}
	}

	return errs
}

func isBaseline(field string) bool {
	for _, f := range baselineFields {
		if f == field {
			return true
		}
	}
	return false
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}

// matchesType checks a loosely-typed value against a tenant-declared field
// type. Dates are accepted as strings (parsing is the adapter's job, not
// validation's) per spec.
func matchesType(v any, wantType string) bool {
	switch wantType {
	case "string", "date":
		_, ok := v.(string)
		return ok
	case "integer":
		switch n := v.(type) {
		case int, int64:
			return true
		case float64:
			return n == float64(int64(n))
		case string:
			_, err := strconv.ParseInt(n, 10, 64)
			return err == nil
		}
		return false
	case "float", "number":
		switch n := v.(type) {
		case int, int64, float64:
			return true
		case string:
			_, err := strconv.ParseFloat(n, 64)
			return err == nil
		}
		return false
	case "boolean":
		switch n := v.(type) {
		case bool:
			return true
		case string:
			_, err := strconv.ParseBool(n)
			return err == nil
		}
		return false
	default:
		return true
	}
}
