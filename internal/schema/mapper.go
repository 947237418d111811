package schema

import "strings"

// MapFields resolves a tenant's field_mapping against a raw source document
// (already decoded into a generic map by an input adapter) and returns the
// mapped field values plus everything left over as passthrough extras.
//
// Resolution order per target field, first match wins:
//  1. exact key match
//  2. case-insensitive key match
//  3. dotted nested path lookup (e.g. "shipment.origin.country")
//
// Any source key not consumed by a mapping is copied into extras so no data
// is silently dropped.
func MapFields(raw map[string]any, s *TenantSchema) (mapped map[string]any, extras map[string]any) {
	mapped = make(map[string]any)
	extras = make(map[string]any)
	consumed := make(map[string]bool)

	lower := make(map[string]string, len(raw))
	for k := range raw {
		lower[strings.ToLower(k)] = k
	}

	for target, candidates := range s.FieldMapping {
		value, sourceKey, found := findFieldValue(raw, lower, candidates)
		if found {
			mapped[target] = value
			if sourceKey != "" {
				consumed[sourceKey] = true
			}
			continue
		}
	}

	for k, v := range raw {
		if !consumed[k] {
			extras[k] = v
		}
	}
	return mapped, extras
}

func findFieldValue(raw map[string]any, lower map[string]string, candidates []string) (value any, sourceKey string, found bool) {
	for _, name := range candidates {
		if v, ok := raw[name]; ok {
			return v, name, true
		}
	}
	for _, name := range candidates {
		if orig, ok := lower[strings.ToLower(name)]; ok {
			return raw[orig], orig, true
		}
	}
	for _, name := range candidates {
		if strings.Contains(name, ".") {
			if v, ok := getNestedValue(raw, name); ok {
				return v, "", true // nested source key is not a top-level key; nothing to mark consumed
			}
		}
	}
	return nil, "", false
}

// getNestedValue resolves a dotted path like "a.b.c" against nested
// map[string]any values.
func getNestedValue(raw map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var cur any = raw
	for _, part := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[part]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}
