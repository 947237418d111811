package retrieval

import "strconv"

// FieldFilter is a single field's predicate: an exact match, a membership
// list, and/or a numeric range. Zero value matches everything.
type FieldFilter struct {
	Eq  any
	In  []any
	Gte *float64
	Lte *float64
	Gt  *float64
	Lt  *float64
}

// Filters maps canonical field name to predicate.
type Filters map[string]FieldFilter

// isEqualityOnly reports whether f carries only the Eq predicate — the only
// shape Qdrant's FieldCondition/MatchValue pushdown can express (per
// dt_xml/storage/vector_store.py).
func (f FieldFilter) isEqualityOnly() bool {
	return f.Eq != nil && f.In == nil && f.Gte == nil && f.Lte == nil && f.Gt == nil && f.Lt == nil
}

// SplitPushdown separates filters into the subset pushed down to the vector
// index (equality only) and the full set re-applied post-hoc, since the
// sparse channel never sees the vector index's filter at all. Resolves the
// filter-pushdown design question: richer predicates are never pushed, they
// are always caught post-fusion.
func SplitPushdown(filters Filters) (pushdown map[string]any, remainder Filters) {
	if len(filters) == 0 {
		return nil, nil
	}
	pushdown = make(map[string]any)
	for field, f := range filters {
		if f.isEqualityOnly() {
			pushdown[field] = f.Eq
		}
	}
	if len(pushdown) == 0 {
		pushdown = nil
	}
	return pushdown, filters
}

// ApplyFilters keeps only results whose Metadata (plus DeclarationID, which
// is addressable as the "declaration_id" field) satisfies every predicate in
// filters. Applied after fusion so it also covers sparse-only hits the
// vector index pushdown never saw.
func ApplyFilters(results []*FusedResult, filters Filters) []*FusedResult {
	if len(filters) == 0 {
		return results
	}

	out := make([]*FusedResult, 0, len(results))
	for _, r := range results {
		if matchesAll(r, filters) {
			out = append(out, r)
		}
	}
	return out
}

func matchesAll(r *FusedResult, filters Filters) bool {
	for field, f := range filters {
		value := fieldValue(r, field)
		if !matchesOne(value, f) {
			return false
		}
	}
	return true
}

func fieldValue(r *FusedResult, field string) any {
	if field == "declaration_id" {
		return r.DeclarationID
	}
	if field == "section" {
		return r.Section
	}
	if r.Metadata == nil {
		return nil
	}
	return r.Metadata[field]
}

func matchesOne(value any, f FieldFilter) bool {
	if f.Eq != nil && !equalAny(value, f.Eq) {
		return false
	}
	if f.In != nil {
		found := false
		for _, candidate := range f.In {
			if equalAny(value, candidate) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Gte != nil || f.Lte != nil || f.Gt != nil || f.Lt != nil {
		num, ok := asFloat(value)
		if !ok {
			return false
		}
		if f.Gte != nil && num < *f.Gte {
			return false
		}
		if f.Lte != nil && num > *f.Lte {
			return false
		}
		if f.Gt != nil && num <= *f.Gt {
			return false
		}
		if f.Lt != nil && num >= *f.Lt {
			return false
		}
	}
	return true
}

func equalAny(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as == bs
	}
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af == bf
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
