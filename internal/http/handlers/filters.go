package handlers

import (
	"errors"
	"fmt"

	"github.com/dtxml/declarations/internal/retrieval"
)

var errTopKOutOfRange = errors.New("top_k must be between 1 and 100")

// parseFilters turns the request body's loosely-typed filters map into
// retrieval.Filters. Each value is either a scalar (equality) or an object
// with any of eq/in/gte/lte/gt/lt keys.
func parseFilters(raw map[string]any) (retrieval.Filters, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(retrieval.Filters, len(raw))
	for field, value := range raw {
		obj, ok := value.(map[string]any)
		if !ok {
			out[field] = retrieval.FieldFilter{Eq: value}
			continue
		}

		var f retrieval.FieldFilter
		if eq, ok := obj["eq"]; ok {
			f.Eq = eq
		}
		if in, ok := obj["in"]; ok {
			list, ok := in.([]any)
			if !ok {
				return nil, fmt.Errorf("filters.%s.in must be an array", field)
			}
			f.In = list
		}
		for key, dst := range map[string]**float64{"gte": &f.Gte, "lte": &f.Lte, "gt": &f.Gt, "lt": &f.Lt} {
			v, ok := obj[key]
			if !ok {
				continue
			}
			num, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("filters.%s.%s must be a number", field, key)
			}
			*dst = &num
		}
		out[field] = f
	}
	return out, nil
}
