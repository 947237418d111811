package adapters

import (
	"fmt"
	"strings"

	"github.com/dtxml/declarations/internal/canonical"
	"github.com/dtxml/declarations/internal/normalize"
	"github.com/dtxml/declarations/internal/schema"
)

// rootSynonyms are the candidate top-level element names searched, in
// priority order, for the declaration root. If none match, the first
// top-level key is used — not an error, not a concatenation.
var rootSynonyms = []string{
	"declaration", "Declaration", "Декларация", "customs_declaration", "CustomsDeclaration",
}

var fieldSynonyms = map[string][]string{
	"declaration_number":  {"declaration_number", "declarationNumber", "НомерДекларации", "number"},
	"date_issued":         {"date_issued", "dateIssued", "ДатаВыпуска", "date", "issue_date"},
	"declaration_type":    {"declaration_type", "declarationType", "ТипДекларации", "type"},
	"status":              {"status", "Статус", "state"},
	"manufacturer":        {"manufacturer", "Производитель", "producer", "producer_name"},
	"importer":            {"importer", "Импортер", "importer_name", "consignee"},
	"exporter":            {"exporter", "Экспортер", "exporter_name", "consignor"},
	"product_code":        {"product_code", "productCode", "КодТовара", "tn_ved", "hs_code"},
	"product_description": {"product_description", "productDescription", "ОписаниеТовара", "description"},
	"country_origin":      {"country_origin", "countryOrigin", "СтранаПроисхождения", "origin_country"},
	"customs_value":       {"customs_value", "customsValue", "ТаможеннаяСтоимость", "value"},
	"currency":            {"currency", "Валюта", "currency_code"},
	"quantity":            {"quantity", "Количество", "qty", "amount"},
	"unit_of_measure":     {"unit_of_measure", "unitOfMeasure", "ЕдиницаИзмерения", "unit"},
	"version":             {"version", "Версия", "schema_version"},
	"source":              {"source", "Источник", "source_system"},
}

// MarkupAdapter parses XML-like declaration content into a CanonicalRecord
// using a fixed root/tag synonym table (not schema-driven — the tenant field
// mapper is reserved for the record adapter).
type MarkupAdapter struct{}

func NewMarkupAdapter() *MarkupAdapter { return &MarkupAdapter{} }

// Parse decodes xmlContent, locates the declaration root, extracts every
// known field by synonym, normalizes them, and validates against s (which
// may be nil to skip validation).
func (a *MarkupAdapter) Parse(xmlContent []byte, tenantID string, s *schema.TenantSchema) (*canonical.CanonicalRecord, error) {
	parsed, err := decodeXMLToMap(xmlContent)
	if err != nil {
		return nil, fmt.Errorf("adapters: parse markup: %w", err)
	}

	root := findDeclarationRoot(parsed)

	rec := &canonical.CanonicalRecord{
		TenantID:          tenantID,
		DeclarationNumber: extractField(root, fieldSynonyms["declaration_number"]),
		Manufacturer:      extractField(root, fieldSynonyms["manufacturer"]),
		Importer:          extractField(root, fieldSynonyms["importer"]),
		Exporter:          extractField(root, fieldSynonyms["exporter"]),
		ProductCode:       extractField(root, fieldSynonyms["product_code"]),
		ProductDescription: extractField(root, fieldSynonyms["product_description"]),
		CountryOrigin:     extractField(root, fieldSynonyms["country_origin"]),
		Currency:          extractField(root, fieldSynonyms["currency"]),
		UnitOfMeasure:     extractField(root, fieldSynonyms["unit_of_measure"]),
		Version:           extractField(root, fieldSynonyms["version"]),
		Source:            extractField(root, fieldSynonyms["source"]),
		SourceFormat:      "markup",
	}

	rec.DateIssued = parseDate(extractField(root, fieldSynonyms["date_issued"]))
	rec.DeclarationType = parseDeclarationType(extractField(root, fieldSynonyms["declaration_type"]))
	rec.Status = parseDeclarationStatus(extractField(root, fieldSynonyms["status"]))

	if cv := extractField(root, fieldSynonyms["customs_value"]); cv != "" {
		rec.CustomsValue, _ = normalize.Float(cv)
	}
	if qty := extractField(root, fieldSynonyms["quantity"]); qty != "" {
		rec.Quantity, _ = normalize.Float(qty)
	}

	rec.FullText = extractFullText(root)
	rec.RawText = rec.FullText
	rec.Extras = map[string]any{"_raw_data": root}

	applyNormalizers(rec)
	validateAgainstSchema(rec, s)

	return rec, nil
}

func findDeclarationRoot(parsed map[string]any) map[string]any {
	for _, candidate := range rootSynonyms {
		if v, ok := parsed[candidate]; ok {
			if m, ok := v.(map[string]any); ok {
				return m
			}
		}
	}
	for _, v := range parsed {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return parsed
}

// extractField tries each synonym against a (possibly dotted, for nested
// lookup) path and returns the first textual match.
func extractField(data map[string]any, synonyms []string) string {
	for _, key := range synonyms {
		if v, ok := getNestedValue(data, key); ok {
			return stringify(v)
		}
	}
	return ""
}

func getNestedValue(data map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var cur any = data
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

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		var parts []string
		for _, item := range t {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// extractFullText walks the parsed tree depth-first, concatenating every
// string leaf. Sibling elements are visited in Go map iteration order, so the
// result does not follow document order.
func extractFullText(data map[string]any) string {
	var parts []string
	var walk func(any)
	walk = func(v any) {
		switch t := v.(type) {
		case map[string]any:
			for _, child := range t {
				walk(child)
			}
		case []any:
			for _, child := range t {
				walk(child)
			}
		case string:
			if t != "" {
				parts = append(parts, t)
			}
		}
	}
	walk(data)
	return strings.Join(parts, " ")
}
