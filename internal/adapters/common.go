// Package adapters implements the three input adapters that turn a
// source-specific declaration payload into a canonical.CanonicalRecord:
// markup (XML-like), record (already-keyed map), and OCR (unstructured text).
package adapters

import (
	"strings"
	"time"

	"github.com/dtxml/declarations/internal/canonical"
	"github.com/dtxml/declarations/internal/normalize"
	"github.com/dtxml/declarations/internal/schema"
)

// dateFormats are tried in order; the first that parses wins.
var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
	"02.01.2006",
	"02/01/2006",
}

func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

func parseDeclarationType(raw string) canonical.DeclarationType {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "export") || strings.Contains(lower, "экспорт"):
		return canonical.DeclarationTypeExport
	case strings.Contains(lower, "transit") || strings.Contains(lower, "транзит"):
		return canonical.DeclarationTypeTransit
	case lower == "":
		return canonical.DeclarationTypeImport
	default:
		return canonical.DeclarationTypeImport
	}
}

func parseDeclarationStatus(raw string) canonical.DeclarationStatus {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "released") || strings.Contains(lower, "выпущен") || strings.Contains(lower, "clear"):
		return canonical.StatusReleased
	case strings.Contains(lower, "rejected") || strings.Contains(lower, "отказ"):
		return canonical.StatusRejected
	case strings.Contains(lower, "corrected") || strings.Contains(lower, "исправлен"):
		return canonical.StatusCorrected
	case lower == "":
		return canonical.StatusRegistered
	default:
		return canonical.StatusRegistered
	}
}

// applyNormalizers rewrites the loosely-typed fields already set on rec with
// their normalized forms, in place. This is the one pass every adapter
// output goes through before validation.
func applyNormalizers(rec *canonical.CanonicalRecord) {
	if rec.Manufacturer != "" {
		rec.Manufacturer = normalize.Company(rec.Manufacturer)
	}
	if rec.Importer != "" {
		rec.Importer = normalize.Company(rec.Importer)
	}
	if rec.Exporter != "" {
		rec.Exporter = normalize.Company(rec.Exporter)
	}
	if rec.ProductCode != "" {
		rec.ProductCode = normalize.ProductCode(rec.ProductCode)
	}
	if rec.CountryOrigin != "" {
		if c, ok := normalize.Country(rec.CountryOrigin); ok {
			rec.CountryOrigin = c
		}
	}
	if rec.Currency != "" {
		if c, ok := normalize.Currency(rec.Currency); ok {
			rec.Currency = c
		}
	}
	if rec.Language == "" {
		text := rec.FullText
		if text == "" {
			text = rec.RawText
		}
		rec.Language = normalize.DetectLanguage(text)
	}
}

// validateAgainstSchema runs schema.Validate over a raw mapped-field view of
// rec (the fields the mapper produced, keyed by canonical field name) and
// attaches the resulting non-fatal errors.
func validateAgainstSchema(rec *canonical.CanonicalRecord, s *schema.TenantSchema) {
	if s == nil {
		return
	}
	mapped := map[string]any{
		"declaration_number": rec.DeclarationNumber,
		"date_issued":        rec.DateIssued,
		"declaration_type":   string(rec.DeclarationType),
		"manufacturer":       rec.Manufacturer,
		"importer":           rec.Importer,
		"exporter":           rec.Exporter,
		"product_code":       rec.ProductCode,
		"country_origin":     rec.CountryOrigin,
		"customs_value":      rec.CustomsValue,
		"currency":           rec.Currency,
	}
	if rec.DateIssued != nil {
		mapped["date_issued"] = rec.DateIssued.Format(time.RFC3339)
	} else {
		mapped["date_issued"] = ""
	}
	rec.ValidationErrors = append(rec.ValidationErrors, schema.Validate(mapped, s)...)
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func floatField(m map[string]any, key string) float64 {
	raw := stringField(m, key)
	if raw == "" {
		return 0
	}
	f, _ := normalize.Float(raw)
	return f
}
