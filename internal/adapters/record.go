package adapters

import (
	"github.com/dtxml/declarations/internal/canonical"
	"github.com/dtxml/declarations/internal/schema"
)

// RecordAdapter accepts an already-keyed map (e.g. decoded JSON) and maps it
// onto the canonical record through the tenant's field mapper.
type RecordAdapter struct{}

func NewRecordAdapter() *RecordAdapter { return &RecordAdapter{} }

// Parse runs data through s.FieldMapping (via schema.MapFields), builds a
// CanonicalRecord from the mapped fields, keeps anything unmapped in Extras,
// normalizes, and validates.
func (a *RecordAdapter) Parse(data map[string]any, tenantID string, s *schema.TenantSchema) (*canonical.CanonicalRecord, error) {
	mapped, extras := schema.MapFields(data, s)

	rec := &canonical.CanonicalRecord{
		TenantID:           tenantID,
		DeclarationNumber:  stringField(mapped, "declaration_number"),
		Manufacturer:       stringField(mapped, "manufacturer"),
		Importer:           stringField(mapped, "importer"),
		Exporter:           stringField(mapped, "exporter"),
		ProductCode:        stringField(mapped, "product_code"),
		ProductDescription: stringField(mapped, "product_description"),
		CountryOrigin:      stringField(mapped, "country_origin"),
		Currency:           stringField(mapped, "currency"),
		UnitOfMeasure:      stringField(mapped, "unit_of_measure"),
		Version:            stringField(mapped, "version"),
		Source:             stringField(mapped, "source"),
		SourceFormat:       "record",
		Extras:             extras,
	}

	rec.DateIssued = parseDate(stringField(mapped, "date_issued"))
	rec.DeclarationType = parseDeclarationType(stringField(mapped, "declaration_type"))
	rec.Status = parseDeclarationStatus(stringField(mapped, "status"))
	rec.CustomsValue = floatField(mapped, "customs_value")
	rec.Quantity = floatField(mapped, "quantity")

	rec.FullText = fullTextFromExtras(rec, extras)
	rec.RawText = rec.FullText

	applyNormalizers(rec)
	validateAgainstSchema(rec, s)

	return rec, nil
}

// fullTextFromExtras concatenates every string-valued leaf of extras plus the
// record's own textual fields, used for search coverage when no
// product_description exists.
func fullTextFromExtras(rec *canonical.CanonicalRecord, extras map[string]any) string {
	parts := []string{rec.ProductDescription, rec.Manufacturer, rec.Importer, rec.Exporter}
	for _, v := range extras {
		if s, ok := v.(string); ok && s != "" {
			parts = append(parts, s)
		}
	}
	joined := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if joined != "" {
			joined += " "
		}
		joined += p
	}
	return joined
}
