package adapters

import (
	"regexp"
	"strings"

	"github.com/dtxml/declarations/internal/canonical"
	"github.com/dtxml/declarations/internal/normalize"
	"github.com/dtxml/declarations/internal/schema"
)

var ocrPatterns = map[string][]*regexp.Regexp{
	"declaration_number": {
		regexp.MustCompile(`(?i)номер\s+декларации[:\s]+([A-Z0-9\-/]+)`),
		regexp.MustCompile(`(?i)declaration\s+number[:\s]+([A-Z0-9\-/]+)`),
		regexp.MustCompile(`(?i)№\s*декларации[:\s]+([A-Z0-9\-/]+)`),
		regexp.MustCompile(`(?i)ДТ[:\s]+([0-9\-]+)`),
	},
	"date_issued": {
		regexp.MustCompile(`(?i)дата\s+выпуска[:\s]+(\d{1,2}[./]\d{1,2}[./]\d{2,4})`),
		regexp.MustCompile(`(?i)date\s+issued[:\s]+(\d{1,2}[./]\d{1,2}[./]\d{2,4})`),
		regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`),
		regexp.MustCompile(`(\d{1,2}\.\d{1,2}\.\d{4})`),
	},
	"manufacturer": {
		regexp.MustCompile(`(?i)производитель[:\s]+([А-ЯЁA-Z][А-ЯЁа-яёA-Za-z \t"']+)`),
		regexp.MustCompile(`(?i)manufacturer[:\s]+([A-Z][A-Za-z \t"']+)`),
		regexp.MustCompile(`(?i)изготовитель[:\s]+([А-ЯЁA-Z][А-ЯЁа-яёA-Za-z \t"']+)`),
	},
	"product_code": {
		regexp.MustCompile(`(?i)код\s+товара[:\s]+(\d{10})`),
		regexp.MustCompile(`(?i)ТН\s*ВЭД[:\s]+(\d{10})`),
		regexp.MustCompile(`(?i)product\s+code[:\s]+(\d{10})`),
		regexp.MustCompile(`(?i)HS\s+code[:\s]+(\d{6,10})`),
	},
	"product_description": {
		regexp.MustCompile(`(?i)описание\s+товара[:\s]+(.+?)(?:\n|код|стоимость|$)`),
		regexp.MustCompile(`(?i)product\s+description[:\s]+(.+?)(?:\n|code|value|$)`),
		regexp.MustCompile(`(?i)наименование\s+товара[:\s]+(.+?)(?:\n|код|стоимость|$)`),
	},
	"importer": {
		regexp.MustCompile(`(?i)импортер[:\s]+([А-ЯЁA-Z][А-ЯЁа-яёA-Za-z \t"']+)`),
		regexp.MustCompile(`(?i)importer[:\s]+([A-Z][A-Za-z \t"']+)`),
		regexp.MustCompile(`(?i)получатель[:\s]+([А-ЯЁA-Z][А-ЯЁа-яёA-Za-z \t"']+)`),
	},
	"country_origin": {
		regexp.MustCompile(`(?i)страна\s+происхождения[:\s]+([A-Z]{2})`),
		regexp.MustCompile(`(?i)country\s+of\s+origin[:\s]+([A-Z]{2})`),
		regexp.MustCompile(`(?i)происхождение[:\s]+([А-ЯЁ]{2}|[A-Z]{2})`),
	},
	"customs_value": {
		regexp.MustCompile(`(?i)таможенная\s+стоимость[:\s]+([\d\s,.]+)`),
		regexp.MustCompile(`(?i)customs\s+value[:\s]+([\d\s,.]+)`),
		regexp.MustCompile(`(?i)стоимость[:\s]+([\d\s,.]+)`),
	},
	"currency": {
		regexp.MustCompile(`(?i)валюта[:\s]+([A-Z]{3})`),
		regexp.MustCompile(`(?i)currency[:\s]+([A-Z]{3})`),
	},
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// OCRAdapter extracts fields from unstructured OCR text via a fixed regex
// catalogue per canonical field, post-cleaning each match.
type OCRAdapter struct{}

func NewOCRAdapter() *OCRAdapter { return &OCRAdapter{} }

// Parse applies the regex catalogue to text, builds a CanonicalRecord from
// whatever matched, and retains the full OCR text as FullText/RawText.
func (a *OCRAdapter) Parse(text string, tenantID string, s *schema.TenantSchema) (*canonical.CanonicalRecord, error) {
	extracted := extractOCRFields(text)

	rec := &canonical.CanonicalRecord{
		TenantID:           tenantID,
		DeclarationNumber:  extracted["declaration_number"],
		Manufacturer:       extracted["manufacturer"],
		Importer:           extracted["importer"],
		ProductCode:        extracted["product_code"],
		ProductDescription: extracted["product_description"],
		CountryOrigin:      extracted["country_origin"],
		Currency:           extracted["currency"],
		SourceFormat:       "ocr",
		RawText:            text,
		FullText:           text,
	}

	rec.DateIssued = parseDate(extracted["date_issued"])
	rec.DeclarationType = parseDeclarationType("")
	rec.Status = parseDeclarationStatus("")
	if cv := extracted["customs_value"]; cv != "" {
		rec.CustomsValue, _ = normalize.Float(cv)
	}

	applyNormalizers(rec)
	validateAgainstSchema(rec, s)

	return rec, nil
}

func extractOCRFields(text string) map[string]string {
	extracted := make(map[string]string, len(ocrPatterns))
	for field, patterns := range ocrPatterns {
		for _, p := range patterns {
			m := p.FindStringSubmatch(text)
			if len(m) < 2 {
				continue
			}
			value := cleanOCRValue(m[1])
			if value != "" {
				extracted[field] = value
				break
			}
		}
	}
	return extracted
}

func cleanOCRValue(raw string) string {
	v := whitespaceRun.ReplaceAllString(strings.TrimSpace(raw), " ")
	return strings.Trim(v, `"'«» `)
}
