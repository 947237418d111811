// Package chunk implements section extraction and semantic chunking: turning
// a CanonicalRecord's raw text and structured fields into ordered, tagged
// Chunk records ready for embedding and indexing.
package chunk

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dtxml/declarations/internal/canonical"
)

// Section is an intermediate, pre-chunk unit of declaration content: a tag,
// its merged textual content, and any domain metadata worth propagating into
// the chunks cut from it.
type Section struct {
	Tag      string
	Content  string
	Metadata map[string]any
}

var sectionPatterns = []struct {
	tag     string
	pattern *regexp.Regexp
}{
	{"header", regexp.MustCompile(`(?i)(заголовок|header|шапка)`)},
	{"declarant", regexp.MustCompile(`(?i)(декларант|declarant|заявитель)`)},
	{"goods", regexp.MustCompile(`(?i)(товары|goods|продукция|товар)`)},
	{"manufacturer", regexp.MustCompile(`(?i)(производитель|manufacturer|изготовитель)`)},
	{"importer", regexp.MustCompile(`(?i)(импортер|importer|получатель)`)},
	{"exporter", regexp.MustCompile(`(?i)(экспортер|exporter|отправитель)`)},
	{"customs_value", regexp.MustCompile(`(?i)(таможенная\s+стоимость|customs\s+value|стоимость)`)},
	{"payment", regexp.MustCompile(`(?i)(платежи|payment|оплата|таможенные\s+платежи)`)},
	{"transport", regexp.MustCompile(`(?i)(транспорт|transport|доставка)`)},
	{"documents", regexp.MustCompile(`(?i)(документы|documents|приложения)`)},
}

// ExtractSections merges structured sections (built from present
// CanonicalRecord fields) with text-derived sections (identified line-wise by
// keyword pattern), then merges entries sharing a tag.
func ExtractSections(text string, rec *canonical.CanonicalRecord) []Section {
	var sections []Section
	if rec != nil {
		sections = append(sections, structuredSections(rec)...)
	}
	sections = append(sections, textSections(text)...)
	return mergeSections(sections)
}

func structuredSections(rec *canonical.CanonicalRecord) []Section {
	var sections []Section

	var header []string
	if rec.DeclarationNumber != "" {
		header = append(header, fmt.Sprintf("Номер декларации: %s", rec.DeclarationNumber))
	}
	if rec.DateIssued != nil {
		header = append(header, fmt.Sprintf("Дата выпуска: %s", rec.DateIssued.Format("2006-01-02")))
	}
	if len(header) > 0 {
		sections = append(sections, Section{
			Tag:      "header",
			Content:  strings.Join(header, "\n"),
			Metadata: map[string]any{"type": "structured"},
		})
	}

	if rec.Manufacturer != "" {
		sections = append(sections, Section{
			Tag:      "manufacturer",
			Content:  fmt.Sprintf("Производитель: %s", rec.Manufacturer),
			Metadata: map[string]any{"manufacturer": rec.Manufacturer},
		})
	}

	if rec.Importer != "" {
		sections = append(sections, Section{
			Tag:      "importer",
			Content:  fmt.Sprintf("Импортер: %s", rec.Importer),
			Metadata: map[string]any{"importer": rec.Importer},
		})
	}

	var goods []string
	if rec.ProductCode != "" {
		goods = append(goods, fmt.Sprintf("Код товара (ТН ВЭД): %s", rec.ProductCode))
	}
	if rec.ProductDescription != "" {
		goods = append(goods, fmt.Sprintf("Описание: %s", rec.ProductDescription))
	}
	if rec.CountryOrigin != "" {
		goods = append(goods, fmt.Sprintf("Страна происхождения: %s", rec.CountryOrigin))
	}
	if rec.Quantity != 0 {
		goods = append(goods, fmt.Sprintf("Количество: %v %s", rec.Quantity, rec.UnitOfMeasure))
	}
	if len(goods) > 0 {
		sections = append(sections, Section{
			Tag:     "goods",
			Content: strings.Join(goods, "\n"),
			Metadata: map[string]any{
				"product_code":   rec.ProductCode,
				"country_origin": rec.CountryOrigin,
			},
		})
	}

	if rec.CustomsValue != 0 {
		sections = append(sections, Section{
			Tag:     "customs_value",
			Content: fmt.Sprintf("Таможенная стоимость: %v %s", rec.CustomsValue, rec.Currency),
			Metadata: map[string]any{
				"customs_value": rec.CustomsValue,
				"currency":      rec.Currency,
			},
		})
	}

	return sections
}

func textSections(text string) []Section {
	if text == "" {
		return nil
	}

	var sections []Section
	var currentTag string
	var currentLines []string

	flush := func() {
		if currentTag != "" && len(currentLines) > 0 {
			sections = append(sections, Section{
				Tag:      currentTag,
				Content:  strings.Join(currentLines, "\n"),
				Metadata: map[string]any{"type": "text"},
			})
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if tag := detectSection(line); tag != "" {
			flush()
			currentTag = tag
			currentLines = []string{line}
			continue
		}

		if currentTag == "" {
			currentTag = "general"
			currentLines = []string{line}
			continue
		}
		currentLines = append(currentLines, line)
	}
	flush()

	return sections
}

func detectSection(line string) string {
	for _, sp := range sectionPatterns {
		if sp.pattern.MatchString(line) {
			return sp.tag
		}
	}
	return ""
}

// mergeSections folds sections sharing a tag into one, joining content with a
// newline and unioning metadata, preserving first-seen order.
func mergeSections(sections []Section) []Section {
	order := make([]string, 0, len(sections))
	byTag := make(map[string]*Section, len(sections))

	for _, s := range sections {
		if existing, ok := byTag[s.Tag]; ok {
			existing.Content = existing.Content + "\n" + s.Content
			for k, v := range s.Metadata {
				existing.Metadata[k] = v
			}
			continue
		}
		merged := Section{Tag: s.Tag, Content: s.Content, Metadata: make(map[string]any, len(s.Metadata))}
		for k, v := range s.Metadata {
			merged.Metadata[k] = v
		}
		byTag[s.Tag] = &merged
		order = append(order, s.Tag)
	}

	out := make([]Section, 0, len(order))
	for _, tag := range order {
		out = append(out, *byTag[tag])
	}
	return out
}
