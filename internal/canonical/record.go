// Package canonical defines the declaration-agnostic data model every input
// adapter normalizes into before chunking and indexing.
package canonical

import "time"

// DeclarationType enumerates the customs declaration kinds recognized across
// tenant jurisdictions.
type DeclarationType string

const (
	DeclarationTypeImport     DeclarationType = "import"
	DeclarationTypeExport     DeclarationType = "export"
	DeclarationTypeTransit    DeclarationType = "transit"
	DeclarationTypeUnknown    DeclarationType = "unknown"
)

// DeclarationStatus enumerates the processing states a declaration may carry.
type DeclarationStatus string

const (
	StatusRegistered DeclarationStatus = "registered"
	StatusReleased   DeclarationStatus = "released"
	StatusRejected   DeclarationStatus = "rejected"
	StatusCorrected  DeclarationStatus = "corrected"
	StatusUnknown    DeclarationStatus = "unknown"
)

// CanonicalRecord is the tenant- and source-agnostic representation of a
// single customs declaration, produced by every input adapter.
type CanonicalRecord struct {
	// DeclarationID is the stable identity used as the storage key; generated
	// (uuid) when DeclarationNumber is absent from the source.
	DeclarationID     string            `json:"declaration_id"`
	DeclarationNumber string            `json:"declaration_number,omitempty"`
	TenantID          string            `json:"tenant_id"`
	DeclarationType   DeclarationType   `json:"declaration_type"`
	Status            DeclarationStatus `json:"status"`
	DateIssued        *time.Time        `json:"date_issued,omitempty"`

	Manufacturer string `json:"manufacturer,omitempty"`
	Importer     string `json:"importer,omitempty"`
	Exporter     string `json:"exporter,omitempty"`

	ProductCode        string  `json:"product_code,omitempty"`
	ProductDescription string  `json:"product_description,omitempty"`
	CountryOrigin      string  `json:"country_origin,omitempty"`
	Quantity           float64 `json:"quantity,omitempty"`
	UnitOfMeasure      string  `json:"unit_of_measure,omitempty"`

	CustomsValue float64 `json:"customs_value,omitempty"`
	Currency     string  `json:"currency,omitempty"`

	Language    string     `json:"language,omitempty"`
	Version     string     `json:"version,omitempty"`
	Source      string     `json:"source,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`

	// RawText is the full textual content used for chunking (rendered from
	// the source-specific body by the input adapter).
	RawText string `json:"raw_text"`

	// FullText is the concatenation of all leaf textual values, used for
	// coverage when no ProductDescription exists.
	FullText string `json:"full_text,omitempty"`

	// Extras carries the source fields that no tenant schema mapping consumed
	// (record adapter), or the whole parsed tree under "_raw_data" (markup
	// adapter). Mapped fields without a dedicated CanonicalRecord slot are
	// not kept.
	Extras map[string]any `json:"extras,omitempty"`

	// SourceFormat records which adapter produced this record (markup,
	// record, ocr) for diagnostics and explainability.
	SourceFormat string `json:"source_format,omitempty"`

	ValidationErrors []ValidationError `json:"validation_errors,omitempty"`
}

// ValidationError describes a single field that failed normalization or
// schema validation without aborting ingestion of the whole record.
type ValidationError struct {
	Field    string `json:"field"`
	Rule     string `json:"rule"`
	Message  string `json:"message"`
	Priority string `json:"priority"` // "P0" | "P1" | "P2", P0 being the baseline fields
}

func (v ValidationError) Error() string {
	return v.Field + ": " + v.Message
}

// IsFatal reports whether the error should prevent the record from being
// indexed at all, as opposed to being carried along as a diagnostic. No
// priority is currently treated as fatal: validation failures are always
// carried alongside the record rather than aborting ingestion.
func (v ValidationError) IsFatal() bool {
	return v.Priority == "error"
}

// Chunk is a single indexable unit cut from a CanonicalRecord's text by the
// section extractor and chunker.
type Chunk struct {
	ChunkID       string         `json:"chunk_id"`
	DeclarationID string         `json:"declaration_id"`
	Content       string         `json:"content"`
	Section       string         `json:"section,omitempty"`
	ChunkIndex    int            `json:"chunk_index"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}
