package model

// SourceTag records which extraction strategy produced a field value.
// Tags are per-field: a single document's result routinely mixes ai and
// regex sources across fields.
type SourceTag string

const (
	// SourceAI marks a confident model answer, possibly post-processed.
	SourceAI SourceTag = "ai"
	// SourceAIUnconfident marks a model answer below the confidence gate.
	SourceAIUnconfident SourceTag = "ai_unconfident"
	// SourceAIError marks a failed model call.
	SourceAIError SourceTag = "ai_error"
	// SourceRegex marks a deterministic fallback hit.
	SourceRegex SourceTag = "regex"
	// SourceAIContext marks a currency recovered from proximity search in the
	// raw text rather than a direct model answer.
	SourceAIContext SourceTag = "ai_context"
	// SourceUnset means neither strategy attempted or produced anything.
	SourceUnset SourceTag = "unset"
)

// FieldValue is the per-field extraction outcome. Value is nil when neither
// strategy produced a confident result; Source still records what happened.
type FieldValue struct {
	Value  *string   `json:"value"`
	Source SourceTag `json:"source"`
}

// NewFieldValue builds a populated FieldValue.
func NewFieldValue(value string, source SourceTag) FieldValue {
	return FieldValue{Value: &value, Source: source}
}

// NullField builds an empty FieldValue carrying only provenance.
func NullField(source SourceTag) FieldValue {
	return FieldValue{Source: source}
}

// IsSet reports whether the field holds a non-empty value.
func (f FieldValue) IsSet() bool {
	return f.Value != nil && *f.Value != ""
}

// RawModelResponse is the raw QA output kept for debugging. Never required
// for correctness.
type RawModelResponse struct {
	Answer string  `json:"answer,omitempty"`
	Score  float64 `json:"score,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// KPI is one metric record extracted from a quarterly update.
type KPI struct {
	Metric    string `json:"metric"`
	Value     string `json:"value"`
	Currency  string `json:"currency,omitempty"`
	PctChange string `json:"pct_change,omitempty"`
	Raw       string `json:"raw"`
}

// ExtractionResult is the merged output of one classification/extraction pass.
// Fields always contains every field the document type's schema declares, with
// nil values for misses, so consumers never see dropped keys. The quarterly
// variant's list payloads live in KPIs and Highlights; their schema entries in
// Fields carry provenance only.
type ExtractionResult struct {
	DocType    DocumentType                `json:"doc_type"`
	Fields     map[string]FieldValue       `json:"fields"`
	KPIs       []KPI                       `json:"kpis,omitempty"`
	Highlights []string                    `json:"highlights,omitempty"`
	RawDebug   map[string]RawModelResponse `json:"raw_debug,omitempty"`
}

// NewExtractionResult builds a result pre-populated with an unset FieldValue
// for every schema field.
func NewExtractionResult(docType DocumentType, schema []string) ExtractionResult {
	fields := make(map[string]FieldValue, len(schema))
	for _, name := range schema {
		fields[name] = NullField(SourceUnset)
	}
	return ExtractionResult{
		DocType:  docType,
		Fields:   fields,
		RawDebug: make(map[string]RawModelResponse),
	}
}

// EnsureFields backfills any schema field missing from Fields with an unset
// value. Guards the no-missing-keys invariant at the orchestrator boundary.
func (r *ExtractionResult) EnsureFields(schema []string) {
	if r.Fields == nil {
		r.Fields = make(map[string]FieldValue, len(schema))
	}
	for _, name := range schema {
		if _, ok := r.Fields[name]; !ok {
			r.Fields[name] = NullField(SourceUnset)
		}
	}
}
