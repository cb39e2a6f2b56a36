// Package extract implements the per-type field extraction cascade: an
// AI-first pass with per-field confidence gating, merged with deterministic
// regex fallbacks, recording provenance for every field.
package extract

import (
	_ "embed"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/fundsight/docintel/internal/model"
)

//go:embed schema.yaml
var schemaYAML []byte

// FieldKind selects the post-processing applied to a field's raw value.
type FieldKind string

const (
	// KindText stores the trimmed answer verbatim.
	KindText FieldKind = "text"
	// KindDate normalizes to an ISO-8601 calendar date.
	KindDate FieldKind = "date"
	// KindMoney normalizes through the amount parser and may backfill a
	// sibling currency field.
	KindMoney FieldKind = "money"
	// KindCurrency stores a currency sign or ISO code.
	KindCurrency FieldKind = "currency"
	// KindCategorical maps the answer onto a closed label set.
	KindCategorical FieldKind = "categorical"
	// KindMethodology canonicalizes valuation approach names.
	KindMethodology FieldKind = "methodology"
	// KindNumber keeps the first numeric literal in the answer.
	KindNumber FieldKind = "number"
	// KindList marks list-valued fields (quarterly KPIs, highlights) whose
	// payloads live outside the scalar field map.
	KindList FieldKind = "list"
)

var validKinds = map[FieldKind]bool{
	KindText:        true,
	KindDate:        true,
	KindMoney:       true,
	KindCurrency:    true,
	KindCategorical: true,
	KindMethodology: true,
	KindNumber:      true,
	KindList:        true,
}

// Category is one label of a categorical field with its trigger keywords.
type Category struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// FieldSpec declares one schema field. A field without a question is never
// asked of the model and can only be filled by fallback stages.
type FieldSpec struct {
	Name          string     `yaml:"name"`
	Kind          FieldKind  `yaml:"kind"`
	Question      string     `yaml:"question"`
	CurrencyField string     `yaml:"currency_field"`
	Categories    []Category `yaml:"categories"`
}

// TypeSchema is the ordered field schema for one document type.
type TypeSchema struct {
	ContextKeyword string      `yaml:"context_keyword"`
	Fields         []FieldSpec `yaml:"fields"`
	Metrics        []string    `yaml:"metrics"`
}

// FieldNames returns the declared field names in schema order.
func (t TypeSchema) FieldNames() []string {
	names := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Schema holds the field schemas for every extractable document type.
type Schema struct {
	Types map[string]TypeSchema `yaml:"types"`
}

// ForType looks up the schema for a document type.
func (s *Schema) ForType(dt model.DocumentType) (TypeSchema, bool) {
	ts, ok := s.Types[string(dt)]
	return ts, ok
}

// LoadSchema parses and validates the embedded field schema.
func LoadSchema() (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(schemaYAML, &s); err != nil {
		return nil, eris.Wrap(err, "extract: parse schema")
	}
	for typeName, ts := range s.Types {
		if !model.DocumentType(typeName).Valid() {
			return nil, eris.Errorf("extract: schema declares unknown document type %q", typeName)
		}
		if len(ts.Fields) == 0 {
			return nil, eris.Errorf("extract: schema for %s declares no fields", typeName)
		}
		for _, f := range ts.Fields {
			if f.Name == "" {
				return nil, eris.Errorf("extract: schema for %s has an unnamed field", typeName)
			}
			if !validKinds[f.Kind] {
				return nil, eris.Errorf("extract: field %s.%s has unknown kind %q", typeName, f.Name, f.Kind)
			}
			if f.Kind == KindCategorical && len(f.Categories) == 0 {
				return nil, eris.Errorf("extract: categorical field %s.%s declares no categories", typeName, f.Name)
			}
		}
	}
	return &s, nil
}
