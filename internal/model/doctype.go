package model

// DocumentType is the closed document taxonomy. A document is assigned a type
// once by the classifier and keeps it for the rest of the extraction pass.
type DocumentType string

const (
	DocTypeCapitalCall  DocumentType = "capital_call_letter"
	DocTypeDistribution DocumentType = "distribution_notice"
	DocTypeValuation    DocumentType = "valuation_reports"
	DocTypeQuarterly    DocumentType = "quarterly_update_letter"
	DocTypeUnknown      DocumentType = "unknown"
)

// documentTypes lists the classifiable types in declaration order. The rule
// classifier breaks score ties by this order.
var documentTypes = []DocumentType{
	DocTypeCapitalCall,
	DocTypeDistribution,
	DocTypeValuation,
	DocTypeQuarterly,
}

// DocumentTypes returns the classifiable document types in declaration order.
func DocumentTypes() []DocumentType {
	out := make([]DocumentType, len(documentTypes))
	copy(out, documentTypes)
	return out
}

// Valid reports whether d is a member of the taxonomy (including unknown).
func (d DocumentType) Valid() bool {
	if d == DocTypeUnknown {
		return true
	}
	for _, t := range documentTypes {
		if d == t {
			return true
		}
	}
	return false
}
