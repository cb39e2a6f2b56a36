package model

import "time"

// DocumentStatus tracks a stored document through ingestion.
type DocumentStatus string

const (
	StatusIngested DocumentStatus = "ingested"
	StatusFailed   DocumentStatus = "failed"
)

// Document is the stored record for one ingested document.
type Document struct {
	ID         string           `json:"id"`
	Filename   string           `json:"filename"`
	DocType    DocumentType     `json:"doc_type"`
	RawText    string           `json:"raw_text,omitempty"`
	Result     ExtractionResult `json:"result"`
	Status     DocumentStatus   `json:"status"`
	IngestedAt time.Time        `json:"ingest_ts"`
}
