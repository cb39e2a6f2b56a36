// Package store persists ingested documents and their extraction results.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/fundsight/docintel/internal/config"
	"github.com/fundsight/docintel/internal/model"
)

// DocumentFilter specifies criteria for listing documents.
type DocumentFilter struct {
	DocType model.DocumentType   `json:"doc_type,omitempty"`
	Status  model.DocumentStatus `json:"status,omitempty"`
	Limit   int                  `json:"limit,omitempty"`
	Offset  int                  `json:"offset,omitempty"`
}

// Store defines the persistence interface for ingested documents.
type Store interface {
	SaveDocument(ctx context.Context, doc *model.Document) error
	GetDocument(ctx context.Context, id string) (*model.Document, error)
	ListDocuments(ctx context.Context, filter DocumentFilter) ([]model.Document, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open constructs the configured backend.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.DSN)
	case "postgres":
		return NewPostgres(ctx, cfg.DSN, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
