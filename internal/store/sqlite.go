package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/fundsight/docintel/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS documents (
	id        TEXT PRIMARY KEY,
	filename  TEXT NOT NULL,
	doc_type  TEXT NOT NULL DEFAULT 'unknown',
	raw_text  TEXT,
	result    TEXT NOT NULL,
	status    TEXT NOT NULL DEFAULT 'ingested',
	ingest_ts DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_documents_doc_type ON documents(doc_type);
CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_ingest_ts ON documents(ingest_ts);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveDocument(ctx context.Context, doc *model.Document) error {
	if doc.IngestedAt.IsZero() {
		doc.IngestedAt = time.Now().UTC()
	}

	resultJSON, err := json.Marshal(doc.Result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal result")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (id, filename, doc_type, raw_text, result, status, ingest_ts) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Filename, string(doc.DocType), doc.RawText, string(resultJSON), string(doc.Status), doc.IngestedAt,
	)
	return eris.Wrapf(err, "sqlite: insert document %s", doc.ID)
}

func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filename, doc_type, raw_text, result, status, ingest_ts FROM documents WHERE id = ?`,
		id,
	)
	return scanDocument(row)
}

func (s *SQLiteStore) ListDocuments(ctx context.Context, filter DocumentFilter) ([]model.Document, error) {
	query := `SELECT id, filename, doc_type, raw_text, result, status, ingest_ts FROM documents WHERE 1=1`
	var args []any

	if filter.DocType != "" {
		query += ` AND doc_type = ?`
		args = append(args, string(filter.DocType))
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY ingest_ts DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list documents")
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *d)
	}
	return docs, eris.Wrap(rows.Err(), "sqlite: list documents iterate")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanDocument(row scannable) (*model.Document, error) {
	var d model.Document
	var rawText sql.NullString
	var resultJSON string

	err := row.Scan(&d.ID, &d.Filename, &d.DocType, &rawText, &resultJSON, &d.Status, &d.IngestedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("document not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan document")
	}

	d.RawText = rawText.String
	if err := json.Unmarshal([]byte(resultJSON), &d.Result); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal result")
	}
	return &d, nil
}
