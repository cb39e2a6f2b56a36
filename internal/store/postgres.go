package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/fundsight/docintel/internal/db"
	"github.com/fundsight/docintel/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_document": `INSERT INTO documents (id, filename, doc_type, raw_text, result, status, ingest_ts) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
	"get_document":    `SELECT id, filename, doc_type, raw_text, result, status, ingest_ts FROM documents WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS documents (
	id        TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	filename  TEXT NOT NULL,
	doc_type  TEXT NOT NULL DEFAULT 'unknown',
	raw_text  TEXT,
	result    JSONB NOT NULL,
	status    TEXT NOT NULL DEFAULT 'ingested',
	ingest_ts TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_documents_doc_type ON documents(doc_type);
CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_ingest_ts ON documents(ingest_ts DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveDocument(ctx context.Context, doc *model.Document) error {
	if doc.IngestedAt.IsZero() {
		doc.IngestedAt = time.Now().UTC()
	}

	resultJSON, err := json.Marshal(doc.Result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (id, filename, doc_type, raw_text, result, status, ingest_ts) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		doc.ID, doc.Filename, string(doc.DocType), doc.RawText, resultJSON, string(doc.Status), doc.IngestedAt,
	)
	return eris.Wrapf(err, "postgres: insert document %s", doc.ID)
}

func (s *PostgresStore) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	var d model.Document
	var rawText *string
	var resultJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, filename, doc_type, raw_text, result, status, ingest_ts FROM documents WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.Filename, &d.DocType, &rawText, &resultJSON, &d.Status, &d.IngestedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Errorf("document not found: %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get document %s", id)
	}

	if rawText != nil {
		d.RawText = *rawText
	}
	if err := json.Unmarshal(resultJSON, &d.Result); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal result")
	}
	return &d, nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context, filter DocumentFilter) ([]model.Document, error) {
	query := `SELECT id, filename, doc_type, raw_text, result, status, ingest_ts FROM documents WHERE true`
	args := []any{}
	argIdx := 1

	if filter.DocType != "" {
		query += fmt.Sprintf(` AND doc_type = $%d`, argIdx)
		args = append(args, string(filter.DocType))
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += ` ORDER BY ingest_ts DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list documents")
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		var d model.Document
		var rawText *string
		var resultJSON []byte

		if err := rows.Scan(&d.ID, &d.Filename, &d.DocType, &rawText, &resultJSON, &d.Status, &d.IngestedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan document")
		}
		if rawText != nil {
			d.RawText = *rawText
		}
		if err := json.Unmarshal(resultJSON, &d.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
		docs = append(docs, d)
	}
	return docs, eris.Wrap(rows.Err(), "postgres: list documents iterate")
}
