package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundsight/docintel/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testDocument(docType model.DocumentType) *model.Document {
	result := model.NewExtractionResult(docType, []string{"fund_id", "currency"})
	result.Fields["fund_id"] = model.NewFieldValue("Acme Growth Fund III, LP", model.SourceRegex)
	return &model.Document{
		ID:         uuid.New().String(),
		Filename:   "notice.pdf",
		DocType:    docType,
		RawText:    "Capital Call Notice",
		Result:     result,
		Status:     model.StatusIngested,
		IngestedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestSQLiteStore_SaveAndGetDocument(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	doc := testDocument(model.DocTypeCapitalCall)
	require.NoError(t, s.SaveDocument(ctx, doc))

	got, err := s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, model.DocTypeCapitalCall, got.DocType)
	assert.Equal(t, "Capital Call Notice", got.RawText)
	require.Contains(t, got.Result.Fields, "fund_id")
	require.NotNil(t, got.Result.Fields["fund_id"].Value)
	assert.Equal(t, "Acme Growth Fund III, LP", *got.Result.Fields["fund_id"].Value)

	// The null invariant survives the round trip.
	require.Contains(t, got.Result.Fields, "currency")
	assert.Nil(t, got.Result.Fields["currency"].Value)
}

func TestSQLiteStore_GetDocument_NotFound(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.GetDocument(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteStore_ListDocuments(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SaveDocument(ctx, testDocument(model.DocTypeCapitalCall)))
	require.NoError(t, s.SaveDocument(ctx, testDocument(model.DocTypeCapitalCall)))
	require.NoError(t, s.SaveDocument(ctx, testDocument(model.DocTypeDistribution)))

	all, err := s.ListDocuments(ctx, DocumentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	calls, err := s.ListDocuments(ctx, DocumentFilter{DocType: model.DocTypeCapitalCall})
	require.NoError(t, err)
	assert.Len(t, calls, 2)

	limited, err := s.ListDocuments(ctx, DocumentFilter{Limit: 1, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
