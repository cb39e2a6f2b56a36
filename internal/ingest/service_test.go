package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundsight/docintel/internal/classify"
	"github.com/fundsight/docintel/internal/config"
	"github.com/fundsight/docintel/internal/extract"
	"github.com/fundsight/docintel/internal/model"
	"github.com/fundsight/docintel/internal/store"
)

func newTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()

	cfg := config.AIConfig{
		Enabled:           false,
		ClassifyThreshold: 0.55,
		MinScore:          0.20,
		QuarterlyMinScore: 0.15,
		MaxKPIs:           12,
		MaxHighlights:     8,
		ContextChars:      4000,
		ClassifyChars:     1500,
	}

	extractor, err := extract.New(nil, cfg)
	require.NoError(t, err)

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "ingest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	return NewService(classify.New(nil, cfg), extractor, st), st
}

func TestIngestFile_TextDocument(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "notice.txt")
	text := "Capital Call Notice\n" +
		"Acme Growth Fund III, LP\n" +
		"LP ID: LP-0042\n" +
		"Total Capital Call: $750,000\n" +
		"Due Date: March 3, 2020\n"
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	doc, err := svc.IngestFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, model.DocTypeCapitalCall, doc.DocType)
	assert.Equal(t, model.StatusIngested, doc.Status)
	assert.Equal(t, "notice.txt", doc.Filename)

	require.Contains(t, doc.Result.Fields, "call_amount")
	require.NotNil(t, doc.Result.Fields["call_amount"].Value)
	assert.Equal(t, "750000", *doc.Result.Fields["call_amount"].Value)
	assert.Equal(t, model.SourceRegex, doc.Result.Fields["call_amount"].Source)

	// Persisted and retrievable.
	got, err := st.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.DocType, got.DocType)
}

func TestIngestFile_UnreadableFileRecordedAsFailed(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	doc, err := svc.IngestFile(ctx, filepath.Join(t.TempDir(), "missing.pdf"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, doc.Status)
	assert.Equal(t, model.DocTypeUnknown, doc.DocType)

	got, err := st.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, got.Status)
}

func TestIngestBytes_InvalidPDFRecordedAsFailed(t *testing.T) {
	svc, _ := newTestService(t)

	doc, err := svc.IngestBytes(context.Background(), "broken.pdf", []byte("not a pdf"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, doc.Status)
	assert.Equal(t, model.DocTypeUnknown, doc.DocType)
}

func TestIngestBytes_TextPassthrough(t *testing.T) {
	svc, _ := newTestService(t)

	doc, err := svc.IngestBytes(context.Background(), "notice.txt",
		[]byte("Distribution Notice\nTotal Distribution: $5,000\n"))
	require.NoError(t, err)
	assert.Equal(t, model.DocTypeDistribution, doc.DocType)
	assert.Equal(t, model.StatusIngested, doc.Status)
}

func TestIngestText_EmptyTextIsUnknown(t *testing.T) {
	svc, _ := newTestService(t)

	doc, err := svc.IngestText(context.Background(), "empty.txt", "")
	require.NoError(t, err)
	assert.Equal(t, model.DocTypeUnknown, doc.DocType)
	assert.Equal(t, model.StatusIngested, doc.Status)
	assert.NotNil(t, doc.Result.Fields)
	assert.Empty(t, doc.Result.Fields)
}
