package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundsight/docintel/internal/classify"
	"github.com/fundsight/docintel/internal/config"
	"github.com/fundsight/docintel/internal/extract"
	"github.com/fundsight/docintel/internal/ingest"
	"github.com/fundsight/docintel/internal/model"
	"github.com/fundsight/docintel/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := config.AIConfig{
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

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	svc := ingest.NewService(classify.New(nil, cfg), extractor, st)
	ts := httptest.NewServer(New(svc, st, 0).Router())
	t.Cleanup(ts.Close)
	return ts
}

func uploadDocument(t *testing.T, ts *httptest.Server, filename, content string) model.Document {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/upload", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var doc model.Document
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	return doc
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUploadAndGetDocument(t *testing.T) {
	ts := newTestServer(t)

	text := "Capital Call Notice\n" +
		"Acme Growth Fund III, LP\n" +
		"Total Capital Call: $750,000\n" +
		"Due Date: March 3, 2020\n"
	doc := uploadDocument(t, ts, "notice.txt", text)
	assert.Equal(t, model.DocTypeCapitalCall, doc.DocType)
	assert.Equal(t, model.StatusIngested, doc.Status)

	resp, err := http.Get(ts.URL + "/documents/" + doc.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got model.Document
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, doc.ID, got.ID)
	require.Contains(t, got.Result.Fields, "call_amount")
	require.NotNil(t, got.Result.Fields["call_amount"].Value)
	assert.Equal(t, "750000", *got.Result.Fields["call_amount"].Value)
}

func TestUploadMissingFileField(t *testing.T) {
	ts := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "notice.txt"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/upload", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetDocument_NotFound(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/documents/nonexistent")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListDocumentsFiltered(t *testing.T) {
	ts := newTestServer(t)

	uploadDocument(t, ts, "call.txt", "Capital Call Notice\nTotal Capital Call: $10,000\n")
	uploadDocument(t, ts, "dist.txt", "Distribution Notice\nTotal Distribution: $5,000\n")

	resp, err := http.Get(ts.URL + "/documents?doc_type=capital_call_letter")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Documents []model.Document `json:"documents"`
		Count     int              `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "call.txt", body.Documents[0].Filename)
}
