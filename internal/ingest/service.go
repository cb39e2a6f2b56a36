// Package ingest runs the document pipeline: read, classify, extract, persist.
package ingest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fundsight/docintel/internal/classify"
	"github.com/fundsight/docintel/internal/extract"
	"github.com/fundsight/docintel/internal/model"
	"github.com/fundsight/docintel/internal/pdftext"
	"github.com/fundsight/docintel/internal/store"
)

// Service wires the classifier and extractor to a document store.
type Service struct {
	classifier *classify.Classifier
	extractor  *extract.Extractor
	store      store.Store
}

func NewService(classifier *classify.Classifier, extractor *extract.Extractor, st store.Store) *Service {
	return &Service{classifier: classifier, extractor: extractor, store: st}
}

// IngestFile reads a document from disk and runs it through the pipeline.
// PDF files go through text extraction; anything else is read as plain text.
// Unreadable files are persisted with status failed so the batch keeps a
// record of every input.
func (s *Service) IngestFile(ctx context.Context, path string) (*model.Document, error) {
	filename := filepath.Base(path)

	text, err := readDocument(path)
	if err != nil {
		zap.L().Warn("ingest: read failed", zap.String("file", filename), zap.Error(err))
		doc := &model.Document{
			ID:         uuid.New().String(),
			Filename:   filename,
			DocType:    model.DocTypeUnknown,
			Result:     model.NewExtractionResult(model.DocTypeUnknown, nil),
			Status:     model.StatusFailed,
			IngestedAt: time.Now().UTC(),
		}
		if saveErr := s.store.SaveDocument(ctx, doc); saveErr != nil {
			return nil, eris.Wrapf(saveErr, "ingest: save failed document %s", filename)
		}
		return doc, nil
	}

	return s.IngestText(ctx, filename, text)
}

// IngestBytes runs uploaded file contents through the pipeline, extracting
// text first when the filename indicates a PDF.
func (s *Service) IngestBytes(ctx context.Context, filename string, data []byte) (*model.Document, error) {
	text := string(data)
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		extracted, err := pdftext.ExtractReader(bytes.NewReader(data))
		if err != nil {
			zap.L().Warn("ingest: pdf extraction failed", zap.String("file", filename), zap.Error(err))
			doc := &model.Document{
				ID:         uuid.New().String(),
				Filename:   filename,
				DocType:    model.DocTypeUnknown,
				Result:     model.NewExtractionResult(model.DocTypeUnknown, nil),
				Status:     model.StatusFailed,
				IngestedAt: time.Now().UTC(),
			}
			if saveErr := s.store.SaveDocument(ctx, doc); saveErr != nil {
				return nil, eris.Wrapf(saveErr, "ingest: save failed document %s", filename)
			}
			return doc, nil
		}
		text = extracted
	}
	return s.IngestText(ctx, filename, text)
}

// IngestText classifies and extracts already-loaded text and persists the result.
func (s *Service) IngestText(ctx context.Context, filename, text string) (*model.Document, error) {
	docType := s.classifier.Classify(ctx, text)
	result := s.extractor.Extract(ctx, docType, text)

	doc := &model.Document{
		ID:         uuid.New().String(),
		Filename:   filename,
		DocType:    docType,
		RawText:    text,
		Result:     result,
		Status:     model.StatusIngested,
		IngestedAt: time.Now().UTC(),
	}

	if err := s.store.SaveDocument(ctx, doc); err != nil {
		return nil, eris.Wrapf(err, "ingest: save document %s", filename)
	}

	zap.L().Info("ingest: document processed",
		zap.String("id", doc.ID),
		zap.String("file", filename),
		zap.String("doc_type", string(docType)))
	return doc, nil
}

func readDocument(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return pdftext.Extract(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "ingest: read %s", path)
	}
	return string(data), nil
}
