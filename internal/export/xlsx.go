// Package export writes extraction results to spreadsheet workbooks.
package export

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/fundsight/docintel/internal/extract"
	"github.com/fundsight/docintel/internal/model"
)

// WriteXLSX writes documents to an XLSX workbook at path. The workbook has a
// summary sheet, one sheet per document type with the type's schema fields as
// columns, and a KPIs sheet for quarterly metrics.
func WriteXLSX(path string, docs []model.Document) error {
	schema, err := extract.LoadSchema()
	if err != nil {
		return err
	}

	f := xlsx.NewFile()

	if err := writeSummarySheet(f, docs); err != nil {
		return err
	}

	byType := map[model.DocumentType][]model.Document{}
	for _, doc := range docs {
		byType[doc.DocType] = append(byType[doc.DocType], doc)
	}

	for _, dt := range model.DocumentTypes() {
		typeDocs := byType[dt]
		if len(typeDocs) == 0 {
			continue
		}
		ts, ok := schema.ForType(dt)
		if !ok {
			continue
		}
		if dt == model.DocTypeQuarterly {
			if err := writeQuarterlySheets(f, typeDocs); err != nil {
				return err
			}
			continue
		}
		if err := writeTypeSheet(f, dt, ts, typeDocs); err != nil {
			return err
		}
	}

	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

func writeSummarySheet(f *xlsx.File, docs []model.Document) error {
	sheet, err := f.AddSheet("Documents")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	addRow(sheet, "id", "filename", "doc_type", "status", "ingest_ts")
	for _, doc := range docs {
		addRow(sheet, doc.ID, doc.Filename, string(doc.DocType), string(doc.Status),
			doc.IngestedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func writeTypeSheet(f *xlsx.File, dt model.DocumentType, ts extract.TypeSchema, docs []model.Document) error {
	sheet, err := f.AddSheet(sheetName(dt))
	if err != nil {
		return eris.Wrapf(err, "export: add sheet for %s", dt)
	}

	fieldNames := ts.FieldNames()
	header := append([]string{"id", "filename"}, fieldNames...)
	header = append(header, "sources")
	addRow(sheet, header...)

	for _, doc := range docs {
		cells := []string{doc.ID, doc.Filename}
		for _, name := range fieldNames {
			cells = append(cells, fieldText(doc.Result.Fields[name]))
		}
		cells = append(cells, sourceSummary(doc.Result.Fields))
		addRow(sheet, cells...)
	}
	return nil
}

func writeQuarterlySheets(f *xlsx.File, docs []model.Document) error {
	kpiSheet, err := f.AddSheet("KPIs")
	if err != nil {
		return eris.Wrap(err, "export: add KPIs sheet")
	}
	addRow(kpiSheet, "id", "filename", "metric", "value", "currency", "pct_change", "raw")

	hlSheet, err := f.AddSheet("Highlights")
	if err != nil {
		return eris.Wrap(err, "export: add Highlights sheet")
	}
	addRow(hlSheet, "id", "filename", "highlight")

	for _, doc := range docs {
		for _, kpi := range doc.Result.KPIs {
			addRow(kpiSheet, doc.ID, doc.Filename, kpi.Metric, kpi.Value, kpi.Currency, kpi.PctChange, kpi.Raw)
		}
		for _, hl := range doc.Result.Highlights {
			addRow(hlSheet, doc.ID, doc.Filename, hl)
		}
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, cells ...string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}

func fieldText(fv model.FieldValue) string {
	if fv.Value == nil {
		return ""
	}
	return *fv.Value
}

// sourceSummary renders field provenance as "name=source" pairs in stable order.
func sourceSummary(fields map[string]model.FieldValue) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+string(fields[name].Source))
	}
	return strings.Join(parts, ", ")
}

func sheetName(dt model.DocumentType) string {
	switch dt {
	case model.DocTypeCapitalCall:
		return "Capital Calls"
	case model.DocTypeDistribution:
		return "Distributions"
	case model.DocTypeValuation:
		return "Valuations"
	case model.DocTypeQuarterly:
		return "Quarterly Updates"
	default:
		return string(dt)
	}
}
