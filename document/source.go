// Package document ingests uploaded documents into per-tenant vector
// collections with a time-to-live, and serves similarity search over the
// live chunks. The companion Sweeper physically removes expired chunks.
package document

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/recallhq/recall-go-sdk/core"
)

// Unit is one extraction unit from a source document: a page of a PDF, a
// row of a CSV, or a whole plain-text body. Page and Row are 1-based and
// zero when not applicable.
type Unit struct {
	Text    string
	Page    int
	Row     int
	Columns string // comma-joined column names, CSV only
}

// Source is a parsed document ready for extraction. The set of
// implementations is closed: PDFSource, CSVSource, TextSource.
type Source interface {
	// Extract returns the document's units in order. Units with no text
	// are omitted.
	Extract() ([]Unit, error)

	// Kind returns the document type tag stored in chunk metadata.
	Kind() string
}

// SourceFor maps a MIME content type to its source variant. Unknown types
// return core.ErrUnsupportedContentType.
func SourceFor(contentType string, data []byte) (Source, error) {
	switch contentType {
	case "application/pdf":
		return &PDFSource{Data: data}, nil
	case "text/csv", "application/csv":
		return &CSVSource{Data: data}, nil
	case "text/plain":
		return &TextSource{Data: data}, nil
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedContentType, contentType)
	}
}

// PDFSource extracts text page by page.
type PDFSource struct {
	Data []byte
}

func (s *PDFSource) Kind() string { return "pdf" }

func (s *PDFSource) Extract() ([]Unit, error) {
	reader, err := pdf.NewReader(bytes.NewReader(s.Data), int64(len(s.Data)))
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	var units []Unit
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not lose the document.
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		units = append(units, Unit{Text: text, Page: pageNum})
	}
	return units, nil
}

// CSVSource renders each data row as "col: val | col: val" text.
type CSVSource struct {
	Data []byte
}

func (s *CSVSource) Kind() string { return "csv" }

func (s *CSVSource) Extract() ([]Unit, error) {
	r := csv.NewReader(bytes.NewReader(s.Data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	columns := strings.Join(header, ",")

	var units []Unit
	row := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", row+1, err)
		}
		row++

		var parts []string
		for i, val := range record {
			if strings.TrimSpace(val) == "" {
				continue
			}
			col := fmt.Sprintf("column_%d", i+1)
			if i < len(header) {
				col = header[i]
			}
			parts = append(parts, fmt.Sprintf("%s: %s", col, val))
		}
		if len(parts) == 0 {
			continue
		}
		units = append(units, Unit{
			Text:    strings.Join(parts, " | "),
			Row:     row,
			Columns: columns,
		})
	}
	return units, nil
}

// TextSource passes plain text through as a single unit.
type TextSource struct {
	Data []byte
}

func (s *TextSource) Kind() string { return "text" }

func (s *TextSource) Extract() ([]Unit, error) {
	text := strings.TrimSpace(string(s.Data))
	if text == "" {
		return nil, nil
	}
	return []Unit{{Text: text}}, nil
}
