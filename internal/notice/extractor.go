package notice

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/a3tai/notice-postmoa/internal/pdf"
	"github.com/a3tai/notice-postmoa/internal/records"
)

// TextReader returns the plain text of a PDF file.
type TextReader interface {
	ReadText(path string) (*pdf.TextResult, error)
}

// Result is the outcome of extracting one notice.
type Result struct {
	Record  records.Record `json:"record"`
	Path    string         `json:"path"`
	Pages   int            `json:"pages"`
	Missing []string       `json:"missing,omitempty"`
}

// Extractor reads notice PDFs and parses their recipient fields.
type Extractor struct {
	reader TextReader
	log    *zap.Logger
}

// NewExtractor creates an extractor reading text through reader.
func NewExtractor(reader TextReader, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{reader: reader, log: log}
}

// Extract reads path and parses one record from it. Fields that cannot be
// found are left empty and listed in Result.Missing.
func (e *Extractor) Extract(path string) (*Result, error) {
	text, err := e.reader.ReadText(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read notice text: %w", err)
	}

	record := Parse(text.Text)
	record.Source = text.Path

	result := &Result{
		Record:  record,
		Path:    text.Path,
		Pages:   text.Pages,
		Missing: record.Missing(),
	}

	if len(result.Missing) > 0 {
		e.log.Warn("notice fields not found",
			zap.String("path", text.Path),
			zap.Strings("missing", result.Missing))
	} else {
		e.log.Debug("notice extracted", zap.String("path", text.Path), zap.Int("pages", text.Pages))
	}

	return result, nil
}
