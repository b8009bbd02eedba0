// Package converter turns notice PDFs into Postmoa upload workbooks and
// windowed-envelope prints.
package converter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/a3tai/notice-postmoa/internal/envelope"
	"github.com/a3tai/notice-postmoa/internal/layout"
	"github.com/a3tai/notice-postmoa/internal/notice"
	"github.com/a3tai/notice-postmoa/internal/pdf"
	"github.com/a3tai/notice-postmoa/internal/pdf/security"
	"github.com/a3tai/notice-postmoa/internal/postmoa"
	"github.com/a3tai/notice-postmoa/internal/records"
)

// Options configures a Service.
type Options struct {
	MaxFileSize     int64
	InputDirectory  string
	OutputDirectory string

	// Confine rejects paths outside InputDirectory and output directories
	// outside OutputDirectory. The tool server sets it.
	Confine bool

	Layouts *layout.Set
	Fonts   envelope.Fonts
	Logger  *zap.Logger

	// TextReader replaces the PDF text reader.
	TextReader notice.TextReader

	// Now stamps export file names; defaults to time.Now.
	Now func() time.Time
}

// Service orchestrates extraction, rendering and output.
type Service struct {
	inputDirectory  string
	outputDirectory string

	validator *pdf.Validator
	search    *pdf.Search
	extractor *notice.Extractor
	layouts   *layout.Set
	fonts     envelope.Fonts

	inputPaths  *security.PathValidator
	outputPaths *security.PathValidator

	log *zap.Logger
	now func() time.Time

	exportMu sync.Mutex
}

// NewService creates a Service. Without layouts the built-in set is used.
func NewService(opts Options) (*Service, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	layouts := opts.Layouts
	if layouts == nil {
		var err error
		if layouts, err = layout.Default(); err != nil {
			return nil, fmt.Errorf("failed to load built-in layouts: %w", err)
		}
	}

	var reader notice.TextReader = pdf.NewReader(opts.MaxFileSize)
	if opts.TextReader != nil {
		reader = opts.TextReader
	}

	s := &Service{
		inputDirectory:  opts.InputDirectory,
		outputDirectory: opts.OutputDirectory,
		validator:       pdf.NewValidator(opts.MaxFileSize),
		search:          pdf.NewSearch(opts.MaxFileSize),
		extractor:       notice.NewExtractor(reader, log.Named("notice")),
		layouts:         layouts,
		fonts:           opts.Fonts,
		log:             log,
		now:             now,
	}

	if opts.Confine {
		var err error
		if s.inputPaths, err = security.NewPathValidator(opts.InputDirectory); err != nil {
			return nil, fmt.Errorf("failed to create path validator: %w", err)
		}
		if s.outputPaths, err = security.NewPathValidator(opts.OutputDirectory); err != nil {
			return nil, fmt.Errorf("failed to create output path validator: %w", err)
		}
	}

	return s, nil
}

// InputDirectory is the directory searched when a request names none.
func (s *Service) InputDirectory() string {
	return s.inputDirectory
}

// OutputDirectory is where exports go when a request names none.
func (s *Service) OutputDirectory() string {
	return s.outputDirectory
}

// Layouts returns the layout set used for exports.
func (s *Service) Layouts() *layout.Set {
	return s.layouts
}

// ExtractNotice validates one PDF and parses its recipient fields.
func (s *Service) ExtractNotice(req ExtractNoticeRequest) (*ExtractNoticeResult, error) {
	if s.inputPaths != nil {
		if err := s.inputPaths.ValidatePath(req.Path); err != nil {
			return nil, stageError(StageValidate, req.Path, fmt.Errorf("security validation failed: %w", err))
		}
	}

	check, err := s.validator.ValidateFile(pdf.ValidateFileRequest{Path: req.Path})
	if err != nil {
		return nil, stageError(StageValidate, req.Path, err)
	}
	if !check.Valid {
		return nil, stageError(StageValidate, req.Path, errors.New(check.Message))
	}

	result, err := s.extractor.Extract(req.Path)
	if err != nil {
		return nil, stageError(StageExtract, req.Path, err)
	}
	return result, nil
}

// SearchDirectory lists the notice PDFs in a directory, defaulting to the
// input directory.
func (s *Service) SearchDirectory(req pdf.SearchDirectoryRequest) (*pdf.SearchDirectoryResult, error) {
	if req.Directory == "" {
		req.Directory = s.inputDirectory
	}
	if s.inputPaths != nil {
		if err := s.inputPaths.ValidateDirectory(req.Directory); err != nil {
			return nil, stageError(StageValidate, req.Directory, fmt.Errorf("security validation failed: %w", err))
		}
	}

	result, err := s.search.SearchDirectory(req)
	if err != nil {
		return nil, stageError(StageSearch, req.Directory, err)
	}
	return result, nil
}

// ExtractDirectory extracts every matching PDF one after another in path
// order. Files that fail are reported in Failures and skipped.
func (s *Service) ExtractDirectory(req ExtractDirectoryRequest) (*ExtractDirectoryResult, error) {
	found, err := s.SearchDirectory(pdf.SearchDirectoryRequest{Directory: req.Directory, Query: req.Query})
	if err != nil {
		return nil, err
	}

	result := &ExtractDirectoryResult{Directory: found.Directory}
	for _, f := range found.Files {
		n, err := s.ExtractNotice(ExtractNoticeRequest{Path: f.Path})
		if err != nil {
			s.log.Warn("skipping notice", zap.String("path", f.Path), zap.Error(err))
			result.Failures = append(result.Failures, Failure{Path: f.Path, Error: err.Error()})
			continue
		}
		result.Notices = append(result.Notices, *n)
	}

	s.log.Info("directory extracted",
		zap.String("directory", result.Directory),
		zap.Int("notices", len(result.Notices)),
		zap.Int("failures", len(result.Failures)))
	return result, nil
}

// ExtractFiles extracts the given PDFs in order, stopping at the first
// failure.
func (s *Service) ExtractFiles(paths []string) (*records.Table, error) {
	table := records.NewTable()
	for _, p := range paths {
		n, err := s.ExtractNotice(ExtractNoticeRequest{Path: p})
		if err != nil {
			return nil, err
		}
		table.Append(n.Record)
	}
	return table, nil
}

// Export renders every layout for the table and writes the workbooks and the
// envelope PDF. An empty table still produces header-only workbooks and a
// blank envelope page.
func (s *Service) Export(req ExportRequest) (*ExportResult, error) {
	table := req.Table
	if table == nil {
		table = records.NewTable()
	}

	dir := req.OutputDirectory
	if dir == "" {
		dir = s.outputDirectory
	}
	if dir == "" {
		return nil, stageError(StageValidate, "", errors.New("output directory cannot be empty"))
	}
	if s.outputPaths != nil {
		if err := s.outputPaths.ValidateDirectory(dir); err != nil {
			return nil, stageError(StageValidate, dir, fmt.Errorf("security validation failed: %w", err))
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, stageError(StageWrite, dir, err)
	}

	s.exportMu.Lock()
	defer s.exportMu.Unlock()

	at := s.now()
	rows := table.Rows()
	result := &ExportResult{
		Timestamp:       at.Format(postmoa.TimestampLayout),
		OutputDirectory: dir,
		Records:         len(rows),
		Incomplete:      table.IncompleteRows(),
	}

	for i := range s.layouts.Layouts {
		l := &s.layouts.Layouts[i]
		sheet, err := l.Apply(rows)
		if err != nil {
			return nil, stageError(StageRender, l.Name, err)
		}

		out := OutputFile{Layout: l.Name, Kind: string(l.Kind), Rows: len(sheet.Rows)}
		switch l.Kind {
		case layout.KindSpreadsheet:
			out.Path = filepath.Join(dir, postmoa.FileName(at, l.Suffix, ".xlsx"))
			if err := postmoa.WriteSheet(out.Path, sheet); err != nil {
				return nil, stageError(StageWrite, out.Path, err)
			}
		case layout.KindEnvelope:
			out.Path = filepath.Join(dir, postmoa.FileName(at, l.Suffix, ".pdf"))
			w := envelope.NewWriter(*l.Envelope, s.fonts, s.log.Named("envelope"))
			if out.Pages, err = w.Write(out.Path, sheet); err != nil {
				return nil, stageError(StageWrite, out.Path, err)
			}
		}

		s.log.Debug("layout written", zap.String("layout", l.Name), zap.String("path", out.Path))
		result.Files = append(result.Files, out)
	}

	if len(result.Incomplete) > 0 {
		s.log.Warn("exported rows with empty fields", zap.Ints("rows", result.Incomplete))
	}
	s.log.Info("export complete",
		zap.String("directory", dir),
		zap.Int("records", result.Records),
		zap.Int("files", len(result.Files)))
	return result, nil
}

// SaveWorksheet stores the record table as an xlsx worksheet.
func (s *Service) SaveWorksheet(path string, table *records.Table) error {
	if err := postmoa.SaveTable(path, table); err != nil {
		return stageError(StageSave, path, err)
	}
	return nil
}

// LoadWorksheet reads a worksheet written by SaveWorksheet.
func (s *Service) LoadWorksheet(path string) (*records.Table, error) {
	if s.inputPaths != nil {
		if err := s.inputPaths.ValidatePath(path); err != nil {
			return nil, stageError(StageValidate, path, fmt.Errorf("security validation failed: %w", err))
		}
	}
	table, err := postmoa.LoadTable(path)
	if err != nil {
		return nil, stageError(StageLoad, path, err)
	}
	return table, nil
}
