package converter

import (
	"github.com/a3tai/notice-postmoa/internal/notice"
	"github.com/a3tai/notice-postmoa/internal/records"
)

// ExtractNoticeRequest asks for the recipient of one notice PDF.
type ExtractNoticeRequest struct {
	Path string `json:"path"`
}

// ExtractNoticeResult is one extracted notice.
type ExtractNoticeResult = notice.Result

// ExtractDirectoryRequest extracts every notice PDF in a directory whose
// name matches Query.
type ExtractDirectoryRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query,omitempty"`
}

// Failure is a file that could not be extracted.
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// ExtractDirectoryResult lists extracted notices in file name order.
type ExtractDirectoryResult struct {
	Directory string                `json:"directory"`
	Notices   []ExtractNoticeResult `json:"notices"`
	Failures  []Failure             `json:"failures,omitempty"`
}

// Table collects the extracted records into a table.
func (r *ExtractDirectoryResult) Table() *records.Table {
	t := records.NewTable()
	for _, n := range r.Notices {
		t.Append(n.Record)
	}
	return t
}

// ExportRequest writes every layout for Table into OutputDirectory.
type ExportRequest struct {
	Table           *records.Table `json:"-"`
	OutputDirectory string         `json:"output_directory"`
}

// OutputFile is one file written by an export.
type OutputFile struct {
	Layout string `json:"layout"`
	Kind   string `json:"kind"`
	Path   string `json:"path"`
	Rows   int    `json:"rows"`
	Pages  int    `json:"pages,omitempty"`
}

// ExportResult lists the files written by one export. All files share
// Timestamp as their name prefix.
type ExportResult struct {
	Timestamp       string       `json:"timestamp"`
	OutputDirectory string       `json:"output_directory"`
	Records         int          `json:"records"`
	Incomplete      []int        `json:"incomplete_rows,omitempty"`
	Files           []OutputFile `json:"files"`
}
