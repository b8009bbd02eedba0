package pdf

// FileInfo represents basic information about a notice PDF on disk
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// TextResult is the plain text of a PDF together with what was learnt while
// reading it
type TextResult struct {
	Path        string `json:"path"`
	Text        string `json:"text"`
	Pages       int    `json:"pages"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	ImageCount  int    `json:"image_count"`
}

// Content types reported in TextResult.ContentType
const (
	ContentText          = "text"
	ContentMixed         = "mixed"
	ContentScannedImages = "scanned_images"
	ContentNone          = "no_content"
)

// ValidateFileRequest represents a request to validate a PDF file
type ValidateFileRequest struct {
	Path string `json:"path"`
}

// ValidateFileResult represents the result of PDF validation
type ValidateFileResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
	Path    string `json:"path"`
	Pages   int    `json:"pages,omitempty"`
}

// SearchDirectoryRequest represents a request to search for PDF files in a directory
type SearchDirectoryRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query"`
}

// SearchDirectoryResult represents the result of a PDF search operation
type SearchDirectoryResult struct {
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	Directory   string     `json:"directory"`
	SearchQuery string     `json:"search_query,omitempty"`
}
