package pdf

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ErrNoText is returned when a PDF carries no extractable text, which for
// notices almost always means a scan.
var ErrNoText = errors.New("no text content could be extracted from PDF")

// Reader handles PDF text extraction
type Reader struct {
	maxFileSize int64
	maxTextSize int
}

// NewReader creates a new PDF reader with the specified constraints
func NewReader(maxFileSize int64) *Reader {
	return &Reader{
		maxFileSize: maxFileSize,
		maxTextSize: 10 * 1024 * 1024, // 10MB text limit
	}
}

// ReadText extracts the plain text of every page of a PDF file. Pages are
// joined with a single newline.
func (r *Reader) ReadText(path string) (*TextResult, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	// Check if file exists and get basic info
	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	if err := r.validatePDFFile(path, fileInfo); err != nil {
		return nil, err
	}

	f, pdfReader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	text := r.extractTextContent(pdfReader)
	imageCount := r.countImages(pdfReader)

	result := &TextResult{
		Path:        path,
		Text:        text,
		Pages:       pdfReader.NumPage(),
		Size:        fileInfo.Size(),
		ContentType: r.analyzeContentType(text, imageCount),
		ImageCount:  imageCount,
	}

	if strings.TrimSpace(text) == "" {
		if imageCount > 0 {
			return result, fmt.Errorf("%w: %s looks like a scanned document (%d images)", ErrNoText, path, imageCount)
		}
		return result, fmt.Errorf("%w: %s", ErrNoText, path)
	}

	return result, nil
}

// validatePDFFile performs basic validation on a PDF file
func (r *Reader) validatePDFFile(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", filePath)
	}

	if fileInfo.Size() > r.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), r.maxFileSize)
	}

	return nil
}

// extractTextContent concatenates the plain text of all pages. Pages that
// fail to decode are skipped.
func (r *Reader) extractTextContent(pdfReader *pdf.Reader) string {
	var builder strings.Builder

	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		sep := ""
		if builder.Len() > 0 {
			sep = "\n"
		}
		remaining := r.maxTextSize - builder.Len() - len(sep)
		if len(content) > remaining {
			if cut := truncateUTF8(content, remaining); cut != "" {
				builder.WriteString(sep)
				builder.WriteString(cut)
			}
			break
		}

		builder.WriteString(sep)
		builder.WriteString(content)
	}

	return builder.String()
}

// truncateUTF8 returns the longest prefix of s that fits in n bytes without
// splitting a rune.
func truncateUTF8(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if n >= len(s) {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// analyzeContentType determines the type of content in the PDF
func (r *Reader) analyzeContentType(text string, imageCount int) string {
	// Minimum text length to consider content meaningful
	const minMeaningfulTextLength = 50

	clean := strings.TrimSpace(text)
	if len(clean) < minMeaningfulTextLength {
		if imageCount > 0 {
			return ContentScannedImages
		}
		if clean == "" {
			return ContentNone
		}
	}

	if imageCount > 0 {
		return ContentMixed
	}
	return ContentText
}

// countImages counts image XObjects across all pages
func (r *Reader) countImages(pdfReader *pdf.Reader) int {
	total := 0
	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		total += r.countImagesOnPage(pdfReader, pageNum)
	}
	return total
}

// countImagesOnPage counts images on a specific page
func (r *Reader) countImagesOnPage(pdfReader *pdf.Reader, pageNum int) (count int) {
	defer func() {
		// malformed resource dictionaries panic inside the parser
		if recover() != nil {
			count = 0
		}
	}()

	page := pdfReader.Page(pageNum)
	if page.V.IsNull() {
		return 0
	}

	xObjects := page.V.Key("Resources").Key("XObject")
	if xObjects.IsNull() || xObjects.Kind() != pdf.Dict {
		return 0
	}

	for _, key := range xObjects.Keys() {
		obj := xObjects.Key(key)
		if obj.IsNull() {
			continue
		}
		if obj.Key("Subtype").Name() == "Image" {
			count++
		}
	}

	return count
}
