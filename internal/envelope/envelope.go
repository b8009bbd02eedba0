// Package envelope renders the recipient block of a windowed envelope onto A4
// sheets. Every record takes a front page with the address, name and zip code
// and a back page with fold guides.
package envelope

import (
	"errors"
	"fmt"
	"os"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/a3tai/notice-postmoa/internal/layout"
	"github.com/a3tai/notice-postmoa/internal/pdf"
	"github.com/a3tai/notice-postmoa/internal/records"
)

const (
	fontFamily     = "notice"
	fallbackFamily = "Helvetica"
)

// Fonts are TrueType files used for the recipient block.
type Fonts struct {
	Regular string
	Bold    string
}

// Writer writes envelope PDFs for one geometry.
type Writer struct {
	geometry layout.EnvelopeGeometry
	fonts    Fonts
	log      *zap.Logger
}

// NewWriter creates a Writer. A nil logger discards output.
func NewWriter(geometry layout.EnvelopeGeometry, fonts Fonts, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{
		geometry: geometry,
		fonts:    fonts,
		log:      log,
	}
}

type fontFace struct {
	family string
	style  string
}

// Write renders one front and one back page per row of sheet to path and
// returns the number of pages written. An empty sheet yields a single blank
// page.
func (w *Writer) Write(path string, sheet *layout.Sheet) (int, error) {
	if sheet == nil {
		return 0, errors.New("sheet cannot be nil")
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	regular, bold := w.loadFonts(doc)

	for i := range sheet.Rows {
		w.front(doc, sheet, i, regular, bold)
		w.back(doc)
	}
	if len(sheet.Rows) == 0 {
		doc.AddPage()
	}

	if err := doc.OutputFileAndClose(path); err != nil {
		return 0, fmt.Errorf("write envelope pdf: %w", err)
	}

	want := 2 * len(sheet.Rows)
	if want == 0 {
		want = 1
	}
	pages, err := pdf.PageCount(path)
	if err != nil {
		return 0, fmt.Errorf("verify envelope pdf: %w", err)
	}
	if pages != want {
		return pages, fmt.Errorf("verify envelope pdf: got %d pages, want %d", pages, want)
	}

	w.log.Debug("envelope pdf written",
		zap.String("path", path),
		zap.Int("records", len(sheet.Rows)),
		zap.Int("pages", pages))
	return pages, nil
}

func (w *Writer) front(doc *gofpdf.Fpdf, sheet *layout.Sheet, row int, regular, bold fontFace) {
	g := w.geometry
	doc.AddPage()

	w.text(doc, g.Address, regular, sheet.Value(row, records.ColumnAddress))

	name := regular
	if g.Name.Bold {
		name = bold
	}
	w.text(doc, g.Name, name, sheet.Value(row, records.ColumnName))

	_, pageH := doc.GetPageSize()
	doc.SetFont(regular.family, regular.style, g.ZipCode.Size)
	for i, digit := range []rune(sheet.Value(row, records.ColumnZipCode)) {
		x := g.ZipCode.X + g.ZipCode.Spacing*float64(i)
		doc.Text(x, pageH-g.ZipCode.Y, string(digit))
	}
}

func (w *Writer) back(doc *gofpdf.Fpdf) {
	doc.AddPage()
	pageW, pageH := doc.GetPageSize()
	for _, y := range w.geometry.Perforations {
		doc.Line(0, pageH-y, pageW, pageH-y)
	}
}

// text draws value wrapped to box.Width, one baseline per line going down.
func (w *Writer) text(doc *gofpdf.Fpdf, box layout.TextBox, face fontFace, value string) {
	doc.SetFont(face.family, face.style, box.Size)
	_, pageH := doc.GetPageSize()
	step := doc.PointConvert(box.Size) + box.Gap

	for i, line := range Wrap(value, box.Width) {
		y := box.Y - step*float64(i)
		doc.Text(box.X, pageH-y, line)
	}
}

// loadFonts registers the configured TrueType fonts. A missing regular font
// falls back to the core Helvetica face; a missing bold font falls back to
// the regular face.
func (w *Writer) loadFonts(doc *gofpdf.Fpdf) (regular, bold fontFace) {
	data, err := readFont(w.fonts.Regular)
	if err != nil {
		w.log.Warn("regular font unavailable, using Helvetica; Hangul will not render",
			zap.String("font", w.fonts.Regular), zap.Error(err))
		return fontFace{family: fallbackFamily}, fontFace{family: fallbackFamily, style: "B"}
	}
	doc.AddUTF8FontFromBytes(fontFamily, "", data)
	if doc.Err() {
		w.log.Warn("regular font rejected, using Helvetica; Hangul will not render",
			zap.String("font", w.fonts.Regular), zap.Error(doc.Error()))
		doc.ClearError()
		return fontFace{family: fallbackFamily}, fontFace{family: fallbackFamily, style: "B"}
	}
	regular = fontFace{family: fontFamily}

	data, err = readFont(w.fonts.Bold)
	if err != nil {
		w.log.Warn("bold font unavailable, using regular font",
			zap.String("font", w.fonts.Bold), zap.Error(err))
		return regular, regular
	}
	doc.AddUTF8FontFromBytes(fontFamily, "B", data)
	if doc.Err() {
		w.log.Warn("bold font rejected, using regular font",
			zap.String("font", w.fonts.Bold), zap.Error(doc.Error()))
		doc.ClearError()
		return regular, regular
	}
	return regular, fontFace{family: fontFamily, style: "B"}
}

func readFont(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("no font configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("font file %s is empty", path)
	}
	return data, nil
}
