package envelope

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/a3tai/notice-postmoa/internal/layout"
	"github.com/a3tai/notice-postmoa/internal/pdf"
	"github.com/a3tai/notice-postmoa/internal/records"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{
			name:  "fits on one line",
			text:  "경기도 수원시 팔달구",
			width: 35,
			want:  []string{"경기도 수원시 팔달구"},
		},
		{
			name:  "breaks between words",
			text:  "aaa bbb ccc",
			width: 7,
			want:  []string{"aaa bbb", "ccc"},
		},
		{
			name:  "collapses whitespace",
			text:  "  aaa \n\t bbb  ",
			width: 10,
			want:  []string{"aaa bbb"},
		},
		{
			name:  "long word fills the current line first",
			text:  "abc defghijklmnopq",
			width: 10,
			want:  []string{"abc defghi", "jklmnopq"},
		},
		{
			name:  "long word on its own",
			text:  "abcdefghijklmnopqrstuvwxy",
			width: 10,
			want:  []string{"abcdefghij", "klmnopqrst", "uvwxy"},
		},
		{
			name:  "counts runes not bytes",
			text:  "가나다라마바사",
			width: 3,
			want:  []string{"가나다", "라마바", "사"},
		},
		{
			name:  "exact width",
			text:  "abcde fghij",
			width: 5,
			want:  []string{"abcde", "fghij"},
		},
		{
			name:  "empty",
			text:  "   ",
			width: 35,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.text, tt.width)
			assert.Equal(t, tt.want, got)
			for _, line := range got {
				assert.LessOrEqual(t, len([]rune(line)), tt.width)
			}
		})
	}
}

func envelopeGeometry(t *testing.T) layout.EnvelopeGeometry {
	t.Helper()
	set, err := layout.Default()
	require.NoError(t, err)
	envelopes := set.OfKind(layout.KindEnvelope)
	require.Len(t, envelopes, 1)
	return *envelopes[0].Envelope
}

func sheetOf(rows ...records.Record) *layout.Sheet {
	sheet := &layout.Sheet{Columns: records.Columns()}
	for _, r := range rows {
		sheet.Rows = append(sheet.Rows, r.Values())
	}
	return sheet
}

func TestWriter_Write(t *testing.T) {
	dir := t.TempDir()
	core, logs := observer.New(zapcore.WarnLevel)
	w := NewWriter(envelopeGeometry(t), Fonts{}, zap.New(core))

	path := filepath.Join(dir, "envelope.pdf")
	sheet := sheetOf(
		records.Record{Name: "HONG GILDONG", ZipCode: "16489", Address: "1 Hyowon-ro Paldal-gu Suwon-si Gyeonggi-do Republic of Korea"},
		records.Record{Name: "KIM", ZipCode: "06236", Address: "Teheran-ro"},
	)

	pages, err := w.Write(path, sheet)
	require.NoError(t, err)
	assert.Equal(t, 4, pages)

	counted, err := pdf.PageCount(path)
	require.NoError(t, err)
	assert.Equal(t, 4, counted)

	result, err := pdf.NewReader(10*1024*1024).ReadText(path)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "HONG GILDONG")
	assert.Contains(t, result.Text, "Teheran-ro")

	assert.Equal(t, 1, logs.FilterMessageSnippet("regular font unavailable").Len())
}

func TestWriter_WriteEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	w := NewWriter(envelopeGeometry(t), Fonts{}, nil)

	pages, err := w.Write(path, sheetOf())
	require.NoError(t, err)
	assert.Equal(t, 1, pages)

	_, err = w.Write(path, nil)
	assert.Error(t, err)
}

func TestWriter_WriteUnwritablePath(t *testing.T) {
	w := NewWriter(envelopeGeometry(t), Fonts{}, nil)
	_, err := w.Write(filepath.Join(t.TempDir(), "missing", "dir", "out.pdf"), sheetOf(records.Record{Name: "A"}))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "write envelope pdf"))
}

func TestWriter_MissingFontIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	w := NewWriter(envelopeGeometry(t), Fonts{Regular: filepath.Join(t.TempDir(), "malgun.ttf")}, zap.New(core))

	_, err := w.Write(filepath.Join(t.TempDir(), "out.pdf"), sheetOf(records.Record{Name: "A"}))
	require.NoError(t, err)
	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, "malgun.ttf", filepath.Base(logs.All()[0].ContextMap()["font"].(string)))
}

func TestWriter_TrueTypeWithoutBold(t *testing.T) {
	dir := t.TempDir()
	regular := filepath.Join(dir, "regular.ttf")
	require.NoError(t, os.WriteFile(regular, goregular.TTF, 0o644))

	core, logs := observer.New(zapcore.WarnLevel)
	w := NewWriter(envelopeGeometry(t), Fonts{Regular: regular, Bold: filepath.Join(dir, "bold.ttf")}, zap.New(core))

	path := filepath.Join(dir, "envelope.pdf")
	pages, err := w.Write(path, sheetOf(records.Record{Name: "Hong", ZipCode: "16489", Address: "Hyowon-ro"}))
	require.NoError(t, err)
	assert.Equal(t, 2, pages)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "bold font unavailable, using regular font", entry.Message)
	assert.Equal(t, "bold.ttf", filepath.Base(entry.ContextMap()["font"].(string)))
	assert.Zero(t, logs.FilterMessageSnippet("regular font").Len())
}

// lineStarts maps each baseline on the page, in points, to the x of its
// leftmost glyph.
func lineStarts(t *testing.T, path string, page int) map[float64]float64 {
	t.Helper()
	f, r, err := lpdf.Open(path)
	require.NoError(t, err)
	defer f.Close()

	starts := make(map[float64]float64)
	for _, glyph := range r.Page(page).Content().Text {
		y := math.Round(glyph.Y*10) / 10
		if x, ok := starts[y]; !ok || glyph.X < x {
			starts[y] = glyph.X
		}
	}
	return starts
}

func mmToPt(mm float64) float64 {
	return mm * 72 / 25.4
}

func TestWriter_FrontPlacement(t *testing.T) {
	g := envelopeGeometry(t)
	path := filepath.Join(t.TempDir(), "envelope.pdf")
	_, err := NewWriter(g, Fonts{}, nil).Write(path, sheetOf(records.Record{
		Name:    "HONG",
		ZipCode: "16489",
		Address: "Hyowon-ro Paldal-gu Suwon-si Gyeonggi-do",
	}))
	require.NoError(t, err)

	starts := lineStarts(t, path, 1)
	find := func(yMM float64) (float64, bool) {
		for y, x := range starts {
			if math.Abs(y-mmToPt(yMM)) < 0.5 {
				return x, true
			}
		}
		return 0, false
	}

	step := g.Address.Size*25.4/72 + g.Address.Gap
	for name, want := range map[string]struct{ x, y float64 }{
		"address line 1": {g.Address.X, g.Address.Y},
		"address line 2": {g.Address.X, g.Address.Y - step},
		"name":           {g.Name.X, g.Name.Y},
		"zip code":       {g.ZipCode.X, g.ZipCode.Y},
	} {
		x, ok := find(want.y)
		if assert.True(t, ok, "%s: no text at y=%.2fmm in %v", name, want.y, starts) {
			assert.InDelta(t, mmToPt(want.x), x, 0.5, name)
		}
	}
	_, ok := find(g.Address.Y - 2*step)
	assert.False(t, ok, "address should wrap to two lines")
	assert.InDelta(t, 244-238.472, step, 0.01)

	f, r, err := lpdf.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var digits []float64
	for _, glyph := range r.Page(1).Content().Text {
		if math.Abs(glyph.Y-mmToPt(g.ZipCode.Y)) < 0.5 {
			digits = append(digits, glyph.X)
		}
	}
	require.Len(t, digits, 5)
	for i, x := range digits {
		assert.InDelta(t, mmToPt(g.ZipCode.X+g.ZipCode.Spacing*float64(i)), x, 0.5, "digit %d", i)
	}
}
