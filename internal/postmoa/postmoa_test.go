package postmoa

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/a3tai/notice-postmoa/internal/layout"
	"github.com/a3tai/notice-postmoa/internal/records"
)

func TestFileName(t *testing.T) {
	at := time.Date(2024, 3, 5, 9, 7, 3, 0, time.Local)
	assert.Equal(t, "2024-03-05 090703_일반우편.xlsx", FileName(at, "일반우편", ".xlsx"))
	assert.Equal(t, "2024-03-05 090703_창봉투_주소.pdf", FileName(at, "창봉투_주소", ".pdf"))
}

func TestWriteSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "normal.xlsx")
	sheet := &layout.Sheet{
		Name:    "normal",
		Columns: []string{"수취인*", "우편번호*", "통수*"},
		Rows: [][]string{
			{"홍길동", "06236", "1"},
			{"김철수", "", "1"},
		},
	}
	require.NoError(t, WriteSheet(path, sheet))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"수취인*", "우편번호*", "통수*"},
		{"홍길동", "06236", "1"},
		{"김철수", "", "1"},
	}, rows)

	assert.Error(t, WriteSheet(path, nil))
}

func TestWriteSheet_HeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteSheet(path, &layout.Sheet{Columns: []string{"규격*", "중량*"}}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"규격*", "중량*"}}, rows)
}

func TestSaveLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worksheet.xlsx")
	table := records.NewTable(
		records.Record{Name: "홍길동", ZipCode: "06236", Address: "서울특별시 강남구 테헤란로 1", Title: "안내", VehicleNumber: "서울강남가1234", DueDate: "2024.3.15.", Source: "/tmp/a.pdf"},
		records.Record{Name: "김철수"},
	)
	require.NoError(t, SaveTable(path, table))

	loaded, err := LoadTable(path)
	require.NoError(t, err)
	require.Equal(t, 2, loaded.Len())

	first, err := loaded.Row(0)
	require.NoError(t, err)
	assert.Equal(t, "06236", first.ZipCode)
	assert.Equal(t, "서울강남가1234", first.VehicleNumber)
	assert.Empty(t, first.Source)

	second, err := loaded.Row(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"우편번호", "주소", "제목", "차량번호", "비고"}, second.Missing())
}

func TestLoadTable_ColumnOrderAndBlankRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reordered.xlsx")

	f := excelize.NewFile()
	header := []interface{}{"비고", "이름", "메모", "우편번호", "주소", "제목", "차량번호"}
	require.NoError(t, f.SetSheetRow(SheetName, "A1", &header))
	row := []interface{}{"2024.3.15.", "홍길동", "무시", "16489", "수원", "안내", "경기수원가1234"}
	require.NoError(t, f.SetSheetRow(SheetName, "A2", &row))
	blank := []interface{}{"", " ", "", "", "", "", ""}
	require.NoError(t, f.SetSheetRow(SheetName, "A3", &blank))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := LoadTable(path)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	r, err := table.Row(0)
	require.NoError(t, err)
	assert.Equal(t, "홍길동", r.Name)
	assert.Equal(t, "2024.3.15.", r.DueDate)
	assert.True(t, r.Complete())
}

func TestLoadTable_Errors(t *testing.T) {
	dir := t.TempDir()

	missingColumn := filepath.Join(dir, "missing.xlsx")
	f := excelize.NewFile()
	header := []interface{}{"이름", "우편번호"}
	require.NoError(t, f.SetSheetRow(SheetName, "A1", &header))
	require.NoError(t, f.SaveAs(missingColumn))
	require.NoError(t, f.Close())

	_, err := LoadTable(missingColumn)
	assert.ErrorIs(t, err, ErrMissingColumn)

	emptyBook := filepath.Join(dir, "empty.xlsx")
	f = excelize.NewFile()
	require.NoError(t, f.SaveAs(emptyBook))
	require.NoError(t, f.Close())

	_, err = LoadTable(emptyBook)
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = LoadTable(filepath.Join(dir, "nope.xlsx"))
	assert.Error(t, err)
}
