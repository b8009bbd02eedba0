package notice

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/a3tai/notice-postmoa/internal/pdf"
	"github.com/a3tai/notice-postmoa/internal/records"
)

const sampleNotice = `경기도 수원시
수신 홍길동 귀하 (우16489 경기도 수원시 팔달구 효원로 1, 101동
202호)
(경유)
제목 이륜자동차 사용신고 미이행 안내
1. 귀하의 가정에 행복이 가득하시기 바랍니다.
차량번호 차종
경기수원
가1234 이륜
제출기한
2024.3.15.
`

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want records.Record
	}{
		{
			name: "full notice",
			text: sampleNotice,
			want: records.Record{
				Name:          "홍길동",
				ZipCode:       "16489",
				Address:       "경기도 수원시 팔달구 효원로 1, 101동202호",
				Title:         "이륜자동차 사용신고 미이행 안내",
				VehicleNumber: "경기수원가1234",
				DueDate:       "2024.3.15.",
			},
		},
		{
			name: "windows line endings",
			text: strings.ReplaceAll(sampleNotice, "\n", "\r\n"),
			want: records.Record{
				Name:          "홍길동",
				ZipCode:       "16489",
				Address:       "경기도 수원시 팔달구 효원로 1, 101동202호",
				Title:         "이륜자동차 사용신고 미이행 안내",
				VehicleNumber: "경기수원가1234",
				DueDate:       "2024.3.15.",
			},
		},
		{
			name: "plate on a single line",
			text: "차량번호 차종\n서울강남가5678 이륜\n",
			want: records.Record{VehicleNumber: "서울강남가5678"},
		},
		{
			name: "recipient without (경유) line",
			text: "수신 홍길동 귀하 (우16489 수원시)\n제목 안내문\n",
			want: records.Record{Title: "안내문"},
		},
		{
			name: "full-width digits",
			text: "수신 홍길동 귀하 (우１６４８９ 수원시 효원로 １)\n(경유)\n차량번호 차종\n서울강남가５６７８ 이륜\n제출기한\n２０２４.３.１５.\n",
			want: records.Record{
				Name:          "홍길동",
				ZipCode:       "16489",
				Address:       "수원시 효원로 1",
				VehicleNumber: "서울강남가5678",
				DueDate:       "2024.3.15.",
			},
		},
		{
			name: "empty text",
			text: "",
			want: records.Record{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.text))
		})
	}
}

func TestParse_FirstDueDateWins(t *testing.T) {
	text := "본문\n2024.3.15.\n부칙\n2025.1.1.\n"
	assert.Equal(t, "2024.3.15.", Parse(text).DueDate)
}

type fakeReader struct {
	result *pdf.TextResult
	err    error
}

func (f fakeReader) ReadText(string) (*pdf.TextResult, error) {
	return f.result, f.err
}

func TestExtractor_Extract(t *testing.T) {
	reader := fakeReader{result: &pdf.TextResult{Path: "/tmp/a.pdf", Text: "제목 안내\n", Pages: 2}}
	ex := NewExtractor(reader, zaptest.NewLogger(t))

	result, err := ex.Extract("/tmp/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/a.pdf", result.Path)
	assert.Equal(t, "/tmp/a.pdf", result.Record.Source)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, "안내", result.Record.Title)
	assert.NotContains(t, result.Missing, records.ColumnTitle)
	assert.Len(t, result.Missing, 5)
}

func TestExtractor_ReadError(t *testing.T) {
	ex := NewExtractor(fakeReader{err: pdf.ErrNoText}, nil)

	_, err := ex.Extract("/tmp/scan.pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pdf.ErrNoText))
}
